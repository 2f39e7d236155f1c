package mocks

import "github.com/stretchr/testify/mock"

// MockDisplay is a mock implementation of the Display and Notifier interfaces.
type MockDisplay struct {
	mock.Mock
}

func (m *MockDisplay) Render(latitude float64, longitude float64, accuracy float32) {
	m.Called(latitude, longitude, accuracy)
}

func (m *MockDisplay) Notice(msg string) {
	m.Called(msg)
}
