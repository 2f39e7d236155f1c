package mocks

import (
	"github.com/benmeehan/location-agent/pkg/permission"
	"github.com/stretchr/testify/mock"
)

// MockHost is a mock implementation of permission.Host. Prompt callbacks are
// kept so tests decide when the user answers.
type MockHost struct {
	mock.Mock
	Prompts []func(bool)
}

func (m *MockHost) Query(kind permission.Kind) (bool, error) {
	args := m.Called(kind)
	return args.Bool(0), args.Error(1)
}

func (m *MockHost) Prompt(kind permission.Kind, onResult func(granted bool)) {
	m.Called(kind)
	m.Prompts = append(m.Prompts, onResult)
}

// Answer resolves the most recent prompt.
func (m *MockHost) Answer(granted bool) {
	m.Prompts[len(m.Prompts)-1](granted)
}
