package mocks

import "github.com/stretchr/testify/mock"

// MockDeviceInfo stands in for identity.DeviceInfo so tests can fix the
// device ID that scopes MQTT topics.
type MockDeviceInfo struct {
	mock.Mock
}

func (m *MockDeviceInfo) LoadDeviceInfo() error {
	return m.Called().Error(0)
}

func (m *MockDeviceInfo) GetDeviceID() string {
	return m.Called().String(0)
}

func (m *MockDeviceInfo) SaveDeviceID(deviceID string) error {
	return m.Called(deviceID).Error(0)
}

func (m *MockDeviceInfo) EnsureDeviceID() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}
