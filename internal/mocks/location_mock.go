package mocks

import (
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/stretchr/testify/mock"
)

// MockProvider is a mock implementation of location.Provider. The callback of
// the most recent Subscribe is kept so tests can emit samples.
type MockProvider struct {
	mock.Mock
	Callbacks []location.Callback
}

func (m *MockProvider) Subscribe(req location.Request, cb location.Callback) (location.Handle, error) {
	args := m.Called(req, cb)
	if args.Error(1) == nil {
		m.Callbacks = append(m.Callbacks, cb)
	}
	return args.Get(0).(location.Handle), args.Error(1)
}

func (m *MockProvider) Unsubscribe(h location.Handle) error {
	args := m.Called(h)
	return args.Error(0)
}

// Emit delivers s through the callback of the most recent subscription.
func (m *MockProvider) Emit(s location.Sample) {
	m.Callbacks[len(m.Callbacks)-1](s)
}
