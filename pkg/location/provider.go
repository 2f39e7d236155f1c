package location

import "errors"

// ErrUnknownHandle is returned when unsubscribing a handle the provider does not own.
var ErrUnknownHandle = errors.New("unknown subscription handle")

// Handle identifies one live subscription with a provider.
type Handle string

// Callback receives samples for a subscription. It is called from a provider goroutine.
type Callback func(Sample)

// Provider delivers periodic location samples to subscribers.
type Provider interface {
	Subscribe(req Request, cb Callback) (Handle, error)
	Unsubscribe(h Handle) error
}

// ClosableProvider is a Provider that owns goroutines or devices released by Close.
type ClosableProvider interface {
	Provider
	Close() error
}
