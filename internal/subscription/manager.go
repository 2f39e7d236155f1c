// Package subscription owns the single location-update subscription and the
// latest sample it produced.
package subscription

import (
	"errors"
	"fmt"

	"github.com/benmeehan/location-agent/internal/dispatch"
	"github.com/benmeehan/location-agent/internal/gate"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/rs/zerolog"
)

// ErrPermissionDenied is reported when the user declines the location prompt.
var ErrPermissionDenied = errors.New("location permission denied")

// NoticePermissionRequired is shown to the user after a declined prompt.
const NoticePermissionRequired = "Permission required"

// State tells whether updates are currently subscribed.
type State int

const (
	Unsubscribed State = iota
	Subscribed
)

func (s State) String() string {
	if s == Subscribed {
		return "subscribed"
	}
	return "unsubscribed"
}

// PermissionGate is the part of gate.Gate the manager needs.
type PermissionGate interface {
	Check() gate.State
	Request(onResult func(gate.State))
}

// Display shows the latest fix.
type Display interface {
	Render(latitude float64, longitude float64, accuracy float32)
}

// Notifier shows a short transient message to the user.
type Notifier interface {
	Notice(msg string)
}

// Manager starts and stops location updates and applies incoming samples.
//
// Every method must run on the executor passed to NewManager. Provider and
// permission callbacks are re-posted there, so state is never shared across
// goroutines.
type Manager struct {
	gate     PermissionGate
	provider location.Provider
	request  location.Request
	display  Display
	notifier Notifier
	exec     dispatch.Executor
	logger   zerolog.Logger

	state      State
	wantStart  bool
	handle     location.Handle
	generation uint64
	latest     location.Sample
	hasLatest  bool
}

// NewManager creates an unsubscribed manager using the default update request.
func NewManager(g PermissionGate, provider location.Provider, display Display, notifier Notifier,
	exec dispatch.Executor, logger zerolog.Logger) *Manager {
	return &Manager{
		gate:     g,
		provider: provider,
		request:  location.DefaultRequest(),
		display:  display,
		notifier: notifier,
		exec:     exec,
		logger:   logger,
	}
}

// Start subscribes to location updates. Without permission it asks for it and
// returns nil; the subscription is made once the user grants it. Calling Start
// while subscribed does nothing.
func (m *Manager) Start() error {
	if st := m.gate.Check(); st != gate.Granted {
		m.logger.Info().Str("permission", st.String()).Msg("Location permission missing, prompting user")
		m.wantStart = true
		m.gate.Request(m.onPermissionResult)
		return nil
	}
	return m.subscribe()
}

// Stop cancels the active subscription, if any. A Start still waiting on the
// permission prompt is cancelled too.
func (m *Manager) Stop() {
	m.wantStart = false
	if m.state != Subscribed {
		m.logger.Debug().Msg("Stop requested while unsubscribed")
		return
	}

	if err := m.provider.Unsubscribe(m.handle); err != nil {
		m.logger.Warn().Err(err).Str("handle", string(m.handle)).Msg("Failed to unsubscribe from location updates")
	}

	m.logger.Info().Str("handle", string(m.handle)).Msg("Location updates stopped")
	m.handle = ""
	m.state = Unsubscribed
}

// OnLocationEvent stores sample as the latest fix and renders it. Samples
// arriving while unsubscribed are dropped.
func (m *Manager) OnLocationEvent(sample location.Sample) {
	if m.state != Subscribed {
		m.logger.Debug().Msg("Dropping location sample received while unsubscribed")
		return
	}

	m.latest = sample
	m.hasLatest = true

	m.logger.Debug().
		Float64("latitude", sample.Latitude).
		Float64("longitude", sample.Longitude).
		Float32("accuracy", sample.Accuracy).
		Msg("Location updated")
	m.Refresh()
}

// Refresh renders the latest fix, or zeros when none has been received.
func (m *Manager) Refresh() {
	m.display.Render(m.latest.Latitude, m.latest.Longitude, m.latest.Accuracy)
}

// State returns the subscription state.
func (m *Manager) State() State {
	return m.state
}

// Latest returns the most recent sample and whether one was ever received.
func (m *Manager) Latest() (location.Sample, bool) {
	return m.latest, m.hasLatest
}

func (m *Manager) subscribe() error {
	if m.state == Subscribed {
		m.logger.Debug().Str("handle", string(m.handle)).Msg("Location updates already running")
		return nil
	}

	m.generation++
	gen := m.generation
	handle, err := m.provider.Subscribe(m.request, func(s location.Sample) {
		m.exec.Post(func() { m.deliver(gen, s) })
	})
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to subscribe to location updates")
		return fmt.Errorf("failed to subscribe to location updates: %w", err)
	}

	m.handle = handle
	m.state = Subscribed
	m.logger.Info().
		Str("handle", string(handle)).
		Dur("interval", m.request.Interval).
		Dur("fastest_interval", m.request.FastestInterval).
		Str("priority", m.request.Priority.String()).
		Msg("Location updates started")
	return nil
}

// deliver drops samples from subscriptions that have since been stopped.
func (m *Manager) deliver(gen uint64, s location.Sample) {
	if gen != m.generation {
		m.logger.Debug().Msg("Dropping location sample from a stopped subscription")
		return
	}
	m.OnLocationEvent(s)
}

func (m *Manager) onPermissionResult(st gate.State) {
	wanted := m.wantStart
	m.wantStart = false
	if st != gate.Granted {
		m.logger.Warn().Err(ErrPermissionDenied).Msg("Location updates not started")
		m.notifier.Notice(NoticePermissionRequired)
		return
	}
	if !wanted {
		m.logger.Info().Msg("Permission granted after Stop, not subscribing")
		return
	}
	if err := m.subscribe(); err != nil {
		m.notifier.Notice(err.Error())
	}
}
