// Package gate decides whether location updates may start and asks the user
// when they may not.
package gate

import (
	"sync"

	"github.com/benmeehan/location-agent/internal/dispatch"
	"github.com/benmeehan/location-agent/pkg/permission"
	"github.com/rs/zerolog"
)

// State is the last known answer for the gated permission.
type State int

const (
	Unknown State = iota
	Granted
	Denied
)

func (s State) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Gate wraps a permission host for one permission kind. All methods, and every
// result callback, run on the executor.
type Gate struct {
	host   permission.Host
	kind   permission.Kind
	exec   dispatch.Executor
	logger zerolog.Logger

	state   State
	pending bool
	waiting []func(State)
}

// NewGate creates a gate for kind backed by host.
func NewGate(host permission.Host, kind permission.Kind, exec dispatch.Executor, logger zerolog.Logger) *Gate {
	return &Gate{
		host:   host,
		kind:   kind,
		exec:   exec,
		logger: logger.With().Str("permission", string(kind)).Logger(),
	}
}

// Check queries the host for the current grant. A failed query yields Unknown.
func (g *Gate) Check() State {
	granted, err := g.host.Query(g.kind)
	switch {
	case err != nil:
		g.logger.Warn().Err(err).Msg("Permission query failed")
		g.state = Unknown
	case granted:
		g.state = Granted
	default:
		g.state = Denied
	}
	return g.state
}

// State returns the answer cached by the last Check or prompt.
func (g *Gate) State() State {
	return g.state
}

// Pending reports whether a prompt is waiting for the user.
func (g *Gate) Pending() bool {
	return g.pending
}

// Request shows the consent prompt and returns immediately. onResult receives
// Granted or Denied exactly once on the executor. While a prompt is pending,
// further requests wait for the same answer instead of prompting again.
// There is no timeout: an unanswered prompt never calls back.
func (g *Gate) Request(onResult func(State)) {
	if onResult != nil {
		g.waiting = append(g.waiting, onResult)
	}
	if g.pending {
		g.logger.Debug().Int("waiting", len(g.waiting)).Msg("Permission prompt already pending")
		return
	}
	g.pending = true

	var once sync.Once
	g.logger.Info().Msg("Requesting permission")
	g.host.Prompt(g.kind, func(granted bool) {
		once.Do(func() {
			g.exec.Post(func() { g.resolve(granted) })
		})
	})
}

func (g *Gate) resolve(granted bool) {
	g.state = Denied
	if granted {
		g.state = Granted
	}
	g.logger.Info().Str("state", g.state.String()).Msg("Permission prompt answered")

	waiting := g.waiting
	g.waiting = nil
	g.pending = false

	for _, cb := range waiting {
		cb(g.state)
	}
}
