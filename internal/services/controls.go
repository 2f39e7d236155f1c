package services

import (
	"fmt"
	"strings"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/dispatch"
	"github.com/rs/zerolog"
)

// LocationControls is what the Start and Stop triggers act on.
type LocationControls interface {
	Start() error
	Stop()
	Refresh()
}

// trigger posts action to the executor. Unknown actions are rejected before posting.
func trigger(exec dispatch.Executor, controls LocationControls, logger zerolog.Logger, action string) error {
	action = strings.ToLower(strings.TrimSpace(action))

	var task func()
	switch action {
	case constants.ActionStart:
		task = func() {
			if err := controls.Start(); err != nil {
				logger.Error().Err(err).Msg("Start trigger failed")
			}
		}
	case constants.ActionStop:
		task = controls.Stop
	case constants.ActionStatus:
		task = controls.Refresh
	default:
		return fmt.Errorf("unknown control action %q", action)
	}

	logger.Info().Str("action", action).Msg("Control triggered")
	exec.Post(task)
	return nil
}
