package permission

import (
	"sync"

	"github.com/rs/zerolog"
)

// StaticHost answers from a fixed policy. Prompts resolve asynchronously with
// the configured answer, and a granted answer sticks for later queries.
type StaticHost struct {
	answer bool
	logger zerolog.Logger

	mu      sync.RWMutex
	granted map[Kind]bool
}

// NewStaticHost creates a host where preGranted kinds are already granted and
// every prompt is answered with answer.
func NewStaticHost(preGranted []Kind, answer bool, logger zerolog.Logger) *StaticHost {
	granted := make(map[Kind]bool, len(preGranted))
	for _, k := range preGranted {
		granted[k] = true
	}
	return &StaticHost{
		answer:  answer,
		logger:  logger,
		granted: granted,
	}
}

// Query reports the current grant for kind.
func (h *StaticHost) Query(kind Kind) (bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.granted[kind], nil
}

// Prompt answers with the configured policy on a separate goroutine.
func (h *StaticHost) Prompt(kind Kind, onResult func(granted bool)) {
	h.logger.Info().Str("permission", string(kind)).Bool("answer", h.answer).Msg("Answering permission prompt from policy")
	go func() {
		if h.answer {
			h.mu.Lock()
			h.granted[kind] = true
			h.mu.Unlock()
		}
		if onResult != nil {
			onResult(h.answer)
		}
	}()
}
