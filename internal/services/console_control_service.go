package services

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/benmeehan/location-agent/internal/dispatch"
	"github.com/rs/zerolog"
)

// ConsoleControlService reads start/stop/status lines from an input stream.
type ConsoleControlService struct {
	in       io.Reader
	exec     dispatch.Executor
	controls LocationControls
	logger   zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewConsoleControlService creates a control service reading from in.
func NewConsoleControlService(in io.Reader, exec dispatch.Executor, controls LocationControls, logger zerolog.Logger) *ConsoleControlService {
	return &ConsoleControlService{
		in:       in,
		exec:     exec,
		controls: controls,
		logger:   logger,
	}
}

// Start begins reading commands on a separate goroutine.
func (c *ConsoleControlService) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx != nil {
		c.logger.Warn().Msg("ConsoleControlService is already running")
		return errors.New("console control service is already running")
	}
	if c.done != nil {
		select {
		case <-c.done:
		default:
			// The previous reader is still blocked on the input and would
			// split lines with a new one.
			c.logger.Warn().Msg("ConsoleControlService reader from the previous run is still active")
			return errors.New("console control service is still reading from a previous run")
		}
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.done = make(chan struct{})
	go c.readLoop(c.ctx, c.done)

	c.logger.Info().Msg("ConsoleControlService started")
	return nil
}

// Stop stops dispatching commands. A read already blocked on the input is
// abandoned rather than waited for, and Start fails until it returns.
func (c *ConsoleControlService) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		c.logger.Warn().Msg("ConsoleControlService is not running")
		return errors.New("console control service is not running")
	}

	c.cancel()
	c.ctx = nil
	c.cancel = nil

	c.logger.Info().Msg("ConsoleControlService stopped")
	return nil
}

// Done is closed when the input reaches EOF or fails.
func (c *ConsoleControlService) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *ConsoleControlService) readLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := trigger(c.exec, c.controls, c.logger, line); err != nil {
			c.logger.Warn().Err(err).Msg("Ignoring console input")
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.logger.Error().Err(err).Msg("Failed to read console input")
	}
}
