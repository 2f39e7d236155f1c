package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/rs/zerolog"
)

// Opener opens a fresh NMEA 0183 byte stream for one subscription.
type Opener func() (io.ReadCloser, error)

// NMEAProvider turns GGA sentences read from an NMEA stream into samples.
type NMEAProvider struct {
	open   Opener
	pace   time.Duration // delay after each fix, used when replaying recorded logs
	logger zerolog.Logger
	now    func() time.Time
	subs   *subscriptions
}

// NewNMEAProvider creates a provider that opens its source with open on every Subscribe.
func NewNMEAProvider(open Opener, logger zerolog.Logger) *NMEAProvider {
	return &NMEAProvider{
		open:   open,
		logger: logger,
		now:    time.Now,
		subs:   newSubscriptions(),
	}
}

// NewNMEAReplayProvider replays a recorded NMEA log, waiting pace between fixes.
func NewNMEAReplayProvider(path string, pace time.Duration, logger zerolog.Logger) *NMEAProvider {
	p := NewNMEAProvider(func() (io.ReadCloser, error) {
		return os.Open(path)
	}, logger.With().Str("replay_file", path).Logger())
	p.pace = pace
	return p
}

// Subscribe opens the source and starts delivering throttled fixes to cb.
func (p *NMEAProvider) Subscribe(req Request, cb Callback) (Handle, error) {
	if cb == nil {
		return "", errors.New("location callback must not be nil")
	}

	rc, err := p.open()
	if err != nil {
		return "", fmt.Errorf("failed to open NMEA source: %w", err)
	}

	var closeOnce sync.Once
	closeSource := func() {
		closeOnce.Do(func() {
			if err := rc.Close(); err != nil {
				p.logger.Debug().Err(err).Msg("Failed to close NMEA source")
			}
		})
	}

	h := p.subs.start(func(ctx context.Context) {
		// Closing the source unblocks a pending Read.
		release := context.AfterFunc(ctx, closeSource)
		defer release()
		defer closeSource()

		p.readSamples(ctx, rc, req, cb)
	})

	p.logger.Info().
		Str("handle", string(h)).
		Dur("interval", req.Interval).
		Dur("fastest_interval", req.FastestInterval).
		Str("priority", req.Priority.String()).
		Msg("NMEA subscription started")
	return h, nil
}

// Unsubscribe stops the delivery loop behind h.
func (p *NMEAProvider) Unsubscribe(h Handle) error {
	if err := p.subs.stop(h); err != nil {
		return err
	}
	p.logger.Info().Str("handle", string(h)).Msg("NMEA subscription stopped")
	return nil
}

// Close stops every subscription and waits for their readers to exit.
func (p *NMEAProvider) Close() error {
	p.subs.closeAll()
	return nil
}

// readSamples scans r line by line until EOF, a read error or cancellation.
func (p *NMEAProvider) readSamples(ctx context.Context, r io.Reader, req Request, cb Callback) {
	th := throttle{req: req}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		sample, ok := p.parseFix(scanner.Text())
		if !ok {
			continue
		}
		if th.allow(p.now(), sample) {
			cb(sample)
		}

		if p.pace > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.pace):
			}
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		p.logger.Error().Err(err).Msg("Failed to read NMEA stream")
	}
}

// parseFix extracts a sample from a GGA sentence carrying a valid fix.
func (p *NMEAProvider) parseFix(line string) (Sample, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return Sample{}, false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		p.logger.Debug().Err(err).Str("sentence", line).Msg("Skipping malformed NMEA sentence")
		return Sample{}, false
	}

	gga, ok := sentence.(nmea.GGA)
	if !ok || gga.FixQuality == nmea.Invalid {
		return Sample{}, false
	}

	return Sample{
		Latitude:  gga.Latitude,
		Longitude: gga.Longitude,
		Accuracy:  float32(gga.HDOP), // HDOP stands in for accuracy
	}, true
}
