package location

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"
)

const geolocateTimeout = 10 * time.Second

// geolocator is the part of maps.Client the provider needs.
type geolocator interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// GoogleGeolocationProvider polls the Google Maps Geolocation API once per interval.
type GoogleGeolocationProvider struct {
	client     geolocator
	modemIndex int
	logger     zerolog.Logger

	scanWiFi  func(ctx context.Context) ([]maps.WiFiAccessPoint, error)
	scanCells func(ctx context.Context, modemIndex int) ([]maps.CellTower, error)

	subs *subscriptions
}

// NewGoogleGeolocationProvider creates a new GoogleGeolocationProvider instance.
func NewGoogleGeolocationProvider(apiKey string, modemIndex int, logger zerolog.Logger) (*GoogleGeolocationProvider, error) {
	if apiKey == "" {
		return nil, errors.New("maps API key is required")
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newGoogleGeolocationProvider(c, modemIndex, logger), nil
}

func newGoogleGeolocationProvider(client geolocator, modemIndex int, logger zerolog.Logger) *GoogleGeolocationProvider {
	return &GoogleGeolocationProvider{
		client:     client,
		modemIndex: modemIndex,
		logger:     logger,
		scanWiFi:   getWiFiAccessPoints,
		scanCells:  getCellTowers,
		subs:       newSubscriptions(),
	}
}

// Subscribe starts polling. The first lookup happens immediately.
func (g *GoogleGeolocationProvider) Subscribe(req Request, cb Callback) (Handle, error) {
	if cb == nil {
		return "", errors.New("location callback must not be nil")
	}
	interval := req.Interval
	if interval <= 0 {
		interval = DefaultRequest().Interval
	}

	h := g.subs.start(func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			g.deliver(ctx, req.Priority, cb)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})

	g.logger.Info().
		Str("handle", string(h)).
		Dur("interval", interval).
		Str("priority", req.Priority.String()).
		Msg("Geolocation subscription started")
	return h, nil
}

// Unsubscribe stops polling for h.
func (g *GoogleGeolocationProvider) Unsubscribe(h Handle) error {
	if err := g.subs.stop(h); err != nil {
		return err
	}
	g.logger.Info().Str("handle", string(h)).Msg("Geolocation subscription stopped")
	return nil
}

// Close stops every subscription and waits for the pollers to exit.
func (g *GoogleGeolocationProvider) Close() error {
	g.subs.closeAll()
	return nil
}

func (g *GoogleGeolocationProvider) deliver(ctx context.Context, priority Priority, cb Callback) {
	sample, err := g.GetLocation(ctx, priority)
	if err != nil {
		if ctx.Err() == nil {
			g.logger.Error().Err(err).Msg("Geolocation lookup failed")
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	cb(sample)
}

// GetLocation performs one lookup. Radio scans are included according to priority;
// a failed scan only narrows the request.
func (g *GoogleGeolocationProvider) GetLocation(ctx context.Context, priority Priority) (Sample, error) {
	ctx, cancel := context.WithTimeout(ctx, geolocateTimeout)
	defer cancel()

	req := &maps.GeolocationRequest{ConsiderIP: true}

	if priority == PriorityHighAccuracy || priority == PriorityBalanced {
		wifiAPs, err := g.scanWiFi(ctx)
		if err != nil {
			g.logger.Debug().Err(err).Msg("WiFi scan unavailable")
		}
		req.WiFiAccessPoints = wifiAPs
	}

	if priority == PriorityHighAccuracy {
		cellTowers, err := g.scanCells(ctx, g.modemIndex)
		if err != nil {
			g.logger.Debug().Err(err).Msg("Cell tower scan unavailable")
		}
		req.CellTowers = cellTowers
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Sample{}, fmt.Errorf("geolocate: %w", err)
	}

	return Sample{
		Latitude:  resp.Location.Lat,
		Longitude: resp.Location.Lng,
		Accuracy:  float32(resp.Accuracy),
	}, nil
}
