package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

type mockGeolocator struct {
	mock.Mock
}

func (m *mockGeolocator) Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error) {
	args := m.Called(r)
	res, _ := args.Get(0).(*maps.GeolocationResult)
	return res, args.Error(1)
}

func newTestGoogleProvider(client geolocator) *GoogleGeolocationProvider {
	g := newGoogleGeolocationProvider(client, 0, zerolog.Nop())
	g.scanWiFi = func(context.Context) ([]maps.WiFiAccessPoint, error) {
		return []maps.WiFiAccessPoint{{MACAddress: "AA:BB:CC:DD:EE:FF", SignalStrength: 70}}, nil
	}
	g.scanCells = func(context.Context, int) ([]maps.CellTower, error) {
		return []maps.CellTower{{MobileCountryCode: 450, MobileNetworkCode: 5}}, nil
	}
	return g
}

func TestGoogleGeolocationProvider_GetLocationByPriority(t *testing.T) {
	client := new(mockGeolocator)
	result := &maps.GeolocationResult{Location: maps.LatLng{Lat: 35.1796, Lng: 129.0756}, Accuracy: 12.3}

	client.On("Geolocate", mock.MatchedBy(func(r *maps.GeolocationRequest) bool {
		return len(r.WiFiAccessPoints) == 1 && len(r.CellTowers) == 1
	})).Return(result, nil).Once()
	client.On("Geolocate", mock.MatchedBy(func(r *maps.GeolocationRequest) bool {
		return len(r.WiFiAccessPoints) == 1 && len(r.CellTowers) == 0
	})).Return(result, nil).Once()
	client.On("Geolocate", mock.MatchedBy(func(r *maps.GeolocationRequest) bool {
		return r.ConsiderIP && len(r.WiFiAccessPoints) == 0 && len(r.CellTowers) == 0
	})).Return(result, nil).Once()

	g := newTestGoogleProvider(client)

	for _, p := range []Priority{PriorityHighAccuracy, PriorityBalanced, PriorityLowPower} {
		s, err := g.GetLocation(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, 35.1796, s.Latitude)
		assert.Equal(t, 129.0756, s.Longitude)
		assert.InDelta(t, 12.3, s.Accuracy, 1e-5)
	}
	client.AssertExpectations(t)
}

func TestGoogleGeolocationProvider_ScanFailureNarrowsRequest(t *testing.T) {
	client := new(mockGeolocator)
	client.On("Geolocate", mock.MatchedBy(func(r *maps.GeolocationRequest) bool {
		return len(r.WiFiAccessPoints) == 0 && len(r.CellTowers) == 1
	})).Return(&maps.GeolocationResult{}, nil)

	g := newTestGoogleProvider(client)
	g.scanWiFi = func(context.Context) ([]maps.WiFiAccessPoint, error) {
		return nil, errors.New("nmcli not found")
	}

	_, err := g.GetLocation(context.Background(), PriorityHighAccuracy)
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestGoogleGeolocationProvider_SubscribeDeliversAndStops(t *testing.T) {
	client := new(mockGeolocator)
	client.On("Geolocate", mock.Anything).
		Return(&maps.GeolocationResult{Location: maps.LatLng{Lat: 1, Lng: 2}, Accuracy: 3}, nil)

	g := newTestGoogleProvider(client)
	c := newCollector()

	h, err := g.Subscribe(Request{Interval: time.Hour, Priority: PriorityLowPower}, c.callback)
	require.NoError(t, err)

	select {
	case <-c.got:
	case <-time.After(time.Second):
		t.Fatal("no sample delivered")
	}

	require.NoError(t, g.Unsubscribe(h))
	require.NoError(t, g.Close())
	assert.Equal(t, []Sample{{Latitude: 1, Longitude: 2, Accuracy: 3}}, c.snapshot())
}

func TestGoogleGeolocationProvider_LookupErrorDeliversNothing(t *testing.T) {
	client := new(mockGeolocator)
	client.On("Geolocate", mock.Anything).Return(nil, errors.New("quota exceeded"))

	g := newTestGoogleProvider(client)
	_, err := g.GetLocation(context.Background(), PriorityLowPower)
	assert.Error(t, err)
}

func TestNewGoogleGeolocationProvider_RequiresKey(t *testing.T) {
	_, err := NewGoogleGeolocationProvider("", 0, zerolog.Nop())
	assert.Error(t, err)
}
