package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/location"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	"github.com/benmeehan/location-agent/pkg/permission"
	"github.com/rs/zerolog"
)

// NewLocationProvider builds the provider selected by config.Location.Provider.
func NewLocationProvider(config *utils.Config, logger zerolog.Logger) (location.ClosableProvider, error) {
	cfg := config.Location
	logger = logger.With().Str("provider", cfg.Provider).Logger()

	switch cfg.Provider {
	case constants.ProviderSensor:
		return location.NewDeviceSensorProvider(cfg.GPSDevicePort, cfg.GPSDeviceBaudRate, logger), nil
	case constants.ProviderReplay:
		return location.NewNMEAReplayProvider(cfg.ReplayFile, cfg.ReplayPace, logger), nil
	case constants.ProviderGoogle:
		provider, err := location.NewGoogleGeolocationProvider(cfg.MapsAPIKey, cfg.ModemIndex, logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to create Google Geolocation provider")
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown location provider %q", cfg.Provider)
	}
}

// NewPermissionHost builds the host selected by config.Permission.Host.
func NewPermissionHost(config *utils.Config, deviceID string, mqttClient mqtt.MQTTClient, logger zerolog.Logger) (permission.Host, error) {
	cfg := config.Permission
	logger = logger.With().Str("permission_host", cfg.Host).Logger()

	switch cfg.Host {
	case constants.PermissionHostStatic:
		var preGranted []permission.Kind
		if cfg.PreGranted {
			preGranted = append(preGranted, permission.FineLocation)
		}
		return permission.NewStaticHost(preGranted, cfg.PromptAnswer, logger), nil
	case constants.PermissionHostMQTT:
		if mqttClient == nil {
			return nil, errors.New("mqtt permission host needs an MQTT connection")
		}
		return permission.NewMQTTHost(cfg.Topic, cfg.QOS, deviceID, mqttClient, logger), nil
	default:
		return nil, fmt.Errorf("unknown permission host %q", cfg.Host)
	}
}
