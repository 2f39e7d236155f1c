package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benmeehan/location-agent/internal/dispatch"
	"github.com/benmeehan/location-agent/internal/display"
	"github.com/benmeehan/location-agent/internal/gate"
	"github.com/benmeehan/location-agent/internal/service_registry"
	"github.com/benmeehan/location-agent/internal/subscription"
	"github.com/benmeehan/location-agent/internal/utils"
	"github.com/benmeehan/location-agent/pkg/file"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	"github.com/benmeehan/location-agent/pkg/permission"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "location-agent",
	Short:        "Show the device's live GPS position",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(configPath)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the agent configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	// Logs go to stderr so the position labels on stdout stay readable
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	fileClient := file.NewFileService()
	config, err := utils.LoadConfig(configPath, fileClient)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	level, err := zerolog.ParseLevel(config.Logging.Level)
	if err != nil {
		logger.Warn().Err(err).Str("level", config.Logging.Level).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	deviceInfo := identity.NewDeviceInfo(config.Identity.DeviceFile, fileClient)
	if config.Identity.DeviceFile != "" {
		if err := deviceInfo.LoadDeviceInfo(); err != nil {
			logger.Error().Err(err).Msg("Failed to load device information")
			return err
		}
		deviceID, err := deviceInfo.EnsureDeviceID()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to assign device ID")
			return err
		}
		logger.Info().Str("device_id", deviceID).Msg("Device identity ready")
	}

	var mqttClient mqtt.MQTTClient
	if config.MQTT.Enabled {
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		logger.Info().Str("client_id", clientID).Msg("Using MQTT Client ID")

		mqttService := mqtt.NewMqttService(fileClient, logger)
		err := mqttService.Initialize(mqtt.Options{
			Broker:         config.MQTT.Broker,
			ClientID:       clientID,
			CACertificate:  config.MQTT.CACertificate,
			Username:       config.MQTT.Username,
			Password:       config.MQTT.Password,
			ConnectTimeout: config.MQTT.ConnectTimeout,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to initialize MQTT connection")
			return err
		}
		defer mqttService.Disconnect(250)
		mqttClient = mqttService
	}

	provider, err := service_registry.NewLocationProvider(config, logger)
	if err != nil {
		return err
	}
	defer provider.Close()

	host, err := service_registry.NewPermissionHost(config, deviceInfo.GetDeviceID(), mqttClient, logger)
	if err != nil {
		return err
	}

	loop := dispatch.NewLoop(config.Dispatch.QueueDepth)
	console := display.NewConsole(os.Stdout)
	permissionGate := gate.NewGate(host, permission.FineLocation, loop, logger)
	manager := subscription.NewManager(permissionGate, provider, console, console, loop, logger)

	// Initial frame shows zeros until the first fix arrives
	loop.Post(manager.Refresh)

	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, loop, manager, deviceInfo, os.Stdin, logger)
	if err := serviceRegistry.RegisterServices(config); err != nil {
		return err
	}
	if err := serviceRegistry.StartServices(); err != nil {
		return err
	}
	logger.Info().Strs("services", serviceRegistry.Names()).Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Some services failed to stop")
	}
	loop.Sync(manager.Stop)
	loop.Shutdown()
	return nil
}
