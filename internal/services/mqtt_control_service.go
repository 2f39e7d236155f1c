package services

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/benmeehan/location-agent/internal/dispatch"
	"github.com/benmeehan/location-agent/internal/models"
	"github.com/benmeehan/location-agent/pkg/identity"
	"github.com/benmeehan/location-agent/pkg/mqtt"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// MQTTControlService receives start/stop triggers on <topic>/<device_id>.
type MQTTControlService struct {
	// Configuration fields
	subTopic string
	qos      int

	// Dependencies
	mqttClient mqtt.MQTTClient
	deviceInfo identity.DeviceInfoInterface
	exec       dispatch.Executor
	controls   LocationControls
	logger     zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewMQTTControlService creates a control service subscribed to subTopic.
func NewMQTTControlService(subTopic string, qos int, mqttClient mqtt.MQTTClient, deviceInfo identity.DeviceInfoInterface,
	exec dispatch.Executor, controls LocationControls, logger zerolog.Logger) *MQTTControlService {
	return &MQTTControlService{
		subTopic:   subTopic,
		qos:        qos,
		mqttClient: mqttClient,
		deviceInfo: deviceInfo,
		exec:       exec,
		controls:   controls,
		logger:     logger,
	}
}

func (s *MQTTControlService) topic() string {
	return s.subTopic + "/" + s.deviceInfo.GetDeviceID()
}

// Start subscribes to the control topic.
func (s *MQTTControlService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn().Msg("MQTTControlService is already running")
		return errors.New("mqtt control service is already running")
	}

	if s.deviceInfo.GetDeviceID() == "" {
		s.logger.Error().Msg("No device ID, refusing to subscribe to the shared control topic")
		return errors.New("mqtt control service needs a device id")
	}

	topic := s.topic()
	token := s.mqttClient.Subscribe(topic, byte(s.qos), s.HandleControl)
	token.Wait()
	if err := token.Error(); err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		return err
	}

	s.running = true
	s.logger.Info().Str("topic", topic).Msg("MQTTControlService started")
	return nil
}

// Stop unsubscribes from the control topic.
func (s *MQTTControlService) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.logger.Warn().Msg("MQTTControlService is not running")
		return errors.New("mqtt control service is not running")
	}

	topic := s.topic()
	token := s.mqttClient.Unsubscribe(topic)
	token.Wait()
	if err := token.Error(); err != nil {
		s.logger.Error().Err(err).Str("topic", topic).Msg("Failed to unsubscribe from MQTT topic")
		return err
	}

	s.running = false
	s.logger.Info().Msg("MQTTControlService stopped")
	return nil
}

// HandleControl parses a ControlCommand and posts it to the executor.
func (s *MQTTControlService) HandleControl(_ MQTT.Client, msg MQTT.Message) {
	var cmd models.ControlCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		s.logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to parse control command")
		return
	}

	if err := trigger(s.exec, s.controls, s.logger.With().Str("user_id", cmd.UserID).Logger(), cmd.Action); err != nil {
		s.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("Ignoring control command")
	}
}
