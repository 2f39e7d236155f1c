package permission

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benmeehan/location-agent/pkg/mqtt"
	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

// MQTTHost shows consent prompts on a remote console reachable over MQTT.
// Requests go to topic; each answer is expected on topic/response/<request_id>.
// Answers are kept in memory only.
type MQTTHost struct {
	topic    string
	qos      byte
	deviceID string

	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger

	grants  cmap.ConcurrentMap[string, bool]
	pending cmap.ConcurrentMap[string, *pendingPrompt]
}

type pendingPrompt struct {
	kind          Kind
	responseTopic string
	onResult      func(bool)
	once          sync.Once
}

// NewMQTTHost creates a consent host publishing on topic.
func NewMQTTHost(topic string, qos int, deviceID string, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *MQTTHost {
	return &MQTTHost{
		topic:      topic,
		qos:        byte(qos),
		deviceID:   deviceID,
		mqttClient: mqttClient,
		logger:     logger,
		grants:     cmap.New[bool](),
		pending:    cmap.New[*pendingPrompt](),
	}
}

// Query reports the last answer received for kind. Kinds never answered are not granted.
func (h *MQTTHost) Query(kind Kind) (bool, error) {
	granted, ok := h.grants.Get(string(kind))
	return ok && granted, nil
}

// Prompt publishes a consent request and returns immediately. A transport
// failure resolves the prompt as denied.
func (h *MQTTHost) Prompt(kind Kind, onResult func(granted bool)) {
	requestID := uuid.New().String()
	p := &pendingPrompt{
		kind:          kind,
		responseTopic: fmt.Sprintf("%s/response/%s", h.topic, requestID),
		onResult:      onResult,
	}
	h.pending.Set(requestID, p)

	go h.sendPrompt(requestID, p)
}

// Pending reports the number of prompts still waiting for an answer.
func (h *MQTTHost) Pending() int {
	return h.pending.Count()
}

func (h *MQTTHost) sendPrompt(requestID string, p *pendingPrompt) {
	logger := h.logger.With().Str("request_id", requestID).Str("permission", string(p.kind)).Logger()

	token := h.mqttClient.Subscribe(p.responseTopic, h.qos, h.handleResponse)
	token.Wait()
	if err := token.Error(); err != nil {
		logger.Error().Err(err).Str("topic", p.responseTopic).Msg("Failed to subscribe for consent response")
		h.resolve(requestID, false)
		return
	}

	payload, err := json.Marshal(ConsentRequest{
		RequestID:  requestID,
		DeviceID:   h.deviceID,
		Permission: p.kind,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to serialize consent request")
		h.resolve(requestID, false)
		return
	}

	token = h.mqttClient.Publish(h.topic, h.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		logger.Error().Err(err).Str("topic", h.topic).Msg("Failed to publish consent request")
		h.resolve(requestID, false)
		return
	}

	logger.Info().Str("topic", h.topic).Msg("Consent request published")
}

// handleResponse runs on the MQTT client's goroutine.
func (h *MQTTHost) handleResponse(_ mqttLib.Client, msg mqttLib.Message) {
	var resp ConsentResponse
	if err := json.Unmarshal(msg.Payload(), &resp); err != nil {
		h.logger.Error().Err(err).Str("topic", msg.Topic()).Msg("Failed to parse consent response")
		return
	}

	requestID := resp.RequestID
	if requestID == "" {
		requestID = msg.Topic()[strings.LastIndex(msg.Topic(), "/")+1:]
	}

	h.logger.Info().Str("request_id", requestID).Bool("granted", resp.Granted).Msg("Received consent response")
	h.resolve(requestID, resp.Granted)
}

// resolve finishes the prompt once; later answers for the same request are ignored.
func (h *MQTTHost) resolve(requestID string, granted bool) {
	p, ok := h.pending.Pop(requestID)
	if !ok {
		h.logger.Debug().Str("request_id", requestID).Msg("Ignoring answer for unknown consent request")
		return
	}

	p.once.Do(func() {
		h.grants.Set(string(p.kind), granted)

		// Unsubscribing waits on the client, which must not happen inside its own handler.
		go func() {
			token := h.mqttClient.Unsubscribe(p.responseTopic)
			token.Wait()
			if err := token.Error(); err != nil {
				h.logger.Warn().Err(err).Str("topic", p.responseTopic).Msg("Failed to unsubscribe from consent response topic")
			}
		}()

		if p.onResult != nil {
			p.onResult(granted)
		}
	})
}
