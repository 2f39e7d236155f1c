package permission_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/benmeehan/location-agent/internal/mocks"
	"github.com/benmeehan/location-agent/pkg/permission"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type promptHarness struct {
	client    *mocks.MockMQTTClient
	host      *permission.MQTTHost
	handlers  chan MQTT.MessageHandler
	published chan []byte
	answers   chan bool
}

func newPromptHarness(publishErr error) *promptHarness {
	h := &promptHarness{
		client:    new(mocks.MockMQTTClient),
		handlers:  make(chan MQTT.MessageHandler, 1),
		published: make(chan []byte, 1),
		answers:   make(chan bool, 2),
	}

	h.client.On("Subscribe", mock.MatchedBy(func(topic string) bool {
		return strings.HasPrefix(topic, "consent/response/")
	}), byte(1), mock.Anything).
		Run(func(args mock.Arguments) {
			h.handlers <- args.Get(2).(MQTT.MessageHandler)
		}).
		Return(mocks.NewDoneToken(nil))
	h.client.On("Publish", "consent", byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) {
			h.published <- args.Get(3).([]byte)
		}).
		Return(mocks.NewDoneToken(publishErr))
	h.client.On("Unsubscribe", mock.Anything).Return(mocks.NewDoneToken(nil))

	h.host = permission.NewMQTTHost("consent", 1, "device-42", h.client, zerolog.Nop())
	return h
}

func (h *promptHarness) waitAnswer(t *testing.T) bool {
	t.Helper()
	select {
	case granted := <-h.answers:
		return granted
	case <-time.After(time.Second):
		t.Fatal("prompt was never answered")
		return false
	}
}

func TestMQTTHost_PromptGranted(t *testing.T) {
	h := newPromptHarness(nil)

	granted, err := h.host.Query(permission.FineLocation)
	require.NoError(t, err)
	assert.False(t, granted)

	h.host.Prompt(permission.FineLocation, func(g bool) { h.answers <- g })

	handler := <-h.handlers
	var req permission.ConsentRequest
	require.NoError(t, json.Unmarshal(<-h.published, &req))
	assert.Equal(t, "device-42", req.DeviceID)
	assert.Equal(t, permission.FineLocation, req.Permission)
	assert.NotEmpty(t, req.RequestID)

	responseTopic := "consent/response/" + req.RequestID
	payload, _ := json.Marshal(permission.ConsentResponse{RequestID: req.RequestID, Granted: true})
	handler(nil, mocks.NewMockMessage(responseTopic, payload))

	assert.True(t, h.waitAnswer(t))
	assert.Equal(t, 0, h.host.Pending())

	granted, err = h.host.Query(permission.FineLocation)
	require.NoError(t, err)
	assert.True(t, granted)

	// A duplicate answer is ignored.
	handler(nil, mocks.NewMockMessage(responseTopic, payload))
	select {
	case <-h.answers:
		t.Fatal("prompt answered twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMQTTHost_PromptDeniedUsesTopicWhenIDMissing(t *testing.T) {
	h := newPromptHarness(nil)

	h.host.Prompt(permission.FineLocation, func(g bool) { h.answers <- g })
	handler := <-h.handlers
	var req permission.ConsentRequest
	require.NoError(t, json.Unmarshal(<-h.published, &req))

	handler(nil, mocks.NewMockMessage("consent/response/"+req.RequestID, []byte(`{"granted":false}`)))

	assert.False(t, h.waitAnswer(t))
	granted, _ := h.host.Query(permission.FineLocation)
	assert.False(t, granted)
}

func TestMQTTHost_MalformedResponseKeepsPromptPending(t *testing.T) {
	h := newPromptHarness(nil)

	h.host.Prompt(permission.FineLocation, func(g bool) { h.answers <- g })
	handler := <-h.handlers
	<-h.published

	handler(nil, mocks.NewMockMessage("consent/response/x", []byte(`not json`)))
	assert.Equal(t, 1, h.host.Pending())
}

func TestMQTTHost_PublishFailureResolvesDenied(t *testing.T) {
	h := newPromptHarness(errors.New("broker unavailable"))

	h.host.Prompt(permission.FineLocation, func(g bool) { h.answers <- g })

	assert.False(t, h.waitAnswer(t))
	assert.Equal(t, 0, h.host.Pending())
}
