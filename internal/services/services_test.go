package services_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/benmeehan/location-agent/internal/dispatch"
	"github.com/benmeehan/location-agent/internal/mocks"
	"github.com/benmeehan/location-agent/internal/services"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockControls is a mock implementation of services.LocationControls
type mockControls struct {
	mock.Mock
}

func (m *mockControls) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockControls) Stop() {
	m.Called()
}

func (m *mockControls) Refresh() {
	m.Called()
}

func TestConsoleControlService_DispatchesLines(t *testing.T) {
	controls := new(mockControls)
	controls.On("Start").Return(errors.New("subscribe failed")).Once()
	controls.On("Stop").Return().Once()
	controls.On("Refresh").Return().Once()

	in := strings.NewReader("start\n\n  STOP \nbogus\nstatus\n")
	svc := services.NewConsoleControlService(in, dispatch.Inline{}, controls, zerolog.Nop())

	require.NoError(t, svc.Start())
	assert.EqualError(t, svc.Start(), "console control service is already running")

	select {
	case <-svc.Done():
	case <-time.After(time.Second):
		t.Fatal("console input was not consumed")
	}

	require.NoError(t, svc.Stop())
	assert.EqualError(t, svc.Stop(), "console control service is not running")
	controls.AssertExpectations(t)
}

func TestConsoleControlService_RestartWaitsForPreviousReader(t *testing.T) {
	in, out := io.Pipe()
	svc := services.NewConsoleControlService(in, dispatch.Inline{}, new(mockControls), zerolog.Nop())

	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop())
	assert.EqualError(t, svc.Start(), "console control service is still reading from a previous run")

	previous := svc.Done()
	require.NoError(t, out.Close())
	select {
	case <-previous:
	case <-time.After(time.Second):
		t.Fatal("previous reader did not exit on EOF")
	}

	require.NoError(t, svc.Start())
	require.NoError(t, svc.Stop())
}

func newMQTTControlService(client *mocks.MockMQTTClient, controls *mockControls) *services.MQTTControlService {
	deviceInfo := new(mocks.MockDeviceInfo)
	deviceInfo.On("GetDeviceID").Return("device-42")
	return services.NewMQTTControlService("controls", 1, client, deviceInfo, dispatch.Inline{}, controls, zerolog.Nop())
}

func TestMQTTControlService_StartStop(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	client.On("Subscribe", "controls/device-42", byte(1), mock.Anything).Return(mocks.NewDoneToken(nil)).Once()
	client.On("Unsubscribe", []string{"controls/device-42"}).Return(mocks.NewDoneToken(nil)).Once()

	svc := newMQTTControlService(client, new(mockControls))

	require.NoError(t, svc.Start())
	assert.Error(t, svc.Start())
	require.NoError(t, svc.Stop())
	assert.Error(t, svc.Stop())
	client.AssertExpectations(t)
}

func TestMQTTControlService_SubscribeError(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	client.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).Return(mocks.NewDoneToken(errors.New("not connected")))

	svc := newMQTTControlService(client, new(mockControls))

	assert.EqualError(t, svc.Start(), "not connected")
	assert.Error(t, svc.Stop())
}

func TestMQTTControlService_RequiresDeviceID(t *testing.T) {
	client := new(mocks.MockMQTTClient)
	deviceInfo := new(mocks.MockDeviceInfo)
	deviceInfo.On("GetDeviceID").Return("")

	svc := services.NewMQTTControlService("controls", 1, client, deviceInfo, dispatch.Inline{}, new(mockControls), zerolog.Nop())

	assert.EqualError(t, svc.Start(), "mqtt control service needs a device id")
	client.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
}

func TestMQTTControlService_HandleControl(t *testing.T) {
	controls := new(mockControls)
	controls.On("Start").Return(nil).Once()
	controls.On("Stop").Return().Once()

	var handler MQTT.MessageHandler
	client := new(mocks.MockMQTTClient)
	client.On("Subscribe", "controls/device-42", byte(1), mock.Anything).
		Run(func(args mock.Arguments) {
			handler = args.Get(2).(MQTT.MessageHandler)
		}).
		Return(mocks.NewDoneToken(nil))

	svc := newMQTTControlService(client, controls)
	require.NoError(t, svc.Start())
	require.NotNil(t, handler)

	handler(nil, mocks.NewMockMessage("controls/device-42", []byte(`{"action":"start","user_id":"u1"}`)))
	handler(nil, mocks.NewMockMessage("controls/device-42", []byte(`{"action":"stop"}`)))
	handler(nil, mocks.NewMockMessage("controls/device-42", []byte(`{"action":"reboot"}`)))
	handler(nil, mocks.NewMockMessage("controls/device-42", []byte(`not json`)))

	controls.AssertExpectations(t)
	controls.AssertNotCalled(t, "Refresh")
}
