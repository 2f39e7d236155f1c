package constants

import "time"

// Location provider names accepted in config.
const (
	ProviderSensor = "sensor"
	ProviderGoogle = "google"
	ProviderReplay = "replay"
)

// Permission host names accepted in config.
const (
	PermissionHostStatic = "static"
	PermissionHostMQTT   = "mqtt"
)

const (
	DefaultGPSBaudRate = 9600
	DefaultReplayPace  = 1 * time.Second
	DefaultQueueDepth  = 64
)
