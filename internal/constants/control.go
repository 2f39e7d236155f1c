package constants

// Control actions accepted by the control services.
const (
	// ActionStart starts location updates
	ActionStart = "start"
	// ActionStop stops location updates
	ActionStop = "stop"
	// ActionStatus re-renders the latest fix
	ActionStatus = "status"
)

// Service names used by the service registry.
const (
	ConsoleControlService = "console_controls"
	MQTTControlService    = "mqtt_controls"
)
