package models

// ControlCommand is a remote start/stop trigger received over MQTT.
type ControlCommand struct {
	Action string `json:"action"` // "start", "stop" or "status"
	UserID string `json:"user_id,omitempty"`
}
