package permission

import "time"

// ConsentRequest is published when the agent needs the user to approve a permission.
type ConsentRequest struct {
	RequestID  string    `json:"request_id"`
	DeviceID   string    `json:"device_id"`
	Permission Kind      `json:"permission"`
	Timestamp  time.Time `json:"timestamp"`
}

// ConsentResponse carries the user's answer to a ConsentRequest.
type ConsentResponse struct {
	RequestID string `json:"request_id"`
	Granted   bool   `json:"granted"`
}
