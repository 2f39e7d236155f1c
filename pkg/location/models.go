package location

import "time"

// Sample is a single position fix reported by a provider.
type Sample struct {
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Accuracy  float32 // radius of uncertainty in meters
}

// Priority selects the trade-off between fix quality and power use.
type Priority int

const (
	PriorityHighAccuracy Priority = iota
	PriorityBalanced
	PriorityLowPower
)

// String returns the config name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityHighAccuracy:
		return "high_accuracy"
	case PriorityBalanced:
		return "balanced"
	case PriorityLowPower:
		return "low_power"
	default:
		return "unknown"
	}
}

// ParsePriority maps a config name to a Priority.
func ParsePriority(s string) (Priority, bool) {
	switch s {
	case "", "high_accuracy":
		return PriorityHighAccuracy, true
	case "balanced":
		return PriorityBalanced, true
	case "low_power":
		return PriorityLowPower, true
	default:
		return PriorityHighAccuracy, false
	}
}

// Request describes how often a subscriber wants updates.
type Request struct {
	Interval        time.Duration // desired time between updates
	FastestInterval time.Duration // updates are never delivered faster than this
	Priority        Priority
}

// DefaultRequest is the update policy used by the agent: 10s desired, 5s fastest, high accuracy.
func DefaultRequest() Request {
	return Request{
		Interval:        10 * time.Second,
		FastestInterval: 5 * time.Second,
		Priority:        PriorityHighAccuracy,
	}
}
