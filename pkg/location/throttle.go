package location

import "time"

// throttle decides which fixes from a fast source reach the subscriber.
// A fix passes once Interval has elapsed since the last delivery, or once
// FastestInterval has elapsed and the fix is more accurate than the last one.
type throttle struct {
	req       Request
	delivered bool
	last      time.Time
	lastAcc   float32
}

func (t *throttle) allow(now time.Time, s Sample) bool {
	if t.delivered {
		elapsed := now.Sub(t.last)
		due := elapsed >= t.req.Interval
		better := elapsed >= t.req.FastestInterval && s.Accuracy < t.lastAcc
		if !due && !better {
			return false
		}
	}
	t.delivered = true
	t.last = now
	t.lastAcc = s.Accuracy
	return true
}
