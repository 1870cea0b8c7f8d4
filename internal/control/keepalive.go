package control

import (
	"fmt"
	"time"
)

// Keep-alive timing. The vehicle lands on its own after 15 s without a
// command.
const (
	DefaultKeepAliveInterval = 4 * time.Second
	MaxKeepAliveInterval     = 5 * time.Second
)

// ValidateKeepAlive checks a keep-alive interval.
func ValidateKeepAlive(interval time.Duration) error {
	if interval <= 0 || interval > MaxKeepAliveInterval {
		return fmt.Errorf("keep-alive interval %s outside (0, %s]", interval, MaxKeepAliveInterval)
	}
	return nil
}

// KeepAlive tracks when the last liveness ping went out.
type KeepAlive struct {
	interval time.Duration
	last     time.Time
}

// NewKeepAlive starts the timer at start, which counts as the last send.
func NewKeepAlive(interval time.Duration, start time.Time) *KeepAlive {
	return &KeepAlive{interval: interval, last: start}
}

// Interval returns the configured interval.
func (k *KeepAlive) Interval() time.Duration { return k.interval }

// Last returns the time of the last send.
func (k *KeepAlive) Last() time.Time { return k.last }

// Due reports whether a ping is owed at now.
func (k *KeepAlive) Due(now time.Time) bool {
	return now.Sub(k.last) >= k.interval
}

// Tick sends a keep-alive to sink if one is due and restarts the interval
// from now. It reports whether a ping was sent.
func (k *KeepAlive) Tick(now time.Time, sink CommandSink) bool {
	if !k.Due(now) {
		return false
	}
	sink.SendKeepAlive()
	k.last = now
	return true
}
