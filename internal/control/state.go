package control

import "fmt"

// Speed limits and defaults for forward motion.
const (
	DefaultForwardSpeed = 40
	SpeedStep           = 10
	MinSpeed            = 0
	MaxSpeed            = 100
)

// State is the operator-controlled mode of the follower.
type State struct {
	// TrackingEnabled switches the closed loop on and off.
	TrackingEnabled bool `json:"tracking_enabled"`

	// ForwardSpeed is the constant forward rate sent while tracking, 0..100.
	ForwardSpeed int `json:"forward_speed"`

	// YawRate is the last yaw rate computed, -100..100.
	YawRate int `json:"yaw_rate"`
}

// DefaultState returns the state a follower starts in: tracking off,
// forward speed 40, no yaw.
func DefaultState() State {
	return State{ForwardSpeed: DefaultForwardSpeed}
}

// AdjustSpeed returns s with the forward speed changed by delta and clamped
// to [MinSpeed, MaxSpeed].
func (s State) AdjustSpeed(delta int) State {
	s.ForwardSpeed = clamp(s.ForwardSpeed+delta, MinSpeed, MaxSpeed)
	return s
}

func (s State) String() string {
	mode := "off"
	if s.TrackingEnabled {
		mode = "on"
	}
	return fmt.Sprintf("tracking=%s forward=%d yaw=%d", mode, s.ForwardSpeed, s.YawRate)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
