package control

import (
	"errors"
	"fmt"
)

// Controller defaults.
const (
	DefaultCenter   = 240
	DefaultDeadBand = 50
	DefaultMaxYaw   = 100
)

// Controller is the proportional yaw law with a dead band and saturation.
type Controller struct {
	// Center is the target column in region coordinates.
	Center int `yaml:"center" json:"center"`

	// DeadBand is the offset below which no correction is made.
	DeadBand int `yaml:"dead_band" json:"dead_band"`

	// MaxYaw is the saturation limit of the output, 1..100.
	MaxYaw int `yaml:"max_yaw" json:"max_yaw"`
}

// NewController returns the controller with default tuning.
func NewController() Controller {
	return Controller{Center: DefaultCenter, DeadBand: DefaultDeadBand, MaxYaw: DefaultMaxYaw}
}

// Validate checks the controller parameters.
func (c Controller) Validate() error {
	if c.MaxYaw < 1 || c.MaxYaw > 100 {
		return fmt.Errorf("max_yaw %d outside [1, 100]", c.MaxYaw)
	}
	if c.DeadBand < 0 {
		return errors.New("dead_band must not be negative")
	}
	if c.Center < 0 {
		return errors.New("center must not be negative")
	}
	return nil
}

// ComputeYaw returns the yaw rate that steers toward a line whose centroid
// lies at column centroidX.
//
// The centroid is truncated to an integer column first. Offsets smaller than
// the dead band give 0; larger ones give -dx, clamped to ±MaxYaw.
func (c Controller) ComputeYaw(centroidX float64) int {
	mx := int(centroidX)
	dx := c.Center - mx

	yaw := 0
	if abs(dx) >= c.DeadBand {
		yaw = -dx
	}
	return clamp(yaw, -c.MaxYaw, c.MaxYaw)
}

// Update runs one control step.
//
// When tracking is off it returns s unchanged and send is false. When
// tracking is on it always produces a command: yaw from the centroid if a
// line was found, otherwise 0, with the current forward speed.
func (c Controller) Update(s State, centroidX float64, found bool) (next State, cmd RateCommand, send bool) {
	if !s.TrackingEnabled {
		return s, RateCommand{}, false
	}
	yaw := 0
	if found {
		yaw = c.ComputeYaw(centroidX)
	}
	s.YawRate = yaw
	return s, RateCommand{Forward: s.ForwardSpeed, Yaw: yaw}, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
