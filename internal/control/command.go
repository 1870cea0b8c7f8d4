package control

import "fmt"

// RateCommand is a four-axis velocity setpoint, each axis in -100..100.
type RateCommand struct {
	Lateral  int `json:"lateral"`
	Forward  int `json:"forward"`
	Vertical int `json:"vertical"`
	Yaw      int `json:"yaw"`
}

// Neutral is the all-zero command that stops the vehicle in place.
var Neutral = RateCommand{}

// String formats the command as the vehicle's rc instruction.
func (c RateCommand) String() string {
	return fmt.Sprintf("rc %d %d %d %d", c.Lateral, c.Forward, c.Vertical, c.Yaw)
}

// Send dispatches c to sink.
func (c RateCommand) Send(sink CommandSink) {
	sink.SendRate(c.Lateral, c.Forward, c.Vertical, c.Yaw)
}

// Direction names a one-shot movement or rotation.
type Direction string

// Movement and rotation directions, spelled as the vehicle command words.
const (
	Forward          Direction = "forward"
	Back             Direction = "back"
	Left             Direction = "left"
	Right            Direction = "right"
	Up               Direction = "up"
	Down             Direction = "down"
	Clockwise        Direction = "cw"
	CounterClockwise Direction = "ccw"
)

// IsMove reports whether d is a translation direction.
func (d Direction) IsMove() bool {
	switch d {
	case Forward, Back, Left, Right, Up, Down:
		return true
	}
	return false
}

// IsRotate reports whether d is a rotation direction.
func (d Direction) IsRotate() bool {
	return d == Clockwise || d == CounterClockwise
}

// CommandSink receives rate and liveness commands.
//
// Calls are fire-and-forget: implementations log failures themselves and
// never block the caller waiting for an acknowledgment.
type CommandSink interface {
	SendRate(lateral, forward, vertical, yaw int)
	SendKeepAlive()
}

// Pilot performs discrete flight maneuvers.
type Pilot interface {
	Takeoff()
	Land()
	Move(dir Direction, cm int)
	Rotate(dir Direction, deg int)
}

// Actuator is everything operator events may drive.
type Actuator interface {
	CommandSink
	Pilot
}
