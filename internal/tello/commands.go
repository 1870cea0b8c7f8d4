package tello

import (
	"fmt"

	"github.com/ironsheep/tello-linetrace/internal/control"
)

// SDK command words.
const (
	CmdCommand   = "command"
	CmdTakeoff   = "takeoff"
	CmdLand      = "land"
	CmdStreamOn  = "streamon"
	CmdStreamOff = "streamoff"
)

// Limits accepted by the vehicle for one-shot maneuvers.
const (
	minMoveCM   = 20
	maxMoveCM   = 500
	minRotateDg = 1
	maxRotateDg = 360
)

// RateCommand formats an rc instruction, clamping every axis to -100..100.
func RateCommand(lateral, forward, vertical, yaw int) string {
	return control.RateCommand{
		Lateral:  clamp(lateral, -100, 100),
		Forward:  clamp(forward, -100, 100),
		Vertical: clamp(vertical, -100, 100),
		Yaw:      clamp(yaw, -100, 100),
	}.String()
}

// MoveCommand formats a translation such as "forward 30".
func MoveCommand(dir control.Direction, cm int) string {
	return fmt.Sprintf("%s %d", dir, clamp(cm, minMoveCM, maxMoveCM))
}

// RotateCommand formats a rotation such as "cw 20".
func RotateCommand(dir control.Direction, deg int) string {
	return fmt.Sprintf("%s %d", dir, clamp(deg, minRotateDg, maxRotateDg))
}

// commander maps the control interfaces onto SDK text commands.
type commander struct {
	send func(cmd string)
}

// SendRate sends an rc command.
func (c commander) SendRate(lateral, forward, vertical, yaw int) {
	c.send(RateCommand(lateral, forward, vertical, yaw))
}

// SendKeepAlive sends "command". The first one enters SDK mode; later ones
// keep the vehicle from landing on its own.
func (c commander) SendKeepAlive() { c.send(CmdCommand) }

// Takeoff sends "takeoff".
func (c commander) Takeoff() { c.send(CmdTakeoff) }

// Land sends "land".
func (c commander) Land() { c.send(CmdLand) }

// Move sends a one-shot translation.
func (c commander) Move(dir control.Direction, cm int) {
	c.send(MoveCommand(dir, cm))
}

// Rotate sends a one-shot rotation.
func (c commander) Rotate(dir control.Direction, deg int) {
	c.send(RotateCommand(dir, deg))
}

// StreamOn asks the vehicle to start sending video.
func (c commander) StreamOn() { c.send(CmdStreamOn) }

// StreamOff asks the vehicle to stop sending video.
func (c commander) StreamOff() { c.send(CmdStreamOff) }

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
