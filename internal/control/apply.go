package control

// Apply handles one operator event.
//
// It returns the new state and whether the event asks the loop to stop. At
// most one command is sent to act:
//
//   - DisableTracking always sends one neutral rate command, even when
//     tracking was already off.
//   - Move and Rotate send one fixed-size maneuver.
//   - Takeoff and Land are forwarded as-is.
//
// EnableTracking and AdjustSpeed only change state; the next control step
// picks the change up.
func Apply(s State, ev Event, act Actuator) (next State, quit bool) {
	switch ev.Kind {
	case EnableTracking:
		s.TrackingEnabled = true
	case DisableTracking:
		s.TrackingEnabled = false
		s.YawRate = 0
		Neutral.Send(act)
	case AdjustSpeed:
		s = s.AdjustSpeed(ev.Delta)
	case Move:
		if ev.Direction.IsMove() {
			act.Move(ev.Direction, MoveDistance)
		}
	case Rotate:
		if ev.Direction.IsRotate() {
			act.Rotate(ev.Direction, RotateAngle)
		}
	case Takeoff:
		act.Takeoff()
	case Land:
		act.Land()
	case Quit:
		return s, true
	}
	return s, false
}
