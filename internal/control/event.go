package control

import (
	"fmt"
	"strings"
)

// One-shot maneuver sizes.
const (
	MoveDistance = 30 // cm
	RotateAngle  = 20 // degrees
)

// EventKind identifies an operator action.
type EventKind int

// Operator actions.
const (
	EnableTracking EventKind = iota + 1
	DisableTracking
	AdjustSpeed
	Move
	Rotate
	Takeoff
	Land
	Quit
)

var kindNames = map[EventKind]string{
	EnableTracking:  "enable_tracking",
	DisableTracking: "disable_tracking",
	AdjustSpeed:     "adjust_speed",
	Move:            "move",
	Rotate:          "rotate",
	Takeoff:         "takeoff",
	Land:            "land",
	Quit:            "quit",
}

func (k EventKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one discrete operator input.
type Event struct {
	Kind EventKind `json:"kind"`

	// Delta is the speed change for AdjustSpeed.
	Delta int `json:"delta,omitempty"`

	// Direction is set for Move and Rotate.
	Direction Direction `json:"direction,omitempty"`
}

func (e Event) String() string {
	switch e.Kind {
	case AdjustSpeed:
		return fmt.Sprintf("%s(%+d)", e.Kind, e.Delta)
	case Move, Rotate:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Direction)
	}
	return e.Kind.String()
}

// NewMove returns a Move event, validating the direction.
func NewMove(dir Direction) (Event, error) {
	if !dir.IsMove() {
		return Event{}, fmt.Errorf("invalid move direction %q", dir)
	}
	return Event{Kind: Move, Direction: dir}, nil
}

// NewRotate returns a Rotate event, validating the direction.
func NewRotate(dir Direction) (Event, error) {
	if !dir.IsRotate() {
		return Event{}, fmt.Errorf("invalid rotate direction %q", dir)
	}
	return Event{Kind: Rotate, Direction: dir}, nil
}

var keyMap = map[string]Event{
	"1": {Kind: EnableTracking},
	"2": {Kind: DisableTracking},
	"y": {Kind: AdjustSpeed, Delta: SpeedStep},
	"h": {Kind: AdjustSpeed, Delta: -SpeedStep},
	"t": {Kind: Takeoff},
	"l": {Kind: Land},
	"w": {Kind: Move, Direction: Forward},
	"s": {Kind: Move, Direction: Back},
	"a": {Kind: Move, Direction: Left},
	"d": {Kind: Move, Direction: Right},
	"r": {Kind: Move, Direction: Up},
	"f": {Kind: Move, Direction: Down},
	"q": {Kind: Rotate, Direction: CounterClockwise},
	"e": {Kind: Rotate, Direction: Clockwise},
}

// ParseKey maps a keyboard key to its event.
//
// Keys are single characters; "esc" and the escape character both quit.
// Unmapped keys return false.
func ParseKey(key string) (Event, bool) {
	switch strings.ToLower(key) {
	case "esc", "escape", "\x1b":
		return Event{Kind: Quit}, true
	}
	ev, ok := keyMap[key]
	return ev, ok
}

// Keys returns the key bindings as key → event description, for help output.
func Keys() map[string]string {
	out := make(map[string]string, len(keyMap)+1)
	for k, ev := range keyMap {
		out[k] = ev.String()
	}
	out["esc"] = Event{Kind: Quit}.String()
	return out
}
