package console

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/imaging"
)

// errInvalidParams marks argument errors so they map to -32602.
var errInvalidParams = errors.New("invalid params")

// errQueueFull is returned when the loop cannot accept more events.
var errQueueFull = errors.New("event queue full")

func isParamError(err error) bool {
	return errors.Is(err, errInvalidParams) ||
		errors.Is(err, imaging.ErrUnknownParam) ||
		errors.Is(err, imaging.ErrOutOfRange)
}

type handlerFunc func(args json.RawMessage) (interface{}, error)

func (s *Server) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		// Operator input
		"tracking/enable":  s.simpleEvent(control.EnableTracking),
		"tracking/disable": s.simpleEvent(control.DisableTracking),
		"takeoff":          s.simpleEvent(control.Takeoff),
		"land":             s.simpleEvent(control.Land),
		"quit":             s.simpleEvent(control.Quit),
		"speed/adjust":     s.handleSpeedAdjust,
		"move":             s.handleMove,
		"rotate":           s.handleRotate,
		"key":              s.handleKey,

		// Threshold tuning
		"threshold/get": s.handleThresholdGet,
		"threshold/set": s.handleThresholdSet,

		// Inspection
		"color/sample": s.handleColorSample,
		"snapshot":     s.handleSnapshot,
		"status":       s.handleStatus,
	}
}

// decodeArgs unmarshals args into v. Empty args leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return nil
}

// eventResult is returned by every method that queues an event.
type eventResult struct {
	Queued bool   `json:"queued"`
	Event  string `json:"event"`
}

func (s *Server) submit(ev control.Event) (interface{}, error) {
	if !s.loop.Submit(ev) {
		return nil, errQueueFull
	}
	return eventResult{Queued: true, Event: ev.String()}, nil
}

func (s *Server) simpleEvent(kind control.EventKind) handlerFunc {
	return func(json.RawMessage) (interface{}, error) {
		return s.submit(control.Event{Kind: kind})
	}
}

// === Operator Input Handlers ===

type speedAdjustArgs struct {
	Delta *int `json:"delta"`
}

func (s *Server) handleSpeedAdjust(args json.RawMessage) (interface{}, error) {
	var a speedAdjustArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	delta := control.SpeedStep
	if a.Delta != nil {
		delta = *a.Delta
	}
	if delta == 0 {
		return nil, fmt.Errorf("%w: delta must not be zero", errInvalidParams)
	}
	return s.submit(control.Event{Kind: control.AdjustSpeed, Delta: delta})
}

type directionArgs struct {
	Direction string `json:"direction"`
}

func (s *Server) handleMove(args json.RawMessage) (interface{}, error) {
	var a directionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ev, err := control.NewMove(control.Direction(a.Direction))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return s.submit(ev)
}

func (s *Server) handleRotate(args json.RawMessage) (interface{}, error) {
	var a directionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ev, err := control.NewRotate(control.Direction(a.Direction))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
	}
	return s.submit(ev)
}

type keyArgs struct {
	Key string `json:"key"`
}

func (s *Server) handleKey(args json.RawMessage) (interface{}, error) {
	var a keyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ev, ok := control.ParseKey(a.Key)
	if !ok {
		return nil, fmt.Errorf("%w: unmapped key %q", errInvalidParams, a.Key)
	}
	return s.submit(ev)
}

// === Threshold Handlers ===

// paramRange describes the legal values of one band field.
type paramRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type thresholdResult struct {
	Band   imaging.ThresholdBand `json:"band"`
	Ranges map[string]paramRange `json:"ranges"`
}

func (s *Server) thresholdResult() thresholdResult {
	ranges := make(map[string]paramRange)
	for _, name := range imaging.ParamNames() {
		lo, hi, _ := imaging.ParamRange(name)
		ranges[name] = paramRange{Min: lo, Max: hi}
	}
	return thresholdResult{Band: s.bands.Get(), Ranges: ranges}
}

func (s *Server) handleThresholdGet(json.RawMessage) (interface{}, error) {
	return s.thresholdResult(), nil
}

type thresholdSetArgs struct {
	Name  string `json:"name"`
	Value *int   `json:"value"`
}

func (s *Server) handleThresholdSet(args json.RawMessage) (interface{}, error) {
	var a thresholdSetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Value == nil {
		return nil, fmt.Errorf("%w: value is required", errInvalidParams)
	}
	if err := s.bands.Set(a.Name, *a.Value); err != nil {
		return nil, err
	}
	return s.thresholdResult(), nil
}

// === Inspection Handlers ===

type colorSampleArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleColorSample(args json.RawMessage) (interface{}, error) {
	var a colorSampleArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if s.hub == nil {
		return nil, errors.New("no frames available")
	}
	sample, err := s.hub.SampleColor(a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return sample, nil
}

type snapshotArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleSnapshot(args json.RawMessage) (interface{}, error) {
	var a snapshotArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidParams)
	}
	if s.hub == nil {
		return nil, errors.New("no frames available")
	}
	seq, err := s.hub.SaveSnapshot(a.Path)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"path": a.Path, "seq": seq}, nil
}

func (s *Server) handleStatus(json.RawMessage) (interface{}, error) {
	return s.telemetry.Snapshot(), nil
}
