package follower

import (
	"context"
	"errors"
	"time"

	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/detection"
	"github.com/ironsheep/tello-linetrace/internal/imaging"
	"github.com/ironsheep/tello-linetrace/internal/util"
)

// Defaults for Options.
const (
	DefaultPollWait   = time.Millisecond
	DefaultEventQueue = 16
)

// FrameSource yields camera frames. Read must not block; it returns nil when
// no frame is ready.
type FrameSource interface {
	Read() *imaging.Frame
}

// Link controls the vehicle connection itself.
type Link interface {
	StreamOn()
	StreamOff()
	Close() error
}

// Vehicle is everything the loop sends commands to.
type Vehicle interface {
	control.Actuator
	Link
}

// Visualizer receives every processed frame. Publish is called from the
// loop goroutine and must return quickly. The result's images are allocated
// per frame and must not be modified.
type Visualizer interface {
	Publish(res *detection.Result, seq uint64, state control.State)
}

// Options tunes a Loop.
type Options struct {
	Controller control.Controller

	// KeepAlive is the liveness ping interval.
	KeepAlive time.Duration

	// PollWait bounds the wait for an operator event each cycle. Zero polls
	// without waiting.
	PollWait time.Duration

	// EventQueue is the capacity of the event channel.
	EventQueue int

	// Initial is the starting state; the zero value means DefaultState.
	Initial *control.State
}

// DefaultOptions returns the standard loop tuning.
func DefaultOptions() Options {
	return Options{
		Controller: control.NewController(),
		KeepAlive:  control.DefaultKeepAliveInterval,
		PollWait:   DefaultPollWait,
		EventQueue: DefaultEventQueue,
	}
}

// Loop is the line-following control loop.
type Loop struct {
	source   FrameSource
	detector detection.Detector
	bands    *imaging.BandStore
	vehicle  Vehicle
	viz      Visualizer

	ctrl      control.Controller
	pollWait  time.Duration
	keepEvery time.Duration
	events    chan control.Event
	keep      *control.KeepAlive
	state     control.State

	telemetry *Telemetry
	now       func() time.Time
}

// New assembles a loop. viz may be nil.
func New(source FrameSource, detector detection.Detector, bands *imaging.BandStore, vehicle Vehicle, viz Visualizer, opts Options) (*Loop, error) {
	if source == nil || detector == nil || bands == nil || vehicle == nil {
		return nil, errors.New("follower: source, detector, bands and vehicle are required")
	}
	if err := opts.Controller.Validate(); err != nil {
		return nil, err
	}
	if err := control.ValidateKeepAlive(opts.KeepAlive); err != nil {
		return nil, err
	}
	if opts.PollWait < 0 {
		return nil, errors.New("follower: poll wait must not be negative")
	}
	if opts.EventQueue <= 0 {
		opts.EventQueue = DefaultEventQueue
	}
	state := control.DefaultState()
	if opts.Initial != nil {
		state = *opts.Initial
	}

	l := &Loop{
		source:    source,
		detector:  detector,
		bands:     bands,
		vehicle:   vehicle,
		viz:       viz,
		ctrl:      opts.Controller,
		pollWait:  opts.PollWait,
		keepEvery: opts.KeepAlive,
		events:    make(chan control.Event, opts.EventQueue),
		state:     state,
		telemetry: NewTelemetry(detector.Name()),
		now:       time.Now,
	}
	l.telemetry.setState(state)
	return l, nil
}

// Submit queues an operator event. It never blocks and reports false if the
// queue is full.
func (l *Loop) Submit(ev control.Event) bool {
	select {
	case l.events <- ev:
		return true
	default:
		util.Error("follower: event queue full, dropped %s", ev)
		return false
	}
}

// Telemetry returns the loop's telemetry.
func (l *Loop) Telemetry() *Telemetry {
	return l.telemetry
}

// Run executes the loop until ctx is cancelled or a Quit event arrives, then
// performs the shutdown sequence. It enters SDK mode and starts the video
// stream first.
func (l *Loop) Run(ctx context.Context) error {
	l.vehicle.SendKeepAlive()
	l.vehicle.StreamOn()
	l.keep = control.NewKeepAlive(l.keepEvery, l.now())
	util.Info("follower: running with %s detector", l.detector.Name())

	for ctx.Err() == nil {
		if quit := l.Step(ctx); quit {
			util.Info("follower: quit requested")
			break
		}
	}

	l.shutdown()
	return nil
}

// Step runs one cycle and reports whether a Quit event was applied.
func (l *Loop) Step(ctx context.Context) bool {
	if l.keep == nil {
		l.keep = control.NewKeepAlive(l.keepEvery, l.now())
	}
	l.telemetry.cycle()

	frame := l.source.Read()
	switch {
	case frame == nil:
		l.telemetry.noFrame()
	case !frame.Valid():
		l.telemetry.invalidFrame()
	default:
		l.process(frame)
	}

	quit := l.pollEvent(ctx)

	if l.keep.Tick(l.now(), l.vehicle) {
		l.telemetry.keepAliveSent()
		util.Debug("follower: keep-alive")
	}

	l.telemetry.setState(l.state)
	return quit
}

func (l *Loop) process(frame *imaging.Frame) {
	band := l.bands.Get()
	res, err := l.detector.Detect(frame, band)
	if err != nil {
		if errors.Is(err, imaging.ErrInvalidFrame) {
			l.telemetry.invalidFrame()
		} else {
			l.telemetry.detectError()
			util.Error("follower: detection failed: %v", err)
		}
		return
	}
	l.telemetry.detected(frame.Seq, res)

	var cmd control.RateCommand
	var send bool
	l.state, cmd, send = l.ctrl.Update(l.state, res.Blob.CentroidX, res.Found)
	if send {
		cmd.Send(l.vehicle)
		l.telemetry.commandSent(cmd)
		if res.Found {
			util.Debug("follower: cx=%.1f dx=%d %s", res.Blob.CentroidX, l.ctrl.Center-int(res.Blob.CentroidX), cmd)
		}
	}

	if l.viz != nil {
		l.viz.Publish(res, frame.Seq, l.state)
	}
}

// pollEvent waits up to pollWait for one event and applies it.
func (l *Loop) pollEvent(ctx context.Context) bool {
	var ev control.Event
	if l.pollWait <= 0 {
		select {
		case ev = <-l.events:
		default:
			return false
		}
	} else {
		timer := time.NewTimer(l.pollWait)
		defer timer.Stop()
		select {
		case ev = <-l.events:
		case <-timer.C:
			return false
		case <-ctx.Done():
			return false
		}
	}

	l.telemetry.event(ev)
	util.Info("follower: event %s", ev)
	next, quit := control.Apply(l.state, ev, l.vehicle)
	if ev.Kind == control.DisableTracking {
		l.telemetry.commandSent(control.Neutral)
	}
	l.state = next
	return quit
}

// shutdown stops the vehicle and releases the link. Failures are logged only.
func (l *Loop) shutdown() {
	util.Info("follower: shutting down")
	control.Neutral.Send(l.vehicle)
	l.telemetry.commandSent(control.Neutral)
	l.vehicle.StreamOff()
	if err := l.vehicle.Close(); err != nil {
		util.Error("follower: close link: %v", err)
	}
	l.state.TrackingEnabled = false
	l.state.YawRate = 0
	l.telemetry.setState(l.state)
}
