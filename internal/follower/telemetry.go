package follower

import (
	"expvar"
	"sync"
	"time"

	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/detection"
)

// Snapshot is a point-in-time copy of the loop's counters and last outputs.
type Snapshot struct {
	Backend string        `json:"backend"`
	Started time.Time     `json:"started"`
	State   control.State `json:"state"`

	Cycles        uint64 `json:"cycles"`
	Frames        uint64 `json:"frames"`
	NoFrames      uint64 `json:"no_frames"`
	InvalidFrames uint64 `json:"invalid_frames"`
	DetectErrors  uint64 `json:"detect_errors"`
	Detections    uint64 `json:"detections"`
	Misses        uint64 `json:"misses"`
	Commands      uint64 `json:"commands"`
	KeepAlives    uint64 `json:"keep_alives"`
	Events        uint64 `json:"events"`

	LastFrameSeq uint64              `json:"last_frame_seq"`
	LastBlob     *detection.Blob     `json:"last_blob,omitempty"`
	LastCommand  control.RateCommand `json:"last_command"`
	LastEvent    string              `json:"last_event,omitempty"`
}

// Telemetry collects loop statistics. Writers are the loop goroutine; any
// goroutine may read a Snapshot.
type Telemetry struct {
	mu   sync.RWMutex
	snap Snapshot

	vars *expvar.Map
}

// NewTelemetry creates telemetry for a loop using the named detector.
func NewTelemetry(backend string) *Telemetry {
	t := &Telemetry{
		snap: Snapshot{Backend: backend, Started: time.Now()},
		vars: new(expvar.Map).Init(),
	}
	for _, k := range []string{"cx", "yaw", "forward", "area"} {
		t.vars.Set(k, new(expvar.Float))
	}
	t.vars.Set("tracking", new(expvar.Int))
	t.vars.Set("snapshot", expvar.Func(func() any { return t.Snapshot() }))
	return t
}

// Publish registers the telemetry under name in the process-wide expvar
// registry, served at /debug/vars. Publishing the same name twice keeps the
// first registration.
func (t *Telemetry) Publish(name string) {
	if expvar.Get(name) != nil {
		return
	}
	expvar.Publish(name, t.vars)
}

// Vars returns the expvar map backing the telemetry.
func (t *Telemetry) Vars() *expvar.Map {
	return t.vars
}

// Snapshot returns a copy of the current values.
func (t *Telemetry) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.snap
	if s.LastBlob != nil {
		b := *s.LastBlob
		s.LastBlob = &b
	}
	return s
}

func (t *Telemetry) update(fn func(s *Snapshot)) {
	t.mu.Lock()
	fn(&t.snap)
	t.mu.Unlock()
}

func (t *Telemetry) cycle()         { t.update(func(s *Snapshot) { s.Cycles++ }) }
func (t *Telemetry) noFrame()       { t.update(func(s *Snapshot) { s.NoFrames++ }) }
func (t *Telemetry) invalidFrame()  { t.update(func(s *Snapshot) { s.InvalidFrames++ }) }
func (t *Telemetry) detectError()   { t.update(func(s *Snapshot) { s.DetectErrors++ }) }
func (t *Telemetry) keepAliveSent() { t.update(func(s *Snapshot) { s.KeepAlives++ }) }

func (t *Telemetry) event(ev control.Event) {
	t.update(func(s *Snapshot) {
		s.Events++
		s.LastEvent = ev.String()
	})
}

func (t *Telemetry) detected(seq uint64, res *detection.Result) {
	t.update(func(s *Snapshot) {
		s.Frames++
		s.LastFrameSeq = seq
		if res.Found {
			s.Detections++
			b := res.Blob
			s.LastBlob = &b
		} else {
			s.Misses++
			s.LastBlob = nil
		}
	})
	if res.Found {
		setFloat(t.vars, "cx", res.Blob.CentroidX)
		setFloat(t.vars, "area", float64(res.Blob.Area))
	}
}

func (t *Telemetry) commandSent(cmd control.RateCommand) {
	t.update(func(s *Snapshot) {
		s.Commands++
		s.LastCommand = cmd
	})
	setFloat(t.vars, "yaw", float64(cmd.Yaw))
	setFloat(t.vars, "forward", float64(cmd.Forward))
}

func (t *Telemetry) setState(st control.State) {
	t.update(func(s *Snapshot) { s.State = st })
	if v, ok := t.vars.Get("tracking").(*expvar.Int); ok {
		if st.TrackingEnabled {
			v.Set(1)
		} else {
			v.Set(0)
		}
	}
}

// setFloat updates an expvar.Float stored inside a map.
func setFloat(m *expvar.Map, key string, value float64) {
	if v, ok := m.Get(key).(*expvar.Float); ok {
		v.Set(value)
		return
	}
	f := new(expvar.Float)
	f.Set(value)
	m.Set(key, f)
}
