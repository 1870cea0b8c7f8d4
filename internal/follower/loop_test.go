package follower

import (
	"context"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/detection"
	"github.com/ironsheep/tello-linetrace/internal/imaging"
	"github.com/ironsheep/tello-linetrace/internal/tello"
)

var lineBand = imaging.ThresholdBand{HMin: 0, HMax: 10, SMin: 100, SMax: 255, VMin: 100, VMax: 255}

// createStripeFrame returns a black 480x360 frame with a red stripe over
// columns [x0, x1) in the region of interest. x0 == x1 gives no line.
func createStripeFrame(x0, x1 int) *imaging.Frame {
	img := image.NewRGBA(image.Rect(0, 0, 480, 360))
	for y := 0; y < 360; y++ {
		for x := 0; x < 480; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= x0 && x < x1 && y >= 250 {
				c = color.RGBA{255, 0, 0, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return &imaging.Frame{Image: img}
}

// frameQueue serves queued frames, then nil.
type frameQueue struct {
	mu     sync.Mutex
	frames []*imaging.Frame
}

func (q *frameQueue) Read() *imaging.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.frames) == 0 {
		return nil
	}
	f := q.frames[0]
	q.frames = q.frames[1:]
	return f
}

func (q *frameQueue) push(f *imaging.Frame) {
	q.mu.Lock()
	q.frames = append(q.frames, f)
	q.mu.Unlock()
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recordingViz remembers published results.
type recordingViz struct {
	results []*detection.Result
	states  []control.State
}

func (v *recordingViz) Publish(res *detection.Result, _ uint64, st control.State) {
	v.results = append(v.results, res)
	v.states = append(v.states, st)
}

type testRig struct {
	loop   *Loop
	frames *frameQueue
	rec    *tello.Recorder
	clock  *fakeClock
	viz    *recordingViz
}

func newTestRig(t *testing.T, tracking bool) *testRig {
	t.Helper()
	rig := &testRig{
		frames: &frameQueue{},
		rec:    tello.NewRecorder(),
		clock:  &fakeClock{t: time.Unix(1000, 0)},
		viz:    &recordingViz{},
	}
	opts := DefaultOptions()
	opts.PollWait = 0
	st := control.DefaultState()
	st.TrackingEnabled = tracking
	opts.Initial = &st

	l, err := New(rig.frames, detection.NewNativeDetector(nil), imaging.NewBandStore(lineBand), rig.rec, rig.viz, opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.now = rig.clock.Now
	rig.loop = l
	return rig
}

func (r *testRig) rcCommands() []string {
	var out []string
	for _, c := range r.rec.Commands() {
		if strings.HasPrefix(c, "rc ") {
			out = append(out, c)
		}
	}
	return out
}

func TestStep_TrackingSendsYaw(t *testing.T) {
	rig := newTestRig(t, true)
	// Stripe centroid 309.5 -> mx 309 -> dx -69 -> yaw 69.
	rig.frames.push(createStripeFrame(300, 320))

	if quit := rig.loop.Step(context.Background()); quit {
		t.Fatal("unexpected quit")
	}

	got := rig.rcCommands()
	if len(got) != 1 || got[0] != "rc 0 40 0 69" {
		t.Errorf("commands = %q, want [rc 0 40 0 69]", got)
	}
	if len(rig.viz.results) != 1 || !rig.viz.results[0].Found {
		t.Error("visualizer did not receive the detection")
	}
	if s := rig.loop.Telemetry().Snapshot(); s.State.YawRate != 69 || s.Detections != 1 {
		t.Errorf("telemetry: %+v", s)
	}
}

func TestStep_DeadBand(t *testing.T) {
	rig := newTestRig(t, true)
	rig.frames.push(createStripeFrame(230, 250)) // centroid 239.5

	rig.loop.Step(context.Background())
	if got := rig.rcCommands(); len(got) != 1 || got[0] != "rc 0 40 0 0" {
		t.Errorf("commands = %q", got)
	}
}

func TestStep_NoLineSendsZeroYaw(t *testing.T) {
	rig := newTestRig(t, true)
	rig.frames.push(createStripeFrame(0, 40)) // far left: saturated yaw
	rig.frames.push(createStripeFrame(0, 0))  // line lost

	rig.loop.Step(context.Background())
	rig.loop.Step(context.Background())

	want := []string{"rc 0 40 0 -100", "rc 0 40 0 0"}
	if got := rig.rcCommands(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %q, want %q", got, want)
	}
	s := rig.loop.Telemetry().Snapshot()
	if s.Misses != 1 || s.LastBlob != nil {
		t.Errorf("telemetry after miss: %+v", s)
	}
}

func TestStep_TrackingOffSendsNothing(t *testing.T) {
	rig := newTestRig(t, false)
	rig.frames.push(createStripeFrame(300, 320))

	rig.loop.Step(context.Background())
	if got := rig.rcCommands(); len(got) != 0 {
		t.Errorf("commands = %q, want none", got)
	}
	if len(rig.viz.results) != 1 {
		t.Error("visualizer should still receive frames while tracking is off")
	}
}

func TestStep_InvalidFrameSkipsDetection(t *testing.T) {
	rig := newTestRig(t, true)
	rig.frames.push(&imaging.Frame{})

	rig.loop.Step(context.Background())
	rig.loop.Step(context.Background()) // no frame at all

	if got := rig.rcCommands(); len(got) != 0 {
		t.Errorf("commands = %q, want none", got)
	}
	s := rig.loop.Telemetry().Snapshot()
	if s.InvalidFrames != 1 || s.NoFrames != 1 || s.Cycles != 2 {
		t.Errorf("telemetry: %+v", s)
	}
}

func TestStep_KeepAliveWithoutFrames(t *testing.T) {
	rig := newTestRig(t, false)

	for i := 0; i < 10; i++ {
		rig.loop.Step(context.Background())
		rig.clock.Advance(time.Second)
	}

	n := 0
	for _, c := range rig.rec.Commands() {
		if c == "command" {
			n++
		}
	}
	// Steps at t=0..9 s: pings at 4 s and 8 s.
	if n != 2 {
		t.Errorf("keep-alives = %d, want 2 (commands %q)", n, rig.rec.Commands())
	}
	if s := rig.loop.Telemetry().Snapshot(); s.KeepAlives != 2 {
		t.Errorf("KeepAlives = %d", s.KeepAlives)
	}
}

func TestStep_DisableSendsOneNeutral(t *testing.T) {
	rig := newTestRig(t, true)
	rig.frames.push(createStripeFrame(300, 320))
	rig.loop.Submit(control.Event{Kind: control.DisableTracking})

	rig.loop.Step(context.Background())
	rig.frames.push(createStripeFrame(300, 320))
	rig.loop.Step(context.Background())

	want := []string{"rc 0 40 0 69", "rc 0 0 0 0"}
	if got := rig.rcCommands(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %q, want %q", got, want)
	}
}

func TestStep_SpeedChangeAppliesToNextCommand(t *testing.T) {
	rig := newTestRig(t, true)
	rig.loop.Submit(control.Event{Kind: control.AdjustSpeed, Delta: 10})
	rig.loop.Step(context.Background())

	rig.frames.push(createStripeFrame(230, 250))
	rig.loop.Step(context.Background())

	if got := rig.rcCommands(); len(got) != 1 || got[0] != "rc 0 50 0 0" {
		t.Errorf("commands = %q", got)
	}
}

func TestStep_MoveEvent(t *testing.T) {
	rig := newTestRig(t, false)
	ev, _ := control.ParseKey("q")
	rig.loop.Submit(ev)
	rig.loop.Step(context.Background())

	got := rig.rec.Commands()
	if len(got) != 1 || got[0] != "ccw 20" {
		t.Errorf("commands = %q, want [ccw 20]", got)
	}
}

func TestStep_BandChangesTakeEffect(t *testing.T) {
	rig := newTestRig(t, true)
	rig.frames.push(createStripeFrame(300, 320))
	if err := rig.loop.bands.Set("h_min", 100); err != nil {
		t.Fatal(err)
	}

	rig.loop.Step(context.Background())
	if got := rig.rcCommands(); len(got) != 1 || got[0] != "rc 0 40 0 0" {
		t.Errorf("red line outside the band should not steer: %q", got)
	}
}

func TestSubmit_QueueFull(t *testing.T) {
	rig := newTestRig(t, false)
	for i := 0; i < DefaultEventQueue; i++ {
		if !rig.loop.Submit(control.Event{Kind: control.EnableTracking}) {
			t.Fatalf("Submit %d rejected", i)
		}
	}
	if rig.loop.Submit(control.Event{Kind: control.EnableTracking}) {
		t.Error("Submit on a full queue should return false")
	}
}

func runLoop(t *testing.T, l *Loop, ctx context.Context) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestRun_QuitShutsDown(t *testing.T) {
	rig := newTestRig(t, true)
	rig.loop.Submit(control.Event{Kind: control.Quit})

	runLoop(t, rig.loop, context.Background())

	want := []string{"command", "streamon", "rc 0 0 0 0", "streamoff"}
	if got := rig.rec.Commands(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("commands = %q, want %q", got, want)
	}
	if !rig.rec.Closed() {
		t.Error("link not closed")
	}
	if s := rig.loop.Telemetry().Snapshot(); s.State.TrackingEnabled {
		t.Error("tracking still enabled after shutdown")
	}
}

func TestRun_CancelShutsDown(t *testing.T) {
	rig := newTestRig(t, false)
	rig.loop.pollWait = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	runLoop(t, rig.loop, ctx)

	got := rig.rec.Commands()
	if len(got) < 4 {
		t.Fatalf("commands = %q", got)
	}
	tail := strings.Join(got[len(got)-2:], "|")
	if tail != "rc 0 0 0 0|streamoff" {
		t.Errorf("shutdown sequence = %q", got[len(got)-2:])
	}
	if !rig.rec.Closed() {
		t.Error("link not closed")
	}
	if s := rig.loop.Telemetry().Snapshot(); s.Cycles == 0 {
		t.Error("loop never cycled")
	}
}

func TestNew_Validation(t *testing.T) {
	src := &frameQueue{}
	det := detection.NewNativeDetector(nil)
	bands := imaging.NewBandStore(lineBand)
	rec := tello.NewRecorder()

	if _, err := New(nil, det, bands, rec, nil, DefaultOptions()); err == nil {
		t.Error("missing source should fail")
	}

	opts := DefaultOptions()
	opts.KeepAlive = 6 * time.Second
	if _, err := New(src, det, bands, rec, nil, opts); err == nil {
		t.Error("keep-alive above 5 s should fail")
	}

	opts = DefaultOptions()
	opts.Controller.MaxYaw = 0
	if _, err := New(src, det, bands, rec, nil, opts); err == nil {
		t.Error("invalid controller should fail")
	}

	opts = DefaultOptions()
	opts.PollWait = -time.Millisecond
	if _, err := New(src, det, bands, rec, nil, opts); err == nil {
		t.Error("negative poll wait should fail")
	}

	l, err := New(src, det, bands, rec, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s := l.Telemetry().Snapshot(); s.State != control.DefaultState() || s.Backend != "native" {
		t.Errorf("initial telemetry: %+v", s)
	}
}

func TestTelemetry_Publish(t *testing.T) {
	tel := NewTelemetry("native")
	tel.Publish("linetrace_test")
	tel.Publish("linetrace_test") // second call is a no-op

	tel.commandSent(control.RateCommand{Forward: 40, Yaw: -30})
	if v := tel.Vars().Get("yaw").String(); v != "-30" {
		t.Errorf("yaw var = %s", v)
	}
	if s := tel.Snapshot(); s.Commands != 1 || s.LastCommand.Yaw != -30 {
		t.Errorf("snapshot: %+v", s)
	}
}
