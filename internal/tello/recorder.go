package tello

import (
	"sync"

	"github.com/ironsheep/tello-linetrace/internal/util"
)

// Recorder collects commands in memory instead of sending them.
//
// It implements the same methods as Client, so a follower can run against
// recorded frames without a vehicle.
type Recorder struct {
	commander

	// Echo logs every command at info level.
	Echo bool

	mu       sync.Mutex
	commands []string
	closed   bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.commander = commander{send: r.record}
	return r
}

func (r *Recorder) record(cmd string) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()

	if r.Echo {
		util.Info("dry-run: %s", cmd)
	}
}

// Commands returns a copy of everything recorded so far.
func (r *Recorder) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.commands))
	copy(out, r.commands)
	return out
}

// Reset discards recorded commands.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.commands = nil
	r.mu.Unlock()
}

// Closed reports whether Close was called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close marks the recorder closed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}
