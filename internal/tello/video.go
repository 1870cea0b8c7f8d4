package tello

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ironsheep/tello-linetrace/internal/imaging"
	"github.com/ironsheep/tello-linetrace/internal/util"
)

// Video defaults. The vehicle streams 960x720 H.264.
const (
	DefaultVideoURL    = "udp://0.0.0.0:11111"
	DefaultVideoWidth  = 960
	DefaultVideoHeight = 720
)

// VideoStream decodes the vehicle's video with ffmpeg and exposes the newest
// frame through a single-slot mailbox.
//
// The decoder writes raw rgb24 frames to a pipe; a reader goroutine copies
// each complete frame into the slot, replacing any frame the consumer has
// not picked up yet. Read never blocks.
type VideoStream struct {
	URL    string
	Width  int
	Height int

	mu      sync.Mutex
	latest  *imaging.Frame
	seq     uint64
	dropped uint64
	err     error

	done chan struct{}
	now  func() time.Time
}

// NewVideoStream creates a stream for url with the given decoded size.
func NewVideoStream(url string, width, height int) *VideoStream {
	if url == "" {
		url = DefaultVideoURL
	}
	if width <= 0 || height <= 0 {
		width, height = DefaultVideoWidth, DefaultVideoHeight
	}
	return &VideoStream{
		URL:    url,
		Width:  width,
		Height: height,
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// Start launches ffmpeg and the frame reader. Both stop when ctx is
// cancelled or the stream ends; Done is closed afterwards and Err reports why.
func (v *VideoStream) Start(ctx context.Context) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found: %w", err)
	}

	r, w := io.Pipe()

	cmd := ffmpeg.Input(v.URL, ffmpeg.KwArgs{
		"fflags": "nobuffer",
		"flags":  "low_delay",
	}).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgb24",
			"s":       fmt.Sprintf("%dx%d", v.Width, v.Height),
		}).
		WithOutput(w).
		WithErrorOutput(os.Stderr)
	cmd.Context = ctx

	go func() {
		err := cmd.Run()
		if err != nil && ctx.Err() == nil {
			util.Error("video: ffmpeg exited: %v", err)
		}
		w.CloseWithError(err)
	}()

	go func() {
		defer close(v.done)
		err := v.consume(r)
		v.mu.Lock()
		v.err = err
		v.mu.Unlock()
		_ = r.Close()
	}()

	util.Info("video: decoding %s at %dx%d", v.URL, v.Width, v.Height)
	return nil
}

// consume reads consecutive raw frames from r until it fails.
func (v *VideoStream) consume(r io.Reader) error {
	buf := make([]byte, v.Width*v.Height*3)
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("video read failed: %w", err)
		}

		v.mu.Lock()
		v.seq++
		f, err := imaging.FrameFromRGB24(buf, v.Width, v.Height, v.seq, v.now())
		if err == nil {
			if v.latest != nil {
				v.dropped++
			}
			v.latest = f
		}
		v.mu.Unlock()
	}
}

// Read takes the newest frame out of the slot. It returns nil when no frame
// arrived since the previous call.
func (v *VideoStream) Read() *imaging.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	f := v.latest
	v.latest = nil
	return f
}

// Dropped returns the number of frames overwritten before they were read.
func (v *VideoStream) Dropped() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dropped
}

// Done is closed once the reader has stopped.
func (v *VideoStream) Done() <-chan struct{} {
	return v.done
}

// Err returns the error that stopped the reader, if any.
func (v *VideoStream) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}
