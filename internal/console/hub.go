package console

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/detection"
	"github.com/ironsheep/tello-linetrace/internal/imaging"
	"github.com/ironsheep/tello-linetrace/internal/util"
)

// DefaultStreamFPS caps how often annotated frames are pushed to viewers.
const DefaultStreamFPS = 10

// streamQuality is the JPEG quality of the visualization stream.
const streamQuality = 75

// ErrNoFrame is returned when no frame has been processed yet.
var ErrNoFrame = errors.New("no frame processed yet")

// Hub keeps the latest processed frame and fans it out to /stream viewers.
// It implements follower.Visualizer.
type Hub struct {
	fps int

	mu     sync.Mutex
	latest *detection.Result
	seq    uint64
	state  control.State

	notify chan struct{}

	clientsMu sync.Mutex
	clients   map[*websocket.Conn]bool
}

// NewHub creates a hub that streams at most fps frames per second. A
// non-positive fps uses DefaultStreamFPS.
func NewHub(fps int) *Hub {
	if fps <= 0 {
		fps = DefaultStreamFPS
	}
	return &Hub{
		fps:     fps,
		notify:  make(chan struct{}, 1),
		clients: make(map[*websocket.Conn]bool),
	}
}

// Publish records res as the latest frame. It never blocks.
func (h *Hub) Publish(res *detection.Result, seq uint64, state control.State) {
	if res == nil {
		return
	}
	h.mu.Lock()
	h.latest = res
	h.seq = seq
	h.state = state
	h.mu.Unlock()

	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *Hub) current() (*detection.Result, uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return nil, 0, ErrNoFrame
	}
	return h.latest, h.seq, nil
}

// Render draws the latest frame with its mask and selected blob and returns
// it with the frame's sequence number.
func (h *Hub) Render() (*image.RGBA, uint64, error) {
	res, seq, err := h.current()
	if err != nil {
		return nil, 0, err
	}
	if res.ROI == nil {
		return nil, 0, ErrNoFrame
	}
	return imaging.Annotate(res.ROI, res.Mask, res.Annotation()), seq, nil
}

// SaveSnapshot writes the latest annotated frame to path as PNG and returns
// its sequence number.
func (h *Hub) SaveSnapshot(path string) (uint64, error) {
	img, seq, err := h.Render()
	if err != nil {
		return 0, err
	}
	if err := imaging.SaveSnapshot(path, img); err != nil {
		return 0, err
	}
	return seq, nil
}

// SampleColor reports the color of the latest region of interest at (x, y),
// in region coordinates.
func (h *Hub) SampleColor(x, y int) (*imaging.ColorSample, error) {
	res, _, err := h.current()
	if err != nil {
		return nil, err
	}
	if res.ROI == nil {
		return nil, ErrNoFrame
	}
	return imaging.SampleColor(res.ROI, x, y)
}

// Clients returns the number of connected viewers.
func (h *Hub) Clients() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

func (h *Hub) addClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	h.clients[conn] = true
	h.clientsMu.Unlock()
	util.Debug("stream viewer connected: %s", conn.RemoteAddr())
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
	h.clientsMu.Unlock()
	util.Debug("stream viewer disconnected: %s", conn.RemoteAddr())
}

// broadcast sends one JPEG to every viewer, dropping viewers that fail.
func (h *Hub) broadcast(frame []byte) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(time.Second))
		if err := c.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			util.Debug("stream write failed: %v", err)
			c.Close()
			delete(h.clients, c)
		}
	}
}

// Run encodes and broadcasts new frames until ctx is done. Frames arriving
// faster than the configured rate are coalesced into the latest one.
func (h *Hub) Run(ctx context.Context) {
	interval := time.Second / time.Duration(h.fps)
	var last time.Time

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-h.notify:
		}

		if wait := interval - time.Since(last); wait > 0 {
			select {
			case <-ctx.Done():
				h.closeAll()
				return
			case <-time.After(wait):
			}
		}
		last = time.Now()

		if h.Clients() == 0 {
			continue
		}
		img, _, err := h.Render()
		if err != nil {
			continue
		}
		data, err := imaging.EncodeJPEG(img, streamQuality)
		if err != nil {
			util.Error("stream encode: %v", err)
			continue
		}
		h.broadcast(data)
	}
}

func (h *Hub) closeAll() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}
