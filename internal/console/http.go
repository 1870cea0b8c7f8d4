package console

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ironsheep/tello-linetrace/internal/util"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Handler returns the console's HTTP routes:
//
//	GET /ws          JSON-RPC requests as websocket text messages
//	GET /stream      annotated JPEG frames as websocket binary messages
//	GET /debug/vars  expvar telemetry
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	if s.hub != nil {
		mux.HandleFunc("/stream", s.handleStream)
	}
	mux.Handle("/debug/vars", expvar.Handler())
	return mux
}

// handleWS upgrades to a websocket and answers one response per request
// message until the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		util.Error("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	util.Debug("console session opened: %s", conn.RemoteAddr())

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			util.Debug("console session closed: %v", err)
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		resp := s.HandleMessage(msg)
		if resp == nil {
			continue
		}
		data, err := json.Marshal(resp)
		if err != nil {
			util.Error("failed to encode response: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			util.Debug("console write failed: %v", err)
			return
		}
	}
}

// handleStream registers a viewer with the hub. The read loop only detects
// disconnects; viewers never send anything meaningful.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		util.Error("websocket upgrade: %v", err)
		return
	}
	s.hub.addClient(conn)

	go func(c *websocket.Conn) {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				s.hub.removeClient(c)
				return
			}
		}
	}(conn)
}

// HTTPServer serves the console routes on a TCP address.
type HTTPServer struct {
	Addr string

	srv      *http.Server
	mu       sync.Mutex
	listener net.Listener
}

// NewHTTPServer creates an HTTP front end for s.
func NewHTTPServer(addr string, s *Server) *HTTPServer {
	return &HTTPServer{
		Addr: addr,
		srv:  &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second},
	}
}

// ListenAndServe serves until ctx is done, then shuts the server down.
func (h *HTTPServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", h.Addr)
	if err != nil {
		return fmt.Errorf("console listen %s: %w", h.Addr, err)
	}
	h.mu.Lock()
	h.listener = ln
	h.mu.Unlock()
	util.Info("console listening on %s", ln.Addr())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.srv.Shutdown(shutdownCtx)
	}()

	if err := h.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ListenAddr returns the bound address once ListenAndServe is running.
func (h *HTTPServer) ListenAddr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}
