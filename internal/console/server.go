package console

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/follower"
	"github.com/ironsheep/tello-linetrace/internal/imaging"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeExecFailed     = -32000
)

// Submitter accepts operator events for the control loop.
type Submitter interface {
	Submit(ev control.Event) bool
}

// StatusSource provides the loop's telemetry.
type StatusSource interface {
	Snapshot() follower.Snapshot
}

// Server handles operator console requests.
type Server struct {
	loop      Submitter
	bands     *imaging.BandStore
	telemetry StatusSource
	hub       *Hub

	// Version is reported by initialize.
	Version string
}

// Request represents an incoming JSON-RPC request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a console server. hub may be nil, which disables the
// color/sample and snapshot methods.
func New(loop Submitter, bands *imaging.BandStore, telemetry StatusSource, hub *Hub) *Server {
	return &Server{
		loop:      loop,
		bands:     bands,
		telemetry: telemetry,
		hub:       hub,
		Version:   "dev",
	}
}

// Run serves requests from stdin and writes responses to stdout until stdin
// is closed.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.HandleMessage(line)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// HandleMessage decodes one raw request and dispatches it. Malformed input
// yields a parse error response with a null id.
func (s *Server) HandleMessage(msg []byte) *Response {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		log.Printf("Failed to parse request: %v", err)
		return s.errorResponse(nil, codeParseError, "Parse error", err.Error())
	}
	return s.HandleRequest(&req)
}

// HandleRequest routes a request to its handler. Requests without an id are
// notifications and get no response.
func (s *Server) HandleRequest(req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return s.result(req.ID, map[string]interface{}{})
	case "methods/list":
		return s.result(req.ID, map[string]interface{}{"methods": MethodDefinitions()})
	}

	h, ok := s.handlers()[req.Method]
	if !ok {
		return s.errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "")
	}

	result, err := h(req.Params)
	if req.ID == nil {
		if err != nil {
			log.Printf("Notification %s failed: %v", req.Method, err)
		}
		return nil
	}
	if err != nil {
		if isParamError(err) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeExecFailed, "Method execution failed", err.Error())
	}
	return s.result(req.ID, result)
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *Request) *Response {
	return s.result(req.ID, map[string]interface{}{
		"serverInfo": map[string]interface{}{
			"name":    "tello-linetrace",
			"version": s.Version,
		},
		"capabilities": map[string]interface{}{
			"stream":   s.hub != nil,
			"snapshot": s.hub != nil,
		},
	})
}

func (s *Server) result(id interface{}, v interface{}) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: v}
}

// errorResponse creates a JSON-RPC error response.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *Response {
	resp := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}
