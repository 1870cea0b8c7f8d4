package console

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/ironsheep/tello-linetrace/internal/control"
	"github.com/ironsheep/tello-linetrace/internal/follower"
	"github.com/ironsheep/tello-linetrace/internal/imaging"
)

// fakeLoop records submitted events.
type fakeLoop struct {
	mu     sync.Mutex
	events []control.Event
	full   bool
}

func (f *fakeLoop) Submit(ev control.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.events = append(f.events, ev)
	return true
}

func (f *fakeLoop) Events() []control.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]control.Event(nil), f.events...)
}

type fakeStatus struct{ snap follower.Snapshot }

func (f fakeStatus) Snapshot() follower.Snapshot { return f.snap }

func newTestServer(hub *Hub) (*Server, *fakeLoop) {
	loop := &fakeLoop{}
	status := fakeStatus{snap: follower.Snapshot{Backend: "native", Cycles: 7}}
	return New(loop, imaging.NewBandStore(imaging.DefaultBand()), status, hub), loop
}

func TestNew(t *testing.T) {
	s, _ := newTestServer(nil)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.bands == nil {
		t.Fatal("New() did not keep the band store")
	}
}

func TestRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"methods/list"}`,
			"test-1",
			"methods/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestResponse_ErrorOmitsResult(t *testing.T) {
	s, _ := newTestServer(nil)
	resp := s.errorResponse(1, codeMethodNotFound, "Method not found: x", "")

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if strings.Contains(string(data), `"result"`) {
		t.Errorf("error response should not carry result: %s", data)
	}
	if strings.Contains(string(data), `"data"`) {
		t.Errorf("empty data should be omitted: %s", data)
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s, _ := newTestServer(NewHub(0))
	s.Version = "1.2.3"

	resp := s.HandleRequest(&Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	result := resp.Result.(map[string]interface{})
	info := result["serverInfo"].(map[string]interface{})
	if info["version"] != "1.2.3" {
		t.Errorf("version = %v, want 1.2.3", info["version"])
	}
	caps := result["capabilities"].(map[string]interface{})
	if caps["stream"] != true {
		t.Errorf("stream capability = %v, want true", caps["stream"])
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s, _ := newTestServer(nil)
	resp := s.HandleRequest(&Request{JSONRPC: "2.0", ID: "p", Method: "ping"})
	if resp.Error != nil || resp.ID != "p" || resp.JSONRPC != "2.0" {
		t.Errorf("unexpected ping response: %+v", resp)
	}
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	s, _ := newTestServer(nil)
	resp := s.HandleRequest(&Request{JSONRPC: "2.0", ID: 1, Method: "fly/backflip"})
	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != codeMethodNotFound {
		t.Errorf("code = %d, want %d", resp.Error.Code, codeMethodNotFound)
	}
}

func TestHandleRequest_NotificationGetsNoResponse(t *testing.T) {
	s, loop := newTestServer(nil)
	resp := s.HandleRequest(&Request{JSONRPC: "2.0", Method: "tracking/enable"})
	if resp != nil {
		t.Errorf("notification returned %+v", resp)
	}
	if got := loop.Events(); len(got) != 1 || got[0].Kind != control.EnableTracking {
		t.Errorf("events = %v, want [enable]", got)
	}
}

func TestHandleMessage_ParseError(t *testing.T) {
	s, _ := newTestServer(nil)
	resp := s.HandleMessage([]byte(`{not json`))
	if resp == nil || resp.Error == nil {
		t.Fatal("expected parse error response")
	}
	if resp.Error.Code != codeParseError {
		t.Errorf("code = %d, want %d", resp.Error.Code, codeParseError)
	}
	if resp.ID != nil {
		t.Errorf("id = %v, want nil", resp.ID)
	}
}

func TestServe(t *testing.T) {
	s, loop := newTestServer(nil)
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		``,
		`{"jsonrpc":"2.0","method":"tracking/enable"}`,
		`{"jsonrpc":"2.0","id":2,"method":"speed/adjust","params":{"delta":-10}}`,
		`garbage`,
	}, "\n")

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	var responses []Response
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r Response
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("bad response line %q: %v", sc.Text(), err)
		}
		responses = append(responses, r)
	}

	// ping, speed/adjust and the parse error; the notification is silent.
	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3", len(responses))
	}
	if responses[0].ID != float64(1) || responses[1].ID != float64(2) {
		t.Errorf("ids = %v, %v", responses[0].ID, responses[1].ID)
	}
	if responses[2].Error == nil || responses[2].Error.Code != codeParseError {
		t.Errorf("last response = %+v, want parse error", responses[2])
	}

	events := loop.Events()
	if len(events) != 2 {
		t.Fatalf("events = %v, want 2", events)
	}
	if events[1].Kind != control.AdjustSpeed || events[1].Delta != -10 {
		t.Errorf("events[1] = %v, want adjust_speed(-10)", events[1])
	}
}
