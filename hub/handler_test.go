package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newTestRouter(h *Hub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(h).RegisterRoutes(router)
	return router
}

func TestKeepalive_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := Keepalive(&buf); err != nil {
		t.Fatalf("Keepalive failed: %v", err)
	}

	frame := buf.String()
	if !strings.HasPrefix(frame, ": keepalive ") {
		t.Errorf("expected comment frame, got %q", frame)
	}
	if !strings.HasSuffix(frame, "\n\n") {
		t.Errorf("expected frame terminator, got %q", frame)
	}
}

// failingFlusher simulates a dead peer: every write errors.
type failingFlusher struct{}

func (failingFlusher) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }
func (failingFlusher) Flush()                    {}

// bufferFlusher collects frames for inspection. Safe for concurrent access.
type bufferFlusher struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *bufferFlusher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *bufferFlusher) Flush() {}

func (b *bufferFlusher) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestHandler_Stream_KeepaliveFailureRemovesConnection(t *testing.T) {
	cfg := Config{MaxConnectionsPerKey: 100, HeartbeatInterval: 10 * time.Millisecond, ClientBuffer: 4}
	h := New(cfg)
	handler := NewHandler(h)

	conn := NewConnection("acme", 4)
	if err := h.Registry().Register(conn); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// The first keepalive tick hits the dead writer and tears the stream down.
	handler.stream(context.Background(), failingFlusher{}, conn)

	if total := h.Stats().Total; total != 0 {
		t.Errorf("expected 0 connections after keepalive failure, got %d", total)
	}
	select {
	case <-conn.Done():
		// Expected
	default:
		t.Error("expected connection to be closed")
	}
}

func TestHandler_Stream_WritesEvents(t *testing.T) {
	cfg := Config{MaxConnectionsPerKey: 100, HeartbeatInterval: time.Hour, ClientBuffer: 4}
	h := New(cfg)
	handler := NewHandler(h)

	conn := NewConnection("acme", 4)
	if err := h.Registry().Register(conn); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := conn.Send([]byte(`{"type":"message"}`)); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	w := &bufferFlusher{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		handler.stream(ctx, w, conn)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(w.String(), "data:") {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	out := w.String()
	if !strings.Contains(out, `{"type":"message"}`) {
		t.Errorf("expected event frame in output, got %q", out)
	}

	// Teardown removed the connection.
	if total := h.Stats().Total; total != 0 {
		t.Errorf("expected 0 connections after disconnect, got %d", total)
	}
}

func TestHandler_Subscribe(t *testing.T) {
	h := newTestHub(t)
	server := httptest.NewServer(newTestRouter(h))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", server.URL+"/events?key=acme", http.NoBody)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("subscribe request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected Content-Type 'text/event-stream', got %q", ct)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected Cache-Control 'no-cache', got %q", cc)
	}

	// First frame is the connected event.
	buf := make([]byte, 4096)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("reading connected frame failed: %v", err)
	}
	first := string(buf[:n])
	if !strings.Contains(first, "event:connected") {
		t.Errorf("expected connected event, got %q", first)
	}
	if !strings.Contains(first, "connectionId") {
		t.Errorf("expected connection ID in connected frame, got %q", first)
	}

	// The connected frame is written after registration, so publishing now is
	// guaranteed to reach the subscriber.
	err = h.Publish(context.Background(), Event{
		Type: EventTypeMessage,
		Key:  "acme",
		Data: map[string]string{"body": "hello"},
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	n, err = resp.Body.Read(buf)
	if err != nil {
		t.Fatalf("reading event frame failed: %v", err)
	}
	frame := string(buf[:n])
	if !strings.Contains(frame, "hello") {
		t.Errorf("expected published payload in frame, got %q", frame)
	}
}

func TestHandler_Subscribe_CapacityExceeded(t *testing.T) {
	cfg := Config{MaxConnectionsPerKey: 1, HeartbeatInterval: 30 * time.Second, ClientBuffer: 4}
	h := New(cfg)
	if err := h.Registry().Register(NewConnection("busy", 4)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	server := httptest.NewServer(newTestRouter(h))
	defer server.Close()

	resp, err := http.Get(server.URL + "/events?key=busy")
	if err != nil {
		t.Fatalf("subscribe request failed: %v", err)
	}
	defer resp.Body.Close()

	// The stream carries a single error frame, then closes.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body failed: %v", err)
	}
	out := string(body)
	if !strings.Contains(out, "event:error") {
		t.Errorf("expected error event, got %q", out)
	}
	if !strings.Contains(out, "CAPACITY_EXCEEDED") {
		t.Errorf("expected CAPACITY_EXCEEDED code, got %q", out)
	}

	// The rejected subscriber was never admitted.
	if count := h.Stats().Keys["busy"]; count != 1 {
		t.Errorf("expected 1 connection under 'busy', got %d", count)
	}
}

func TestHandler_Publish_Accepted(t *testing.T) {
	h := newTestHub(t)
	router := newTestRouter(h)

	body := `{"type":"message","key":"acme","data":{"body":"hi"}}`
	req := httptest.NewRequest("POST", "/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "accepted") {
		t.Errorf("expected accepted status in body, got %q", rec.Body.String())
	}
}

func TestHandler_Publish_InvalidJSON(t *testing.T) {
	h := newTestHub(t)
	router := newTestRouter(h)

	req := httptest.NewRequest("POST", "/events", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_INPUT") {
		t.Errorf("expected INVALID_INPUT code, got %q", rec.Body.String())
	}
}

func TestHandler_Publish_MissingType(t *testing.T) {
	h := newTestHub(t)
	router := newTestRouter(h)

	req := httptest.NewRequest("POST", "/events", strings.NewReader(`{"key":"acme"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_Stats(t *testing.T) {
	h := newTestHub(t)
	for i := 0; i < 2; i++ {
		if err := h.Registry().Register(NewConnection("acme", 4)); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	router := newTestRouter(h)
	req := httptest.NewRequest("GET", "/events/stats", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var stats Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("stats response is not valid JSON: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("expected total 2, got %d", stats.Total)
	}
	if stats.Keys["acme"] != 2 {
		t.Errorf("expected 2 under 'acme', got %d", stats.Keys["acme"])
	}
}
