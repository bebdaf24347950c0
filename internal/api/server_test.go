package api

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sanverite/echo-client/internal/core"
	"github.com/sanverite/echo-client/internal/message"
)

type fixedSource struct{ snap core.Snapshot }

func (f fixedSource) Status() core.Snapshot { return f.snap }

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, snap core.Snapshot) *httptest.Server {
	t.Helper()
	prev := TimeNow
	TimeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { TimeNow = prev })

	srv := NewServer(fixedSource{snap}, ServerOptions{Logger: log.New(io.Discard, "", 0)})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func connectedSnapshot() core.Snapshot {
	buf := message.Message{Text: "queued", Echo: true}
	return core.Snapshot{
		ID:             "3f0c2a8e-0000-4000-8000-000000000001",
		State:          core.StateListening,
		Addr:           "127.0.0.1:9000",
		TransportState: "open",
		Receiving:      true,
		ConnectedAt:    fixedNow.Add(-90 * time.Second),
		Buffer:         &buf,
		Inbox: []message.Message{
			{Text: "abc", Echo: true, Rvrs: true},
			{Text: "quiet", Echo: false},
		},
		Flags: core.DefaultFlags(),
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, core.Snapshot{})
	var body map[string]string
	getJSON(t, ts.URL+"/v1/healthz", http.StatusOK, &body)
	if body["status"] != "ok" || body["timestamp"] != "2026-03-01T12:00:00Z" {
		t.Errorf("healthz = %v", body)
	}
}

func TestStatus(t *testing.T) {
	ts := newTestServer(t, connectedSnapshot())
	var got StatusResponse
	getJSON(t, ts.URL+"/v1/status", http.StatusOK, &got)

	if got.State != "listening" || got.Server != "127.0.0.1:9000" || got.Transport != "open" {
		t.Errorf("status = %+v", got)
	}
	if got.UptimeSec != 90 || got.ConnectedAt != "2026-03-01T11:58:30Z" {
		t.Errorf("uptime = %d connected_at = %q", got.UptimeSec, got.ConnectedAt)
	}
	if got.Buffer == nil || got.Buffer.Text != "queued" {
		t.Errorf("buffer = %+v", got.Buffer)
	}
	if got.InboxCount != 2 {
		t.Errorf("inbox_count = %d", got.InboxCount)
	}
	if !got.Flags[core.FlagInstantRead] || got.Flags[core.FlagRawRead] || len(got.Flags) != len(core.FlagNames()) {
		t.Errorf("flags = %v", got.Flags)
	}
}

func TestStatus_Idle(t *testing.T) {
	ts := newTestServer(t, core.Snapshot{State: core.StateIdle, Flags: core.DefaultFlags()})
	var got StatusResponse
	getJSON(t, ts.URL+"/v1/status", http.StatusOK, &got)
	if got.ConnectedAt != "" || got.UptimeSec != 0 || got.Buffer != nil {
		t.Errorf("idle status = %+v", got)
	}
}

func TestInbox(t *testing.T) {
	ts := newTestServer(t, connectedSnapshot())

	var fancy InboxResponse
	getJSON(t, ts.URL+"/v1/inbox", http.StatusOK, &fancy)
	if fancy.Mode != "fancy" || fancy.Count != 2 {
		t.Fatalf("inbox = %+v", fancy)
	}
	if fancy.Entries[0].Index != 1 || fancy.Entries[0].Rendered != "cba" {
		t.Errorf("entry 1 = %+v", fancy.Entries[0])
	}
	if fancy.Entries[1].Rendered != "" {
		t.Errorf("echo-off entry rendered %q", fancy.Entries[1].Rendered)
	}

	var raw InboxResponse
	getJSON(t, ts.URL+"/v1/inbox?mode=raw", http.StatusOK, &raw)
	if raw.Entries[0].Rendered != message.Render(message.Message{Text: "abc", Echo: true, Rvrs: true}, message.Raw) {
		t.Errorf("raw entry = %q", raw.Entries[0].Rendered)
	}

	var apiErr APIError
	getJSON(t, ts.URL+"/v1/inbox?mode=loud", http.StatusBadRequest, &apiErr)
	if apiErr.Error == "" {
		t.Error("empty error message")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, core.Snapshot{})
	for _, path := range []string{"/v1/healthz", "/v1/status", "/v1/inbox"} {
		resp, err := http.Post(ts.URL+path, "application/json", nil)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("POST %s = %d, want 405", path, resp.StatusCode)
		}
	}
}

func TestStatus_LiveSession(t *testing.T) {
	sess := core.NewSession(core.Options{Host: "127.0.0.1", Port: 9, Output: io.Discard, Logger: log.New(io.Discard, "", 0)})
	t.Cleanup(func() { sess.Shutdown() })

	srv := NewServer(sess, ServerOptions{Logger: log.New(io.Discard, "", 0)})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	var got StatusResponse
	getJSON(t, ts.URL+"/v1/status", http.StatusOK, &got)
	if got.SessionID != sess.ID() || got.State != "idle" || got.Transport != "unopened" {
		t.Errorf("status = %+v", got)
	}
}

func postJSON(t *testing.T, url, body string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func startEcho(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()
				c.Write([]byte("welcome"))
				io.Copy(c, c)
			}()
		}
	}()
	return ln.Addr().String()
}

func TestProbe(t *testing.T) {
	addr := startEcho(t)
	ts := newTestServer(t, core.Snapshot{Addr: addr})

	var got ProbeView
	postJSON(t, ts.URL+"/v1/probe", "", http.StatusOK, &got)
	if got.Server != addr || !got.Reachable || !got.GreetingOK || !got.EchoOK || got.Greeting != "welcome" {
		t.Errorf("probe = %+v", got)
	}
	if got.Error != "" || got.LastChecked == "" || len(got.LatenciesMs) != 3 {
		t.Errorf("probe details = %+v", got)
	}
}

func TestProbe_ExplicitServerFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	dead := ln.Addr().String()
	ln.Close()

	ts := newTestServer(t, core.Snapshot{Addr: "127.0.0.1:1"})
	var got ProbeView
	postJSON(t, ts.URL+"/v1/probe", `{"server":"`+dead+`","timeout_ms":500}`, http.StatusBadGateway, &got)
	if got.Server != dead || got.Reachable || got.Error == "" {
		t.Errorf("probe = %+v", got)
	}
}

func TestProbe_BadRequest(t *testing.T) {
	ts := newTestServer(t, core.Snapshot{})
	for _, body := range []string{`{"server":`, `{"timeout_ms":-1}`, `{"mtu":1400}`} {
		var apiErr APIError
		postJSON(t, ts.URL+"/v1/probe", body, http.StatusBadRequest, &apiErr)
		if apiErr.Error == "" {
			t.Errorf("body %s: empty error", body)
		}
	}

	resp, err := http.Get(ts.URL + "/v1/probe")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/probe = %d, want 405", resp.StatusCode)
	}
}
