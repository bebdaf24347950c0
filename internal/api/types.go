package api

import "time"

// Public JSON types returned by the API. These are decoupled from the core
// types so core can change without breaking clients.

// StatusResponse is the top-level payload for GET /v1/status.
type StatusResponse struct {
	SessionID   string          `json:"session_id"`
	State       string          `json:"state"`
	Server      string          `json:"server"`
	Transport   string          `json:"transport"`
	Receiving   bool            `json:"receiving"`
	ConnectedAt string          `json:"connected_at"`
	UptimeSec   int64           `json:"uptime_sec"`
	Buffer      *MessageView    `json:"buffer"`
	InboxCount  int             `json:"inbox_count"`
	Flags       map[string]bool `json:"flags"`
	Killed      bool            `json:"killed"`
	GeneratedAt string          `json:"generated_at"`
}

// MessageView is one message with its modifiers.
type MessageView struct {
	Text string `json:"text"`
	Echo bool   `json:"echo"`
	Caps bool   `json:"caps"`
	Rvrs bool   `json:"rvrs"`
}

// InboxEntry is a received message as listed by GET /v1/inbox.
type InboxEntry struct {
	Index    int         `json:"index"` // 1-based, as typed in the shell
	Message  MessageView `json:"message"`
	Rendered string      `json:"rendered"`
}

// InboxResponse is the payload for GET /v1/inbox.
type InboxResponse struct {
	Mode        string       `json:"mode"`
	Count       int          `json:"count"`
	Entries     []InboxEntry `json:"entries"`
	GeneratedAt string       `json:"generated_at"`
}

// ProbeRequest is the optional body for POST /v1/probe.
type ProbeRequest struct {
	Server    string `json:"server"`     // "host:port"; defaults to the session's server
	TimeoutMS int    `json:"timeout_ms"` // 0 selects the probe default
}

// ProbeView summarizes one echo probe.
type ProbeView struct {
	Server      string           `json:"server"`
	Reachable   bool             `json:"reachable"`
	GreetingOK  bool             `json:"greeting_ok"`
	EchoOK      bool             `json:"echo_ok"`
	Greeting    string           `json:"greeting"`
	LatenciesMs map[string]int64 `json:"latencies_ms"`
	Warnings    []string         `json:"warnings"`
	LastChecked string           `json:"last_checked"`
	Error       string           `json:"error,omitempty"`
}

// APIError is a standard error payload.
type APIError struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// TimeNow abstracts time for tests; overridden in tests.
var TimeNow = func() time.Time { return time.Now() }
