package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/sanverite/echo-client/internal/core"
	"github.com/sanverite/echo-client/internal/probe"
)

// Constants for route prefixing. Versioning is explicit to allow non-breaking additions.
const (
	APIVersion     = "v1"
	DefaultAddress = "127.0.0.1:8787"
)

// StatusSource is the read side of a session. *core.Session implements it.
type StatusSource interface {
	Status() core.Snapshot
}

// ServerOptions configures the HTTP server.
// Timeouts are conservative defaults suitable for a local status server.
type ServerOptions struct {
	Addr              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	Logger            *log.Logger
}

// Server hosts the read-only HTTP view of one session.
type Server struct {
	http   *http.Server
	source StatusSource
	logger *log.Logger
	opts   ServerOptions
}

// NewServer constructs a new API server reading from source.
// The server does not start listening until Start is called.
func NewServer(source StatusSource, opts ServerOptions) *Server {
	if source == nil {
		panic("api.NewServer: source is nil")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddress
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.ReadHeaderTimeout == 0 {
		opts.ReadHeaderTimeout = 2 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	mux := http.NewServeMux()
	s := &Server{
		source: source,
		logger: opts.Logger,
		opts:   opts,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           withBasicMiddleware(mux, opts.Logger),
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
			ErrorLog:          opts.Logger,
			BaseContext: func(l net.Listener) context.Context {
				return context.Background()
			},
		},
	}

	mux.HandleFunc("/"+APIVersion+"/healthz", s.handleHealthz)
	mux.HandleFunc("/"+APIVersion+"/status", s.handleStatus)
	mux.HandleFunc("/"+APIVersion+"/inbox", s.handleInbox)
	mux.HandleFunc("/"+APIVersion+"/probe", s.handleProbe)

	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start begins serving HTTP in a background goroutine.
// It returns immediately; use Stop for graceful shutdown.
func (s *Server) Start() {
	go func() {
		s.logger.Printf("api: listening on %s\n", s.http.Addr)
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("api: ListenAndServe error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server, waiting up to ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	timeout := s.opts.ShutdownTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.http.Shutdown(ctx)
}

// handleHealthz is a simple liveness endpoint.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": TimeNow().UTC().Format(time.RFC3339),
	})
}

// handleStatus returns the current session snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, FromCoreSnapshot(s.source.Status()))
}

// handleInbox lists received messages, oldest first.
// Query: mode=fancy|raw selects the "rendered" field (default fancy).
// Errors:
//   - 400 for an unknown mode
func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	mode, ok := parseMode(r.URL.Query().Get("mode"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, APIError{
			Error:     "mode must be fancy or raw",
			Timestamp: TimeNow().UTC().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, FromInbox(s.source.Status().Inbox, mode))
}

// handleProbe runs a bounded echo probe on a separate connection.
// Method: POST
// Request: optional ProbeRequest JSON; an empty body probes the session's server
// Response (200): ProbeView JSON
// Errors:
//   - 400 for invalid inputs (malformed JSON, negative timeout)
//   - 502 for probe failures; the body is the partial ProbeView
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, APIError{
			Error:     "method not allowed",
			Timestamp: TimeNow().UTC().Format(time.RFC3339),
		})
		return
	}

	var req ProbeRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, APIError{
			Error:     "invalid JSON: " + err.Error(),
			Timestamp: TimeNow().UTC().Format(time.RFC3339),
		})
		return
	}
	if req.TimeoutMS < 0 {
		writeJSON(w, http.StatusBadRequest, APIError{
			Error:     "timeout_ms must be >= 0",
			Timestamp: TimeNow().UTC().Format(time.RFC3339),
		})
		return
	}
	server := req.Server
	if server == "" {
		server = s.source.Status().Addr
	}

	summary, err := probe.ProbeEcho(r.Context(), probe.Config{
		Server:  server,
		Timeout: time.Duration(req.TimeoutMS) * time.Millisecond,
	})
	resp := FromProbeSummary(server, summary)
	if err != nil {
		resp.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	writeJSON(w, http.StatusMethodNotAllowed, APIError{
		Error:     "method not allowed",
		Timestamp: TimeNow().UTC().Format(time.RFC3339),
	})
	return false
}

// Basic middleware: sets JSON content type and very lightweight logging.
// No CORS or auth because this is a local status service.
func withBasicMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := TimeNow()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		logger.Printf("api: %s %s %dms UA=%q", r.Method, r.URL.Path, dur.Milliseconds(), r.UserAgent())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}
