// Package api exposes a small read-only HTTP view of an echo session.
//
// Separation of Concerns
//
// The api package defines public JSON types (decoupled from core), maps
// core snapshots to JSON, and hosts an HTTP server with minimal middleware.
// The core package remains unaware of HTTP or JSON. The server only reads
// Status(); it never drives the session. Probes open their own connection.
//
// Versioning
//
// All routes are versioned under /v1. Non-breaking additions extend types,
// while breaking changes require a new prefix (/v2).
//
// Server
//
// NewServer wires handlers onto a ServeMux and configures timeouts. Start()
// runs ListenAndServe() in a goroutine; Stop() performs graceful shutdown.
// Middleware sets JSON content type and logs method/path/duration.
//
// Error Model
//
// APIError uses a string message and a timestamp in RFC3339. Handlers check the
// method and respond with 405 otherwise.
//
// Current Endpoints
//
// - GET /v1/healthz: liveness
// - GET /v1/status: maps core.Snapshot into stable JSON
// - GET /v1/inbox[?mode=fancy|raw]: received messages with 1-based indexes
// - POST /v1/probe: checks the server greets and echoes, on its own connection
package api
