// Package probe checks an echo server without touching a session.
//
// # Overview
//
// ProbeEcho opens its own short-lived connection, so it can run while a
// session is connected or idle. It accepts a context and enforces one
// deadline, records per-step latencies and returns explicit errors without
// retries or background goroutines.
//
// # Steps
//
//  1. TCP connect (sets Reachable).
//  2. Read the greeting (sets GreetingOK and Greeting).
//  3. Send a wire-encoded message carrying a random nonce and read until
//     the same number of bytes came back (sets EchoOK when they match).
//
// Latencies are keyed "tcp_connect", "greeting" and "echo_roundtrip".
//
// # Error Model
//
// Transport failures return the underlying error; a silent server yields
// ErrNoGreeting and a wrong answer ErrEchoMismatch. The summary still
// includes any partial timings and warnings. Safe to call concurrently.
package probe
