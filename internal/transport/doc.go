// Package transport wraps a single TCP connection to an echo server.
//
// # Overview
//
// TCP is a thin synchronous wrapper: Open dials, Send writes a whole
// payload, Receive returns one chunk, Close releases the socket. It does
// not frame messages; a Receive may return a partial payload or several
// payloads glued together.
//
// # Lifecycle
//
//	unopened -> open -> closed
//
// Closed is terminal. A TCP value cannot be reopened; callers create a
// fresh one with New. Host and port may only change while the transport
// is not open.
//
// # Timeouts
//
// Open bounds the connect phase with Config.DialTimeout and clears every
// deadline once the connection is established, so Receive may block
// indefinitely. Interrupt forces a parked Receive to return by setting an
// immediate read deadline.
//
// # Error Model
//
// Open reports failure as false and logs the cause; it never returns an
// error. Send and Receive return ErrNotOpen outside the open state. Close
// on a transport that is not open returns ErrClosed and does nothing else.
//
// # Concurrency
//
// One goroutine may Receive while another Sends. State transitions are
// serialized by an internal mutex that is never held across blocking I/O.
package transport
