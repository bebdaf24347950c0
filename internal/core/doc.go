// Package core owns the echo client's session state and lifecycle.
//
// Overview
//
// A Session holds one write buffer (the message being composed), one inbox
// (messages echoed back), one transport and, while connected, one
// background receiver goroutine. Protocol behavior is driven by Flags.
//
// Concurrency & Safety
//
// Two goroutines touch a connected session: the foreground, which calls
// the exported methods, and the receiver, which is the sole producer of
// inbox appends and arrival signals. The inbox and the rest of the mutable
// state sit behind one RWMutex that is never held across blocking I/O.
// The arrival signal is a single-producer single-consumer queue polled
// with adaptive backoff. MessageSend must not race with Disconnect; that
// is caller discipline, not enforced here.
//
// Lifecycle
//
// SessionState reflects the coarse lifecycle:
//   idle       -> connecting
//   connecting -> listening | idle
//   listening  -> stopping
//   stopping   -> idle
//
// Connect consumes the server greeting synchronously before the receiver
// starts, so the greeting never reaches the inbox. Disconnect requests a
// stop, sends WakePayload so the parked read returns, joins the receiver,
// purges any entry decoded from the wake echo and only then closes the
// transport. Shutdown additionally raises the kill signal (Done, Killed).
//
// Send/Receive Protocol
//
//   - MessageWrite refuses an occupied buffer unless Force is on.
//   - InstantSend sends right after a write.
//   - MessageSend resets the arrival signal before transmitting so only
//     fresh arrivals count. BurnOnSend clears the buffer afterwards.
//   - InstantRead blocks until the receiver signals, then reads the newest
//     entry. There is no built-in timeout; only ctx or receiver exit ends
//     the wait.
//   - Reads render Raw when RawRead is on, Fancy otherwise. BurnOnRead
//     deletes what was read.
//
// Errors
//
// Usage errors (ErrBufferOccupied, ErrIndexOutOfRange, ErrUnknownFlag, ...)
// leave the session unchanged. Transport errors (ErrConnectFailed,
// ErrSendFailed, ErrNotConnected) leave it in its last good state.
package core
