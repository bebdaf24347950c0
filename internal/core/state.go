package core

import (
	"time"

	"github.com/sanverite/echo-client/internal/message"
	"github.com/sanverite/echo-client/internal/transport"
)

// SessionState represents the lifecycle state of a session.
// The intended transitions:
//
// idle       -> connecting
// connecting -> listening | idle
// listening  -> stopping
// stopping   -> idle
//
// Transitions outside this set are rejected by setStateLocked.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateConnecting SessionState = "connecting"
	StateListening  SessionState = "listening"
	StateStopping   SessionState = "stopping"
)

// Snapshot is a read model of a session for status displays and the API.
// Slices and the buffered message are copies, so callers may retain them.
type Snapshot struct {
	ID             string
	State          SessionState
	Addr           string
	TransportState transport.State
	Receiving      bool
	ConnectedAt    time.Time
	Buffer         *message.Message
	Inbox          []message.Message
	Flags          Flags
	Killed         bool
}

// Status returns a deep copy of the session state, safe for concurrent reads.
func (s *Session) Status() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf *message.Message
	if s.buffer != nil {
		m := *s.buffer
		buf = &m
	}
	receiving := false
	if s.rx != nil {
		receiving = !s.rx.exited()
	}

	return Snapshot{
		ID:             s.id,
		State:          s.state,
		Addr:           s.tr.Addr(),
		TransportState: s.tr.State(),
		Receiving:      receiving,
		ConnectedAt:    s.connectedAt,
		Buffer:         buf,
		Inbox:          append([]message.Message(nil), s.inbox...),
		Flags:          s.flags,
		Killed:         s.isKilled(),
	}
}

// setStateLocked moves the session to next, enforcing the state machine.
// Entering listening stamps connectedAt; returning to idle clears it.
// Caller holds s.mu.
func (s *Session) setStateLocked(next SessionState) error {
	cur := s.state
	if cur == next {
		return nil
	}
	if !allowedTransition(cur, next) {
		return ErrInvalidTransition
	}

	switch next {
	case StateListening:
		s.connectedAt = time.Now()
	case StateIdle:
		s.connectedAt = time.Time{}
	}

	s.state = next
	return nil
}

func (s *Session) setState(next SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setStateLocked(next)
}

func allowedTransition(cur, next SessionState) bool {
	switch cur {
	case StateIdle:
		return next == StateConnecting
	case StateConnecting:
		return next == StateListening || next == StateIdle
	case StateListening:
		return next == StateStopping
	case StateStopping:
		return next == StateIdle
	default:
		return false
	}
}
