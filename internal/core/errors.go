package core

import "errors"

// Usage errors. The session is unchanged when one of these is returned.
var (
	ErrBufferOccupied  = errors.New("message still in write buffer, set the 'force' flag to override")
	ErrBufferEmpty     = errors.New("write buffer is empty")
	ErrInboxEmpty      = errors.New("inbox is empty")
	ErrIndexOutOfRange = errors.New("inbox index out of range")
	ErrShutdown        = errors.New("session is shut down")
)

// Protocol and transport errors. The session stays in its last good state.
var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrConnectFailed    = errors.New("connect failed")
	ErrSendFailed       = errors.New("send failed")
	ErrReceiverStopped  = errors.New("receiver stopped before a message arrived")
)

// ErrInvalidTransition is returned when the session state machine receives an illegal edge.
var ErrInvalidTransition = errors.New("invalid session state transition")
