// Package command turns shell lines into typed session operations.
//
// Parsing
//
// Parse validates a line against the signature of its command kind (the
// minimum and maximum operand count, or a verbatim rest-of-line operand)
// and returns a Command carrying typed operands. Blank lines parse to
// KindNone.
//
// Dispatch
//
// Run hands a Command to a core.Session through one exhaustive switch.
// Inbox indexes are 1-based at this layer and 0-based in core.
//
// Errors
//
// ErrUnknownCommand and ErrBadOperands come from Parse. Run returns the
// session's own errors unchanged so callers can match them with errors.Is.
package command
