package core

import (
	"errors"
	"fmt"
)

// ErrUnknownFlag is returned by Flags.Set and Flags.Get for names outside the flag set.
var ErrUnknownFlag = errors.New("unknown flag")

// Flag names as typed in the shell.
const (
	FlagLogging     = "logging"
	FlagForce       = "force"
	FlagRawRead     = "rawread"
	FlagInstantSend = "instantsend"
	FlagInstantRead = "instantread"
	FlagBurnOnSend  = "burnonsend"
	FlagBurnOnRead  = "burnonread"
)

var flagOrder = []string{
	FlagLogging,
	FlagForce,
	FlagRawRead,
	FlagInstantSend,
	FlagInstantRead,
	FlagBurnOnSend,
	FlagBurnOnRead,
}

// Flags governs session protocol behavior.
type Flags struct {
	Logging     bool // debug lines for every session operation
	Force       bool // MessageWrite may overwrite an occupied buffer
	RawRead     bool // inbox reads render Raw instead of Fancy
	InstantSend bool // MessageWrite sends immediately
	InstantRead bool // MessageSend waits for the echo and reads it
	BurnOnSend  bool // clear the write buffer after a send
	BurnOnRead  bool // delete inbox entries after they are read
}

// DefaultFlags returns the flag set a new session starts with.
func DefaultFlags() Flags {
	return Flags{
		InstantSend: true,
		InstantRead: true,
		BurnOnSend:  true,
	}
}

// FlagNames lists every flag in display order.
func FlagNames() []string {
	return append([]string(nil), flagOrder...)
}

// Set changes a flag by name. Unknown names are rejected and nothing changes.
func (f *Flags) Set(name string, on bool) error {
	ptr := f.field(name)
	if ptr == nil {
		return fmt.Errorf("%w: %q", ErrUnknownFlag, name)
	}
	*ptr = on
	return nil
}

// Get returns a flag by name.
func (f Flags) Get(name string) (bool, error) {
	ptr := f.field(name)
	if ptr == nil {
		return false, fmt.Errorf("%w: %q", ErrUnknownFlag, name)
	}
	return *ptr, nil
}

func (f *Flags) field(name string) *bool {
	switch name {
	case FlagLogging:
		return &f.Logging
	case FlagForce:
		return &f.Force
	case FlagRawRead:
		return &f.RawRead
	case FlagInstantSend:
		return &f.InstantSend
	case FlagInstantRead:
		return &f.InstantRead
	case FlagBurnOnSend:
		return &f.BurnOnSend
	case FlagBurnOnRead:
		return &f.BurnOnRead
	default:
		return nil
	}
}
