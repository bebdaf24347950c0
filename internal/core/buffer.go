package core

import (
	"context"
	"fmt"

	"github.com/sanverite/echo-client/internal/message"
	"github.com/sanverite/echo-client/internal/wire"
)

// MessageWrite stores msg in the write buffer. An occupied buffer is only
// overwritten when the force flag is on. With instantsend the message is
// sent immediately.
func (s *Session) MessageWrite(ctx context.Context, msg message.Message) error {
	s.mu.Lock()
	if s.buffer != nil {
		if !s.flags.Force {
			s.mu.Unlock()
			return ErrBufferOccupied
		}
		s.debugf("discarding buffered message")
	}
	m := msg
	s.buffer = &m
	instant := s.flags.InstantSend
	s.mu.Unlock()

	s.debugf("wrote message to buffer")
	if wire.ContainsTag(msg.Text) {
		s.logger.Printf("core: message text contains a wire tag and will not round-trip")
	}
	if instant {
		return s.MessageSend(ctx)
	}
	return nil
}

// MessageEdit applies changes to the buffered message. Valid fields are
// applied even when others are rejected; the error lists the rejections.
func (s *Session) MessageEdit(changes message.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil {
		return ErrBufferEmpty
	}
	m := *s.buffer
	err := m.Modify(changes)
	s.buffer = &m
	s.debugf("edited buffered message")
	return err
}

// MessageClear empties the write buffer.
func (s *Session) MessageClear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil {
		return ErrBufferEmpty
	}
	s.buffer = nil
	s.debugf("cleared write buffer")
	return nil
}

// MessageView returns a copy of the buffered message, if any.
func (s *Session) MessageView() (message.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.buffer == nil {
		return message.Message{}, false
	}
	return *s.buffer, true
}

// MessageSend transmits the buffered message. With burnonsend the buffer is
// cleared after a successful send. With instantread the call then blocks
// until the receiver reports an arrival and reads the newest inbox entry.
//
// The wait has no timeout of its own: a server that never echoes blocks
// the caller until ctx is done or the receiver exits.
func (s *Session) MessageSend(ctx context.Context) error {
	s.mu.Lock()
	if !s.tr.IsOpen() {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if s.buffer == nil {
		s.mu.Unlock()
		return ErrBufferEmpty
	}
	payload := wire.Encode(*s.buffer)
	tr := s.tr
	rx := s.rx
	burn := s.flags.BurnOnSend
	instantRead := s.flags.InstantRead
	s.mu.Unlock()

	s.arrival.reset()
	s.debugf("sending %d bytes to %s", len(payload), tr.Addr())
	if err := tr.Send(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	if burn {
		s.mu.Lock()
		s.buffer = nil
		s.mu.Unlock()
	}
	if !instantRead {
		return nil
	}

	s.debugf("waiting for echo")
	var rxDone <-chan struct{}
	if rx != nil {
		rxDone = rx.done
	}
	if err := s.arrival.wait(ctx, rxDone); err != nil {
		return err
	}
	_, err := s.InboxReadTop()
	return err
}
