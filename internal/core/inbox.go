package core

import (
	"fmt"

	"github.com/sanverite/echo-client/internal/message"
)

// renderModeLocked picks Raw or Fancy from the rawread flag. Caller holds s.mu.
func (s *Session) renderModeLocked() message.Mode {
	if s.flags.RawRead {
		return message.Raw
	}
	return message.Fancy
}

// InboxRead renders and displays the entry at index (0-based). With
// burnonread the entry is removed afterwards.
func (s *Session) InboxRead(index int) (string, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.inbox) {
		n := len(s.inbox)
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %d (inbox holds %d)", ErrIndexOutOfRange, index, n)
	}
	line := message.Render(s.inbox[index], s.renderModeLocked())
	if s.flags.BurnOnRead {
		s.inbox = append(s.inbox[:index], s.inbox[index+1:]...)
	}
	s.mu.Unlock()

	fmt.Fprintln(s.out, line)
	return line, nil
}

// InboxReadTop reads the newest entry.
func (s *Session) InboxReadTop() (string, error) {
	s.mu.RLock()
	n := len(s.inbox)
	s.mu.RUnlock()
	if n == 0 {
		return "", ErrInboxEmpty
	}
	// Only the receiver appends concurrently, so index n-1 stays valid.
	return s.InboxRead(n - 1)
}

// InboxReadAll reads every entry oldest first. With burnonread exactly the
// entries read are removed; later arrivals are kept.
func (s *Session) InboxReadAll() ([]string, error) {
	s.mu.Lock()
	n := len(s.inbox)
	if n == 0 {
		s.mu.Unlock()
		return nil, ErrInboxEmpty
	}
	mode := s.renderModeLocked()
	lines := make([]string, 0, n)
	for _, m := range s.inbox[:n] {
		lines = append(lines, message.Render(m, mode))
	}
	if s.flags.BurnOnRead {
		s.inbox = append([]message.Message(nil), s.inbox[n:]...)
	}
	s.mu.Unlock()

	for _, line := range lines {
		fmt.Fprintln(s.out, line)
	}
	return lines, nil
}

// InboxDelete removes the entry at index (0-based).
func (s *Session) InboxDelete(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.inbox) {
		return fmt.Errorf("%w: %d (inbox holds %d)", ErrIndexOutOfRange, index, len(s.inbox))
	}
	s.inbox = append(s.inbox[:index], s.inbox[index+1:]...)
	s.debugf("deleted inbox entry %d", index)
	return nil
}

// InboxEmpty deletes every entry and returns how many were removed.
// Emptying an empty inbox reports "inbox already empty" and is not an error.
func (s *Session) InboxEmpty() int {
	s.mu.Lock()
	n := len(s.inbox)
	s.inbox = nil
	s.mu.Unlock()

	if n == 0 {
		fmt.Fprintln(s.out, "inbox already empty")
		return 0
	}
	fmt.Fprintf(s.out, "inbox emptied (%d removed)\n", n)
	return n
}

// Inbox returns a copy of the received messages, oldest first.
func (s *Session) Inbox() []message.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]message.Message(nil), s.inbox...)
}

// InboxLen returns the number of received messages.
func (s *Session) InboxLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.inbox)
}
