package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanverite/echo-client/internal/message"
	"github.com/sanverite/echo-client/internal/transport"
)

// Transport is the connection a session drives. *transport.TCP implements it.
type Transport interface {
	Open(ctx context.Context) bool
	Close() error
	Send(payload []byte) error
	Receive() ([]byte, error)
	Interrupt() error
	SetHost(host string) error
	SetPort(port int) error
	Host() string
	Port() int
	Addr() string
	State() transport.State
	IsOpen() bool
}

// Options configures a Session. Zero values select defaults.
type Options struct {
	Host string
	Port int

	// Flags overrides DefaultFlags when non-nil.
	Flags *Flags

	// Transport configures transports built by the default NewTransport.
	Transport transport.Config
	// NewTransport builds an unopened transport. A fresh one is built for
	// every reconnect because a closed transport cannot be reopened.
	NewTransport func(host string, port int) Transport

	// StopGrace bounds how long Disconnect waits for the wake payload's echo
	// before interrupting the receiver's read. Zero waits indefinitely.
	StopGrace time.Duration

	// Output receives displayed text: greetings and rendered inbox reads.
	Output io.Writer
	Logger *log.Logger
}

// Session is a single-connection echo client: one write buffer, one inbox,
// one transport and one background receiver while connected.
//
// All exported methods are intended for a single foreground goroutine;
// Status is additionally safe from any goroutine. Callers must not run
// MessageSend concurrently with Disconnect.
type Session struct {
	id     string
	opts   Options
	out    io.Writer
	logger *log.Logger

	mu          sync.RWMutex
	state       SessionState
	connectedAt time.Time
	flags       Flags
	tr          Transport
	buffer      *message.Message
	inbox       []message.Message
	rx          *receiver

	arrival  *arrival
	kill     chan struct{}
	killOnce sync.Once
}

// NewSession constructs an idle session. No connection is opened.
func NewSession(opts Options) *Session {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Transport.Logger == nil {
		opts.Transport.Logger = opts.Logger
	}
	if opts.NewTransport == nil {
		cfg := opts.Transport
		opts.NewTransport = func(host string, port int) Transport {
			return transport.New(host, port, cfg)
		}
	}
	flags := DefaultFlags()
	if opts.Flags != nil {
		flags = *opts.Flags
	}

	return &Session{
		id:      uuid.New().String(),
		opts:    opts,
		out:     opts.Output,
		logger:  opts.Logger,
		state:   StateIdle,
		flags:   flags,
		tr:      opts.NewTransport(opts.Host, opts.Port),
		arrival: newArrival(),
		kill:    make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// debugf logs only while the logging flag is on. Foreground only.
func (s *Session) debugf(format string, args ...any) {
	if s.flags.Logging {
		s.logger.Printf("core: "+format, args...)
	}
}

// Connect opens the transport, consumes the server greeting and starts the
// background receiver. On failure the session stays idle.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.isKilled() {
		s.mu.Unlock()
		return ErrShutdown
	}
	if s.tr.IsOpen() {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	if err := s.setStateLocked(StateConnecting); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.tr.State() == transport.StateClosed {
		s.tr = s.opts.NewTransport(s.tr.Host(), s.tr.Port())
	}
	tr := s.tr
	s.mu.Unlock()

	s.debugf("connecting to %s", tr.Addr())
	if !tr.Open(ctx) {
		_ = s.setState(StateIdle)
		return fmt.Errorf("%w: %s", ErrConnectFailed, tr.Addr())
	}

	greeting, err := tr.Receive()
	if err != nil {
		_ = tr.Close()
		_ = s.setState(StateIdle)
		return fmt.Errorf("%w: greeting: %v", ErrConnectFailed, err)
	}
	fmt.Fprintln(s.out, strings.TrimRight(string(greeting), "\r\n"))

	s.arrival.reset()
	rx := newReceiver(tr, s.deliver, s.arrival.signal, s.logger)

	s.mu.Lock()
	s.rx = rx
	err = s.setStateLocked(StateListening)
	s.mu.Unlock()

	go rx.run()
	s.debugf("listening on %s", tr.Addr())
	return err
}

// deliver appends a received message. Called from the receiver goroutine.
func (s *Session) deliver(m message.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = append(s.inbox, m)
}

// Disconnect stops the receiver and closes the transport. The receiver is
// always joined before the transport is released.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	if !s.tr.IsOpen() {
		s.mu.Unlock()
		return ErrNotConnected
	}
	if err := s.setStateLocked(StateStopping); err != nil {
		s.mu.Unlock()
		return err
	}
	tr := s.tr
	rx := s.rx
	mark := len(s.inbox)
	s.mu.Unlock()

	s.debugf("disconnecting from %s", tr.Addr())
	if rx != nil {
		s.stopReceiver(rx, tr)
	}

	s.mu.Lock()
	s.purgeWakeLocked(mark)
	s.rx = nil
	s.mu.Unlock()

	err := tr.Close()
	if serr := s.setState(StateIdle); serr != nil && err == nil {
		err = serr
	}
	return err
}

// stopReceiver clears the receiver's running state, unblocks its read with
// the wake payload and joins it.
func (s *Session) stopReceiver(rx *receiver, tr Transport) {
	rx.requestStop()
	if err := tr.Send(WakePayload); err != nil {
		s.logger.Printf("core: wake payload not sent: %v", err)
		_ = tr.Interrupt()
	}

	if s.opts.StopGrace <= 0 {
		<-rx.done
		return
	}
	timer := time.NewTimer(s.opts.StopGrace)
	defer timer.Stop()
	select {
	case <-rx.done:
	case <-timer.C:
		s.logger.Printf("core: no wake echo after %v, interrupting receiver", s.opts.StopGrace)
		_ = tr.Interrupt()
		<-rx.done
	}
}

// purgeWakeLocked removes inbox entries appended after mark that decode from
// the wake payload. Caller holds s.mu.
func (s *Session) purgeWakeLocked(mark int) {
	if mark > len(s.inbox) {
		return
	}
	kept := s.inbox[:mark]
	for _, m := range s.inbox[mark:] {
		if !isWake(m) {
			kept = append(kept, m)
		}
	}
	s.inbox = kept
}

// Shutdown disconnects if connected and raises the kill signal so a driving
// loop stops dispatching to this session. Safe to call more than once.
func (s *Session) Shutdown() error {
	var err error
	if s.tr.IsOpen() {
		err = s.Disconnect()
	}
	s.killOnce.Do(func() { close(s.kill) })
	return err
}

// Done is closed once Shutdown has run.
func (s *Session) Done() <-chan struct{} {
	return s.kill
}

// Killed reports whether Shutdown has run.
func (s *Session) Killed() bool {
	return s.isKilled()
}

func (s *Session) isKilled() bool {
	select {
	case <-s.kill:
		return true
	default:
		return false
	}
}

// SetHost changes the server host. Rejected while connected.
func (s *Session) SetHost(host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugf("setting host to %s", host)
	return s.tr.SetHost(host)
}

// SetPort changes the server port. Rejected while connected.
func (s *Session) SetPort(port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debugf("setting port to %d", port)
	return s.tr.SetPort(port)
}

// SetFlag changes a behavior flag by name.
func (s *Session) SetFlag(name string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags.Set(name, on)
}

// Flags returns a copy of the current flags.
func (s *Session) Flags() Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags
}

// Connected reports whether the transport is open.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tr.IsOpen()
}
