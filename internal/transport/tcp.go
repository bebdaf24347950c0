package transport

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Defaults for a transport created without explicit configuration.
const (
	DefaultDialTimeout = 5 * time.Second
	DefaultReadSize    = 1024
)

// State is the lifecycle position of a TCP transport.
type State string

const (
	StateUnopened State = "unopened"
	StateOpen     State = "open"
	StateClosed   State = "closed"
)

var (
	// ErrNotOpen is returned by I/O on a transport that is not open.
	ErrNotOpen = errors.New("transport not open")
	// ErrClosed is returned when closing a transport that is not open.
	ErrClosed = errors.New("transport already closed")
	// ErrBusy is returned when changing the endpoint of an open transport.
	ErrBusy = errors.New("transport is open")
	// ErrInvalidPort is returned for ports outside 1-65535.
	ErrInvalidPort = errors.New("invalid port")
	// ErrInvalidHost is returned for an empty or whitespace host.
	ErrInvalidHost = errors.New("invalid host")
)

// Config tunes a TCP transport. Zero values select the defaults.
type Config struct {
	// DialTimeout bounds the connect phase only.
	DialTimeout time.Duration
	// ReadSize caps the bytes returned by one Receive.
	ReadSize int
	// Logger receives connection events. Defaults to log.Default().
	Logger *log.Logger
}

// TCP is a single TCP connection with explicit open/closed state.
type TCP struct {
	cfg Config

	mu    sync.Mutex
	host  string
	port  int
	state State
	conn  net.Conn
}

// New returns an unopened transport for host:port.
func New(host string, port int, cfg Config) *TCP {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadSize <= 0 {
		cfg.ReadSize = DefaultReadSize
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &TCP{
		cfg:   cfg,
		host:  host,
		port:  port,
		state: StateUnopened,
	}
}

// Open dials the configured endpoint within DialTimeout. It returns true
// only when the connection is established; every failure is logged.
func (t *TCP) Open(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateOpen:
		t.cfg.Logger.Printf("transport: already open to %s", t.addrLocked())
		return false
	case StateClosed:
		t.cfg.Logger.Printf("transport: closed transport cannot be reopened")
		return false
	}

	addr, err := validateEndpoint(t.host, t.port)
	if err != nil {
		t.cfg.Logger.Printf("transport: %v", err)
		return false
	}

	dialer := &net.Dialer{Timeout: t.cfg.DialTimeout}
	t0 := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		t.cfg.Logger.Printf("transport: connect %s failed after %dms: %v", addr, millisSince(t0), err)
		return false
	}
	// The dial timeout covers the connect phase only; reads may park indefinitely.
	_ = conn.SetDeadline(time.Time{})

	t.conn = conn
	t.state = StateOpen
	t.cfg.Logger.Printf("transport: connected to %s in %dms", addr, millisSince(t0))
	return true
}

// Close releases the connection. Closing a transport that is not open
// returns ErrClosed and leaves it untouched.
func (t *TCP) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateOpen {
		return ErrClosed
	}
	err := t.conn.Close()
	t.conn = nil
	t.state = StateClosed
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Send writes all of payload or fails.
func (t *TCP) Send(payload []byte) error {
	conn, err := t.openConn()
	if err != nil {
		return err
	}
	for len(payload) > 0 {
		n, err := conn.Write(payload)
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}
		payload = payload[n:]
	}
	return nil
}

// Receive blocks until at least one byte arrives and returns up to
// ReadSize bytes.
func (t *TCP) Receive() ([]byte, error) {
	conn, err := t.openConn()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, t.cfg.ReadSize)
	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	return nil, fmt.Errorf("receive: empty read")
}

// Interrupt makes a blocked Receive return with a timeout error.
func (t *TCP) Interrupt() error {
	conn, err := t.openConn()
	if err != nil {
		return err
	}
	return conn.SetReadDeadline(time.Now())
}

// SetHost changes the host. Rejected while open.
func (t *TCP) SetHost(host string) error {
	if strings.TrimSpace(host) == "" {
		return ErrInvalidHost
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateOpen {
		return ErrBusy
	}
	t.host = host
	return nil
}

// SetPort changes the port. Rejected while open.
func (t *TCP) SetPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateOpen {
		return ErrBusy
	}
	t.port = port
	return nil
}

// Host returns the configured host.
func (t *TCP) Host() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.host
}

// Port returns the configured port.
func (t *TCP) Port() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.port
}

// Addr returns host:port as it would be dialed.
func (t *TCP) Addr() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addrLocked()
}

// State returns the current lifecycle state.
func (t *TCP) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsOpen reports whether the transport is open.
func (t *TCP) IsOpen() bool {
	return t.State() == StateOpen
}

func (t *TCP) openConn() (net.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateOpen {
		return nil, ErrNotOpen
	}
	return t.conn, nil
}

func (t *TCP) addrLocked() string {
	return net.JoinHostPort(t.host, strconv.Itoa(t.port))
}

// validateEndpoint checks host and port and returns the dial address.
func validateEndpoint(host string, port int) (string, error) {
	if strings.TrimSpace(host) == "" {
		return "", ErrInvalidHost
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// ParsePort converts a decimal port string, enforcing 1-65535.
func ParsePort(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	return n, nil
}

// millisSince returns the elapsed milliseconds since t0, clamped at zero.
func millisSince(t0 time.Time) int64 {
	diff := time.Since(t0)
	if diff < 0 {
		return 0
	}
	return diff.Milliseconds()
}
