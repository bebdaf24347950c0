package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sanverite/echo-client/internal/message"
	"github.com/sanverite/echo-client/internal/wire"
)

// Sensible defaults for interactive probes.
const (
	DefaultTimeout = 3 * time.Second
	readChunk      = 1024
)

var (
	// ErrEchoMismatch is returned when the server answers with something
	// other than the probe message.
	ErrEchoMismatch = errors.New("echo mismatch")
	// ErrNoGreeting is returned when the server closes before greeting.
	ErrNoGreeting = errors.New("no greeting")
)

// Config controls a single probe execution.
type Config struct {
	// Server is the echo endpoint to probe, in "host:port" form.
	Server string

	// Timeout bounds the entire probe (connect + greeting + round trip).
	// If zero, DefaultTimeout is used.
	Timeout time.Duration
}

// Summary is the outcome of one probe. Fields reflect how far it got.
type Summary struct {
	Reachable   bool
	GreetingOK  bool
	EchoOK      bool
	Greeting    string
	LatenciesMs map[string]int64
	Warnings    []string
	LastChecked time.Time
}

// ProbeEcho runs a single probe against cfg.Server following these steps:
// 1) TCP connect
// 2) read the server greeting
// 3) send an encoded message with a random nonce and wait for its echo
//
// Errors indicate probe failures; the returned summary still carries the
// partial latencies and warnings.
func ProbeEcho(ctx context.Context, cfg Config) (summary Summary, err error) {
	var (
		warns     []string
		latencies = make(map[string]int64, 3)
	)
	defer func() {
		summary.LatenciesMs = latencies
		summary.Warnings = warns
		summary.LastChecked = time.Now()
	}()

	host, port, err := splitHostPortStrict(cfg.Server)
	if err != nil {
		return summary, fmt.Errorf("invalid echo server: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// One deadline for the whole probe, through the context and the socket.
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	deadline, _ := ctx.Deadline()

	dialer := &net.Dialer{}
	t0 := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	latencies["tcp_connect"] = millisSince(t0)
	if err != nil {
		warns = append(warns, "tcp connect failed: "+err.Error())
		return summary, err
	}
	defer conn.Close()
	summary.Reachable = true
	_ = conn.SetDeadline(deadline)

	greetStart := time.Now()
	buf := make([]byte, readChunk)
	n, err := conn.Read(buf)
	latencies["greeting"] = millisSince(greetStart)
	if err != nil {
		warns = append(warns, "greeting read failed: "+err.Error())
		return summary, fmt.Errorf("%w: %v", ErrNoGreeting, err)
	}
	summary.Greeting = string(buf[:n])
	summary.GreetingOK = true

	probe := message.Default()
	probe.Text = "probe-" + uuid.NewString()
	payload := wire.Encode(probe)

	echoStart := time.Now()
	if _, err := conn.Write(payload); err != nil {
		latencies["echo_roundtrip"] = millisSince(echoStart)
		warns = append(warns, "probe send failed: "+err.Error())
		return summary, err
	}
	got, err := readEcho(conn, len(payload))
	latencies["echo_roundtrip"] = millisSince(echoStart)
	if err != nil {
		warns = append(warns, "echo read failed: "+err.Error())
		return summary, err
	}
	if !bytes.Equal(got, payload) {
		if decoded := wire.Decode(got); decoded.Text != probe.Text {
			warns = append(warns, fmt.Sprintf("echoed text %q", decoded.Text))
		}
		return summary, ErrEchoMismatch
	}
	summary.EchoOK = true
	return summary, nil
}

// readEcho reads until want bytes arrived. Servers may split the echo.
func readEcho(conn net.Conn, want int) ([]byte, error) {
	out := make([]byte, 0, want)
	buf := make([]byte, readChunk)
	for len(out) < want {
		n, err := conn.Read(buf)
		out = append(out, buf[:n]...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// splitHostPortStrict validates "host:port" and returns host and port strings.
// Accepts IPv6 in bracket form, e.g., "[::1]:7000".
func splitHostPortStrict(hp string) (host, port string, err error) {
	host, port, err = net.SplitHostPort(hp)
	if err != nil {
		return "", "", err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", "", fmt.Errorf("invalid port %q", port)
	}
	if strings.TrimSpace(host) == "" {
		return "", "", errors.New("empty host")
	}
	return host, port, nil
}

// millisSince returns the elapsed milliseconds since t0, clamped at zero.
func millisSince(t0 time.Time) int64 {
	diff := time.Since(t0)
	if diff < 0 {
		return 0
	}
	return diff.Milliseconds()
}
