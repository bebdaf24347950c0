package core

import (
	"bytes"
	"io"
	"log"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sanverite/echo-client/internal/transport"
)

const testGreeting = "Welcome to the echo server!"

// echoServer greets each connection and then echoes every chunk verbatim.
// When silent is set it greets and then never writes again.
type echoServer struct {
	ln     net.Listener
	port   int
	silent bool

	mu       sync.Mutex
	received [][]byte
}

func startEchoServer(t *testing.T, silent bool) *echoServer {
	t.Helper()
	skipRace(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &echoServer{ln: ln, port: ln.Addr().(*net.TCPAddr).Port, silent: silent}
	t.Cleanup(func() { ln.Close() })
	go srv.serve()
	return srv
}

func (e *echoServer) serve() {
	for {
		conn, err := e.ln.Accept()
		if err != nil {
			return
		}
		go e.handle(conn)
	}
}

func (e *echoServer) handle(conn net.Conn) {
	defer conn.Close()
	if _, err := conn.Write([]byte(testGreeting)); err != nil {
		return
	}
	buf := make([]byte, 1024)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		chunk := append([]byte(nil), buf[:n]...)
		e.mu.Lock()
		e.received = append(e.received, chunk)
		e.mu.Unlock()
		if e.silent {
			continue
		}
		if _, err := conn.Write(chunk); err != nil {
			return
		}
	}
}

func (e *echoServer) payloads() [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]byte(nil), e.received...)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// newTestSession builds a session against port with quiet logging.
func newTestSession(port int, flags *Flags, out *bytes.Buffer) *Session {
	logger := quietLogger()
	var w io.Writer = io.Discard
	if out != nil {
		w = out
	}
	return NewSession(Options{
		Host:      "127.0.0.1",
		Port:      port,
		Flags:     flags,
		Transport: transport.Config{DialTimeout: time.Second},
		Output:    w,
		Logger:    logger,
	})
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

// closedPort returns a port nothing is listening on.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}
