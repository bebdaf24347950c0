// Command echoclient is an interactive client for a line-oriented echo server.
//
// Usage:
//
//   echoclient --host 127.0.0.1 --port 7000 --connect
//
// Flags:
//   --host            server host (default $ECHO_HOST or 127.0.0.1)
//   --port            server port (default $ECHO_PORT)
//   --dial-timeout    connect timeout (default $ECHO_DIAL_TIMEOUT or 5s)
//   --stop-grace      bound on the receiver join at disconnect (0 waits)
//   --status-listen   serve the read-only HTTP status API (default $ECHO_STATUS_LISTEN)
//   --connect         connect on startup (default $ECHO_AUTOCONNECT)
//   --set             initial behavior flags, e.g. rawread=on,instantread=off
//
// Behavior:
//
// Reads commands from stdin (type 'help'), printing a prompt only when stdin
// is a terminal. Errors print as "! <err>" and the shell continues. quit,
// end of input, SIGINT and SIGTERM all shut the session down cleanly; a
// panic is recovered, the session is shut down and the exit status is 1.
package main
