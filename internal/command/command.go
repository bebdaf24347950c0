package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sanverite/echo-client/internal/transport"
)

var (
	// ErrUnknownCommand is returned for a keyword Parse does not know.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadOperands is returned when operands do not fit the command's signature.
	ErrBadOperands = errors.New("bad operands")
)

// Kind identifies an operation.
type Kind int

const (
	KindNone Kind = iota
	KindHelp
	KindStatus
	KindProbe
	KindWrite
	KindView
	KindEdit
	KindClear
	KindSend
	KindRead
	KindDelete
	KindEmpty
	KindSet
	KindHost
	KindPort
	KindConnect
	KindDisconnect
	KindQuit
)

// signature describes the operands a kind accepts. When rest is set the
// whole remainder of the line is a single operand.
type signature struct {
	min, max int
	rest     bool
}

type spec struct {
	kind    Kind
	name    string
	sig     signature
	usage   string
	summary string
}

// unbounded marks a signature without an upper operand limit.
const unbounded = -1

var specs = []spec{
	{KindHelp, "help", signature{0, unbounded, false}, "help [topic...]", "show commands, or help on topics (commands, 'flags', 'modifiers')"},
	{KindStatus, "status", signature{0, 0, false}, "status", "show connection, buffers and flags"},
	{KindProbe, "probe", signature{0, 1, false}, "probe [host:port]", "check that the server (default: the configured one) greets and echoes"},
	{KindWrite, "write", signature{1, 1, true}, "write <text-with-modifiers>", "put a message in the write buffer"},
	{KindView, "view", signature{0, 0, false}, "view", "show the write buffer"},
	{KindEdit, "edit", signature{1, 1, true}, "edit <text-with-modifiers>", "change the buffered message"},
	{KindClear, "clear", signature{0, 0, false}, "clear", "empty the write buffer"},
	{KindSend, "send", signature{0, 0, false}, "send", "send the buffered message"},
	{KindRead, "read", signature{0, 1, false}, "read [n|all]", "display the newest, the n-th or all received messages"},
	{KindDelete, "delete", signature{1, 1, false}, "delete <n>", "remove the n-th received message"},
	{KindEmpty, "empty", signature{0, 0, false}, "empty", "remove every received message"},
	{KindSet, "set", signature{2, 2, false}, "set <flag> <on|off>", "change a behavior flag"},
	{KindHost, "host", signature{1, 1, false}, "host <ip>", "set the server host"},
	{KindPort, "port", signature{1, 1, false}, "port <n>", "set the server port"},
	{KindConnect, "connect", signature{0, 0, false}, "connect", "connect to the server"},
	{KindDisconnect, "disconnect", signature{0, 0, false}, "disconnect", "close the connection"},
	{KindQuit, "quit", signature{0, 0, false}, "quit", "disconnect and leave"},
}

func lookup(name string) (spec, bool) {
	for _, sp := range specs {
		if sp.name == name {
			return sp, true
		}
	}
	return spec{}, false
}

func (k Kind) String() string {
	for _, sp := range specs {
		if sp.kind == k {
			return sp.name
		}
	}
	return "none"
}

// Command is a parsed shell line. Only the operand fields relevant to
// Kind are set.
type Command struct {
	Kind Kind

	Text   string   // write, edit: text with modifier directives
	Index  int      // read, delete: 0-based inbox index; -1 when absent
	All    bool     // read all
	Flag   string   // set
	On     bool     // set
	Host   string   // host; probe target when set
	Port   int      // port
	Topics []string // help
}

// Parse reads one shell line. A blank line yields KindNone.
func Parse(line string) (Command, error) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimLeft(line, " \t")
	if strings.TrimSpace(trimmed) == "" {
		return Command{Kind: KindNone, Index: -1}, nil
	}

	keyword, rest := splitKeyword(trimmed)
	sp, ok := lookup(strings.ToLower(keyword))
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, keyword)
	}

	var operands []string
	if sp.sig.rest {
		if rest != "" {
			operands = []string{rest}
		}
	} else {
		operands = strings.Fields(rest)
	}
	if len(operands) < sp.sig.min || (sp.sig.max != unbounded && len(operands) > sp.sig.max) {
		return Command{}, fmt.Errorf("%w: usage: %s", ErrBadOperands, sp.usage)
	}

	cmd := Command{Kind: sp.kind, Index: -1}
	switch sp.kind {
	case KindWrite, KindEdit:
		if len(operands) == 1 {
			cmd.Text = operands[0]
		}
	case KindRead:
		if len(operands) == 1 {
			if strings.EqualFold(operands[0], "all") {
				cmd.All = true
				break
			}
			idx, err := parseIndex(operands[0])
			if err != nil {
				return Command{}, err
			}
			cmd.Index = idx
		}
	case KindDelete:
		idx, err := parseIndex(operands[0])
		if err != nil {
			return Command{}, err
		}
		cmd.Index = idx
	case KindSet:
		on, err := parseSwitch(operands[1])
		if err != nil {
			return Command{}, err
		}
		cmd.Flag = strings.ToLower(operands[0])
		cmd.On = on
	case KindHost:
		cmd.Host = operands[0]
	case KindProbe:
		if len(operands) == 1 {
			cmd.Host = operands[0]
		}
	case KindPort:
		port, err := transport.ParsePort(operands[0])
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrBadOperands, err)
		}
		cmd.Port = port
	case KindHelp:
		cmd.Topics = operands
	}
	return cmd, nil
}

// splitKeyword separates the first token from the rest of the line. One
// separating space is dropped; the rest is otherwise verbatim.
func splitKeyword(line string) (string, string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], line[i+1:]
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: index must be a positive number, got %q", ErrBadOperands, s)
	}
	return n - 1, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: want on or off, got %q", ErrBadOperands, s)
	}
}
