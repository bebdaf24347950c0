package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sanverite/echo-client/internal/core"
	"github.com/sanverite/echo-client/internal/message"
	"github.com/sanverite/echo-client/internal/probe"
)

// Run executes cmd against s. Informational output (help, status, view and
// directive warnings) goes to w; reads are displayed by the session itself.
func Run(ctx context.Context, s *core.Session, cmd Command, w io.Writer) error {
	switch cmd.Kind {
	case KindNone:
		return nil
	case KindHelp:
		return printHelp(w, cmd.Topics)
	case KindStatus:
		printStatus(w, s.Status())
		return nil
	case KindProbe:
		target := cmd.Host
		if target == "" {
			target = s.Status().Addr
		}
		return printProbe(ctx, w, target)
	case KindWrite:
		fields := parseFields(w, cmd.Text)
		msg, err := message.New(fields)
		if err != nil {
			return err
		}
		return s.MessageWrite(ctx, msg)
	case KindView:
		msg, ok := s.MessageView()
		if !ok {
			return core.ErrBufferEmpty
		}
		fmt.Fprintf(w, "raw:   %s\n", message.Render(msg, message.Raw))
		fmt.Fprintf(w, "fancy: %s\n", message.Render(msg, message.Fancy))
		return nil
	case KindEdit:
		fields := parseFields(w, cmd.Text)
		// Directives alone leave the buffered text untouched.
		if text, _ := fields[message.FieldText].(string); text == "" {
			delete(fields, message.FieldText)
		}
		return s.MessageEdit(fields)
	case KindClear:
		return s.MessageClear()
	case KindSend:
		return s.MessageSend(ctx)
	case KindRead:
		switch {
		case cmd.All:
			_, err := s.InboxReadAll()
			return err
		case cmd.Index >= 0:
			_, err := s.InboxRead(cmd.Index)
			return oneBased(err, cmd.Index)
		default:
			_, err := s.InboxReadTop()
			return err
		}
	case KindDelete:
		return oneBased(s.InboxDelete(cmd.Index), cmd.Index)
	case KindEmpty:
		s.InboxEmpty()
		return nil
	case KindSet:
		return s.SetFlag(cmd.Flag, cmd.On)
	case KindHost:
		return s.SetHost(cmd.Host)
	case KindPort:
		return s.SetPort(cmd.Port)
	case KindConnect:
		return s.Connect(ctx)
	case KindDisconnect:
		return s.Disconnect()
	case KindQuit:
		return s.Shutdown()
	default:
		return fmt.Errorf("%w: kind %d", ErrUnknownCommand, cmd.Kind)
	}
}

// parseFields extracts message fields from text. Unknown directives are
// reported on w and otherwise ignored.
func parseFields(w io.Writer, text string) message.Fields {
	fields, err := message.ParseText(text)
	if err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
	return fields
}

// oneBased rewrites an out-of-range error with the index the user typed.
func oneBased(err error, index int) error {
	if errors.Is(err, core.ErrIndexOutOfRange) {
		return fmt.Errorf("%w: no message %d", core.ErrIndexOutOfRange, index+1)
	}
	return err
}

func printProbe(ctx context.Context, w io.Writer, target string) error {
	sum, err := probe.ProbeEcho(ctx, probe.Config{Server: target})
	fmt.Fprintf(w, "probe %s: reachable=%s greeting=%s echo=%s\n",
		target, onOff(sum.Reachable), onOff(sum.GreetingOK), onOff(sum.EchoOK))
	for _, step := range []string{"tcp_connect", "greeting", "echo_roundtrip"} {
		if ms, ok := sum.LatenciesMs[step]; ok {
			fmt.Fprintf(w, "  %-15s %dms\n", step, ms)
		}
	}
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	return nil
}

func printStatus(w io.Writer, snap core.Snapshot) {
	fmt.Fprintf(w, "session:   %s\n", snap.ID)
	fmt.Fprintf(w, "server:    %s\n", snap.Addr)
	conn := "disconnected"
	if snap.State == core.StateListening {
		conn = fmt.Sprintf("connected for %s", time.Since(snap.ConnectedAt).Round(time.Second))
	}
	fmt.Fprintf(w, "state:     %s (%s)\n", snap.State, conn)
	buffer := "empty"
	if snap.Buffer != nil {
		buffer = message.Render(*snap.Buffer, message.Raw)
	}
	fmt.Fprintf(w, "buffer:    %s\n", buffer)
	fmt.Fprintf(w, "inbox:     %d message(s)\n", len(snap.Inbox))
	for _, name := range core.FlagNames() {
		on, _ := snap.Flags.Get(name)
		fmt.Fprintf(w, "  %-12s %s\n", name, onOff(on))
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func printHelp(w io.Writer, topics []string) error {
	if len(topics) == 0 {
		fmt.Fprintln(w, "commands:")
		for _, sp := range specs {
			fmt.Fprintf(w, "  %-28s %s\n", sp.usage, sp.summary)
		}
		return nil
	}
	var unknown []string
	for _, topic := range topics {
		topic = strings.ToLower(topic)
		switch topic {
		case "flags":
			fmt.Fprintln(w, "flags (set <flag> <on|off>):")
			for _, name := range core.FlagNames() {
				fmt.Fprintf(w, "  %s\n", name)
			}
		case "modifiers":
			fmt.Fprintln(w, "modifiers (write/edit directives):")
			fmt.Fprintf(w, "  %-10s turn echo off\n", message.DirectiveNoEcho)
			fmt.Fprintf(w, "  %-10s upper-case the echo\n", message.DirectiveCaps)
			fmt.Fprintf(w, "  %-10s reverse the echo\n", message.DirectiveReverse)
			fmt.Fprintf(w, "  %-10s the rest of the line is text\n", message.DirectiveText)
		default:
			sp, ok := lookup(topic)
			if !ok {
				unknown = append(unknown, topic)
				continue
			}
			fmt.Fprintf(w, "%s\n  %s\n", sp.usage, sp.summary)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: no help for %s", ErrBadOperands, strings.Join(unknown, ", "))
	}
	return nil
}
