package api

import (
	"strings"
	"time"

	"github.com/sanverite/echo-client/internal/core"
	"github.com/sanverite/echo-client/internal/message"
	"github.com/sanverite/echo-client/internal/probe"
)

// FromCoreSnapshot converts core.Snapshot to the public StatusResponse.
// Uptime is measured from ConnectedAt; both are empty while disconnected.
func FromCoreSnapshot(s core.Snapshot) StatusResponse {
	var connected string
	var uptime int64
	if !s.ConnectedAt.IsZero() {
		connected = s.ConnectedAt.UTC().Format(time.RFC3339)
		uptime = int64(TimeNow().Sub(s.ConnectedAt).Seconds())
		if uptime < 0 {
			uptime = 0
		}
	}

	var buf *MessageView
	if s.Buffer != nil {
		v := fromMessage(*s.Buffer)
		buf = &v
	}

	flags := make(map[string]bool, len(core.FlagNames()))
	for _, name := range core.FlagNames() {
		on, _ := s.Flags.Get(name)
		flags[name] = on
	}

	return StatusResponse{
		SessionID:   s.ID,
		State:       string(s.State),
		Server:      s.Addr,
		Transport:   string(s.TransportState),
		Receiving:   s.Receiving,
		ConnectedAt: connected,
		UptimeSec:   uptime,
		Buffer:      buf,
		InboxCount:  len(s.Inbox),
		Flags:       flags,
		Killed:      s.Killed,
		GeneratedAt: TimeNow().UTC().Format(time.RFC3339),
	}
}

// FromInbox lists inbox messages with 1-based indexes, rendered in mode.
func FromInbox(inbox []message.Message, mode message.Mode) InboxResponse {
	entries := make([]InboxEntry, 0, len(inbox))
	for i, m := range inbox {
		entries = append(entries, InboxEntry{
			Index:    i + 1,
			Message:  fromMessage(m),
			Rendered: message.Render(m, mode),
		})
	}
	return InboxResponse{
		Mode:        mode.String(),
		Count:       len(entries),
		Entries:     entries,
		GeneratedAt: TimeNow().UTC().Format(time.RFC3339),
	}
}

// FromProbeSummary converts probe.Summary to the public ProbeView.
// Keeps slice/map fields immutable by cloning.
func FromProbeSummary(server string, p probe.Summary) ProbeView {
	var lastChecked string
	if !p.LastChecked.IsZero() {
		lastChecked = p.LastChecked.UTC().Format(time.RFC3339)
	}
	return ProbeView{
		Server:      server,
		Reachable:   p.Reachable,
		GreetingOK:  p.GreetingOK,
		EchoOK:      p.EchoOK,
		Greeting:    p.Greeting,
		LatenciesMs: cloneLatencies(p.LatenciesMs),
		Warnings:    append([]string(nil), p.Warnings...),
		LastChecked: lastChecked,
	}
}

func cloneLatencies(in map[string]int64) map[string]int64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func fromMessage(m message.Message) MessageView {
	return MessageView{Text: m.Text, Echo: m.Echo, Caps: m.Caps, Rvrs: m.Rvrs}
}

// parseMode maps a query value to a render mode. Empty selects Fancy.
func parseMode(v string) (message.Mode, bool) {
	switch strings.ToLower(v) {
	case "", message.Fancy.String():
		return message.Fancy, true
	case message.Raw.String():
		return message.Raw, true
	default:
		return 0, false
	}
}
