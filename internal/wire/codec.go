// Package wire encodes messages into the tag-delimited text format spoken by
// the echo server.
//
// Every field is written as start-tag, value, end-tag. Decoding looks for
// each tag pair independently, so field order on the wire does not matter.
// A missing pair decodes to the zero value ("" or false) rather than
// failing, which lets the server answer with minimal acknowledgements.
//
// Text containing a tag literal cannot round-trip. This is a property of
// the format and is not validated here; see ContainsTag.
package wire

import (
	"strings"

	"github.com/sanverite/echo-client/internal/message"
)

// Canonical boolean literals. Anything other than True decodes as false.
const (
	True  = "True"
	False = "False"
)

type tagPair struct {
	start string
	end   string
}

var tags = map[string]tagPair{
	message.FieldText: {"|TEXTSTART|", "|TEXTEND|"},
	message.ModEcho:   {"|ECHOSTART|", "|ECHOEND|"},
	message.ModCaps:   {"|CAPSSTART|", "|CAPSEND|"},
	message.ModRvrs:   {"|RVRSSTART|", "|RVRSEND|"},
}

// Encode serializes m: text first, then each modifier in wire order.
func Encode(m message.Message) []byte {
	var b strings.Builder
	wrap(&b, message.FieldText, m.Text)
	for _, mod := range message.Modifiers() {
		v, _ := m.Modifier(mod)
		wrap(&b, mod, formatBool(v))
	}
	return []byte(b.String())
}

// Decode parses payload. It never fails: absent or malformed fields take
// their zero value.
func Decode(payload []byte) message.Message {
	s := string(payload)
	m := message.Message{}
	m.Text, _ = unwrap(s, message.FieldText)

	changes := message.Fields{}
	for _, mod := range message.Modifiers() {
		v, _ := unwrap(s, mod)
		changes[mod] = v == True
	}
	// Every key is a known modifier with a bool value; Modify cannot fail here.
	_ = m.Modify(changes)
	return m
}

// ContainsTag reports whether text includes any tag literal and would
// therefore not survive a round trip.
func ContainsTag(text string) bool {
	for _, tp := range tags {
		if strings.Contains(text, tp.start) || strings.Contains(text, tp.end) {
			return true
		}
	}
	return false
}

// IsProtocol reports whether payload carries at least one start tag. Server
// greetings and the shutdown wake payload do not.
func IsProtocol(payload []byte) bool {
	s := string(payload)
	for _, tp := range tags {
		if strings.Contains(s, tp.start) {
			return true
		}
	}
	return false
}

func wrap(b *strings.Builder, field, value string) {
	tp := tags[field]
	b.WriteString(tp.start)
	b.WriteString(value)
	b.WriteString(tp.end)
}

// unwrap returns the value between field's start tag and the first end tag
// that follows it.
func unwrap(s, field string) (string, bool) {
	tp := tags[field]
	i := strings.Index(s, tp.start)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(tp.start):]
	j := strings.Index(rest, tp.end)
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

func formatBool(v bool) string {
	if v {
		return True
	}
	return False
}
