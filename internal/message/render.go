package message

import (
	"fmt"
	"strings"
)

// Mode selects how Render formats a message.
type Mode int

const (
	// Fancy applies the modifiers: upper-case first, then reverse.
	Fancy Mode = iota
	// Raw lists the literal text and every modifier state.
	Raw
)

func (md Mode) String() string {
	switch md {
	case Fancy:
		return "fancy"
	case Raw:
		return "raw"
	default:
		return fmt.Sprintf("mode(%d)", int(md))
	}
}

// Render formats m according to mode.
//
// Fancy returns "" when echo is off. Caps upper-cases the text; title-case
// is not supported.
func Render(m Message, mode Mode) string {
	if mode == Raw {
		return renderRaw(m)
	}
	return renderFancy(m)
}

func renderFancy(m Message) string {
	if !m.Echo {
		return ""
	}
	text := m.Text
	if m.Caps {
		text = strings.ToUpper(text)
	}
	if m.Rvrs {
		text = reverse(text)
	}
	return text
}

// renderRaw prints the quoted text, one space, then every modifier in fixed
// order as |name:true| or |name:false|. Booleans use Go's lower-case form,
// so this is not byte-identical to displays that print True/False.
func renderRaw(m Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "'%s' ", m.Text)
	for _, mod := range modifierOrder {
		v, _ := m.Modifier(mod)
		fmt.Fprintf(&b, "|%s:%t", mod, v)
	}
	b.WriteByte('|')
	return b.String()
}

// reverse reverses s by rune so multi-byte characters survive.
func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
