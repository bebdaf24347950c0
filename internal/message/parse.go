package message

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DirectivePrefix marks a token as a modifier directive.
const DirectivePrefix = ";"

// Directive tokens understood by ParseText.
const (
	DirectiveNoEcho  = ";noecho"
	DirectiveCaps    = ";caps"
	DirectiveReverse = ";reverse"
	DirectiveText    = ";text"
)

// ErrUnknownDirective is reported for a ';' token ParseText does not know.
var ErrUnknownDirective = errors.New("unknown message directive")

// ParseText scans leading directives in input and returns the resulting
// Fields. The "text" key is always present.
//
// Scanning stops at the first token without the directive prefix, whose
// offset starts the text verbatim, or at ";text", after which everything
// (minus one separating space) is literal. Unknown directives are reported
// and skipped; the remaining fields are still returned.
func ParseText(input string) (Fields, error) {
	fields := Fields{}
	var errs []error

	pos := 0
	for {
		start, end := nextToken(input, pos)
		if start < 0 {
			fields[FieldText] = ""
			break
		}
		tok := input[start:end]
		if !strings.HasPrefix(tok, DirectivePrefix) {
			fields[FieldText] = input[start:]
			break
		}
		if tok == DirectiveText {
			fields[FieldText] = dropSeparator(input[end:])
			break
		}

		switch tok {
		case DirectiveNoEcho:
			fields[ModEcho] = false
		case DirectiveCaps:
			fields[ModCaps] = true
		case DirectiveReverse:
			fields[ModRvrs] = true
		default:
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownDirective, tok))
		}
		pos = end
	}
	return fields, errors.Join(errs...)
}

// nextToken returns the byte bounds of the next whitespace-delimited token
// at or after pos, or (-1, -1) when none remains.
func nextToken(s string, pos int) (int, int) {
	start := -1
	for i, r := range s[pos:] {
		if !unicode.IsSpace(r) {
			start = pos + i
			break
		}
	}
	if start < 0 {
		return -1, -1
	}
	end := len(s)
	for i, r := range s[start:] {
		if unicode.IsSpace(r) {
			end = start + i
			break
		}
	}
	return start, end
}

func dropSeparator(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size > 0 && unicode.IsSpace(r) {
		return s[size:]
	}
	return s
}
