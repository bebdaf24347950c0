package message

import (
	"errors"
	"fmt"
	"sort"
)

// Field and modifier names accepted in a Fields map.
const (
	FieldText = "text"
	ModEcho   = "echo"
	ModCaps   = "caps"
	ModRvrs   = "rvrs"
)

// modifierOrder is the fixed iteration order used by the wire codec and Raw rendering.
var modifierOrder = []string{ModEcho, ModCaps, ModRvrs}

var (
	// ErrUnknownField is reported for a key that is neither text nor a modifier.
	ErrUnknownField = errors.New("unknown message field")
	// ErrFieldType is reported when a known key carries a value of the wrong type.
	ErrFieldType = errors.New("wrong type for message field")
)

// Fields is a partial field map. "text" takes a string; modifier names take a bool.
type Fields map[string]any

// Message is a text plus its display modifiers.
type Message struct {
	Text string
	Echo bool
	Caps bool
	Rvrs bool
}

// Default returns the message every construction starts from.
func Default() Message {
	return Message{Echo: true}
}

// New builds a default message and applies initial with the same rules as Modify.
// The returned message is valid even when err is non-nil; err lists the
// rejected fields.
func New(initial Fields) (Message, error) {
	m := Default()
	err := m.Modify(initial)
	return m, err
}

// Modifiers returns the closed modifier set in wire order.
func Modifiers() []string {
	return append([]string(nil), modifierOrder...)
}

// IsModifier reports whether name belongs to the closed modifier set.
func IsModifier(name string) bool {
	for _, mod := range modifierOrder {
		if mod == name {
			return true
		}
	}
	return false
}

// Modify applies changes field by field. Fields that fail validation are
// skipped and reported; the others are applied. Errors are joined in key
// order so the result is deterministic.
func (m *Message) Modify(changes Fields) error {
	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		if err := m.set(key, changes[key]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Message) set(key string, value any) error {
	if key == FieldText {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants string, got %T", ErrFieldType, key, value)
		}
		m.Text = s
		return nil
	}

	ptr := m.modifier(key)
	if ptr == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("%w: %s wants bool, got %T", ErrFieldType, key, value)
	}
	*ptr = b
	return nil
}

func (m *Message) modifier(name string) *bool {
	switch name {
	case ModEcho:
		return &m.Echo
	case ModCaps:
		return &m.Caps
	case ModRvrs:
		return &m.Rvrs
	default:
		return nil
	}
}

// Modifier returns the state of a named modifier and whether the name is known.
func (m Message) Modifier(name string) (bool, bool) {
	ptr := m.modifier(name)
	if ptr == nil {
		return false, false
	}
	return *ptr, true
}
