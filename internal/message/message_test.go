package message

import (
	"errors"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	m, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) error: %v", err)
	}
	want := Message{Text: "", Echo: true, Caps: false, Rvrs: false}
	if m != want {
		t.Errorf("New(nil) = %+v, want %+v", m, want)
	}
}

func TestNew_AppliesInitial(t *testing.T) {
	m, err := New(Fields{"text": "hi", "caps": true, "echo": false})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	want := Message{Text: "hi", Echo: false, Caps: true}
	if m != want {
		t.Errorf("New = %+v, want %+v", m, want)
	}
}

func TestModify_UnknownFieldLeavesMessageUnchanged(t *testing.T) {
	m := Default()
	m.Text = "keep"
	before := m

	err := m.Modify(Fields{"shout": true})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Modify error = %v, want ErrUnknownField", err)
	}
	if m != before {
		t.Errorf("message changed: %+v, want %+v", m, before)
	}
}

func TestModify_PartialApply(t *testing.T) {
	m := Default()
	err := m.Modify(Fields{
		"text": 42,
		"caps": true,
		"rvrs": "yes",
		"spin": true,
		"echo": false,
	})

	if !errors.Is(err, ErrFieldType) {
		t.Errorf("error should wrap ErrFieldType: %v", err)
	}
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("error should wrap ErrUnknownField: %v", err)
	}
	want := Message{Text: "", Echo: false, Caps: true, Rvrs: false}
	if m != want {
		t.Errorf("message = %+v, want %+v", m, want)
	}
}

func TestModify_ErrorOrderIsDeterministic(t *testing.T) {
	changes := Fields{"zz": 1, "aa": 2, "text": 3}
	first := Default()
	second := Default()
	e1 := first.Modify(changes)
	e2 := second.Modify(changes)
	if e1.Error() != e2.Error() {
		t.Errorf("errors differ between runs:\n%v\n%v", e1, e2)
	}
}

func TestModifiers_ClosedSetInWireOrder(t *testing.T) {
	got := Modifiers()
	want := []string{"echo", "caps", "rvrs"}
	if len(got) != len(want) {
		t.Fatalf("Modifiers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Modifiers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	got[0] = "mutated"
	if Modifiers()[0] != "echo" {
		t.Error("Modifiers() must return a copy")
	}
	if IsModifier("shout") {
		t.Error("IsModifier(shout) = true")
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		mode Mode
		want string
	}{
		{"plain", Message{Text: "hello", Echo: true}, Fancy, "hello"},
		{"caps", Message{Text: "hello", Echo: true, Caps: true}, Fancy, "HELLO"},
		{"reverse", Message{Text: "hello", Echo: true, Rvrs: true}, Fancy, "olleh"},
		{"caps then reverse", Message{Text: "abc", Echo: true, Caps: true, Rvrs: true}, Fancy, "CBA"},
		{"noecho", Message{Text: "hello", Echo: false, Caps: true}, Fancy, ""},
		{"reverse multibyte", Message{Text: "héllo", Echo: true, Rvrs: true}, Fancy, "olléh"},
		{"raw", Message{Text: "hi", Echo: false, Caps: true}, Raw, "'hi' |echo:false|caps:true|rvrs:false|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.msg, tt.mode); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Fields
		wantErr error
	}{
		{
			name:  "directives then text",
			input: ";noecho ;caps hello world",
			want:  Fields{"echo": false, "caps": true, "text": "hello world"},
		},
		{
			name:  "explicit text marker",
			input: ";text ;not a directive",
			want:  Fields{"text": ";not a directive"},
		},
		{
			name:  "text keeps inner whitespace",
			input: "  ;reverse   a  b ",
			want:  Fields{"rvrs": true, "text": "a  b "},
		},
		{
			name:  "no text",
			input: ";caps",
			want:  Fields{"caps": true, "text": ""},
		},
		{
			name:  "empty input",
			input: "",
			want:  Fields{"text": ""},
		},
		{
			name:  "text marker at end",
			input: ";caps ;text",
			want:  Fields{"caps": true, "text": ""},
		},
		{
			name:  "prefix inside text is literal",
			input: "hi ;caps",
			want:  Fields{"text": "hi ;caps"},
		},
		{
			name:    "unknown directive skipped",
			input:   ";spoof ;caps yo",
			want:    Fields{"caps": true, "text": "yo"},
			wantErr: ErrUnknownDirective,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseText(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseText(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("ParseText(%q)[%q] = %v, want %v", tt.input, k, got[k], v)
				}
			}
		})
	}
}

func TestParseText_FeedsNew(t *testing.T) {
	fields, err := ParseText(";caps ;reverse abc")
	if err != nil {
		t.Fatalf("ParseText error: %v", err)
	}
	m, err := New(fields)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if got := Render(m, Fancy); got != "CBA" {
		t.Errorf("Render = %q, want %q", got, "CBA")
	}
}
