package wire

import (
	"testing"

	"github.com/sanverite/echo-client/internal/message"
)

func TestEncode_Format(t *testing.T) {
	m := message.Message{Text: "hello", Echo: true, Caps: false, Rvrs: true}
	got := string(Encode(m))
	want := "|TEXTSTART|hello|TEXTEND||ECHOSTART|True|ECHOEND||CAPSSTART|False|CAPSEND||RVRSSTART|True|RVRSEND|"
	if got != want {
		t.Errorf("Encode() =\n%q\nwant\n%q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{"", "hello", "  spaced  out ", "multi\nline", "ünïcödé", "|almost|a|tag|", ";caps literal"}
	for _, text := range texts {
		for bits := 0; bits < 8; bits++ {
			m := message.Message{
				Text: text,
				Echo: bits&1 != 0,
				Caps: bits&2 != 0,
				Rvrs: bits&4 != 0,
			}
			if got := Decode(Encode(m)); got != m {
				t.Errorf("Decode(Encode(%+v)) = %+v", m, got)
			}
		}
	}
}

func TestDecode_OrderIndependent(t *testing.T) {
	payload := "|RVRSSTART|True|RVRSEND||TEXTSTART|abc|TEXTEND||CAPSSTART|True|CAPSEND||ECHOSTART|True|ECHOEND|"
	got := Decode([]byte(payload))
	want := message.Message{Text: "abc", Echo: true, Caps: true, Rvrs: true}
	if got != want {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestDecode_Permissive(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    message.Message
	}{
		{"empty", "", message.Message{}},
		{"greeting", "Welcome to the echo server!", message.Message{}},
		{"wake payload", "Bye!", message.Message{}},
		{"text only", "|TEXTSTART|hi|TEXTEND|", message.Message{Text: "hi"}},
		{"unterminated text", "|TEXTSTART|hi", message.Message{}},
		{"lowercase bool", "|ECHOSTART|true|ECHOEND|", message.Message{}},
		{"first end tag wins", "|TEXTSTART|a|TEXTEND|b|TEXTEND|", message.Message{Text: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decode([]byte(tt.payload)); got != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestContainsTag(t *testing.T) {
	if ContainsTag("plain text") {
		t.Error("ContainsTag(plain text) = true")
	}
	if !ContainsTag("oops |CAPSEND| inside") {
		t.Error("ContainsTag should detect an end tag")
	}
}

func TestIsProtocol(t *testing.T) {
	if IsProtocol([]byte("Bye!")) {
		t.Error("IsProtocol(Bye!) = true")
	}
	if !IsProtocol(Encode(message.Default())) {
		t.Error("IsProtocol(encoded message) = false")
	}
	if !IsProtocol([]byte("junk |CAPSSTART|True|CAPSEND|")) {
		t.Error("IsProtocol should accept a single field")
	}
}
