package types

import "testing"

func TestImageDataURI(t *testing.T) {
	if got := ImageDataURI(""); got != "" {
		t.Fatalf("empty payload should stay empty, got %q", got)
	}
	if got := ImageDataURI("aGVsbG8="); got != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("unexpected data URI %q", got)
	}
	already := "data:image/jpeg;base64,aGVsbG8="
	if got := ImageDataURI(already); got != already {
		t.Fatalf("prefixed payload should pass through, got %q", got)
	}
}

func TestStripDataURI(t *testing.T) {
	if got := StripDataURI("data:image/png;base64,aGVsbG8="); got != "aGVsbG8=" {
		t.Fatalf("unexpected stripped payload %q", got)
	}
	if got := StripDataURI("aGVsbG8="); got != "aGVsbG8=" {
		t.Fatalf("plain base64 should pass through, got %q", got)
	}
}
