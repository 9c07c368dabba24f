package secret

import (
	"fmt"
	"testing"
)

func TestBytesRedactsFormatting(t *testing.T) {
	s := New([]byte("super-secret-key"))

	if got := fmt.Sprintf("%v", s); got != redacted {
		t.Errorf("%%v = %q, want %q", got, redacted)
	}
	if got := fmt.Sprintf("%s", s); got != redacted {
		t.Errorf("%%s = %q, want %q", got, redacted)
	}

	b, err := s.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(b) != `"[REDACTED]"` {
		t.Errorf("MarshalJSON = %s, want redacted literal", b)
	}
}

func TestBytesExposeReturnsOriginalData(t *testing.T) {
	orig := []byte("0123456789abcdef")
	s := New(orig)

	if string(s.Expose()) != string(orig) {
		t.Errorf("Expose() = %q, want %q", s.Expose(), orig)
	}

	// Mutating the caller's slice after New must not affect the secret.
	orig[0] = 'X'
	if s.Expose()[0] == 'X' {
		t.Error("secret aliases caller's backing array")
	}
}

func TestBytesZero(t *testing.T) {
	s := New([]byte{1, 2, 3, 4})
	s.Zero()
	for i, b := range s.Expose() {
		if b != 0 {
			t.Errorf("byte %d = %d, want 0 after Zero", i, b)
		}
	}
}

func TestNilBytesIsSafe(t *testing.T) {
	var s *Bytes
	if s.Len() != 0 {
		t.Error("nil secret should report length 0")
	}
	if s.Expose() != nil {
		t.Error("nil secret should expose nil")
	}
	s.Zero() // must not panic
}
