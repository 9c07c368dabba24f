// Package secret wraps key material that must never be logged, printed,
// or accidentally serialized, and that should be wiped from memory once
// its holder is done with it.
package secret

import "runtime"

// redacted is printed in place of any secret value.
const redacted = "[REDACTED]"

// Bytes holds a byte slice secret (symmetric keys, signing keys). The zero
// value is not usable; construct with New.
type Bytes struct {
	b []byte
}

// New copies data into a new Bytes secret. The caller's slice is not
// retained or mutated.
func New(data []byte) *Bytes {
	s := &Bytes{b: append([]byte(nil), data...)}
	runtime.SetFinalizer(s, (*Bytes).Zero)
	return s
}

// Expose returns the raw key material for use in a cryptographic call.
// The returned slice aliases internal storage and must not be retained
// past the call site.
func (s *Bytes) Expose() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Len reports the secret's length without exposing its contents.
func (s *Bytes) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Zero overwrites the secret's backing array with zeroes. Safe to call
// more than once.
func (s *Bytes) Zero() {
	if s == nil {
		return
	}
	for i := range s.b {
		s.b[i] = 0
	}
}

// String implements fmt.Stringer, redacting the value so it never leaks
// into logs via %v/%s formatting.
func (s *Bytes) String() string { return redacted }

// GoString implements fmt.GoStringer, redacting the value under %#v too.
func (s *Bytes) GoString() string { return redacted }

// MarshalJSON redacts the secret instead of encoding it, so it can be
// embedded in a config struct without leaking through accidental
// serialization.
func (s *Bytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}
