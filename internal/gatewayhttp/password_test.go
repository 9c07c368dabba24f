package gatewayhttp

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePasswordEnforcesLengthAndCharset(t *testing.T) {
	cases := []struct {
		name    string
		pass    string
		wantErr error
	}{
		{"too short", "short1", ErrPasswordTooShort},
		{"too long", strings.Repeat("a", maxPasswordLength+1), ErrPasswordTooLong},
		{"tab", "pass\tword1", ErrPasswordForbidden},
		{"newline", "pass\nword1", ErrPasswordForbidden},
		{"space", "pass word1", ErrPasswordForbidden},
		{"ok", "correct horse battery staple", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.pass)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidatePassword(%q) = %v, want nil", tc.pass, err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ValidatePassword(%q) = %v, want %v", tc.pass, err, tc.wantErr)
			}
		})
	}
}

func TestHashAndVerifyPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("expected the correct password to verify")
	}

	ok, err = VerifyPassword("wrong password entirely", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatal("expected the wrong password to fail verification")
	}
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	a, err := HashPassword("same password same password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("same password same password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Fatal("expected two hashes of the same password to differ by salt")
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	if _, err := VerifyPassword("whatever", "not-a-valid-hash"); !errors.Is(err, ErrPasswordHashInvalid) {
		t.Fatalf("err = %v, want ErrPasswordHashInvalid", err)
	}
}
