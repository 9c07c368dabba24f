package gatewayhttp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Password validation errors (spec §4.5: "length 8-64, forbidden
// characters set").
var (
	ErrPasswordTooShort    = errors.New("gatewayhttp: password too short")
	ErrPasswordTooLong     = errors.New("gatewayhttp: password too long")
	ErrPasswordForbidden   = errors.New("gatewayhttp: password contains a forbidden character")
	ErrPasswordHashInvalid = errors.New("gatewayhttp: stored password hash is malformed")
)

const (
	minPasswordLength = 8
	maxPasswordLength = 64

	argon2Time    = 1
	argon2Memory  = 64 * 1024 // KiB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// forbiddenPasswordChars excludes control characters and whitespace that
// would make a password ambiguous to type or copy.
const forbiddenPasswordChars = "\t\n\r\x00 "

// ValidatePassword enforces spec §4.5's length and character rules.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: minimum %d characters", ErrPasswordTooShort, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: maximum %d characters", ErrPasswordTooLong, maxPasswordLength)
	}
	if strings.ContainsAny(password, forbiddenPasswordChars) {
		return ErrPasswordForbidden
	}
	return nil
}

// HashPassword derives a randomly salted Argon2id hash, encoded as
// "$argon2id$v=19$m=...,t=...,p=...$salt$hash" (the format argon2's own
// ecosystem tooling expects).
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating password salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
	return encoded, nil
}

// VerifyPassword checks password against an encoded hash produced by
// HashPassword, in constant time.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrPasswordHashInvalid
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("%w: %v", ErrPasswordHashInvalid, err)
	}

	var memory uint32
	var time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("%w: %v", ErrPasswordHashInvalid, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPasswordHashInvalid, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPasswordHashInvalid, err)
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
