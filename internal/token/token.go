// Package token implements the connect-token handshake plane that
// bridges an authenticated HTTP session to a UDP game session (spec
// §4.3): the gateway mints tokens under a master key shared with the
// realm, the realm decrypts and validates them on connect. Grounded on
// la2go's internal/crypto/login_encryption.go issuer/consumer split
// (dynamic key used by one side to produce what the other consumes),
// swapped from Blowfish + checksum to AEAD.
package token

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// MaxServerAddresses bounds the candidate address list (spec §2).
	MaxServerAddresses = 32
	// PrivateSectionSize is the fixed on-wire size of a connect token's
	// encrypted private section (spec §6).
	PrivateSectionSize = 1024
	// ChallengeTokenSize is the fixed on-wire size of a challenge token
	// (spec §6).
	ChallengeTokenSize = 300
	// MaxUserDataSize bounds the opaque user_data blob (spec §6).
	MaxUserDataSize = 256
	// KeySize is the AEAD key length used for both the private section
	// and the challenge token.
	KeySize   = chacha20poly1305.KeySize
	nonceSize = chacha20poly1305.NonceSizeX
)

// PrivateSection is the plaintext sealed inside a ConnectToken's
// encrypted private section (spec §2: "the client-to-server key, the
// server-to-client key, and an arbitrary user_data blob").
type PrivateSection struct {
	ClientToServerKey [KeySize]byte
	ServerToClientKey [KeySize]byte
	UserData          []byte
}

// ConnectToken is the handshake credential minted by the gateway and
// consumed by the realm (spec §2).
type ConnectToken struct {
	ProtocolID       uint64
	CreatedAt        time.Time
	ExpiresAt        time.Time
	TimeoutSeconds   int32
	ServerAddresses  []string
	ClientID         uint64
	Nonce            [nonceSize]byte
	EncryptedPrivate []byte // PrivateSectionSize bytes, AEAD-sealed under the master key
}

// ChallengeToken is issued by the realm during the handshake and echoed
// back by the client to prove it holds the connect token's private
// section (spec §4.2 server-side steps).
type ChallengeToken struct {
	ClientID uint64
	UserData []byte
}

func sealAEAD(key, nonce, associatedData, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("building AEAD: %w", err)
	}
	return aead.Seal(nil, nonce, plaintext, associatedData), nil
}

func openAEAD(key, nonce, associatedData, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("building AEAD: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, associatedData)
	if err != nil {
		return nil, fmt.Errorf("%w", ErrDecryptFailed)
	}
	return plaintext, nil
}

// encodePrivateSection serializes a PrivateSection into a
// PrivateSectionSize-byte buffer (the trailing bytes after UserData are
// zero padding, which is included in the sealed plaintext so the
// ciphertext always has a fixed, traffic-analysis-resistant length).
func encodePrivateSection(p PrivateSection) ([]byte, error) {
	if len(p.UserData) > MaxUserDataSize {
		return nil, fmt.Errorf("%w: user_data length %d exceeds %d", ErrMalformed, len(p.UserData), MaxUserDataSize)
	}
	buf := make([]byte, 0, 2*KeySize+2+MaxUserDataSize)
	buf = append(buf, p.ClientToServerKey[:]...)
	buf = append(buf, p.ServerToClientKey[:]...)
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(p.UserData)))
	buf = append(buf, lenBuf[:]...)
	buf = append(buf, p.UserData...)
	padded := make([]byte, 2*KeySize+2+MaxUserDataSize)
	copy(padded, buf)
	return padded, nil
}

func decodePrivateSection(plaintext []byte) (PrivateSection, error) {
	const minLen = 2*KeySize + 2
	if len(plaintext) < minLen {
		return PrivateSection{}, fmt.Errorf("%w: private section too short", ErrMalformed)
	}
	var p PrivateSection
	copy(p.ClientToServerKey[:], plaintext[0:KeySize])
	copy(p.ServerToClientKey[:], plaintext[KeySize:2*KeySize])
	n := int(binary.LittleEndian.Uint16(plaintext[2*KeySize : 2*KeySize+2]))
	if n > MaxUserDataSize || minLen+n > len(plaintext) {
		return PrivateSection{}, fmt.Errorf("%w: user_data length %d out of range", ErrMalformed, n)
	}
	p.UserData = append([]byte(nil), plaintext[minLen:minLen+n]...)
	return p, nil
}

// randomNonce draws a fresh AEAD nonce.
func randomNonce() ([nonceSize]byte, error) {
	var n [nonceSize]byte
	if _, err := rand.Read(n[:]); err != nil {
		return n, fmt.Errorf("generating nonce: %w", err)
	}
	return n, nil
}
