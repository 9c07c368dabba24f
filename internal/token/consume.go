package token

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

// DecodeConnectToken parses the base64 wire form produced by
// EncodeConnectToken, without opening the private section.
func DecodeConnectToken(wire string) (ConnectToken, error) {
	raw, err := base64.StdEncoding.DecodeString(wire)
	if err != nil {
		return ConnectToken{}, fmt.Errorf("%w: invalid base64: %v", ErrMalformed, err)
	}
	return DecodeConnectTokenBytes(raw)
}

// DecodeConnectTokenBytes parses the raw binary wire form produced by
// EncodeConnectTokenBytes, without opening the private section.
func DecodeConnectTokenBytes(raw []byte) (ConnectToken, error) {
	const fixedHeader = 8 + 8 + 8 + 4 + 8 + 1
	if len(raw) < fixedHeader {
		return ConnectToken{}, fmt.Errorf("%w: token too short", ErrMalformed)
	}

	var ct ConnectToken
	off := 0
	ct.ProtocolID = binary.LittleEndian.Uint64(raw[off:])
	off += 8
	ct.CreatedAt = time.Unix(int64(binary.LittleEndian.Uint64(raw[off:])), 0).UTC()
	off += 8
	ct.ExpiresAt = time.Unix(int64(binary.LittleEndian.Uint64(raw[off:])), 0).UTC()
	off += 8
	ct.TimeoutSeconds = int32(binary.LittleEndian.Uint32(raw[off:]))
	off += 4
	ct.ClientID = binary.LittleEndian.Uint64(raw[off:])
	off += 8

	addrCount := int(raw[off])
	off++
	if addrCount > MaxServerAddresses {
		return ConnectToken{}, fmt.Errorf("%w: got %d addresses", ErrTooManyAddresses, addrCount)
	}
	ct.ServerAddresses = make([]string, 0, addrCount)
	for i := 0; i < addrCount; i++ {
		if off >= len(raw) {
			return ConnectToken{}, fmt.Errorf("%w: truncated address list", ErrMalformed)
		}
		n := int(raw[off])
		off++
		if off+n > len(raw) {
			return ConnectToken{}, fmt.Errorf("%w: truncated address", ErrMalformed)
		}
		ct.ServerAddresses = append(ct.ServerAddresses, string(raw[off:off+n]))
		off += n
	}

	if off+nonceSize > len(raw) {
		return ConnectToken{}, fmt.Errorf("%w: truncated nonce", ErrMalformed)
	}
	copy(ct.Nonce[:], raw[off:off+nonceSize])
	off += nonceSize

	ct.EncryptedPrivate = append([]byte(nil), raw[off:]...)
	if len(ct.EncryptedPrivate) != PrivateSectionSize+AEADOverhead {
		return ConnectToken{}, fmt.Errorf("%w: private section ciphertext has wrong length", ErrMalformed)
	}

	return ct, nil
}

// ValidateAndOpen checks protocol id, expiry, and that ownAddress
// appears in the token's server address list, then decrypts the
// private section under masterKey (spec §4.2 server-side "On
// ConnectionRequest" step).
func ValidateAndOpen(ct ConnectToken, masterKey []byte, expectedProtocolID uint64, ownAddress string, now time.Time) (PrivateSection, error) {
	if ct.ProtocolID != expectedProtocolID {
		return PrivateSection{}, ErrProtocolMismatch
	}
	if now.After(ct.ExpiresAt) {
		return PrivateSection{}, ErrExpired
	}

	found := false
	for _, addr := range ct.ServerAddresses {
		if addr == ownAddress {
			found = true
			break
		}
	}
	if !found {
		return PrivateSection{}, ErrAddressNotListed
	}

	ad := AssociatedDataFor(ct.ProtocolID)
	plaintext, err := openAEAD(masterKey, ct.Nonce[:], ad, ct.EncryptedPrivate)
	if err != nil {
		return PrivateSection{}, err
	}
	return decodePrivateSection(plaintext)
}
