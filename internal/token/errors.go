package token

import "errors"

var (
	// ErrDecryptFailed means the AEAD tag didn't verify: wrong key, or
	// the token was tampered with.
	ErrDecryptFailed = errors.New("token: decryption failed")
	// ErrMalformed means a field was structurally invalid.
	ErrMalformed = errors.New("token: malformed field")
	// ErrExpired means the token's expiry timestamp has passed.
	ErrExpired = errors.New("token: expired")
	// ErrProtocolMismatch means the token's protocol_id didn't match
	// the realm's configured value.
	ErrProtocolMismatch = errors.New("token: protocol id mismatch")
	// ErrAddressNotListed means the realm's own address isn't among the
	// token's server_addresses.
	ErrAddressNotListed = errors.New("token: server address not in token")
	// ErrTooManyAddresses means more than MaxServerAddresses were supplied.
	ErrTooManyAddresses = errors.New("token: too many server addresses")
)
