// Package netcode implements the connection-oriented, encrypted,
// sequence-numbered UDP transport that sits beneath the realm simulation:
// connect-token handshake, challenge/response, replay protection, and
// the two logical channels (ReliableOrdered, Unreliable) layered above
// it (spec §4.2).
package netcode

import "errors"

// Transport error taxonomy (spec §4.2). These are protocol-fatal in the
// sense that the caller should disconnect the peer and log, never
// propagate the raw error into the simulation.
var (
	ErrUnavailablePrivateKey = errors.New("netcode: unavailable private key")
	ErrInvalidPacketType     = errors.New("netcode: invalid packet type")
	ErrInvalidProtocolID     = errors.New("netcode: invalid protocol id")
	ErrInvalidVersion        = errors.New("netcode: invalid version info")
	ErrPacketTooSmall        = errors.New("netcode: packet too small")
	ErrPayloadAboveLimit     = errors.New("netcode: payload above limit")
	ErrDuplicatedSequence    = errors.New("netcode: duplicated sequence")
	ErrNoMoreServers         = errors.New("netcode: no more servers")
	ErrExpired               = errors.New("netcode: connect token expired")
	ErrCryptoError           = errors.New("netcode: crypto error")
	ErrNotInHostList         = errors.New("netcode: server address not in host list")
	ErrClientNotFound        = errors.New("netcode: client not found")
	ErrClientNotConnected    = errors.New("netcode: client not connected")
)
