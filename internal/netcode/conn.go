package netcode

import (
	"net"
	"time"
)

// ConnState is a server-side connection's handshake/lifecycle state.
type ConnState int

const (
	ConnAwaitingResponse ConnState = iota
	ConnConnected
	ConnDisconnected
)

// Connection is the realm's per-peer state, keyed by socket address
// (spec §4.2: "maintains a table (SocketAddr → Connection) bounded by
// max_clients").
type Connection struct {
	Addr           net.Addr
	ClientID       uint64
	ClientIndex    uint32
	State          ConnState
	Crypto         *PacketCrypto
	Replay         *ReplayProtection
	SendSeq        uint64
	LastReceived   time.Time
	LastSent       time.Time
	TimeoutSeconds int32

	ChallengeNonce [24]byte
	ChallengeBody  []byte

	Reliable *ReliableOrderedReceiver
	Sender   *ReliableOrderedSender

	UserData []byte // private-section payload carried since the connect token (spec §4.3)
}

// TimedOut reports whether no packet has been received from this peer
// within its negotiated timeout (spec §4.2).
func (c *Connection) TimedOut(now time.Time) bool {
	return now.Sub(c.LastReceived) > time.Duration(c.TimeoutSeconds)*time.Second
}
