package netcode

import (
	"fmt"
	"time"

	"github.com/embervale/realm/internal/token"
)

// ClientState mirrors the handshake diagram in spec §4.2.
type ClientState int

const (
	ClientSendingConnectionRequest ClientState = iota
	ClientSendingConnectionResponse
	ClientConnected
	ClientDisconnected
)

// sendRate is how often the client retransmits its current handshake
// packet while waiting for a reply (spec §4.2 SEND_RATE).
const sendRate = 250 * time.Millisecond

// requestPhaseTimeout bounds how long the client waits for a Challenge
// before giving up on the current server address and trying the next
// one (spec §4.2: "On timeout in the request/response phase the client
// advances to the next server address").
const requestPhaseTimeout = 4 * sendRate

// Client drives the client side of the handshake state machine and,
// once connected, frames/unframes application payloads over the two
// logical channels.
type Client struct {
	protocolID uint64
	addresses  []string
	addrIndex  int

	connectStart time.Time
	expireAt     time.Time
	phaseStarted time.Time
	lastSend     time.Time
	lastReceived time.Time
	timeout      time.Duration

	state ClientState

	clientToServer [KeySize]byte
	serverToClient [KeySize]byte
	crypto         *PacketCrypto

	challengeNonce [24]byte
	challengeBody  []byte

	tokenBytes []byte
	sendSeq    uint64

	reliableSender *ReliableOrderedSender
	reliableRecv   *ReliableOrderedReceiver

	ClientIndex uint32
	MaxClients  uint32
}

// NewClient starts a handshake using the given connect token. ct must
// decode to the same private keys the realm will recover from the
// token, so Client derives its crypto directly from the decoded token
// rather than re-deriving it — callers typically hold the ConnectToken
// already (it was minted for them) and pass it alongside its encoded
// bytes for the wire.
func NewClient(ct token.ConnectToken, tokenBytes []byte, clientToServer, serverToClient []byte, now time.Time) (*Client, error) {
	if len(ct.ServerAddresses) == 0 {
		return nil, fmt.Errorf("%w: token has no server addresses", ErrNotInHostList)
	}
	crypto, err := NewPacketCrypto(clientToServer, serverToClient)
	if err != nil {
		return nil, err
	}
	c := &Client{
		protocolID: ct.ProtocolID,
		addresses:  ct.ServerAddresses,

		connectStart: now,
		expireAt:     ct.ExpiresAt,
		phaseStarted: now,
		// lastSend is intentionally far in the past so the very first
		// Update call sends immediately instead of waiting a full
		// sendRate interval.
		lastSend:       now.Add(-sendRate),
		lastReceived:   now,
		timeout:        time.Duration(ct.TimeoutSeconds) * time.Second,
		state:          ClientSendingConnectionRequest,
		crypto:         crypto,
		tokenBytes:     tokenBytes,
		reliableSender: NewReliableOrderedSender(),
		reliableRecv:   NewReliableOrderedReceiver(),
	}
	copy(c.clientToServer[:], clientToServer)
	copy(c.serverToClient[:], serverToClient)
	return c, nil
}

// CurrentAddress returns the server address the client is currently
// attempting (or connected to).
func (c *Client) CurrentAddress() string { return c.addresses[c.addrIndex] }

// State reports the client's current handshake state.
func (c *Client) State() ClientState { return c.state }

// Start returns the initial ConnectionRequest packet to send.
func (c *Client) Start() []byte {
	var buf []byte
	buf = EncodeHeader(buf, PacketConnectionRequest, 0)
	return append(buf, c.tokenBytes...)
}

// Update advances timers, returning a packet to (re)send if the SEND_RATE
// interval elapsed, and an error if the handshake has expired or every
// server address has been exhausted (spec §4.2).
func (c *Client) Update(now time.Time) ([]byte, error) {
	if c.state == ClientConnected {
		if now.Sub(c.lastReceived) > c.timeout {
			c.state = ClientDisconnected
			return nil, ErrClientNotConnected
		}
		if now.Sub(c.lastSend) >= sendRate {
			return c.sendKeepAlive(now)
		}
		return nil, nil
	}

	if now.After(c.expireAt) {
		return nil, ErrExpired
	}

	// Timed out waiting for a reply at this phase: advance to the next
	// candidate server address (spec §4.2).
	if c.state == ClientSendingConnectionRequest && now.Sub(c.phaseStarted) > requestPhaseTimeout {
		c.addrIndex++
		if c.addrIndex >= len(c.addresses) {
			return nil, ErrNoMoreServers
		}
		c.phaseStarted = now
		c.lastSend = now.Add(-sendRate)
	}

	if now.Sub(c.lastSend) < sendRate {
		return nil, nil
	}
	c.lastSend = now
	switch c.state {
	case ClientSendingConnectionRequest:
		return c.Start(), nil
	case ClientSendingConnectionResponse:
		return c.buildResponse()
	default:
		return nil, nil
	}
}

// OnPacket feeds one received datagram into the handshake/steady-state
// machine. It returns any application payloads newly delivered (already
// stripped to the raw Action/Event batch bytes), and an ack packet to
// send back to the server if the datagram completed a ChannelReliableOrdered
// frame.
func (c *Client) OnPacket(data []byte, now time.Time) (delivered [][]byte, ack []byte, err error) {
	typ, seq, bodyOff, err := DecodeHeader(data)
	if err != nil {
		return nil, nil, err
	}
	body := data[bodyOff:]
	c.lastReceived = now

	switch typ {
	case PacketConnectionDenied:
		c.state = ClientDisconnected
		return nil, nil, ErrClientNotFound

	case PacketChallenge:
		if c.state != ClientSendingConnectionRequest {
			return nil, nil, nil
		}
		plaintext, err := c.crypto.Open(seq, AssociatedData(PrefixByte(PacketChallenge, seq), c.protocolID), body)
		if err != nil {
			return nil, nil, err
		}
		if len(plaintext) < 24 {
			return nil, nil, fmt.Errorf("%w: challenge packet too short", ErrPacketTooSmall)
		}
		copy(c.challengeNonce[:], plaintext[:24])
		c.challengeBody = append([]byte(nil), plaintext[24:]...)
		c.state = ClientSendingConnectionResponse
		c.phaseStarted = now
		c.lastSend = now.Add(-sendRate)
		return nil, nil, nil

	case PacketKeepAlive:
		if c.state == ClientSendingConnectionResponse {
			plaintext, err := c.crypto.Open(seq, AssociatedData(PrefixByte(PacketKeepAlive, seq), c.protocolID), body)
			if err == nil && len(plaintext) >= 8 {
				c.ClientIndex = uint32(plaintext[0]) | uint32(plaintext[1])<<8 | uint32(plaintext[2])<<16 | uint32(plaintext[3])<<24
				c.MaxClients = uint32(plaintext[4]) | uint32(plaintext[5])<<8 | uint32(plaintext[6])<<16 | uint32(plaintext[7])<<24
				c.state = ClientConnected
			}
		}
		return nil, nil, nil

	case PacketPayload:
		if c.state != ClientConnected {
			return nil, nil, nil
		}
		plaintext, err := c.crypto.Open(seq, AssociatedData(PrefixByte(PacketPayload, seq), c.protocolID), body)
		if err != nil {
			return nil, nil, err
		}
		channel, frame, err := DecodeChannelFrame(plaintext)
		if err != nil {
			return nil, nil, err
		}
		switch channel {
		case ChannelUnreliable:
			return [][]byte{frame}, nil, nil
		case ChannelReliableOrdered:
			delivered, ackSeq, err := c.reliableRecv.Receive(frame)
			if err != nil {
				return nil, nil, err
			}
			ackPkt, sealErr := c.seal(PacketPayload, EncodeAck(ackSeq))
			if sealErr != nil {
				return delivered, nil, sealErr
			}
			return delivered, ackPkt, nil
		case channelAck:
			ackSeq, err := DecodeAck(frame)
			if err != nil {
				return nil, nil, err
			}
			c.reliableSender.HandleAck(ackSeq)
			return nil, nil, nil
		}
		return nil, nil, nil

	default:
		return nil, nil, nil
	}
}

func (c *Client) buildResponse() ([]byte, error) {
	plaintext := make([]byte, 0, 24+len(c.challengeBody))
	plaintext = append(plaintext, c.challengeNonce[:]...)
	plaintext = append(plaintext, c.challengeBody...)
	return c.seal(PacketResponse, plaintext)
}

func (c *Client) sendKeepAlive(now time.Time) ([]byte, error) {
	c.lastSend = now
	return c.seal(PacketKeepAlive, nil)
}

// SendReliable frames and seals an application payload for
// ChannelReliableOrdered.
func (c *Client) SendReliable(payload []byte, now time.Time) ([]byte, error) {
	frame := c.reliableSender.Send(now, payload)
	return c.seal(PacketPayload, frame)
}

// SendUnreliable frames and seals an application payload for
// ChannelUnreliable (used for movement, spec §4.2).
func (c *Client) SendUnreliable(payload []byte) ([]byte, error) {
	return c.seal(PacketPayload, EncodeUnreliable(payload))
}

func (c *Client) seal(typ PacketType, plaintext []byte) ([]byte, error) {
	seq := c.sendSeq
	c.sendSeq++
	ad := AssociatedData(PrefixByte(typ, seq), c.protocolID)
	ciphertext, err := c.crypto.Seal(seq, ad, plaintext)
	if err != nil {
		return nil, err
	}
	var buf []byte
	buf = EncodeHeader(buf, typ, seq)
	return append(buf, ciphertext...), nil
}
