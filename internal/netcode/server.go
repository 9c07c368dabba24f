package netcode

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/embervale/realm/internal/token"
)

// OutPacket is a datagram the caller must write to its socket.
type OutPacket struct {
	Addr net.Addr
	Data []byte
}

// Delivery is one application payload recovered from a Payload packet,
// ready for wire.DecodeBatch (reliable) or wire.DecodeAction (unreliable
// movement).
type Delivery struct {
	ClientID uint64
	Addr     net.Addr
	Channel  ChannelID
	Data     []byte
}

// ConnectionEvent reports a handshake completing or a peer leaving the
// connection table, so the caller can turn it into a realm.ConnectEvent
// or realm.DisconnectEvent without the realm depending on net.Addr.
type ConnectionEvent struct {
	ClientID     uint64
	UserData     []byte // set only when Disconnected is false
	Disconnected bool
}

// ServerConfig parameterizes Server (spec §4.2, §4.3).
type ServerConfig struct {
	ProtocolID     uint64
	MasterKey      []byte // KeySize bytes, shared with the gateway
	OwnAddress     string // must appear in a token's server_addresses
	MaxClients     int
	DefaultTimeout int32
	Logger         *slog.Logger
}

// Server holds the realm's UDP connection table and drives the
// handshake and steady-state packet handling described in spec §4.2
// ("not fully present in source; must be reconstructed from client
// mirror").
type Server struct {
	cfg          ServerConfig
	challengeKey [KeySize]byte
	conns        map[string]*Connection
	byClientID   map[uint64]*Connection
	nextIndex    uint32
	log          *slog.Logger
}

// NewServer builds a Server with a fresh ephemeral challenge key.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = 15
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		cfg:        cfg,
		conns:      make(map[string]*Connection),
		byClientID: make(map[uint64]*Connection),
		log:        cfg.Logger,
	}
	if _, err := rand.Read(s.challengeKey[:]); err != nil {
		return nil, fmt.Errorf("generating challenge key: %w", err)
	}
	return s, nil
}

// ConnectionCount reports how many peers currently occupy the table.
func (s *Server) ConnectionCount() int { return len(s.conns) }

// HandlePacket processes one inbound datagram, returning any responses
// to send and any application payloads recovered from Payload packets.
// It never returns a protocol-fatal error to the caller for malformed
// client input — those are logged and the packet is dropped (spec §7:
// "disconnect peer, log at error, do not propagate to simulation").
func (s *Server) HandlePacket(addr net.Addr, data []byte, now time.Time) ([]OutPacket, []Delivery, []ConnectionEvent) {
	typ, seq, bodyOff, err := DecodeHeader(data)
	if err != nil {
		s.log.Warn("netcode: dropping malformed packet", "addr", addr, "err", err)
		return nil, nil, nil
	}
	body := data[bodyOff:]

	switch typ {
	case PacketConnectionRequest:
		return s.handleConnectionRequest(addr, body, now), nil, nil
	case PacketResponse:
		out, ev := s.handleResponse(addr, seq, body, now)
		return out, nil, ev
	case PacketKeepAlive:
		out, deliveries := s.handleKeepAlive(addr, seq, body, now)
		return out, deliveries, nil
	case PacketPayload:
		out, deliveries := s.handlePayload(addr, seq, body, now)
		return out, deliveries, nil
	case PacketDisconnect:
		ev := s.handleDisconnect(addr)
		return nil, nil, ev
	default:
		s.log.Warn("netcode: unexpected packet type from client", "addr", addr, "type", typ)
		return nil, nil, nil
	}
}

func (s *Server) handleConnectionRequest(addr net.Addr, body []byte, now time.Time) []OutPacket {
	if len(s.conns) >= s.cfg.MaxClients {
		return []OutPacket{s.denyPacket(addr, now)}
	}

	ct, err := token.DecodeConnectTokenBytes(body)
	if err != nil {
		s.log.Warn("netcode: malformed connect token", "addr", addr, "err", err)
		return []OutPacket{s.denyPacket(addr, now)}
	}

	private, err := token.ValidateAndOpen(ct, s.cfg.MasterKey, s.cfg.ProtocolID, s.cfg.OwnAddress, now)
	if err != nil {
		s.log.Warn("netcode: connect token rejected", "addr", addr, "err", err)
		return []OutPacket{s.denyPacket(addr, now)}
	}

	nonce, sealed, err := token.IssueChallenge(token.ChallengeToken{
		ClientID: ct.ClientID,
		UserData: private.UserData,
	}, s.challengeKey[:])
	if err != nil {
		s.log.Error("netcode: issuing challenge failed", "addr", addr, "err", err)
		return []OutPacket{s.denyPacket(addr, now)}
	}

	conn := &Connection{
		Addr:           addr,
		ClientID:       ct.ClientID,
		State:          ConnAwaitingResponse,
		Replay:         NewReplayProtection(),
		LastReceived:   now,
		TimeoutSeconds: ct.TimeoutSeconds,
		ChallengeNonce: nonce,
		ChallengeBody:  sealed,
		Reliable:       NewReliableOrderedReceiver(),
		Sender:         NewReliableOrderedSender(),
		UserData:       private.UserData,
	}
	crypto, err := NewPacketCrypto(private.ServerToClientKey[:], private.ClientToServerKey[:])
	if err != nil {
		s.log.Error("netcode: building packet crypto failed", "addr", addr, "err", err)
		return []OutPacket{s.denyPacket(addr, now)}
	}
	conn.Crypto = crypto

	s.conns[addr.String()] = conn

	body2 := make([]byte, 0, len(nonce)+len(sealed))
	body2 = append(body2, nonce[:]...)
	body2 = append(body2, sealed...)
	pkt, err := s.sealOutgoing(conn, PacketChallenge, body2)
	if err != nil {
		s.log.Error("netcode: sealing challenge failed", "addr", addr, "err", err)
		return nil
	}
	return []OutPacket{{Addr: addr, Data: pkt}}
}

func (s *Server) handleResponse(addr net.Addr, seq uint64, body []byte, now time.Time) ([]OutPacket, []ConnectionEvent) {
	conn, ok := s.conns[addr.String()]
	if !ok || conn.State != ConnAwaitingResponse {
		return nil, nil
	}

	plaintext, err := conn.Crypto.Open(seq, AssociatedData(PrefixByte(PacketResponse, seq), s.cfg.ProtocolID), body)
	if err != nil {
		s.log.Warn("netcode: response decrypt failed", "addr", addr, "err", err)
		return nil, nil
	}
	if len(plaintext) < 24+len(conn.ChallengeBody) {
		s.log.Warn("netcode: response too short", "addr", addr)
		return nil, nil
	}
	var nonce [24]byte
	copy(nonce[:], plaintext[:24])
	if _, err := token.OpenChallenge(nonce, plaintext[24:], s.challengeKey[:]); err != nil {
		s.log.Warn("netcode: response challenge mismatch", "addr", addr, "err", err)
		return nil, nil
	}

	conn.State = ConnConnected
	conn.ClientIndex = s.nextIndex
	s.nextIndex++
	conn.LastReceived = now
	s.byClientID[conn.ClientID] = conn

	keepAlive := make([]byte, 0, 8)
	var idxBuf [4]byte
	idxBuf[0] = byte(conn.ClientIndex)
	idxBuf[1] = byte(conn.ClientIndex >> 8)
	idxBuf[2] = byte(conn.ClientIndex >> 16)
	idxBuf[3] = byte(conn.ClientIndex >> 24)
	keepAlive = append(keepAlive, idxBuf[:]...)
	keepAlive = append(keepAlive, byte(s.cfg.MaxClients), byte(s.cfg.MaxClients>>8), byte(s.cfg.MaxClients>>16), byte(s.cfg.MaxClients>>24))

	pkt, err := s.sealOutgoing(conn, PacketKeepAlive, keepAlive)
	if err != nil {
		s.log.Error("netcode: sealing keepalive failed", "addr", addr, "err", err)
		return nil, nil
	}
	s.log.Info("netcode: client connected", "client_id", conn.ClientID, "addr", addr)
	return []OutPacket{{Addr: addr, Data: pkt}}, []ConnectionEvent{{ClientID: conn.ClientID, UserData: conn.UserData}}
}

func (s *Server) handleKeepAlive(addr net.Addr, seq uint64, body []byte, now time.Time) ([]OutPacket, []Delivery) {
	conn, ok := s.conns[addr.String()]
	if !ok || conn.State != ConnConnected {
		return nil, nil
	}
	if _, err := conn.Crypto.Open(seq, AssociatedData(PrefixByte(PacketKeepAlive, seq), s.cfg.ProtocolID), body); err != nil {
		s.log.Warn("netcode: keepalive decrypt failed", "addr", addr, "err", err)
		return nil, nil
	}
	if !conn.Replay.Accept(seq) {
		return nil, nil
	}
	conn.LastReceived = now
	return nil, nil
}

func (s *Server) handlePayload(addr net.Addr, seq uint64, body []byte, now time.Time) ([]OutPacket, []Delivery) {
	conn, ok := s.conns[addr.String()]
	if !ok || conn.State != ConnConnected {
		return nil, nil
	}
	plaintext, err := conn.Crypto.Open(seq, AssociatedData(PrefixByte(PacketPayload, seq), s.cfg.ProtocolID), body)
	if err != nil {
		s.log.Warn("netcode: payload decrypt failed", "addr", addr, "err", err)
		return nil, nil
	}
	if len(plaintext) > MaxPayloadSize {
		s.log.Warn("netcode: payload above limit", "addr", addr, "len", len(plaintext))
		return nil, nil
	}
	if !conn.Replay.Accept(seq) {
		return nil, nil
	}
	conn.LastReceived = now

	channel, frame, err := DecodeChannelFrame(plaintext)
	if err != nil {
		s.log.Warn("netcode: malformed channel frame", "addr", addr, "err", err)
		return nil, nil
	}

	switch channel {
	case ChannelUnreliable:
		return nil, []Delivery{{ClientID: conn.ClientID, Addr: addr, Channel: channel, Data: frame}}

	case ChannelReliableOrdered:
		delivered, ackSeq, err := conn.Reliable.Receive(frame)
		if err != nil {
			s.log.Warn("netcode: malformed reliable frame", "addr", addr, "err", err)
			return nil, nil
		}
		ackFrame := EncodeAck(ackSeq)
		ackPkt, err := s.sealOutgoing(conn, PacketPayload, ackFrame)
		if err != nil {
			s.log.Error("netcode: sealing ack failed", "addr", addr, "err", err)
			return nil, nil
		}
		deliveries := make([]Delivery, 0, len(delivered))
		for _, d := range delivered {
			deliveries = append(deliveries, Delivery{ClientID: conn.ClientID, Addr: addr, Channel: channel, Data: d})
		}
		return []OutPacket{{Addr: addr, Data: ackPkt}}, deliveries

	case channelAck:
		ackSeq, err := DecodeAck(frame)
		if err != nil {
			s.log.Warn("netcode: malformed ack frame", "addr", addr, "err", err)
			return nil, nil
		}
		conn.Sender.HandleAck(ackSeq)
		return nil, nil

	default:
		s.log.Warn("netcode: unknown channel id", "addr", addr, "channel", channel)
		return nil, nil
	}
}

func (s *Server) handleDisconnect(addr net.Addr) []ConnectionEvent {
	conn, ok := s.conns[addr.String()]
	if !ok {
		return nil
	}
	delete(s.conns, addr.String())
	delete(s.byClientID, conn.ClientID)
	s.log.Info("netcode: client disconnected", "client_id", conn.ClientID, "addr", addr)
	return []ConnectionEvent{{ClientID: conn.ClientID, Disconnected: true}}
}

// SendReliable frames payload for ChannelReliableOrdered, assigns it the
// connection's next sequence number, and returns the sealed packet to
// send to clientID. Retransmission is driven separately by Tick.
func (s *Server) SendReliable(clientID uint64, payload []byte, now time.Time) (OutPacket, error) {
	conn, ok := s.byClientID[clientID]
	if !ok {
		return OutPacket{}, ErrClientNotFound
	}
	frame := conn.Sender.Send(now, payload)
	pkt, err := s.sealOutgoing(conn, PacketPayload, frame)
	if err != nil {
		return OutPacket{}, err
	}
	return OutPacket{Addr: conn.Addr, Data: pkt}, nil
}

// SendUnreliable frames payload for ChannelUnreliable and returns the
// sealed packet to send to clientID.
func (s *Server) SendUnreliable(clientID uint64, payload []byte) (OutPacket, error) {
	conn, ok := s.byClientID[clientID]
	if !ok {
		return OutPacket{}, ErrClientNotFound
	}
	pkt, err := s.sealOutgoing(conn, PacketPayload, EncodeUnreliable(payload))
	if err != nil {
		return OutPacket{}, err
	}
	return OutPacket{Addr: conn.Addr, Data: pkt}, nil
}

// Tick returns retransmits for unacked reliable messages and timeout
// disconnects across every connection; call this once per simulation
// tick as part of egress (spec §4.4 step 10).
func (s *Server) Tick(now time.Time) ([]OutPacket, []ConnectionEvent) {
	var out []OutPacket
	var events []ConnectionEvent
	for key, conn := range s.conns {
		if conn.State != ConnConnected {
			continue
		}
		if conn.TimedOut(now) {
			s.log.Info("netcode: connection timed out", "client_id", conn.ClientID, "addr", conn.Addr)
			delete(s.conns, key)
			delete(s.byClientID, conn.ClientID)
			events = append(events, ConnectionEvent{ClientID: conn.ClientID, Disconnected: true})
			continue
		}
		for _, frame := range conn.Sender.PendingRetransmits(now) {
			pkt, err := s.sealOutgoing(conn, PacketPayload, frame)
			if err != nil {
				s.log.Error("netcode: retransmit seal failed", "client_id", conn.ClientID, "err", err)
				continue
			}
			out = append(out, OutPacket{Addr: conn.Addr, Data: pkt})
		}
	}
	return out, events
}

// denyPacket sends ConnectionDenied unencrypted. Every other post-request
// packet type is sealed under keys from the token's private section, but
// a denial can happen before that section decrypts successfully, so
// there is no key to seal it with; the client accepts this one
// plaintext type as the very first reply to its request.
func (s *Server) denyPacket(addr net.Addr, now time.Time) OutPacket {
	var buf []byte
	buf = EncodeHeader(buf, PacketConnectionDenied, 0)
	return OutPacket{Addr: addr, Data: buf}
}

func (s *Server) sealOutgoing(conn *Connection, typ PacketType, plaintext []byte) ([]byte, error) {
	seq := conn.SendSeq
	conn.SendSeq++
	ad := AssociatedData(PrefixByte(typ, seq), s.cfg.ProtocolID)
	ciphertext, err := conn.Crypto.Seal(seq, ad, plaintext)
	if err != nil {
		return nil, err
	}
	var buf []byte
	buf = EncodeHeader(buf, typ, seq)
	buf = append(buf, ciphertext...)
	if len(buf) > MaxPacketSize {
		return nil, fmt.Errorf("%w: sealed packet is %d bytes", ErrPayloadAboveLimit, len(buf))
	}
	return buf, nil
}
