package netcode

import (
	"encoding/binary"
	"fmt"
	"time"
)

// ChannelID selects one of the two logical channels multiplexed over a
// Payload packet's body (spec §4.2 "Channels above netcode").
type ChannelID byte

const (
	// ChannelReliableOrdered retransmits until acked and delivers in
	// order: spawns, despawns, chat, handshake messages.
	ChannelReliableOrdered ChannelID = 0
	// ChannelUnreliable is best-effort, used for movement.
	ChannelUnreliable ChannelID = 1
	// channelAck carries a cumulative ack for ChannelReliableOrdered.
	channelAck ChannelID = 2
)

// reliableRetransmitInterval matches the handshake's SEND_RATE (spec
// §4.2) since both are "how often do we nag the peer" timers.
const reliableRetransmitInterval = 250 * time.Millisecond

// EncodeUnreliable frames a message for ChannelUnreliable.
func EncodeUnreliable(payload []byte) []byte {
	out := make([]byte, 0, 1+len(payload))
	out = append(out, byte(ChannelUnreliable))
	return append(out, payload...)
}

// DecodeChannelFrame reads the leading channel id from a Payload body.
func DecodeChannelFrame(body []byte) (ChannelID, []byte, error) {
	if len(body) < 1 {
		return 0, nil, fmt.Errorf("%w: empty channel frame", ErrPacketTooSmall)
	}
	return ChannelID(body[0]), body[1:], nil
}

// pendingMessage is one outstanding reliable send awaiting ack.
type pendingMessage struct {
	seq      uint32
	payload  []byte
	lastSent time.Time
}

// ReliableOrderedSender assigns monotonic sequence numbers to outgoing
// messages and retransmits anything unacked every
// reliableRetransmitInterval, matching the handshake's own
// retransmit-until-ack style (spec §4.2).
type ReliableOrderedSender struct {
	nextSeq uint32
	pending []pendingMessage
}

// NewReliableOrderedSender returns an empty sender.
func NewReliableOrderedSender() *ReliableOrderedSender {
	return &ReliableOrderedSender{}
}

// Send assigns the next sequence number to payload and frames it as
// [ChannelReliableOrdered][seq uint32 LE][payload].
func (s *ReliableOrderedSender) Send(now time.Time, payload []byte) []byte {
	seq := s.nextSeq
	s.nextSeq++
	s.pending = append(s.pending, pendingMessage{seq: seq, payload: payload, lastSent: now})
	return encodeReliableFrame(seq, payload)
}

func encodeReliableFrame(seq uint32, payload []byte) []byte {
	out := make([]byte, 0, 5+len(payload))
	out = append(out, byte(ChannelReliableOrdered))
	var seqBuf [4]byte
	binary.LittleEndian.PutUint32(seqBuf[:], seq)
	out = append(out, seqBuf[:]...)
	return append(out, payload...)
}

// HandleAck drops every pending message with sequence <= ackSeq
// (cumulative ack).
func (s *ReliableOrderedSender) HandleAck(ackSeq uint32) {
	kept := s.pending[:0]
	for _, m := range s.pending {
		if m.seq > ackSeq {
			kept = append(kept, m)
		}
	}
	s.pending = kept
}

// PendingRetransmits returns the framed bytes of every message overdue
// for retransmission, and bumps their lastSent time.
func (s *ReliableOrderedSender) PendingRetransmits(now time.Time) [][]byte {
	var out [][]byte
	for i := range s.pending {
		if now.Sub(s.pending[i].lastSent) >= reliableRetransmitInterval {
			out = append(out, encodeReliableFrame(s.pending[i].seq, s.pending[i].payload))
			s.pending[i].lastSent = now
		}
	}
	return out
}

// ReliableOrderedReceiver buffers out-of-order reliable frames and
// releases them to the application strictly in sequence order.
type ReliableOrderedReceiver struct {
	expected uint32
	buffered map[uint32][]byte
}

// NewReliableOrderedReceiver returns an empty receiver.
func NewReliableOrderedReceiver() *ReliableOrderedReceiver {
	return &ReliableOrderedReceiver{buffered: make(map[uint32][]byte)}
}

// Receive ingests one reliable frame's sequence+payload (already
// stripped of the ChannelReliableOrdered byte by DecodeChannelFrame)
// and returns every message now deliverable in order, plus the ack
// sequence to send back to the peer.
func (r *ReliableOrderedReceiver) Receive(frame []byte) (delivered [][]byte, ackSeq uint32, err error) {
	if len(frame) < 4 {
		return nil, 0, fmt.Errorf("%w: reliable frame missing sequence", ErrPacketTooSmall)
	}
	seq := binary.LittleEndian.Uint32(frame[:4])
	payload := frame[4:]

	if seq >= r.expected {
		if _, dup := r.buffered[seq]; !dup {
			r.buffered[seq] = payload
		}
	}

	for {
		msg, ok := r.buffered[r.expected]
		if !ok {
			break
		}
		delivered = append(delivered, msg)
		delete(r.buffered, r.expected)
		r.expected++
	}

	if r.expected == 0 {
		return delivered, 0, nil
	}
	return delivered, r.expected - 1, nil
}

// EncodeAck frames a cumulative ack for ChannelReliableOrdered.
func EncodeAck(ackSeq uint32) []byte {
	out := make([]byte, 5)
	out[0] = byte(channelAck)
	binary.LittleEndian.PutUint32(out[1:], ackSeq)
	return out
}

// DecodeAck parses an ack frame's body (post DecodeChannelFrame, with
// channelAck as the id).
func DecodeAck(body []byte) (uint32, error) {
	if len(body) < 4 {
		return 0, fmt.Errorf("%w: ack frame too short", ErrPacketTooSmall)
	}
	return binary.LittleEndian.Uint32(body), nil
}
