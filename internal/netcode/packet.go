package netcode

import (
	"encoding/binary"
	"fmt"
)

// PacketType is the 1-byte packet discriminant (spec §4.2).
type PacketType byte

const (
	PacketConnectionRequest PacketType = 0
	PacketConnectionDenied  PacketType = 1
	PacketChallenge         PacketType = 2
	PacketResponse          PacketType = 3
	PacketKeepAlive         PacketType = 4
	PacketPayload           PacketType = 5
	PacketDisconnect        PacketType = 6
)

const (
	// MaxPacketSize bounds the whole UDP datagram (spec §6).
	MaxPacketSize = 1400
	// MaxPayloadSize bounds the user data carried by a Payload packet
	// after framing and the AEAD tag are accounted for (spec §4.2).
	MaxPayloadSize = 1300
	// AEADTagSize is the XChaCha20-Poly1305 authentication tag length.
	AEADTagSize = 16
	// MaxSequenceBytes is the largest encoding of a sequence number.
	MaxSequenceBytes = 8
)

// VersionInfo is the fixed 13-byte ASCII string mixed into every
// packet's associated data (spec §6).
var VersionInfo = [13]byte{'N', 'E', 'T', 'C', 'O', 'D', 'E', ' ', '1', '.', '0', '2', 0}

// sequenceByteCount returns the minimum number of bytes needed to
// represent seq, at least 1.
func sequenceByteCount(seq uint64) int {
	n := 1
	for v := seq >> 8; v != 0; v >>= 8 {
		n++
	}
	if n > MaxSequenceBytes {
		n = MaxSequenceBytes
	}
	return n
}

// PrefixByte computes byte 0 of a packet's header without encoding the
// rest of it, so callers can reconstruct the AssociatedData used to
// seal/open a packet whose sequence number is already known.
func PrefixByte(typ PacketType, seq uint64) byte {
	return byte(sequenceByteCount(seq)<<4) | byte(typ)
}

// EncodeHeader writes the prefix byte and little-endian, minimally-sized
// sequence number: byte 0 = (sequence_byte_count<<4)|packet_type,
// followed by the sequence bytes (spec §4.2 Packet framing).
func EncodeHeader(buf []byte, typ PacketType, seq uint64) []byte {
	n := sequenceByteCount(seq)
	buf = append(buf, byte(n<<4)|byte(typ))
	for i := 0; i < n; i++ {
		buf = append(buf, byte(seq>>(8*i)))
	}
	return buf
}

// DecodeHeader parses the prefix byte and sequence number, returning the
// packet type, sequence, and the offset of the first body byte.
func DecodeHeader(data []byte) (typ PacketType, seq uint64, bodyOffset int, err error) {
	if len(data) < 1 {
		return 0, 0, 0, fmt.Errorf("%w: empty packet", ErrPacketTooSmall)
	}
	prefix := data[0]
	n := int(prefix >> 4)
	typ = PacketType(prefix & 0x0F)
	if n == 0 || n > MaxSequenceBytes {
		return 0, 0, 0, fmt.Errorf("%w: sequence byte count %d", ErrPacketTooSmall, n)
	}
	if len(data) < 1+n {
		return 0, 0, 0, fmt.Errorf("%w: need %d sequence bytes", ErrPacketTooSmall, n)
	}
	for i := 0; i < n; i++ {
		seq |= uint64(data[1+i]) << (8 * i)
	}
	return typ, seq, 1 + n, nil
}

// AssociatedData builds the AEAD associated data for an encrypted
// packet: prefix_byte || protocol_id(LE u64) || version_info(13 bytes)
// (spec §4.2).
func AssociatedData(prefixByte byte, protocolID uint64) []byte {
	ad := make([]byte, 1+8+len(VersionInfo))
	ad[0] = prefixByte
	binary.LittleEndian.PutUint64(ad[1:9], protocolID)
	copy(ad[9:], VersionInfo[:])
	return ad
}

// isEncrypted reports whether packets of this type carry an AEAD tag.
// ConnectionRequest is the only unencrypted type (spec §4.2): its body
// already embeds the token's private section, which is itself encrypted
// under the realm's master key.
func isEncrypted(typ PacketType) bool {
	return typ != PacketConnectionRequest
}
