package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

// IssueParams parameterizes GenerateConnectToken (spec §4.3).
type IssueParams struct {
	ProtocolID      uint64
	ClientID        uint64 // account id
	ServerAddresses []string
	ExpireIn        time.Duration // default 300s
	TimeoutSeconds  int32         // default 15
	UserData        []byte        // pre-encoded {character_id, traceparent?}
	MasterKey       []byte        // realm's shared master key, KeySize bytes
	Now             time.Time
}

// EncodeUserData packs {character_id, traceparent?} the way the realm's
// connection handler expects to find it in a connect token's user_data
// (spec §4.3). traceparent may be empty.
func EncodeUserData(characterID uint64, traceparent string) ([]byte, error) {
	buf := make([]byte, 0, 8+2+len(traceparent))
	var idBuf [8]byte
	binary.LittleEndian.PutUint64(idBuf[:], characterID)
	buf = append(buf, idBuf[:]...)
	if len(traceparent) > 255 {
		return nil, fmt.Errorf("%w: traceparent length %d exceeds 255", ErrMalformed, len(traceparent))
	}
	buf = append(buf, byte(len(traceparent)))
	buf = append(buf, traceparent...)
	if len(buf) > MaxUserDataSize {
		return nil, fmt.Errorf("%w: encoded user_data length %d exceeds %d", ErrMalformed, len(buf), MaxUserDataSize)
	}
	return buf, nil
}

// DecodeUserData reverses EncodeUserData.
func DecodeUserData(data []byte) (characterID uint64, traceparent string, err error) {
	if len(data) < 9 {
		return 0, "", fmt.Errorf("%w: user_data too short", ErrMalformed)
	}
	characterID = binary.LittleEndian.Uint64(data[0:8])
	n := int(data[8])
	if 9+n > len(data) {
		return 0, "", fmt.Errorf("%w: traceparent length %d out of range", ErrMalformed, n)
	}
	traceparent = string(data[9 : 9+n])
	return characterID, traceparent, nil
}

// GenerateConnectToken mints a ConnectToken, seals its private section
// under the realm's master key, and returns the base64-encoded wire
// form handed back to the HTTP caller (spec §4.3).
func GenerateConnectToken(p IssueParams) (string, error) {
	if len(p.ServerAddresses) == 0 || len(p.ServerAddresses) > MaxServerAddresses {
		return "", fmt.Errorf("%w: got %d addresses", ErrTooManyAddresses, len(p.ServerAddresses))
	}
	if p.ExpireIn <= 0 {
		p.ExpireIn = 300 * time.Second
	}
	if p.TimeoutSeconds <= 0 {
		p.TimeoutSeconds = 15
	}

	clientToServer, serverToClient, err := generateKeyPair()
	if err != nil {
		return "", err
	}

	private := PrivateSection{UserData: p.UserData}
	copy(private.ClientToServerKey[:], clientToServer)
	copy(private.ServerToClientKey[:], serverToClient)

	plaintext, err := encodePrivateSection(private)
	if err != nil {
		return "", err
	}

	nonce, err := randomNonce()
	if err != nil {
		return "", err
	}

	ad := AssociatedDataFor(p.ProtocolID)
	sealed, err := sealAEAD(p.MasterKey, nonce[:], ad, plaintext)
	if err != nil {
		return "", err
	}

	ct := ConnectToken{
		ProtocolID:       p.ProtocolID,
		CreatedAt:        p.Now,
		ExpiresAt:        p.Now.Add(p.ExpireIn),
		TimeoutSeconds:   p.TimeoutSeconds,
		ServerAddresses:  p.ServerAddresses,
		ClientID:         p.ClientID,
		Nonce:            nonce,
		EncryptedPrivate: sealed,
	}

	return EncodeConnectToken(ct)
}

func generateKeyPair() (clientToServer, serverToClient []byte, err error) {
	clientToServer = make([]byte, KeySize)
	serverToClient = make([]byte, KeySize)
	if _, err := rand.Read(clientToServer); err != nil {
		return nil, nil, fmt.Errorf("generating client-to-server key: %w", err)
	}
	if _, err := rand.Read(serverToClient); err != nil {
		return nil, nil, fmt.Errorf("generating server-to-client key: %w", err)
	}
	return clientToServer, serverToClient, nil
}

// AssociatedDataFor builds the AEAD associated data binding a sealed
// private section to the protocol it was issued for, so a token minted
// for one protocol generation can never be replayed against another.
func AssociatedDataFor(protocolID uint64) []byte {
	var ad [8]byte
	binary.LittleEndian.PutUint64(ad[:], protocolID)
	return ad[:]
}

// EncodeConnectToken serializes a ConnectToken to its base64 wire form,
// the shape returned to HTTP callers of /game/request-entry (spec §4.3).
func EncodeConnectToken(ct ConnectToken) (string, error) {
	raw, err := EncodeConnectTokenBytes(ct)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// EncodeConnectTokenBytes serializes a ConnectToken to its raw binary
// wire form, used inside a netcode ConnectionRequest packet body where
// base64's size inflation would eat into the 1400-byte packet budget.
func EncodeConnectTokenBytes(ct ConnectToken) ([]byte, error) {
	if len(ct.ServerAddresses) > MaxServerAddresses {
		return nil, fmt.Errorf("%w: got %d addresses", ErrTooManyAddresses, len(ct.ServerAddresses))
	}
	if len(ct.EncryptedPrivate) != PrivateSectionSize+AEADOverhead {
		return nil, fmt.Errorf("%w: private section ciphertext has wrong length", ErrMalformed)
	}

	buf := make([]byte, 0, 256)
	var u64 [8]byte

	binary.LittleEndian.PutUint64(u64[:], ct.ProtocolID)
	buf = append(buf, u64[:]...)
	binary.LittleEndian.PutUint64(u64[:], uint64(ct.CreatedAt.Unix()))
	buf = append(buf, u64[:]...)
	binary.LittleEndian.PutUint64(u64[:], uint64(ct.ExpiresAt.Unix()))
	buf = append(buf, u64[:]...)
	binary.LittleEndian.PutUint32(u64[:4], uint32(ct.TimeoutSeconds))
	buf = append(buf, u64[:4]...)
	binary.LittleEndian.PutUint64(u64[:], ct.ClientID)
	buf = append(buf, u64[:]...)

	buf = append(buf, byte(len(ct.ServerAddresses)))
	for _, addr := range ct.ServerAddresses {
		if len(addr) > 255 {
			return nil, fmt.Errorf("%w: server address too long", ErrMalformed)
		}
		buf = append(buf, byte(len(addr)))
		buf = append(buf, addr...)
	}

	buf = append(buf, ct.Nonce[:]...)
	buf = append(buf, ct.EncryptedPrivate...)

	return buf, nil
}

// AEADOverhead is the fixed per-seal expansion (the tag) added by
// XChaCha20-Poly1305.
const AEADOverhead = 16
