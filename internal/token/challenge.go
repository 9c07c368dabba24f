package token

import (
	"encoding/binary"
	"fmt"
)

// IssueChallenge seals a ChallengeToken under the realm's per-process
// ephemeral challenge key (spec §4.2: "an encrypted ChallengeToken
// under a server-only ephemeral challenge key"). Returns the nonce and
// the ChallengeTokenSize-byte sealed payload.
func IssueChallenge(ct ChallengeToken, challengeKey []byte) (nonce [nonceSize]byte, sealed []byte, err error) {
	if len(ct.UserData) > MaxUserDataSize {
		return nonce, nil, fmt.Errorf("%w: user_data length %d exceeds %d", ErrMalformed, len(ct.UserData), MaxUserDataSize)
	}

	plaintext := make([]byte, 0, 8+2+MaxUserDataSize)
	var idBuf [8]byte
	binary.LittleEndian.PutUint64(idBuf[:], ct.ClientID)
	plaintext = append(plaintext, idBuf[:]...)
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(ct.UserData)))
	plaintext = append(plaintext, lenBuf[:]...)
	plaintext = append(plaintext, ct.UserData...)

	padded := make([]byte, ChallengeTokenSize-AEADOverhead)
	copy(padded, plaintext)

	nonce, err = randomNonce()
	if err != nil {
		return nonce, nil, err
	}
	sealed, err = sealAEAD(challengeKey, nonce[:], nil, padded)
	if err != nil {
		return nonce, nil, err
	}
	return nonce, sealed, nil
}

// OpenChallenge reverses IssueChallenge.
func OpenChallenge(nonce [nonceSize]byte, sealed, challengeKey []byte) (ChallengeToken, error) {
	plaintext, err := openAEAD(challengeKey, nonce[:], nil, sealed)
	if err != nil {
		return ChallengeToken{}, err
	}
	if len(plaintext) < 10 {
		return ChallengeToken{}, fmt.Errorf("%w: challenge token too short", ErrMalformed)
	}
	clientID := binary.LittleEndian.Uint64(plaintext[0:8])
	n := int(binary.LittleEndian.Uint16(plaintext[8:10]))
	if 10+n > len(plaintext) {
		return ChallengeToken{}, fmt.Errorf("%w: user_data length %d out of range", ErrMalformed, n)
	}
	return ChallengeToken{
		ClientID: clientID,
		UserData: append([]byte(nil), plaintext[10:10+n]...),
	}, nil
}
