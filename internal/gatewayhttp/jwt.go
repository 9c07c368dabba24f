package gatewayhttp

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a presented JWT can fail to
// authenticate a request (expired, wrong signature, wrong claim shape).
var ErrInvalidToken = errors.New("gatewayhttp: invalid token")

// AccountClaims are carried by every issued JWT (spec §4.5: "{exp,
// account_id, username}"). CharacterID is populated only on a character
// JWT, minted after /character confirms ownership.
type AccountClaims struct {
	AccountID   int64  `json:"account_id"`
	Username    string `json:"username"`
	CharacterID int64  `json:"character_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses the gateway's HS256 JWTs.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
}

// NewTokenIssuer builds a TokenIssuer from the gateway's configured
// signing key and token lifetime.
func NewTokenIssuer(signingKey []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{signingKey: signingKey, ttl: ttl}
}

// IssueAccountToken mints a JWT scoped to an account (spec §4.5 /token).
func (i *TokenIssuer) IssueAccountToken(accountID int64, username string) (string, error) {
	return i.issue(AccountClaims{AccountID: accountID, Username: username})
}

// IssueCharacterToken mints a JWT additionally bound to a character
// (spec §4.5: "Character JWT additionally binds {character_id}"), used
// to authorize the /social WebSocket upgrade.
func (i *TokenIssuer) IssueCharacterToken(accountID int64, username string, characterID int64) (string, error) {
	return i.issue(AccountClaims{AccountID: accountID, Username: username, CharacterID: characterID})
}

func (i *TokenIssuer) issue(claims AccountClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseToken validates a bearer token's signature and expiry and
// returns its claims.
func (i *TokenIssuer) ParseToken(raw string) (AccountClaims, error) {
	var claims AccountClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, t.Header["alg"])
		}
		return i.signingKey, nil
	})
	if err != nil {
		return AccountClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return AccountClaims{}, ErrInvalidToken
	}
	return claims, nil
}

// RequireCharacter returns ErrInvalidToken if claims were not minted by
// IssueCharacterToken (spec §4.5: /social requires a character JWT).
func (c AccountClaims) RequireCharacter() error {
	if c.CharacterID == 0 {
		return fmt.Errorf("%w: token is not bound to a character", ErrInvalidToken)
	}
	return nil
}
