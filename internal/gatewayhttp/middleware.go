package gatewayhttp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey int

const (
	claimsContextKey contextKey = iota
	requestIDContextKey
)

// withRequestID stamps every request with a fresh client-opaque
// correlation id, echoed back as X-Request-Id and threaded into the
// request's context so handlers' log lines can be tied to one request
// across the gateway's logs.
func withRequestID(log *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		log.Debug("gatewayhttp: request received", "request_id", id, "method", r.Method, "path", r.URL.Path)
		next(w, r.WithContext(context.WithValue(r.Context(), requestIDContextKey, id)))
	}
}

// requestIDFromContext retrieves the id withRequestID attached, or ""
// if the request never passed through it.
func requestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(requestIDContextKey).(string)
	return id
}

// requireAccountJWT authenticates a bearer token and attaches its claims
// to the request context (spec §4.5: /character and /game/request-entry
// require an account JWT).
func requireAccountJWT(issuer *TokenIssuer, log *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authenticate(w, r, issuer, log)
		if !ok {
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
	}
}

// requireCharacterJWT additionally demands the token be bound to a
// character (spec §4.5: /social requires a character JWT).
func requireCharacterJWT(issuer *TokenIssuer, log *slog.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authenticate(w, r, issuer, log)
		if !ok {
			return
		}
		if err := claims.RequireCharacter(); err != nil {
			unauthorized(w, log, err.Error())
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsContextKey, claims)))
	}
}

func authenticate(w http.ResponseWriter, r *http.Request, issuer *TokenIssuer, log *slog.Logger) (AccountClaims, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		unauthorized(w, log, "missing bearer token")
		return AccountClaims{}, false
	}

	claims, err := issuer.ParseToken(strings.TrimPrefix(header, prefix))
	if err != nil {
		unauthorized(w, log, err.Error())
		return AccountClaims{}, false
	}
	return claims, true
}

// claimsFromContext retrieves the claims a preceding auth middleware
// attached to the request.
func claimsFromContext(r *http.Request) (AccountClaims, bool) {
	claims, ok := r.Context().Value(claimsContextKey).(AccountClaims)
	return claims, ok
}
