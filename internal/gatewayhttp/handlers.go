package gatewayhttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/embervale/realm/internal/db"
	"github.com/embervale/realm/internal/hub"
	"github.com/embervale/realm/internal/token"
)

// Deps bundles everything handlers.go needs, threaded through Server
// rather than held as package globals (la2go's handler-constructor
// idiom, one struct of collaborators per route group).
type Deps struct {
	Accounts   *db.AccountRepository
	Characters *db.CharacterRepository
	Guilds     *db.GuildRepository
	Issuer     *TokenIssuer
	Throttle   *LoginThrottle
	Resolver   RealmResolver
	Hub        *hub.Hub
	MasterKey  []byte
	ProtocolID uint64
	Log        *slog.Logger
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type createAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleCreateAccount implements POST /account (spec §4.5).
func (d *Deps) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, d.Log, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" {
		badRequest(w, d.Log, "username and email are required")
		return
	}
	if err := ValidatePassword(req.Password); err != nil {
		badRequest(w, d.Log, err.Error())
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}

	id, err := d.Accounts.Create(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		badRequest(w, d.Log, "username or email already in use")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"account_id": id})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin implements POST /token (spec §4.5).
func (d *Deps) handleLogin(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if d.Throttle != nil {
		blocked, err := d.Throttle.Blocked(r.Context(), ip)
		if err != nil {
			d.Log.Error("gatewayhttp: login throttle check failed", "err", err)
		} else if blocked {
			unauthorized(w, d.Log, "too many failed attempts, try again later")
			return
		}
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, d.Log, "invalid JSON body")
		return
	}

	acc, err := d.Accounts.GetByUsername(r.Context(), req.Username)
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}
	if acc == nil {
		d.recordFailure(r.Context(), ip)
		unauthorized(w, d.Log, "invalid username or password")
		return
	}

	ok, err := VerifyPassword(req.Password, acc.PassHash)
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}
	if !ok {
		d.recordFailure(r.Context(), ip)
		unauthorized(w, d.Log, "invalid username or password")
		return
	}

	if d.Throttle != nil {
		if err := d.Throttle.Reset(r.Context(), ip); err != nil {
			d.Log.Warn("gatewayhttp: failed to reset login throttle", "err", err)
		}
	}

	jwtToken, err := d.Issuer.IssueAccountToken(acc.ID, acc.Username)
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": jwtToken})
}

func (d *Deps) recordFailure(ctx context.Context, ip string) {
	if d.Throttle == nil {
		return
	}
	if err := d.Throttle.RecordFailure(ctx, ip); err != nil {
		d.Log.Warn("gatewayhttp: failed to record login failure", "err", err)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}

// handleCharacters implements GET/POST /character (spec §4.5).
func (d *Deps) handleCharacters(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r)
	if !ok {
		unauthorized(w, d.Log, "missing claims")
		return
	}

	switch r.Method {
	case http.MethodGet:
		chars, err := d.Characters.ListByAccountID(r.Context(), claims.AccountID)
		if err != nil {
			internalError(w, d.Log, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"characters": chars})

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, d.Log, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			badRequest(w, d.Log, "name is required")
			return
		}
		c, err := d.Characters.Create(r.Context(), claims.AccountID, req.Name)
		if err != nil {
			badRequest(w, d.Log, "character name already in use")
			return
		}
		writeJSON(w, http.StatusCreated, c)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleSelectCharacter implements POST /character/{id}/select (spec
// §4.5): confirms the caller's account owns the character, then mints a
// character JWT bound to it. This is the only path that can produce a
// token satisfying requireCharacterJWT, so it must run before /social.
func (d *Deps) handleSelectCharacter(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r)
	if !ok {
		unauthorized(w, d.Log, "missing claims")
		return
	}

	idStr := mux.Vars(r)["id"]
	characterID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		badRequest(w, d.Log, "invalid character id")
		return
	}

	char, err := d.Characters.LoadByID(r.Context(), characterID)
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}
	if char == nil || char.AccountID != claims.AccountID {
		unauthorized(w, d.Log, "character does not belong to this account")
		return
	}

	jwtToken, err := d.Issuer.IssueCharacterToken(claims.AccountID, claims.Username, char.ID)
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": jwtToken})
}

type requestEntryRequest struct {
	CharacterID int64  `json:"character_id"`
	RealmID     string `json:"realm_id"`
}

// handleRequestEntry implements POST /game/request-entry (spec §4.3,
// §4.5): mints a connect token bound to the requested character and a
// resolved realm address.
func (d *Deps) handleRequestEntry(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r)
	if !ok {
		unauthorized(w, d.Log, "missing claims")
		return
	}

	var req requestEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, d.Log, "invalid JSON body")
		return
	}

	char, err := d.Characters.LoadByID(r.Context(), req.CharacterID)
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}
	if char == nil || char.AccountID != claims.AccountID {
		unauthorized(w, d.Log, "character does not belong to this account")
		return
	}

	addr, err := d.Resolver.ResolveRealm(r.Context(), req.RealmID)
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}

	userData, err := token.EncodeUserData(uint64(char.ID), "")
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}

	connectToken, err := token.GenerateConnectToken(token.IssueParams{
		ProtocolID:      d.ProtocolID,
		ClientID:        uint64(claims.AccountID),
		ServerAddresses: []string{addr},
		UserData:        userData,
		MasterKey:       d.MasterKey,
		Now:             time.Now(),
	})
	if err != nil {
		internalError(w, d.Log, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"connect_token": connectToken})
}

// handleSocial implements GET /social (spec §4.5, §4.6): upgrades to a
// WebSocket bound to the hub for the lifetime of the connection.
func (d *Deps) handleSocial(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r)
	if !ok {
		unauthorized(w, d.Log, "missing claims")
		return
	}

	char, err := d.Characters.LoadByID(r.Context(), claims.CharacterID)
	if err != nil || char == nil {
		unauthorized(w, d.Log, "unknown character")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.Log.Warn("gatewayhttp: websocket upgrade failed", "err", err)
		return
	}

	hub.Serve(r.Context(), d.Hub, conn, char.ID, char.Name, char.GuildID, d.Log)
}
