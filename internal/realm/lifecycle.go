package realm

import (
	"context"
	"log/slog"
)

// ConnectEvent carries an already-hydrated character row, built outside
// the tick (a database round trip belongs to the gateway/connection
// layer, not the realm, since spec §5 forbids the realm awaiting inside
// a tick).
type ConnectEvent struct {
	ClientID    uint64
	CharacterID int64
	AccountID   int64
	GuildID     *int64
	Name        string
	X, Y, Z     float32
	Yaw         uint16
	Level       int32
	HP          int32
	MaxHP       int32
}

// DisconnectEvent signals a ClientId has gone away.
type DisconnectEvent struct {
	ClientID uint64
}

// systemLifecycle spawns newly-connected players and tears down
// disconnected ones (spec §4.4 step 2).
func systemLifecycle(ctx context.Context, w *World, connects []ConnectEvent, disconnects []DisconnectEvent, repo PersistOnDisconnect, log *slog.Logger) {
	for _, c := range connects {
		ClientConnected(w, c.ClientID, c.CharacterID, c.AccountID, c.GuildID, c.Name, c.X, c.Y, c.Z, c.Yaw, c.Level, c.HP, c.MaxHP)
	}
	for _, d := range disconnects {
		ClientDisconnected(ctx, w, d.ClientID, repo, log)
	}
}
