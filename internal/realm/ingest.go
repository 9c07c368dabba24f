package realm

import (
	"context"
	"log/slog"

	"github.com/embervale/realm/internal/netcode"
	"github.com/embervale/realm/internal/wire"
)

// systemIngest decodes every Delivery recovered by netcode this tick into
// PendingActions, tagging each with the EntityID the delivering ClientId
// owns (spec §4.4 step 1). Deliveries from a ClientId with no live entity
// (e.g. a packet that raced disconnect) are dropped with a log.
func systemIngest(w *World, deliveries []netcode.Delivery, log *slog.Logger) {
	for _, d := range deliveries {
		entity, ok := w.ClientToEntity[d.ClientID]
		if !ok {
			log.Warn("realm: dropping delivery for unknown client", "client_id", d.ClientID)
			continue
		}

		switch d.Channel {
		case netcode.ChannelUnreliable:
			action, err := wire.DecodeAction(wire.NewReader(d.Data))
			if err != nil {
				log.Warn("realm: dropping unreadable unreliable action", "client_id", d.ClientID, "err", err)
				continue
			}
			applyAction(w, entity, action, log)

		default:
			actions, dropped, err := wire.DecodeBatch(d.Data)
			if err != nil {
				log.Warn("realm: dropping unreadable batch", "client_id", d.ClientID, "err", err)
				continue
			}
			for _, drop := range dropped {
				log.Warn("realm: dropping unreadable batched action", "client_id", d.ClientID, "index", drop.Index, "err", drop.Err)
			}
			for _, action := range actions {
				applyAction(w, entity, action, log)
			}
		}
	}
}

func applyAction(w *World, entity EntityID, action wire.Action, log *slog.Logger) {
	switch a := action.(type) {
	case wire.PlayerMoveAction:
		w.Pending.Moves = append(w.Pending.Moves, MoveCmd{Entity: entity, Yaw: a.Yaw, Forward: a.Forward, Sideways: a.Sideways})
	case wire.JumpAction:
		w.Pending.Jumps = append(w.Pending.Jumps, JumpCmd{Entity: entity})
	case wire.CastSpellAction:
		target, ok := w.ClientToEntity[a.TargetID]
		if !ok {
			target = EntityID(a.TargetID)
		}
		w.Pending.Casts = append(w.Pending.Casts, CastCmd{Entity: entity, SpellID: a.SpellID, TargetID: target})
	case wire.ClientChatMessage:
		w.Pending.Chats = append(w.Pending.Chats, ChatCmd{Entity: entity, Channel: a.Channel, Text: a.Text})
	default:
		log.Warn("realm: dropping action with no handler", "type", action.Discriminant())
	}
}

// ClientConnected hydrates a player entity from its persisted character
// row and binds it to the transport ClientId (spec §4.3 "Realm on
// connect").
func ClientConnected(w *World, clientID uint64, characterID, accountID int64, guildID *int64, name string, x, y, z float32, yaw uint16, level, hp, maxHP int32) EntityID {
	theta := wire.DecodeYaw(yaw)
	return w.SpawnPlayer(clientID, characterID, accountID, guildID, name, Transform{X: x, Y: y, Z: z, Yaw: float32(theta)}, level, hp, maxHP)
}

// PersistOnDisconnect is the narrow view of internal/db.CharacterRepository
// that lifecycle teardown needs, kept here so this package stays free of a
// direct database import (spec §4.3 "Realm on disconnect").
type PersistOnDisconnect interface {
	PersistTransform(ctx context.Context, characterID int64, x, y, z float32, yaw uint16, hp int32) error
}

// ClientDisconnected persists the player's final transform and vitals
// and frees its entity (spec §4.3 "Realm on disconnect").
func ClientDisconnected(ctx context.Context, w *World, clientID uint64, repo PersistOnDisconnect, log *slog.Logger) {
	id, ok := w.ClientToEntity[clientID]
	if !ok {
		return
	}
	link := w.Clients[id]
	tr := w.Transforms[id]
	vit := w.Vitals[id]
	if repo != nil {
		if err := repo.PersistTransform(ctx, link.CharacterID, tr.X, tr.Y, tr.Z, wire.EncodeYaw(float64(tr.Yaw)), vit.HP); err != nil {
			log.Error("realm: failed to persist character on disconnect", "character_id", link.CharacterID, "err", err)
		}
	}
	w.DespawnPlayer(id)
}
