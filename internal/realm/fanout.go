package realm

import "github.com/embervale/realm/internal/wire"

// systemFanout turns this tick's transform updates and visibility deltas
// into OutgoingMessages (spec §4.4 step 9). Movement is broadcast to
// every currently-interested client plus the moving entity itself, for
// client-side reconciliation; spawns and despawns follow the visibility
// deltas exactly, one message per affected client.
func systemFanout(w *World, moved map[EntityID]struct{}, changes []VisibilityChange) {
	for id := range moved {
		tr, ok := w.Transforms[id]
		if !ok {
			continue
		}
		w.broadcastToInterested(id, wire.EntityMoveEvent{ID: uint64(id), Transform: snapshotTransform(tr)}, true)
	}

	for _, change := range changes {
		link, ok := w.Clients[change.Player]
		if !ok {
			continue
		}
		for _, id := range change.Added {
			snap, ok := snapshot(w, id)
			if !ok {
				continue
			}
			w.enqueue(link.ClientID, wire.EntitySpawnEvent{Entity: snap})
		}
		for _, id := range change.Removed {
			w.enqueue(link.ClientID, wire.EntityDespawnEvent{ID: uint64(id)})
		}
	}
}

func snapshotTransform(tr Transform) wire.Transform {
	return wire.Transform{X: tr.X, Y: tr.Y, Z: tr.Z, Yaw: wire.EncodeYaw(float64(tr.Yaw))}
}

func snapshot(w *World, id EntityID) (wire.EntitySnapshot, bool) {
	tr, ok := w.Transforms[id]
	if !ok {
		return wire.EntitySnapshot{}, false
	}
	ident, ok := w.Identities[id]
	if !ok {
		return wire.EntitySnapshot{}, false
	}
	vit := w.Vitals[id]

	kind := wire.EntityKindPlayer
	if ident.Kind == KindNPC {
		kind = wire.EntityKindNPC
	}
	return wire.EntitySnapshot{
		ID:        uint64(id),
		Kind:      kind,
		Name:      ident.Name,
		Transform: snapshotTransform(tr),
		HP:        vit.HP,
		MaxHP:     vit.MaxHP,
		Level:     ident.Level,
	}, true
}
