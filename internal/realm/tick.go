package realm

import (
	"context"
	"log/slog"
	"time"

	"github.com/embervale/realm/internal/netcode"
)

// TickInput bundles everything one tick needs from outside the
// simulation: transport deliveries, lifecycle events resolved since the
// last tick, and wall-clock delta.
type TickInput struct {
	Dt          time.Duration
	Deliveries  []netcode.Delivery
	Connects    []ConnectEvent
	Disconnects []DisconnectEvent
}

// Tick runs every system exactly once, in the fixed order of spec §4.4:
// Ingest, Connection lifecycle, Movement, Spell casting, Vitals/death,
// Spawner, spatial grid rebuild, proximity chat, Visibility, Fan-out. It
// never blocks on I/O; persistence on disconnect is the one exception, a
// single bounded write rather than an open-ended wait.
func Tick(ctx context.Context, w *World, in TickInput, repo PersistOnDisconnect, rng lootRoller, log *slog.Logger) []OutgoingMessage {
	systemIngest(w, in.Deliveries, log)
	systemLifecycle(ctx, w, in.Connects, in.Disconnects, repo, log)

	moved := make(map[EntityID]struct{}, len(w.Pending.Moves))
	for _, cmd := range w.Pending.Moves {
		moved[cmd.Entity] = struct{}{}
	}

	systemMovement(w, in.Dt)
	systemSpellCast(w, in.Dt, moved)
	systemVitals(w, in.Dt, rng)
	systemSpawner(w, in.Dt, rng)

	w.Grid.Rebuild(w.Transforms)
	systemChat(w)
	changes := systemVisibility(w)

	systemFanout(w, moved, changes)

	out := w.Out
	w.Out = nil
	w.Pending.reset()
	return out
}
