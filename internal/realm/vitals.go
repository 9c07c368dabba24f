package realm

import (
	"time"

	"github.com/embervale/realm/internal/wire"
)

// CorpseDespawn is how long a dead NPC lingers before its handle is
// recycled (spec §3 Lifecycle, §5 Timeouts).
const CorpseDespawn = 150 * time.Second

// systemVitals handles death transitions and corpse despawn timers
// (spec §4.4 step 5).
func systemVitals(w *World, dt time.Duration, rng lootRoller) {
	for id, vit := range w.Vitals {
		if vit.HP > 0 {
			continue
		}
		if _, alreadyDead := w.Dead[id]; alreadyDead {
			continue
		}
		w.Dead[id] = Dead{Remaining: CorpseDespawn}
		w.broadcastToInterested(id, wire.EntityDeathEvent{ID: uint64(id)}, true)
		awardKill(w, id, rng)
	}

	for id, dead := range w.Dead {
		dead.Remaining -= dt
		if dead.Remaining > 0 {
			w.Dead[id] = dead
			continue
		}
		if w.Identities[id].Kind == KindNPC {
			w.despawnNPC(id)
		}
	}
}

// awardKill rolls loot for the tapped owner, if any (spec §4.4 Tap/credit
// policy: "If no tap exists (environmental death), loot is not rolled").
func awardKill(w *World, victim EntityID, rng lootRoller) {
	tap, ok := w.Tapped[victim]
	if !ok || !tap.Set {
		return
	}
	link, ok := w.Clients[tap.OwnerID]
	if !ok {
		return
	}
	ident, ok := w.Identities[victim]
	if !ok {
		return
	}
	table, ok := w.LootTables[ident.LootTable]
	if !ok {
		return
	}
	loot := rollLoot(table, rng)
	if len(loot) == 0 {
		return
	}
	w.enqueue(link.ClientID, wire.KillRewardEvent{Victim: uint64(victim), Loot: loot})
}

// lootRoller abstracts the randomness source so loot rolls are
// deterministic in tests (spec §4.4 Loot generation).
type lootRoller interface {
	// Float64 returns a value in [0,1).
	Float64() float64
	// IntRange returns a value in [min,max].
	IntRange(min, max int32) int32
}
