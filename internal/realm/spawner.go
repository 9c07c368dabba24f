package realm

import (
	"math"
	"time"
)

// NewMobSpawner constructs a spawner; alive is tracked internally so the
// spawner knows which of its own instances have died without scanning
// the whole world each tick.
func NewMobSpawner(id string, bp NPCBlueprint, pos Transform, radius float32, maxAlive int, respawnEvery time.Duration) *MobSpawner {
	return &MobSpawner{
		ID:           id,
		Blueprint:    bp,
		Position:     pos,
		Radius:       radius,
		MaxAlive:     maxAlive,
		RespawnEvery: respawnEvery,
		alive:        make(map[EntityID]struct{}),
	}
}

// systemSpawner ticks every spawner's timer and instantiates a new NPC
// from its blueprint once the count is below max and the timer elapses
// (spec §4.4 step 6).
func systemSpawner(w *World, dt time.Duration, rng lootRoller) {
	for _, sp := range w.Spawners {
		for id := range sp.alive {
			if !w.Arena.Alive(id) {
				delete(sp.alive, id)
			}
		}

		if len(sp.alive) >= sp.MaxAlive {
			continue
		}
		sp.timer -= dt
		if sp.timer > 0 {
			continue
		}
		sp.timer = sp.RespawnEvery

		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * float64(sp.Radius)
		x := sp.Position.X + float32(r*math.Cos(angle))
		z := sp.Position.Z + float32(r*math.Sin(angle))
		level := sp.Blueprint.MinLevel
		if sp.Blueprint.MaxLevel > sp.Blueprint.MinLevel {
			level = sp.Blueprint.MinLevel + rng.IntRange(0, sp.Blueprint.MaxLevel-sp.Blueprint.MinLevel)
		}

		id := w.SpawnNPC(sp.Blueprint, Transform{X: x, Y: sp.Position.Y, Z: z}, level)
		sp.alive[id] = struct{}{}
	}
}
