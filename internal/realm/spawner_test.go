package realm

import (
	"testing"
	"time"
)

func TestSystemSpawnerRespawnsUpToMax(t *testing.T) {
	w := NewWorld()
	bp := NPCBlueprint{Name: "Wolf", MinLevel: 3, MaxLevel: 3, MaxHP: 50, MovementSpeed: 3}
	sp := NewMobSpawner("wolf-den", bp, Transform{X: 0, Y: 0, Z: 0}, 10, 2, time.Second)
	w.Spawners = append(w.Spawners, sp)
	rng := &fakeRoller{chances: []float64{0, 0, 0, 0, 0, 0}, amounts: []int32{0, 0, 0}}

	systemSpawner(w, time.Second, rng)
	if len(sp.alive) != 1 {
		t.Fatalf("alive = %d, want 1 after first tick", len(sp.alive))
	}
	systemSpawner(w, time.Second, rng)
	if len(sp.alive) != 2 {
		t.Fatalf("alive = %d, want 2 after second tick", len(sp.alive))
	}
	systemSpawner(w, time.Second, rng)
	if len(sp.alive) != 2 {
		t.Fatalf("alive = %d, want capped at MaxAlive=2", len(sp.alive))
	}
}

func TestSystemSpawnerReclaimsDespawnedSlots(t *testing.T) {
	w := NewWorld()
	bp := NPCBlueprint{Name: "Wolf", MinLevel: 1, MaxLevel: 1, MaxHP: 10, MovementSpeed: 3}
	sp := NewMobSpawner("den", bp, Transform{}, 5, 1, time.Second)
	w.Spawners = append(w.Spawners, sp)
	rng := &fakeRoller{chances: []float64{0, 0}, amounts: []int32{0, 0}}

	systemSpawner(w, time.Second, rng)
	if len(sp.alive) != 1 {
		t.Fatalf("alive = %d, want 1", len(sp.alive))
	}
	var id EntityID
	for existing := range sp.alive {
		id = existing
	}
	w.despawnNPC(id)

	systemSpawner(w, time.Second, rng)
	if len(sp.alive) != 1 {
		t.Fatalf("alive = %d, want 1 after reclaiming the despawned slot and respawning", len(sp.alive))
	}
}
