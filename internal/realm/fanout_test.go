package realm

import "testing"

func TestSystemFanoutBroadcastsMoveToInterestedAndSelf(t *testing.T) {
	w := NewWorld()
	mover := newTestPlayer(w, 1, 0, 0)
	watcher := newTestPlayer(w, 2, 1, 1)
	w.Interested[mover][2] = watcher

	moved := map[EntityID]struct{}{mover: {}}
	systemFanout(w, moved, nil)

	if len(w.Out) != 2 {
		t.Fatalf("expected move broadcast to watcher and self-echo, got %d messages", len(w.Out))
	}
}

func TestSystemFanoutEmitsSpawnAndDespawnFromVisibilityChange(t *testing.T) {
	w := NewWorld()
	player := newTestPlayer(w, 1, 0, 0)
	npc := w.SpawnNPC(NPCBlueprint{Name: "Wolf", MaxHP: 10}, Transform{}, 2)

	changes := []VisibilityChange{{Player: player, Added: []EntityID{npc}}}
	systemFanout(w, nil, changes)
	if len(w.Out) != 1 {
		t.Fatalf("expected one spawn message, got %d", len(w.Out))
	}

	w.Out = nil
	changes = []VisibilityChange{{Player: player, Removed: []EntityID{npc}}}
	systemFanout(w, nil, changes)
	if len(w.Out) != 1 {
		t.Fatalf("expected one despawn message, got %d", len(w.Out))
	}
}
