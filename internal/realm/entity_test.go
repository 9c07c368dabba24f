package realm

import "testing"

func TestArenaAllocFreeReuseBumpsGeneration(t *testing.T) {
	a := NewArena()
	id1 := a.Alloc(KindPlayer)
	if !a.Alive(id1) {
		t.Fatal("freshly allocated handle should be alive")
	}
	if id1.Kind() != KindPlayer {
		t.Fatalf("Kind() = %v, want KindPlayer", id1.Kind())
	}

	a.Free(id1)
	if a.Alive(id1) {
		t.Fatal("freed handle should not be alive")
	}

	id2 := a.Alloc(KindNPC)
	if id2.index() != id1.index() {
		t.Fatalf("expected slot reuse: id1.index()=%d id2.index()=%d", id1.index(), id2.index())
	}
	if id2.generation() == id1.generation() {
		t.Fatal("reused slot must bump generation")
	}
	if a.Alive(id1) {
		t.Fatal("stale handle must not be alive after reuse")
	}
	if !a.Alive(id2) {
		t.Fatal("new handle should be alive")
	}
}

func TestArenaFreeUnknownIsNoop(t *testing.T) {
	a := NewArena()
	a.Free(EntityID(0xdeadbeef))
}
