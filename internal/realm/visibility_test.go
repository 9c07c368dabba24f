package realm

import "testing"

func newTestPlayer(w *World, clientID uint64, x, z float32) EntityID {
	return w.SpawnPlayer(clientID, int64(clientID), int64(clientID), nil, "p", Transform{X: x, Y: 0, Z: z}, 1, 100, 100)
}

func TestVisibilitySymmetryOnSpawnAndTeleport(t *testing.T) {
	w := NewWorld()
	p1 := newTestPlayer(w, 1, 0, 0)
	p2 := newTestPlayer(w, 2, 300, 0)

	w.Grid.Rebuild(w.Transforms)
	changes := systemVisibility(w)
	for _, c := range changes {
		if len(c.Added) != 0 {
			t.Fatalf("expected no visibility at t=0 (distance 300 > 256), got change %+v", c)
		}
	}

	tr := w.Transforms[p2]
	tr.X = 100
	w.Transforms[p2] = tr
	w.Grid.Rebuild(w.Transforms)
	changes = systemVisibility(w)

	if _, ok := w.Visible[p1][p2]; !ok {
		t.Fatal("p1 should now see p2")
	}
	if _, ok := w.Visible[p2][p1]; !ok {
		t.Fatal("p2 should now see p1")
	}
	link1 := w.Clients[p1]
	link2 := w.Clients[p2]
	if _, ok := w.Interested[p2][link1.ClientID]; !ok {
		t.Fatal("p2 should be interested-by p1's client")
	}
	if _, ok := w.Interested[p1][link2.ClientID]; !ok {
		t.Fatal("p1 should be interested-by p2's client")
	}

	foundAdd1, foundAdd2 := false, false
	for _, c := range changes {
		if c.Player == p1 {
			for _, a := range c.Added {
				if a == p2 {
					foundAdd1 = true
				}
			}
		}
		if c.Player == p2 {
			for _, a := range c.Added {
				if a == p1 {
					foundAdd2 = true
				}
			}
		}
	}
	if !foundAdd1 || !foundAdd2 {
		t.Fatalf("expected both players' VisibilityChange to report the other as added, got %+v", changes)
	}

	tr = w.Transforms[p2]
	tr.X = 1000
	w.Transforms[p2] = tr
	w.Grid.Rebuild(w.Transforms)
	changes = systemVisibility(w)

	if _, ok := w.Visible[p1][p2]; ok {
		t.Fatal("p1 should no longer see p2")
	}
	removed1, removed2 := false, false
	for _, c := range changes {
		if c.Player == p1 {
			for _, r := range c.Removed {
				if r == p2 {
					removed1 = true
				}
			}
		}
		if c.Player == p2 {
			for _, r := range c.Removed {
				if r == p1 {
					removed2 = true
				}
			}
		}
	}
	if !removed1 || !removed2 {
		t.Fatalf("expected exactly one Despawn-triggering removal each way, got %+v", changes)
	}
}
