package realm

// ViewRadius bounds interest in a candidate entity (spec §4.4 step 8).
const ViewRadius = 256

func distance2(a, b Transform) float64 {
	dx := float64(a.X - b.X)
	dz := float64(a.Z - b.Z)
	return dx*dx + dz*dz
}

// VisibilityChange is the delta produced for one player by systemVisibility
// (spec §4.4 step 8 "Emit VisibilityChanged{client_id, added, removed}").
type VisibilityChange struct {
	Player  EntityID
	Added   []EntityID
	Removed []EntityID
}

// systemVisibility recomputes each player's visible set from the
// rebuilt grid and symmetrically updates every candidate's interested
// set (spec §4.4 step 8, and the symmetry invariant in spec §8).
func systemVisibility(w *World) []VisibilityChange {
	var changes []VisibilityChange
	viewRadius2 := float64(ViewRadius) * float64(ViewRadius)

	for player := range w.Clients {
		playerTr, ok := w.Transforms[player]
		if !ok {
			continue
		}
		newVisible := make(map[EntityID]struct{})
		for _, candidate := range w.Grid.Neighborhood(playerTr.X, playerTr.Z) {
			if candidate == player {
				continue
			}
			candidateTr, ok := w.Transforms[candidate]
			if !ok {
				continue
			}
			if distance2(playerTr, candidateTr) <= viewRadius2 {
				newVisible[candidate] = struct{}{}
			}
		}

		oldVisible := w.Visible[player]
		var added, removed []EntityID
		for id := range newVisible {
			if _, was := oldVisible[id]; !was {
				added = append(added, id)
			}
		}
		for id := range oldVisible {
			if _, is := newVisible[id]; !is {
				removed = append(removed, id)
			}
		}

		if len(added) > 0 || len(removed) > 0 {
			changes = append(changes, VisibilityChange{Player: player, Added: added, Removed: removed})
		}

		w.Visible[player] = newVisible
		link := w.Clients[player]
		for _, id := range added {
			if w.Interested[id] == nil {
				w.Interested[id] = make(map[uint64]EntityID)
			}
			w.Interested[id][link.ClientID] = player
		}
		for _, id := range removed {
			delete(w.Interested[id], link.ClientID)
		}
	}

	return changes
}
