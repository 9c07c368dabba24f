package realm

import (
	"testing"

	"github.com/embervale/realm/internal/wire"
)

// fakeRoller drives deterministic sequences of Float64/IntRange calls
// for table-driven loot tests.
type fakeRoller struct {
	chances []float64
	amounts []int32
	ci, ai  int
}

func (f *fakeRoller) Float64() float64 {
	v := f.chances[f.ci]
	f.ci++
	return v
}

func (f *fakeRoller) IntRange(min, max int32) int32 {
	v := f.amounts[f.ai]
	f.ai++
	return v
}

func TestRollLootAggregatesByItemID(t *testing.T) {
	table := LootTable{
		Name: "goblin",
		Entries: []LootEntry{
			{ItemID: 10, Chance: 0.5, Min: 1, Max: 3},
			{ItemID: 10, Chance: 0.5, Min: 1, Max: 3},
			{ItemID: 20, Chance: 0.1, Min: 1, Max: 1},
		},
	}
	rng := &fakeRoller{chances: []float64{0.1, 0.2, 0.9}, amounts: []int32{2, 3}}

	got := rollLoot(table, rng)
	if len(got) != 1 {
		t.Fatalf("got %d loot lines, want 1 (entry 3 fails its chance roll)", len(got))
	}
	if got[0] != (wire.LootLine{ItemID: 10, Quantity: 5}) {
		t.Fatalf("got %+v, want ItemID=10 Quantity=5", got[0])
	}
}

func TestRollLootNoneSucceed(t *testing.T) {
	table := LootTable{Entries: []LootEntry{{ItemID: 1, Chance: 0.01, Min: 1, Max: 1}}}
	rng := &fakeRoller{chances: []float64{0.99}}
	got := rollLoot(table, rng)
	if len(got) != 0 {
		t.Fatalf("got %v, want no loot", got)
	}
}
