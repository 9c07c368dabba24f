package realm

import (
	"math/rand"

	"github.com/embervale/realm/internal/wire"
)

// randLootRoller is the production lootRoller, backed by math/rand
// (no pack example reaches for a dedicated weighted-random library for
// simple loot-table rolls, so the standard library is used here).
// chanceMultiplier/amountMultiplier carry the realm config's
// loot_chance_multiplier/loot_amount_multiplier (spec §9 Open Question a,
// la2go's Rates struct).
type randLootRoller struct {
	rng              *rand.Rand
	chanceMultiplier float64
	amountMultiplier float64
}

// NewRandLootRoller seeds a roller from seed (cmd/realm passes a
// time-derived value; tests construct their own lootRoller instead).
// Multipliers below 1 are treated as 1 (no shop of half-rates here).
func NewRandLootRoller(seed int64, chanceMultiplier, amountMultiplier float64) *randLootRoller {
	if chanceMultiplier < 1 {
		chanceMultiplier = 1
	}
	if amountMultiplier < 1 {
		amountMultiplier = 1
	}
	return &randLootRoller{
		rng:              rand.New(rand.NewSource(seed)),
		chanceMultiplier: chanceMultiplier,
		amountMultiplier: amountMultiplier,
	}
}

// Float64 scales the roll down by chanceMultiplier so a higher
// multiplier makes every entry.Chance threshold easier to clear.
func (r *randLootRoller) Float64() float64 {
	return r.rng.Float64() / r.chanceMultiplier
}

func (r *randLootRoller) IntRange(min, max int32) int32 {
	if max <= min {
		return min
	}
	base := min + r.rng.Int31n(max-min+1)
	scaled := int32(float64(base) * r.amountMultiplier)
	if scaled < base {
		scaled = base
	}
	return scaled
}

// rollLoot iterates every entry, rolling its chance and, on success, a
// quantity in [min,max], then aggregates by item id (spec §4.4 Loot
// generation).
func rollLoot(table LootTable, rng lootRoller) []wire.LootLine {
	totals := make(map[int32]int32)
	order := make([]int32, 0, len(table.Entries))

	for _, entry := range table.Entries {
		if rng.Float64() >= entry.Chance {
			continue
		}
		qty := rng.IntRange(entry.Min, entry.Max)
		if qty <= 0 {
			continue
		}
		if _, seen := totals[entry.ItemID]; !seen {
			order = append(order, entry.ItemID)
		}
		totals[entry.ItemID] += qty
	}

	lines := make([]wire.LootLine, 0, len(order))
	for _, itemID := range order {
		lines = append(lines, wire.LootLine{ItemID: itemID, Quantity: totals[itemID]})
	}
	return lines
}
