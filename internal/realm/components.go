package realm

import "time"

// Transform mirrors spec §3: position as three floats, yaw in radians
// while in simulation (quantized to a u16 only at the wire boundary by
// internal/wire).
type Transform struct {
	X, Y, Z float32
	Yaw     float32
}

// Identity holds the immutable-ish display attributes spec §3 lists on
// every entity.
type Identity struct {
	Name          string
	Kind          Kind
	Level         int32
	MovementSpeed float32
	// LootTable names the LootTable an NPC rolls on death (empty for players).
	LootTable string
}

// Vitals holds hp/max_hp (spec §3).
type Vitals struct {
	HP    int32
	MaxHP int32
}

// ClientLink binds a player entity to its transport ClientId and
// persistent character row (spec §3 ClientId, CharacterRow).
type ClientLink struct {
	ClientID    uint64
	CharacterID int64
	AccountID   int64
	GuildID     *int64
}

// Casting is attached while a spell's cast timer is running (spec §4.4
// step 4).
type Casting struct {
	SpellID   int32
	CasterID  EntityID
	TargetID  EntityID
	Remaining time.Duration
}

// Dead marks an entity past its death tick, counting down to despawn
// (spec §4.4 step 5, CORPSE_DESPAWN=150s).
type Dead struct {
	Remaining time.Duration
}

// Tapped records which player is credited for damaging an entity first
// (spec §4.4 Tap/credit policy). Set is used to distinguish "never
// tapped" from a tap by a handle that happens to be the zero value,
// even though EntityID 0 is never issued by Arena in practice.
type Tapped struct {
	OwnerID EntityID
	Set     bool
}

// MobSpawner periodically instantiates NPCs from a blueprint (spec §4.4
// step 6).
type MobSpawner struct {
	ID           string
	Blueprint    NPCBlueprint
	Position     Transform
	Radius       float32
	MaxAlive     int
	RespawnEvery time.Duration
	timer        time.Duration
	alive        map[EntityID]struct{}
}

// NPCBlueprint is the static template a MobSpawner instantiates from.
type NPCBlueprint struct {
	Name          string
	MinLevel      int32
	MaxLevel      int32
	MaxHP         int32
	MovementSpeed float32
	LootTable     string
}

// SpellDef is the static template the spell-casting system validates
// against (spec §4.4 step 4).
type SpellDef struct {
	ID                  int32
	Range               float32
	CastTime            time.Duration
	Cooldown            time.Duration
	CastableWhileMoving bool
	Damage              int32
}

// LootEntry is one row of a LootTable (spec §4.4 Loot generation).
type LootEntry struct {
	ItemID int32
	Chance float64
	Min    int32
	Max    int32
}

// LootTable is a named collection of LootEntry, referenced by
// NPCBlueprint.LootTable.
type LootTable struct {
	Name    string
	Entries []LootEntry
}
