package realm

import (
	"time"

	"github.com/embervale/realm/internal/wire"
)

// OutgoingMessage is spec §3's "Outgoing Message": a tagged union
// (realized here as wire.Event, which already is one) addressed to
// exactly one ClientId. Broadcasts are many singletons, per spec.
type OutgoingMessage struct {
	ClientID uint64
	Event    wire.Event
}

// MoveCmd, CastCmd, ChatCmd, JumpCmd are the internal messages Ingest
// posts from decoded actions (spec §4.4 step 1), each tagged with the
// entity the sending ClientId owns. Whisper and Guild chat are hub
// commands, not realm ones (spec §4.6) and never appear here.
type MoveCmd struct {
	Entity   EntityID
	Yaw      uint16
	Forward  int8
	Sideways int8
}

type CastCmd struct {
	Entity   EntityID
	SpellID  int32
	TargetID EntityID
}

type ChatCmd struct {
	Entity  EntityID
	Channel int32
	Text    string
}

type JumpCmd struct {
	Entity EntityID
}

// World owns every component table. Systems in tick.go each acquire
// exclusive access to the tables they write, in the fixed order of
// spec §4.4; there are no locks because only one goroutine ever calls
// into World between ticks.
type World struct {
	Arena *Arena

	Transforms map[EntityID]Transform
	Identities map[EntityID]Identity
	Vitals     map[EntityID]Vitals
	Clients    map[EntityID]ClientLink
	Casts      map[EntityID]Casting
	Dead       map[EntityID]Dead
	Tapped     map[EntityID]Tapped
	// Cooldowns tracks time remaining before an entity may recast a given
	// spell id, keyed by entity then spell id (spec §4.4 step 4).
	Cooldowns map[EntityID]map[int32]time.Duration

	// Interested is keyed by entity; the value is the set of ClientIds
	// currently subscribed to updates about it (spec §3 interested-clients).
	Interested map[EntityID]map[uint64]EntityID
	// Visible is keyed by a player entity; the value is the set of
	// entities it currently sees (spec §3 visible-entities, players only).
	Visible map[EntityID]map[EntityID]struct{}

	ClientToEntity map[uint64]EntityID

	Spawners   []*MobSpawner
	LootTables map[string]LootTable
	SpellDefs  map[int32]SpellDef

	Grid *Grid

	Pending PendingActions
	Out     []OutgoingMessage
}

// PendingActions buffers decoded actions between Ingest and the systems
// that consume them, cleared at the end of each tick.
type PendingActions struct {
	Moves []MoveCmd
	Casts []CastCmd
	Chats []ChatCmd
	Jumps []JumpCmd
}

func (p *PendingActions) reset() {
	p.Moves = p.Moves[:0]
	p.Casts = p.Casts[:0]
	p.Chats = p.Chats[:0]
	p.Jumps = p.Jumps[:0]
}

// NewWorld returns an empty world with its spatial grid sized per spec
// §3 (CELL_SIZE=128).
func NewWorld() *World {
	return &World{
		Arena:          NewArena(),
		Transforms:     make(map[EntityID]Transform),
		Identities:     make(map[EntityID]Identity),
		Vitals:         make(map[EntityID]Vitals),
		Clients:        make(map[EntityID]ClientLink),
		Casts:          make(map[EntityID]Casting),
		Dead:           make(map[EntityID]Dead),
		Tapped:         make(map[EntityID]Tapped),
		Cooldowns:      make(map[EntityID]map[int32]time.Duration),
		Interested:     make(map[EntityID]map[uint64]EntityID),
		Visible:        make(map[EntityID]map[EntityID]struct{}),
		ClientToEntity: make(map[uint64]EntityID),
		LootTables:     make(map[string]LootTable),
		SpellDefs:      make(map[int32]SpellDef),
		Grid:           NewGrid(CellSize),
	}
}

// SpawnPlayer creates a player entity hydrated from a character row
// (spec §4.3 "Realm on connect").
func (w *World) SpawnPlayer(clientID uint64, characterID, accountID int64, guildID *int64, name string, tr Transform, level, hp, maxHP int32) EntityID {
	id := w.Arena.Alloc(KindPlayer)
	w.Transforms[id] = tr
	w.Identities[id] = Identity{Name: name, Kind: KindPlayer, Level: level, MovementSpeed: defaultPlayerSpeed}
	w.Vitals[id] = Vitals{HP: hp, MaxHP: maxHP}
	w.Clients[id] = ClientLink{ClientID: clientID, CharacterID: characterID, AccountID: accountID, GuildID: guildID}
	w.Interested[id] = make(map[uint64]EntityID)
	w.Visible[id] = make(map[EntityID]struct{})
	w.ClientToEntity[clientID] = id
	return id
}

const defaultPlayerSpeed = 5.0

// SpawnNPC creates an NPC entity from a blueprint (spec §4.4 step 6).
func (w *World) SpawnNPC(bp NPCBlueprint, tr Transform, level int32) EntityID {
	id := w.Arena.Alloc(KindNPC)
	w.Transforms[id] = tr
	w.Identities[id] = Identity{Name: bp.Name, Kind: KindNPC, Level: level, MovementSpeed: bp.MovementSpeed, LootTable: bp.LootTable}
	w.Vitals[id] = Vitals{HP: bp.MaxHP, MaxHP: bp.MaxHP}
	w.Interested[id] = make(map[uint64]EntityID)
	return id
}

// DespawnPlayer removes a player's full component set and its
// ClientId binding (spec §3 Lifecycle: "destroyed on disconnect").
func (w *World) DespawnPlayer(id EntityID) {
	if link, ok := w.Clients[id]; ok {
		delete(w.ClientToEntity, link.ClientID)
	}
	w.despawnCommon(id)
	delete(w.Clients, id)
	delete(w.Visible, id)
}

// despawnNPC removes an NPC's component set (spec §3 Lifecycle:
// "destroyed ... on death-timer expiry").
func (w *World) despawnNPC(id EntityID) {
	w.despawnCommon(id)
}

func (w *World) despawnCommon(id EntityID) {
	delete(w.Transforms, id)
	delete(w.Identities, id)
	delete(w.Vitals, id)
	delete(w.Casts, id)
	delete(w.Dead, id)
	delete(w.Tapped, id)
	delete(w.Cooldowns, id)
	delete(w.Interested, id)
	w.Arena.Free(id)
}

// enqueue addresses an event to a single ClientId (spec §3: "Always
// addressed to exactly one ClientId; broadcasts are realized as many
// singletons").
func (w *World) enqueue(clientID uint64, ev wire.Event) {
	w.Out = append(w.Out, OutgoingMessage{ClientID: clientID, Event: ev})
}

// broadcastToInterested enqueues ev once per ClientId interested in id,
// plus optionally to id's own owning client for self-echo reconciliation
// (spec §4.4 step 9).
func (w *World) broadcastToInterested(id EntityID, ev wire.Event, includeSelf bool) {
	for clientID := range w.Interested[id] {
		w.enqueue(clientID, ev)
	}
	if includeSelf {
		if link, ok := w.Clients[id]; ok {
			w.enqueue(link.ClientID, ev)
		}
	}
}
