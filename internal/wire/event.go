package wire

import "fmt"

// Event discriminants (spec §4.1).
const (
	EventEntityMove        byte = 0
	EventEntitySpawn       byte = 1
	EventEntityDespawn     byte = 2
	EventEntityDeath       byte = 3
	EventStartCasting      byte = 4
	EventSpellImpact       byte = 5
	EventServerChatMessage byte = 6
	EventKillReward        byte = 7
)

// Chat channel ids carried in ClientChatMessage/ServerChatMessageEvent
// (spec §4.6). Say and Yell are proximity-based and resolved by the
// realm; Guild and Whisper are resolved by the social hub; System is
// hub/realm-originated and never sent by a client.
const (
	ChatChannelSay     int32 = 0
	ChatChannelYell    int32 = 1
	ChatChannelGuild   int32 = 2
	ChatChannelWhisper int32 = 3
	ChatChannelSystem  int32 = 255
)

// Entity kinds distinguish Player from Npc bundles on the wire (spec §2).
const (
	EntityKindPlayer byte = 0
	EntityKindNPC    byte = 1
)

// Transform is the quantized pose carried in EntityMove and EntitySpawn:
// position as three 32-bit floats, yaw as a unit-normalized 16-bit
// quantum (spec §2 Entity).
type Transform struct {
	X, Y, Z float32
	Yaw     uint16
}

func (t Transform) encode(w *Writer) {
	w.WriteFloat32(t.X)
	w.WriteFloat32(t.Y)
	w.WriteFloat32(t.Z)
	w.WriteUint16(t.Yaw)
}

func decodeTransform(r *Reader) (Transform, error) {
	var t Transform
	var err error
	if t.X, err = r.ReadFloat32(); err != nil {
		return t, err
	}
	if t.Y, err = r.ReadFloat32(); err != nil {
		return t, err
	}
	if t.Z, err = r.ReadFloat32(); err != nil {
		return t, err
	}
	if t.Yaw, err = r.ReadUint16(); err != nil {
		return t, err
	}
	return t, nil
}

// EntitySnapshot is the wire projection of an Entity used in EntitySpawn
// (spec §2: name, transform, vitals, level).
type EntitySnapshot struct {
	ID        uint64
	Kind      byte
	Name      string
	Transform Transform
	HP        int32
	MaxHP     int32
	Level     int32
}

// LootLine is one entry of a KillReward's loot list.
type LootLine struct {
	ItemID   int32
	Quantity int32
}

// Event is implemented by every server→client message body.
type Event interface {
	// Discriminant returns this event's 1-byte wire tag.
	Discriminant() byte
	encodeBody(w *Writer) error
}

// EntityMoveEvent reports a transform update for one entity.
type EntityMoveEvent struct {
	ID        uint64
	Transform Transform
}

func (EntityMoveEvent) Discriminant() byte { return EventEntityMove }
func (e EntityMoveEvent) encodeBody(w *Writer) error {
	w.WriteUint64(e.ID)
	e.Transform.encode(w)
	return nil
}

// EntitySpawnEvent introduces a newly-visible entity.
type EntitySpawnEvent struct {
	Entity EntitySnapshot
}

func (EntitySpawnEvent) Discriminant() byte { return EventEntitySpawn }
func (e EntitySpawnEvent) encodeBody(w *Writer) error {
	w.WriteUint64(e.Entity.ID)
	w.WriteByte(e.Entity.Kind)
	if err := w.WriteString(e.Entity.Name); err != nil {
		return err
	}
	e.Entity.Transform.encode(w)
	w.WriteInt32(e.Entity.HP)
	w.WriteInt32(e.Entity.MaxHP)
	w.WriteInt32(e.Entity.Level)
	return nil
}

// EntityDespawnEvent removes an entity that left visibility.
type EntityDespawnEvent struct {
	ID uint64
}

func (EntityDespawnEvent) Discriminant() byte { return EventEntityDespawn }
func (e EntityDespawnEvent) encodeBody(w *Writer) error {
	w.WriteUint64(e.ID)
	return nil
}

// EntityDeathEvent reports an entity's death.
type EntityDeathEvent struct {
	ID uint64
}

func (EntityDeathEvent) Discriminant() byte { return EventEntityDeath }
func (e EntityDeathEvent) encodeBody(w *Writer) error {
	w.WriteUint64(e.ID)
	return nil
}

// StartCastingEvent announces the beginning of a spell cast.
type StartCastingEvent struct {
	EntityID uint64
	SpellID  int32
}

func (StartCastingEvent) Discriminant() byte { return EventStartCasting }
func (e StartCastingEvent) encodeBody(w *Writer) error {
	w.WriteUint64(e.EntityID)
	w.WriteInt32(e.SpellID)
	return nil
}

// SpellImpactEvent reports a spell landing on its target.
type SpellImpactEvent struct {
	TargetID uint64
	SpellID  int32
	Amount   int32
}

func (SpellImpactEvent) Discriminant() byte { return EventSpellImpact }
func (e SpellImpactEvent) encodeBody(w *Writer) error {
	w.WriteUint64(e.TargetID)
	w.WriteInt32(e.SpellID)
	w.WriteInt32(e.Amount)
	return nil
}

// ServerChatMessageEvent delivers a chat line to one client.
type ServerChatMessageEvent struct {
	Channel    int32
	SenderName string
	Text       string
}

func (ServerChatMessageEvent) Discriminant() byte { return EventServerChatMessage }
func (e ServerChatMessageEvent) encodeBody(w *Writer) error {
	w.WriteInt32(e.Channel)
	if err := w.WriteString(e.SenderName); err != nil {
		return err
	}
	return w.WriteString(e.Text)
}

// KillRewardEvent tells the tapped owner what an entity dropped.
type KillRewardEvent struct {
	Victim uint64
	Loot   []LootLine
}

func (KillRewardEvent) Discriminant() byte { return EventKillReward }
func (e KillRewardEvent) encodeBody(w *Writer) error {
	w.WriteUint64(e.Victim)
	w.WriteUint16(uint16(len(e.Loot)))
	for _, line := range e.Loot {
		w.WriteInt32(line.ItemID)
		w.WriteInt32(line.Quantity)
	}
	return nil
}

// EncodeEvent writes discriminant + body to w.
func EncodeEvent(w *Writer, e Event) error {
	w.WriteByte(e.Discriminant())
	return e.encodeBody(w)
}

// DecodeEvent reads one discriminant + body from r.
func DecodeEvent(r *Reader) (Event, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading event discriminant: %w", err)
	}

	switch tag {
	case EventEntityMove:
		id, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		tr, err := decodeTransform(r)
		if err != nil {
			return nil, err
		}
		return EntityMoveEvent{ID: id, Transform: tr}, nil

	case EventEntitySpawn:
		var snap EntitySnapshot
		var err error
		if snap.ID, err = r.ReadUint64(); err != nil {
			return nil, err
		}
		if snap.Kind, err = r.ReadByte(); err != nil {
			return nil, err
		}
		if snap.Name, err = r.ReadString(); err != nil {
			return nil, err
		}
		if snap.Transform, err = decodeTransform(r); err != nil {
			return nil, err
		}
		if snap.HP, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		if snap.MaxHP, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		if snap.Level, err = r.ReadInt32(); err != nil {
			return nil, err
		}
		return EntitySpawnEvent{Entity: snap}, nil

	case EventEntityDespawn:
		id, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		return EntityDespawnEvent{ID: id}, nil

	case EventEntityDeath:
		id, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		return EntityDeathEvent{ID: id}, nil

	case EventStartCasting:
		entityID, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		spellID, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return StartCastingEvent{EntityID: entityID, SpellID: spellID}, nil

	case EventSpellImpact:
		target, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		spellID, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		amount, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		return SpellImpactEvent{TargetID: target, SpellID: spellID, Amount: amount}, nil

	case EventServerChatMessage:
		channel, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		sender, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return ServerChatMessageEvent{Channel: channel, SenderName: sender, Text: text}, nil

	case EventKillReward:
		victim, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		count, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		loot := make([]LootLine, 0, count)
		for i := 0; i < int(count); i++ {
			itemID, err := r.ReadInt32()
			if err != nil {
				return nil, err
			}
			qty, err := r.ReadInt32()
			if err != nil {
				return nil, err
			}
			loot = append(loot, LootLine{ItemID: itemID, Quantity: qty})
		}
		return KillRewardEvent{Victim: victim, Loot: loot}, nil

	default:
		return nil, fmt.Errorf("%w: event tag 0x%02x", ErrUnknownDiscriminant, tag)
	}
}
