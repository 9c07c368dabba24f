package wire

import "fmt"

// Action discriminants (spec §4.1). Values are part of the wire
// contract: never renumber a shipped discriminant.
const (
	ActionClientChatMessage  byte = 0
	ActionClientWhisperByID  byte = 1
	ActionPlayerMove         byte = 2
	ActionJump               byte = 3
	ActionCastSpell          byte = 4
	ActionClientWhisperByName byte = 5
)

// Action is implemented by every client→server message body.
type Action interface {
	// Discriminant returns this action's 1-byte wire tag.
	Discriminant() byte
	// encodeBody writes the action's body (without the discriminant).
	encodeBody(w *Writer) error
}

// ClientChatMessage carries a proximity/channel chat line (spec §4.6
// notes only Say/Yell are proximity-based; channel selects which).
type ClientChatMessage struct {
	Channel int32
	Text    string
}

func (ClientChatMessage) Discriminant() byte { return ActionClientChatMessage }
func (a ClientChatMessage) encodeBody(w *Writer) error {
	w.WriteInt32(a.Channel)
	return w.WriteString(a.Text)
}

// ClientWhisperByID targets a whisper at a known entity id.
type ClientWhisperByID struct {
	RecipientID uint64
	Text        string
}

func (ClientWhisperByID) Discriminant() byte { return ActionClientWhisperByID }
func (a ClientWhisperByID) encodeBody(w *Writer) error {
	w.WriteUint64(a.RecipientID)
	return w.WriteString(a.Text)
}

// ClientWhisperByName targets a whisper at a character name, resolved by
// the hub with a single DB lookup (spec §4.6).
type ClientWhisperByName struct {
	RecipientName string
	Text          string
}

func (ClientWhisperByName) Discriminant() byte { return ActionClientWhisperByName }
func (a ClientWhisperByName) encodeBody(w *Writer) error {
	if err := w.WriteString(a.RecipientName); err != nil {
		return err
	}
	return w.WriteString(a.Text)
}

// PlayerMoveAction is the quantized movement input (spec §3, §4.4 step 3).
type PlayerMoveAction struct {
	Yaw      uint16
	Forward  int8
	Sideways int8
}

func (PlayerMoveAction) Discriminant() byte { return ActionPlayerMove }
func (a PlayerMoveAction) encodeBody(w *Writer) error {
	w.WriteUint16(a.Yaw)
	w.WriteInt8(a.Forward)
	w.WriteInt8(a.Sideways)
	return nil
}

// JumpAction has no payload.
type JumpAction struct{}

func (JumpAction) Discriminant() byte         { return ActionJump }
func (JumpAction) encodeBody(w *Writer) error { return nil }

// CastSpellAction requests a spell cast against a target entity.
type CastSpellAction struct {
	SpellID  int32
	TargetID uint64
}

func (CastSpellAction) Discriminant() byte { return ActionCastSpell }
func (a CastSpellAction) encodeBody(w *Writer) error {
	w.WriteInt32(a.SpellID)
	w.WriteUint64(a.TargetID)
	return nil
}

// EncodeAction writes discriminant + body to w.
func EncodeAction(w *Writer, a Action) error {
	w.WriteByte(a.Discriminant())
	return a.encodeBody(w)
}

// DecodeAction reads one discriminant + body from r.
func DecodeAction(r *Reader) (Action, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading action discriminant: %w", err)
	}

	switch tag {
	case ActionClientChatMessage:
		channel, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return ClientChatMessage{Channel: channel, Text: text}, nil

	case ActionClientWhisperByID:
		recipient, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return ClientWhisperByID{RecipientID: recipient, Text: text}, nil

	case ActionClientWhisperByName:
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return ClientWhisperByName{RecipientName: name, Text: text}, nil

	case ActionPlayerMove:
		yaw, err := r.ReadUint16()
		if err != nil {
			return nil, err
		}
		fwd, err := r.ReadInt8()
		if err != nil {
			return nil, err
		}
		side, err := r.ReadInt8()
		if err != nil {
			return nil, err
		}
		return PlayerMoveAction{Yaw: yaw, Forward: fwd, Sideways: side}, nil

	case ActionJump:
		return JumpAction{}, nil

	case ActionCastSpell:
		spellID, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		target, err := r.ReadUint64()
		if err != nil {
			return nil, err
		}
		return CastSpellAction{SpellID: spellID, TargetID: target}, nil

	default:
		return nil, fmt.Errorf("%w: action tag 0x%02x", ErrUnknownDiscriminant, tag)
	}
}

// EncodeBatch frames a BatchedActions envelope: a uint16 count followed
// by, for each action, a uint16 byte-length then the encoded action
// (spec §4.1). The length prefix lets DecodeBatch skip an action whose
// discriminant it doesn't recognize without losing sync on the rest.
func EncodeBatch(actions []Action) ([]byte, error) {
	w := NewWriter(64 + 16*len(actions))
	w.WriteUint16(uint16(len(actions)))
	for _, a := range actions {
		body := NewWriter(16)
		if err := EncodeAction(body, a); err != nil {
			return nil, fmt.Errorf("encoding batched action: %w", err)
		}
		w.WriteUint16(uint16(body.Len()))
		w.WriteBytes(body.Bytes())
	}
	return w.Bytes(), nil
}

// DroppedAction records an action that DecodeBatch could not decode, so
// the caller can log it without failing the whole batch (spec §4.1:
// "the offending action to be dropped with a log, not the batch").
type DroppedAction struct {
	Index int
	Err   error
}

// DecodeBatch parses a BatchedActions envelope. Unknown or malformed
// entries are skipped (using their length prefix) and reported in
// dropped; decoding continues with the next entry.
func DecodeBatch(data []byte) (actions []Action, dropped []DroppedAction, err error) {
	r := NewReader(data)
	count, err := r.ReadUint16()
	if err != nil {
		return nil, nil, fmt.Errorf("reading batch count: %w", err)
	}

	actions = make([]Action, 0, count)
	for i := 0; i < int(count); i++ {
		entryLen, lerr := r.ReadUint16()
		if lerr != nil {
			return actions, dropped, fmt.Errorf("reading batch entry %d length: %w", i, lerr)
		}
		body, berr := r.ReadBytes(int(entryLen))
		if berr != nil {
			return actions, dropped, fmt.Errorf("reading batch entry %d body: %w", i, berr)
		}

		action, aerr := DecodeAction(NewReader(body))
		if aerr != nil {
			dropped = append(dropped, DroppedAction{Index: i, Err: aerr})
			continue
		}
		actions = append(actions, action)
	}
	return actions, dropped, nil
}
