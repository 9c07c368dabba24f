package wire

import (
	"errors"
	"reflect"
	"testing"
)

func TestActionCodecRoundTrip(t *testing.T) {
	cases := []Action{
		ClientChatMessage{Channel: 1, Text: "hi"},
		ClientWhisperByID{RecipientID: 42, Text: "psst"},
		PlayerMoveAction{Yaw: 0x8000, Forward: 127, Sideways: -12},
		JumpAction{},
		CastSpellAction{SpellID: 7, TargetID: 99},
	}

	for _, want := range cases {
		w := NewWriter(32)
		if err := EncodeAction(w, want); err != nil {
			t.Fatalf("EncodeAction(%#v): %v", want, err)
		}
		got, err := DecodeAction(NewReader(w.Bytes()))
		if err != nil {
			t.Fatalf("DecodeAction(%#v): %v", want, err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Errorf("round trip mismatch: want %#v, got %#v", want, got)
		}
	}
}

func TestDecodeActionUnknownDiscriminant(t *testing.T) {
	_, err := DecodeAction(NewReader([]byte{0xFE}))
	if !errors.Is(err, ErrUnknownDiscriminant) {
		t.Fatalf("err = %v, want ErrUnknownDiscriminant", err)
	}
}

func TestBatchRoundTrip(t *testing.T) {
	want := []Action{
		ClientChatMessage{Channel: 0, Text: "hello"},
		PlayerMoveAction{Yaw: 100, Forward: 1, Sideways: 0},
		JumpAction{},
	}

	data, err := EncodeBatch(want)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}

	got, dropped, err := DecodeBatch(data)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("dropped = %v, want none", dropped)
	}
	if !reflect.DeepEqual(want, got) {
		t.Errorf("batch round trip mismatch: want %#v, got %#v", want, got)
	}
}

// TestBatchDropsUnknownActionKeepsRest verifies that an unrecognized
// discriminant inside a batch is dropped and logged, not treated as a
// fatal decode error for the whole batch.
func TestBatchDropsUnknownActionKeepsRest(t *testing.T) {
	good1 := NewWriter(8)
	if err := EncodeAction(good1, JumpAction{}); err != nil {
		t.Fatalf("EncodeAction: %v", err)
	}
	bad := NewWriter(8)
	bad.WriteByte(0xFE)
	good2 := NewWriter(8)
	if err := EncodeAction(good2, CastSpellAction{SpellID: 1, TargetID: 2}); err != nil {
		t.Fatalf("EncodeAction: %v", err)
	}

	w := NewWriter(64)
	w.WriteUint16(3)
	for _, body := range []*Writer{good1, bad, good2} {
		w.WriteUint16(uint16(body.Len()))
		w.WriteBytes(body.Bytes())
	}

	actions, dropped, err := DecodeBatch(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(dropped) != 1 || dropped[0].Index != 1 {
		t.Fatalf("dropped = %+v, want exactly index 1", dropped)
	}
	want := []Action{JumpAction{}, CastSpellAction{SpellID: 1, TargetID: 2}}
	if !reflect.DeepEqual(want, actions) {
		t.Errorf("surviving actions = %#v, want %#v", actions, want)
	}
}
