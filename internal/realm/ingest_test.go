package realm

import (
	"context"
	"log/slog"
	"testing"

	"github.com/embervale/realm/internal/netcode"
	"github.com/embervale/realm/internal/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSystemIngestDecodesUnreliableMove(t *testing.T) {
	w := NewWorld()
	player := newTestPlayer(w, 1, 0, 0)

	data, err := wireEncodeAction(wire.PlayerMoveAction{Yaw: 100, Forward: 64, Sideways: 0})
	if err != nil {
		t.Fatal(err)
	}
	deliveries := []netcode.Delivery{{ClientID: 1, Channel: netcode.ChannelUnreliable, Data: data}}

	systemIngest(w, deliveries, discardLogger())

	if len(w.Pending.Moves) != 1 || w.Pending.Moves[0].Entity != player {
		t.Fatalf("expected one decoded move for player, got %+v", w.Pending.Moves)
	}
}

func TestSystemIngestDropsDeliveryForUnknownClient(t *testing.T) {
	w := NewWorld()
	data, err := wireEncodeAction(wire.JumpAction{})
	if err != nil {
		t.Fatal(err)
	}
	deliveries := []netcode.Delivery{{ClientID: 99, Channel: netcode.ChannelUnreliable, Data: data}}

	systemIngest(w, deliveries, discardLogger())

	if len(w.Pending.Jumps) != 0 {
		t.Fatalf("expected delivery for unknown client to be dropped, got %+v", w.Pending.Jumps)
	}
}

func TestSystemIngestDecodesReliableBatch(t *testing.T) {
	w := NewWorld()
	player := newTestPlayer(w, 1, 0, 0)

	data, err := wire.EncodeBatch([]wire.Action{
		wire.ClientChatMessage{Channel: 1, Text: "hi"},
		wire.JumpAction{},
	})
	if err != nil {
		t.Fatal(err)
	}
	deliveries := []netcode.Delivery{{ClientID: 1, Channel: netcode.ChannelReliableOrdered, Data: data}}

	systemIngest(w, deliveries, discardLogger())

	if len(w.Pending.Chats) != 1 || w.Pending.Chats[0].Entity != player {
		t.Fatalf("expected one chat command, got %+v", w.Pending.Chats)
	}
	if len(w.Pending.Jumps) != 1 {
		t.Fatalf("expected one jump command, got %+v", w.Pending.Jumps)
	}
}

func wireEncodeAction(a wire.Action) ([]byte, error) {
	w := wire.NewWriter(16)
	if err := wire.EncodeAction(w, a); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func TestClientConnectedAndDisconnected(t *testing.T) {
	w := NewWorld()
	id := ClientConnected(w, 5, 10, 20, nil, "hero", 1, 2, 3, 0, 1, 100, 100)
	if !w.Arena.Alive(id) {
		t.Fatal("expected player to be spawned")
	}

	repo := &fakePersistRepo{}
	ClientDisconnected(context.Background(), w, 5, repo, discardLogger())

	if w.Arena.Alive(id) {
		t.Fatal("expected player to be despawned")
	}
	if repo.characterID != 10 {
		t.Fatalf("expected persisted character id 10, got %d", repo.characterID)
	}
}

type fakePersistRepo struct {
	characterID int64
}

func (f *fakePersistRepo) PersistTransform(ctx context.Context, characterID int64, x, y, z float32, yaw uint16, hp int32) error {
	f.characterID = characterID
	return nil
}
