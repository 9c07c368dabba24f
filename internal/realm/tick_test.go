package realm

import (
	"context"
	"testing"
	"time"

	"github.com/embervale/realm/internal/netcode"
	"github.com/embervale/realm/internal/wire"
)

func TestTickConnectsMovesAndVisibilitySettle(t *testing.T) {
	w := NewWorld()
	rng := &fakeRoller{chances: []float64{}, amounts: []int32{}}

	connects := []ConnectEvent{
		{ClientID: 1, CharacterID: 1, AccountID: 1, Name: "a", Level: 1, HP: 100, MaxHP: 100},
		{ClientID: 2, CharacterID: 2, AccountID: 2, Name: "b", X: 10, Level: 1, HP: 100, MaxHP: 100},
	}

	out := Tick(context.Background(), w, TickInput{Dt: time.Second, Connects: connects}, nil, rng, discardLogger())
	if len(out) == 0 {
		t.Fatal("expected spawn fan-out from the first tick's visibility pass")
	}
	if len(w.Pending.Moves) != 0 {
		t.Fatal("pending actions should be cleared at the end of a tick")
	}

	p1 := w.ClientToEntity[1]
	moveData, err := wireEncodeAction(wire.PlayerMoveAction{Yaw: 0, Forward: 127, Sideways: 0})
	if err != nil {
		t.Fatal(err)
	}
	deliveries := []netcode.Delivery{{ClientID: 1, Channel: netcode.ChannelUnreliable, Data: moveData}}

	_ = Tick(context.Background(), w, TickInput{Dt: 100 * time.Millisecond, Deliveries: deliveries}, nil, rng, discardLogger())

	tr := w.Transforms[p1]
	if tr.Z >= 0 {
		t.Fatalf("expected forward movement to decrease Z under the -Z forward convention, got %+v", tr)
	}
}
