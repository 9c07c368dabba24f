package realm

import (
	"testing"

	"github.com/embervale/realm/internal/wire"
)

func TestSystemChatSayOnlyReachesNearbyPlayers(t *testing.T) {
	w := NewWorld()
	near := newTestPlayer(w, 1, 0, 0)
	far := newTestPlayer(w, 2, 1000, 0)
	w.Grid.Rebuild(w.Transforms)

	w.Pending.Chats = append(w.Pending.Chats, ChatCmd{Entity: near, Channel: wire.ChatChannelSay, Text: "hello"})
	systemChat(w)

	if len(w.Out) != 1 {
		t.Fatalf("expected say to reach only the speaker within range, got %d messages", len(w.Out))
	}
	if w.Out[0].ClientID != 1 {
		t.Fatalf("expected say to echo to the speaker's own client, got client %d", w.Out[0].ClientID)
	}
	_ = far
}

func TestSystemChatYellReachesEveryConnectedClient(t *testing.T) {
	w := NewWorld()
	a := newTestPlayer(w, 1, 0, 0)
	_ = newTestPlayer(w, 2, 10000, 10000)

	w.Pending.Chats = append(w.Pending.Chats, ChatCmd{Entity: a, Channel: wire.ChatChannelYell, Text: "incoming!"})
	systemChat(w)

	if len(w.Out) != 2 {
		t.Fatalf("expected yell to reach both connected clients, got %d", len(w.Out))
	}
}

func TestSystemChatUnsupportedChannelSendsSystemMessage(t *testing.T) {
	w := NewWorld()
	p := newTestPlayer(w, 1, 0, 0)

	w.Pending.Chats = append(w.Pending.Chats, ChatCmd{Entity: p, Channel: wire.ChatChannelGuild, Text: "hi guild"})
	systemChat(w)

	if len(w.Out) != 1 {
		t.Fatalf("expected one system-message reply, got %d", len(w.Out))
	}
	ev, ok := w.Out[0].Event.(wire.ServerChatMessageEvent)
	if !ok || ev.Channel != wire.ChatChannelSystem {
		t.Fatalf("expected a ChatChannelSystem reply, got %+v", w.Out[0].Event)
	}
}
