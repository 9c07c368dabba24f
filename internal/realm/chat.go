package realm

import "github.com/embervale/realm/internal/wire"

// systemChat resolves proximity chat posted this tick (spec §4.4 step 5,
// §4.6: "Only Say/Yell are proximity-based and are handled by the realm
// simulation"). Guild, Whisper, and any other channel arriving on this
// transport are not supported here and draw a ServerSystemMessage back
// to the sender rather than a kick (spec §7 "channel not supported").
func systemChat(w *World) {
	for _, cmd := range w.Pending.Chats {
		switch cmd.Channel {
		case wire.ChatChannelSay:
			sayProximity(w, cmd, MaxSayDistance)
		case wire.ChatChannelYell:
			yellRealmWide(w, cmd)
		default:
			systemMessage(w, cmd.Entity, "Channel not supported")
		}
	}
}

func sayProximity(w *World, cmd ChatCmd, radius float64) {
	sender, ok := w.Identities[cmd.Entity]
	if !ok {
		return
	}
	senderTr, ok := w.Transforms[cmd.Entity]
	if !ok {
		return
	}
	radius2 := radius * radius

	ev := wire.ServerChatMessageEvent{Channel: wire.ChatChannelSay, SenderName: sender.Name, Text: cmd.Text}
	for _, candidate := range w.Grid.Neighborhood(senderTr.X, senderTr.Z) {
		link, ok := w.Clients[candidate]
		if !ok {
			continue
		}
		candidateTr, ok := w.Transforms[candidate]
		if !ok {
			continue
		}
		if distance2(senderTr, candidateTr) <= radius2 {
			w.enqueue(link.ClientID, ev)
		}
	}
}

func yellRealmWide(w *World, cmd ChatCmd) {
	sender, ok := w.Identities[cmd.Entity]
	if !ok {
		return
	}
	ev := wire.ServerChatMessageEvent{Channel: wire.ChatChannelYell, SenderName: sender.Name, Text: cmd.Text}
	for _, link := range w.Clients {
		w.enqueue(link.ClientID, ev)
	}
}

// systemMessage sends a server-originated notice to one entity's owning
// client, if it has one (spec §7: user-facing social errors never kick).
func systemMessage(w *World, entity EntityID, text string) {
	link, ok := w.Clients[entity]
	if !ok {
		return
	}
	w.enqueue(link.ClientID, wire.ServerChatMessageEvent{Channel: wire.ChatChannelSystem, SenderName: "", Text: text})
}
