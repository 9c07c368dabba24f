package hub

import (
	"testing"

	"github.com/embervale/realm/internal/wire"
)

func TestToHubCommandChatMessage(t *testing.T) {
	cmd, ok := toHubCommand(wire.ClientChatMessage{Channel: wire.ChatChannelGuild, Text: "hi"})
	if !ok {
		t.Fatal("expected ChatCmd to be recognized")
	}
	chat, ok := cmd.(ChatCmd)
	if !ok {
		t.Fatalf("command type = %T, want ChatCmd", cmd)
	}
	if chat.Channel != wire.ChatChannelGuild || chat.Text != "hi" {
		t.Fatalf("chat = %+v, unexpected", chat)
	}
}

// A whisper-by-id target arrives over the wire as a uint64; HubCommand's
// WhisperCmd stores it as an int64 (it shares its RecipientID field with
// the db layer's signed character ids). This guards the conversion.
func TestToHubCommandWhisperByIDConvertsToSignedRecipient(t *testing.T) {
	const recipient uint64 = 1<<63 + 42 // would be negative if misread as int64 bit pattern
	cmd, ok := toHubCommand(wire.ClientWhisperByID{RecipientID: recipient, Text: "psst"})
	if !ok {
		t.Fatal("expected WhisperCmd to be recognized")
	}
	whisper, ok := cmd.(WhisperCmd)
	if !ok {
		t.Fatalf("command type = %T, want WhisperCmd", cmd)
	}
	if whisper.ByName {
		t.Fatal("expected ByName to be false for an id-targeted whisper")
	}
	if whisper.RecipientID != int64(recipient) {
		t.Fatalf("RecipientID = %d, want %d", whisper.RecipientID, int64(recipient))
	}
	if whisper.Text != "psst" {
		t.Fatalf("Text = %q, want %q", whisper.Text, "psst")
	}
}

func TestToHubCommandWhisperByName(t *testing.T) {
	cmd, ok := toHubCommand(wire.ClientWhisperByName{RecipientName: "bob", Text: "hey"})
	if !ok {
		t.Fatal("expected WhisperCmd to be recognized")
	}
	whisper, ok := cmd.(WhisperCmd)
	if !ok {
		t.Fatalf("command type = %T, want WhisperCmd", cmd)
	}
	if !whisper.ByName || whisper.RecipientName != "bob" || whisper.Text != "hey" {
		t.Fatalf("whisper = %+v, unexpected", whisper)
	}
}

func TestToHubCommandRejectsUnsupportedAction(t *testing.T) {
	if _, ok := toHubCommand(wire.PlayerMoveAction{}); ok {
		t.Fatal("expected a movement action to be rejected on the social connection")
	}
}
