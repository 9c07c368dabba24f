package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/embervale/realm/internal/wire"
)

// pongWait/pingPeriod/writeWait mirror the keepalive cadence of a
// gorilla/websocket connection pair (grounded on the read/write pump
// pattern below); pingPeriod must stay under pongWait.
const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// Serve upgrades a single authenticated character's connection to the
// hub: it registers the character, pumps inbound WS frames into the
// hub's command channel, and drains the character's outbound queue back
// onto the socket, until the connection closes or ctx is cancelled
// (spec §4.6). Each WS frame is exactly one serialized wire.Action
// (inbound) or wire.Event (outbound), binary-framed (spec §6).
func Serve(ctx context.Context, h *Hub, conn *websocket.Conn, characterID int64, name string, guildID *int64, log *slog.Logger) {
	send := make(chan []byte, SendQueueCapacity)

	h.Inbound <- HubMessage{SenderID: characterID, Command: ConnectCmd{Name: name, GuildID: guildID, Send: send}}
	defer func() {
		h.Inbound <- HubMessage{SenderID: characterID, Command: DisconnectCmd{}}
	}()

	done := make(chan struct{})
	go writePump(conn, send, done)
	readPump(ctx, h, conn, characterID, log)
	close(done)
	conn.Close()
}

func readPump(ctx context.Context, h *Hub, conn *websocket.Conn, characterID int64, log *slog.Logger) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("hub: websocket read error", "character_id", characterID, "err", err)
			}
			return
		}

		action, err := wire.DecodeAction(wire.NewReader(data))
		if err != nil {
			log.Warn("hub: dropping unreadable frame", "character_id", characterID, "err", err)
			continue
		}

		cmd, ok := toHubCommand(action)
		if !ok {
			log.Warn("hub: action not supported on the social connection", "character_id", characterID, "type", action.Discriminant())
			continue
		}

		select {
		case h.Inbound <- HubMessage{SenderID: characterID, Command: cmd}:
		case <-ctx.Done():
			return
		}
	}
}

func toHubCommand(action wire.Action) (HubCommand, bool) {
	switch a := action.(type) {
	case wire.ClientChatMessage:
		return ChatCmd{Channel: a.Channel, Text: a.Text}, true
	case wire.ClientWhisperByID:
		return WhisperCmd{RecipientID: int64(a.RecipientID), Text: a.Text}, true
	case wire.ClientWhisperByName:
		return WhisperCmd{RecipientName: a.RecipientName, ByName: true, Text: a.Text}, true
	default:
		return nil, false
	}
}

func writePump(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
