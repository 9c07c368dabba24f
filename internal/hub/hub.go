// Package hub implements the social hub: a single task owning every
// connected character's outbound queue and the guild membership index,
// reachable only through a bounded command channel (spec §4.6).
package hub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/embervale/realm/internal/wire"
)

// CommandQueueCapacity bounds the hub's inbound command channel (spec §5).
const CommandQueueCapacity = 128

// SendQueueCapacity bounds each client's outbound queue (spec §5).
const SendQueueCapacity = 128

// NameResolver is the narrow view of internal/db.CharacterRepository the
// hub needs for whisper-by-name (spec §4.6: "a single DB lookup").
type NameResolver interface {
	GetIDByName(ctx context.Context, name string) (int64, error)
}

// HubMessage is the envelope every external producer posts to the hub's
// inbound channel (spec §4.6).
type HubMessage struct {
	SenderID int64
	Command  HubCommand
}

// HubCommand is implemented by every inbound hub operation.
type HubCommand interface{ isHubCommand() }

// ConnectCmd registers a newly-authenticated character and its outbound
// send queue.
type ConnectCmd struct {
	Name    string
	GuildID *int64
	Send    chan<- []byte
}

// DisconnectCmd removes a character from the hub.
type DisconnectCmd struct{}

// ChatCmd is a channel-scoped chat line (only Guild is handled here; Say
// and Yell are realm-side per spec §4.6).
type ChatCmd struct {
	Channel int32
	Text    string
}

// WhisperCmd targets a whisper at a recipient, either by id or by name.
type WhisperCmd struct {
	RecipientID   int64
	RecipientName string
	ByName        bool
	Text          string
}

func (ConnectCmd) isHubCommand()    {}
func (DisconnectCmd) isHubCommand() {}
func (ChatCmd) isHubCommand()       {}
func (WhisperCmd) isHubCommand()    {}

type member struct {
	name    string
	guildID *int64
	send    chan<- []byte
}

// Hub owns every connected character's membership and send queue. All
// mutation happens on the goroutine running Run; external callers only
// ever write to Inbound (spec §4.6, §5).
type Hub struct {
	Inbound chan HubMessage

	members map[int64]*member
	guilds  map[int64]map[int64]struct{}

	names NameResolver
	log   *slog.Logger
}

// New constructs a Hub. Run must be started in its own goroutine before
// any command is posted.
func New(names NameResolver, log *slog.Logger) *Hub {
	return &Hub{
		Inbound: make(chan HubMessage, CommandQueueCapacity),
		members: make(map[int64]*member),
		guilds:  make(map[int64]map[int64]struct{}),
		names:   names,
		log:     log,
	}
}

// Run drains Inbound until ctx is cancelled, applying one command at a
// time (spec §4.6 "single task owns... all mutations happen inside").
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-h.Inbound:
			h.apply(ctx, msg)
		}
	}
}

func (h *Hub) apply(ctx context.Context, msg HubMessage) {
	switch cmd := msg.Command.(type) {
	case ConnectCmd:
		h.handleConnect(msg.SenderID, cmd)
	case DisconnectCmd:
		h.handleDisconnect(msg.SenderID)
	case ChatCmd:
		h.handleChat(msg.SenderID, cmd)
	case WhisperCmd:
		h.handleWhisper(ctx, msg.SenderID, cmd)
	default:
		h.log.Warn("hub: unknown command type", "type", fmt.Sprintf("%T", cmd))
	}
}

func (h *Hub) handleConnect(id int64, cmd ConnectCmd) {
	h.members[id] = &member{name: cmd.Name, guildID: cmd.GuildID, send: cmd.Send}
	if cmd.GuildID != nil {
		if h.guilds[*cmd.GuildID] == nil {
			h.guilds[*cmd.GuildID] = make(map[int64]struct{})
		}
		h.guilds[*cmd.GuildID][id] = struct{}{}
	}
}

func (h *Hub) handleDisconnect(id int64) {
	m, ok := h.members[id]
	if !ok {
		return
	}
	if m.guildID != nil {
		delete(h.guilds[*m.guildID], id)
	}
	delete(h.members, id)
}

// handleChat fans a Guild message to every other guild member. Say/Yell
// never reach the hub (realm-side), so anything else is unsupported here.
func (h *Hub) handleChat(senderID int64, cmd ChatCmd) {
	sender, ok := h.members[senderID]
	if !ok {
		return
	}

	switch cmd.Channel {
	case wire.ChatChannelGuild:
		if sender.guildID == nil {
			h.sendSystem(senderID, "You are not in a guild")
			return
		}
		ev := wire.ServerChatMessageEvent{Channel: wire.ChatChannelGuild, SenderName: sender.name, Text: cmd.Text}
		for memberID := range h.guilds[*sender.guildID] {
			h.sendEvent(memberID, ev)
		}
	default:
		h.sendSystem(senderID, "Channel not supported")
	}
}

func (h *Hub) handleWhisper(ctx context.Context, senderID int64, cmd WhisperCmd) {
	sender, ok := h.members[senderID]
	if !ok {
		return
	}

	recipientID := cmd.RecipientID
	if cmd.ByName {
		id, err := h.names.GetIDByName(ctx, cmd.RecipientName)
		if err != nil {
			h.log.Error("hub: whisper-by-name lookup failed", "name", cmd.RecipientName, "err", err)
			h.sendSystem(senderID, "Player not found")
			return
		}
		recipientID = id
	}

	recipient, online := h.members[recipientID]
	if recipientID == 0 || !online {
		h.sendSystem(senderID, "Player not found")
		return
	}

	h.sendEvent(recipientID, wire.ServerChatMessageEvent{Channel: wire.ChatChannelWhisper, SenderName: sender.name, Text: cmd.Text})
	h.sendEvent(senderID, wire.ServerChatMessageEvent{Channel: wire.ChatChannelWhisper, SenderName: recipient.name, Text: cmd.Text})
}

func (h *Hub) sendSystem(id int64, text string) {
	h.sendEvent(id, wire.ServerChatMessageEvent{Channel: wire.ChatChannelSystem, SenderName: "", Text: text})
}

func (h *Hub) sendEvent(id int64, ev wire.Event) {
	m, ok := h.members[id]
	if !ok {
		return
	}
	w := wire.NewWriter(64)
	if err := wire.EncodeEvent(w, ev); err != nil {
		h.log.Error("hub: encoding event failed", "recipient", id, "err", err)
		return
	}
	select {
	case m.send <- w.Bytes():
	default:
		h.log.Warn("hub: dropping event for slow client", "recipient", id)
	}
}
