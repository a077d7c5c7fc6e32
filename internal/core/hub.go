package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibelink/vibelink-server/internal/store"
)

// BotUsername is the display name attached to assistant replies.
const BotUsername = "BitcoinBot"

// BotSenderID is the sender id attached to assistant replies.
const BotSenderID = "bot"

// persistTimeout bounds vibe writes so a stuck store cannot pile up
// goroutines forever.
const persistTimeout = 5 * time.Second

// Responder produces an assistant reply for a chat message. It never
// returns an error: failures surface as a fallback reply string, so
// every validated chat message yields exactly one bot broadcast.
type Responder interface {
	Reply(ctx context.Context, sessionID, userMessage string) string
}

type inboundEnvelope struct {
	client *Client
	cmd    *Command
}

type broadcastRequest struct {
	event   *Event
	exclude string // session id to skip, empty for none
}

// Hub routes inbound events from any connection to all connections.
// All registry and client-map mutation happens on the Run goroutine;
// transports and background workers talk to it through channels.
type Hub struct {
	vibes     store.VibeStore
	assistant Responder
	log       zerolog.Logger

	registry *Registry
	clients  map[string]*Client

	register   chan *Client
	unregister chan *Client
	inbox      chan inboundEnvelope
	broadcasts chan broadcastRequest

	// statsRefresh, when set, is invoked after a vibe is persisted to
	// trigger an out-of-cycle stats broadcast. Set before Run.
	statsRefresh func()
}

// NewHub creates a hub. vibes and responder may be nil, which disables
// vibe persistence and assistant replies respectively (used in tests).
func NewHub(vibes store.VibeStore, responder Responder, logger *zerolog.Logger) *Hub {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Hub{
		vibes:      vibes,
		assistant:  responder,
		log:        l,
		registry:   NewRegistry(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbox:      make(chan inboundEnvelope, 64),
		broadcasts: make(chan broadcastRequest, 64),
	}
}

// SetStatsRefresh installs the eager stats refresh hook. Must be
// called before Run.
func (h *Hub) SetStatsRefresh(fn func()) {
	h.statsRefresh = fn
}

// RegisterClient hands a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection. Safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Broadcast delivers an event to every registered connection.
func (h *Hub) Broadcast(ev *Event) {
	h.BroadcastExcept(ev, "")
}

// BroadcastExcept delivers an event to every registered connection
// except the one with the given session id.
func (h *Hub) BroadcastExcept(ev *Event, excludeID string) {
	h.broadcasts <- broadcastRequest{event: ev, exclude: excludeID}
}

// Run processes hub traffic until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.registry.Register(c.ID)
			h.clients[c.ID] = c
			h.log.Debug().Str("session_id", c.ID).Int("online", h.registry.Len()).Msg("client connected")
			go h.pump(ctx, c)

		case c := <-h.unregister:
			registered, ok := h.clients[c.ID]
			if !ok {
				continue
			}
			delete(h.clients, c.ID)
			h.registry.Unregister(c.ID)
			close(registered.done)
			h.log.Debug().Str("session_id", c.ID).Int("online", h.registry.Len()).Msg("client disconnected")
			// Registry mutation first, then presence publish.
			h.publishPresence()

		case env := <-h.inbox:
			h.handleCommand(ctx, env.client, env.cmd)

		case req := <-h.broadcasts:
			h.fanOut(req.event, req.exclude)
		}
	}
}

// pump forwards one client's commands into the hub inbox so command
// handling stays serialized on the Run goroutine. It exits when the
// client unregisters, so connection churn never accumulates pumps.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.inbox <- inboundEnvelope{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			case <-c.done:
				return
			}
		}
	}
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandJoin:
		name := strings.TrimSpace(cmd.Name)
		if name == "" {
			return
		}
		h.registry.SetDisplayName(c.ID, name)
		c.Name = name
		h.publishPresence()

	case CommandChatMessage:
		body := strings.TrimSpace(cmd.Text)
		if body == "" {
			// Whitespace-only messages are dropped silently: no
			// broadcast, no bot reply.
			return
		}
		username := cmd.Username
		if username == "" {
			username = "Unknown"
		}
		h.fanOut(&Event{
			Kind: EventChatMessage,
			Chat: &ChatMessage{
				SenderID:  c.ID,
				Username:  username,
				Body:      body,
				Timestamp: time.Now().UTC(),
			},
		}, "")
		h.dispatchAssistant(ctx, c.ID, body)

	case CommandNewVibe:
		content := strings.TrimSpace(cmd.Text)
		if content == "" {
			return
		}
		user := cmd.Username
		if user == "" {
			user = "Unknown"
		}
		h.saveVibe(ctx, user, content)
	}
}

// dispatchAssistant requests a bot reply on its own goroutine so a
// slow external call never delays delivery of other messages. The
// call is detached from the sender's connection and bounded by the
// responder's own timeout.
func (h *Hub) dispatchAssistant(ctx context.Context, sessionID, body string) {
	if h.assistant == nil {
		return
	}
	go func() {
		reply := h.assistant.Reply(ctx, sessionID, body)
		ev := &Event{
			Kind: EventChatMessage,
			Chat: &ChatMessage{
				SenderID:  BotSenderID,
				Username:  BotUsername,
				Body:      reply,
				Timestamp: time.Now().UTC(),
			},
		}
		select {
		case h.broadcasts <- broadcastRequest{event: ev}:
		case <-ctx.Done():
		}
	}()
}

// saveVibe persists the vibe off the run goroutine and echoes it with
// the store-assigned id and timestamp. A failed write is logged and
// the echo suppressed; the sender gets no confirmation either way.
func (h *Hub) saveVibe(ctx context.Context, user, content string) {
	if h.vibes == nil {
		return
	}
	go func() {
		pctx, cancel := context.WithTimeout(ctx, persistTimeout)
		defer cancel()

		v, err := h.vibes.CreateVibe(pctx, user, content)
		if err != nil {
			h.log.Error().Err(err).Str("user", user).Msg("save vibe")
			return
		}

		ev := &Event{
			Kind: EventNewVibe,
			Vibe: &VibeRecord{
				ID:        v.ID,
				User:      v.User,
				Content:   v.Content,
				CreatedAt: v.CreatedAt,
			},
		}
		select {
		case h.broadcasts <- broadcastRequest{event: ev}:
		case <-ctx.Done():
			return
		}
		if h.statsRefresh != nil {
			h.statsRefresh()
		}
	}()
}

func (h *Hub) publishPresence() {
	h.fanOut(&Event{Kind: EventUserList, Users: h.registry.DisplayNames()}, "")
}

func (h *Hub) fanOut(ev *Event, exclude string) {
	for id, client := range h.clients {
		if id == exclude {
			continue
		}
		select {
		case client.Events <- ev:
		default:
			// Drop if slow consumer.
		}
	}
}
