package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventChatMessage notifies clients about a relayed chat message,
	// human or bot.
	EventChatMessage EventKind = iota
	// EventUserList delivers the full presence set after membership
	// changes.
	EventUserList
	// EventNewVibe echoes a freshly persisted vibe.
	EventNewVibe
	// EventStatsUpdate delivers a community stats snapshot.
	EventStatsUpdate
)

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind  EventKind
	Chat  *ChatMessage   // EventChatMessage
	Users []string       // EventUserList
	Vibe  *VibeRecord    // EventNewVibe
	Stats *StatsSnapshot // EventStatsUpdate
}

// ChatMessage is an ephemeral chat message. It is never persisted;
// delivery order follows hub receipt order.
type ChatMessage struct {
	SenderID  string // connection session id, or "bot"
	Username  string
	Body      string
	Timestamp time.Time
}

// VibeRecord is a persisted vibe as echoed to clients, carrying the
// store-assigned id and timestamp.
type VibeRecord struct {
	ID        int64
	User      string
	Content   string
	CreatedAt time.Time
}

// StatsSnapshot is the ephemeral projection of community counters.
// Each snapshot fully replaces the previous one on clients.
type StatsSnapshot struct {
	Posts       int64
	Groups      int64
	Members     int64
	ActiveToday int64
	Vibes       int64
	ComputedAt  time.Time
}
