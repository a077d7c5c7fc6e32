package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	// Inbound event names. Kept byte-for-byte compatible with the
	// browser clients.
	InboundTypeJoin    = "join"
	InboundTypeChat    = "chatMessage"
	InboundTypeNewVibe = "newVibe"

	// Outbound event names.
	EventChatMessage = "chatMessage"
	EventUserList    = "userList"
	EventNewVibe     = "newVibe"
	EventStatsUpdate = "statsUpdate"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Protocol-level error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
)

// ChatMessageData is a chat message from the client. Legacy clients
// send either {"username":..., "message":...} or a bare string; the
// custom unmarshaler normalizes both forms into the tagged struct.
type ChatMessageData struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// UnmarshalJSON accepts both the object form and the bare string form.
// A bare string (or an object without a username) is attributed to
// "Unknown", matching the historical behavior.
func (d *ChatMessageData) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		d.Username = "Unknown"
		d.Message = s
		return nil
	}

	type plain ChatMessageData
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.Username == "" {
		p.Username = "Unknown"
	}
	*d = ChatMessageData(p)
	return nil
}

// NewVibeData is a mood post from the client.
type NewVibeData struct {
	User    string `json:"user"`
	Content string `json:"content"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// ChatMessageEvent is broadcast for every relayed chat message,
// human or bot.
type ChatMessageEvent struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"` // ISO-8601
}

// VibeEvent echoes a persisted vibe with its store-assigned fields.
type VibeEvent struct {
	ID        int64  `json:"id"`
	User      string `json:"user"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"` // ISO-8601
}

// StatsEvent is the community counters snapshot.
type StatsEvent struct {
	Posts       int64 `json:"posts"`
	Groups      int64 `json:"groups"`
	Members     int64 `json:"members"`
	ActiveToday int64 `json:"activeToday"`
	Vibes       int64 `json:"vibes"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
