package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoin attaches a display name to the connection and
	// announces presence.
	CommandJoin CommandKind = iota
	// CommandChatMessage relays an ephemeral chat message to everyone.
	CommandChatMessage
	// CommandNewVibe persists a mood note and echoes it to everyone.
	CommandNewVibe
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind

	// Name is the display name for CommandJoin.
	Name string

	// Username is the author for CommandChatMessage and CommandNewVibe.
	Username string

	// Text is the chat body for CommandChatMessage and the content for
	// CommandNewVibe.
	Text string
}
