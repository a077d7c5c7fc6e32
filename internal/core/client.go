package core

// Client is a connected participant as seen by the core layer. The
// transport owns the websocket; the hub owns everything else.
type Client struct {
	// ID is the opaque connection session id, unique among live
	// connections.
	ID string

	// Name is the display name attached by the join handshake. Empty
	// until the client joins.
	Name string

	Commands chan *Command
	Events   chan *Event

	// done is closed by the hub when the client unregisters, releasing
	// the goroutine pumping Commands.
	done chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id string) *Client {
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 16),
		done:     make(chan struct{}),
	}
}
