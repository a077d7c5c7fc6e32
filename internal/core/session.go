package core

import "time"

// Session is the identity state of one live connection.
type Session struct {
	ID          string
	DisplayName string
	JoinedAt    time.Time
}

// Registry tracks live connection sessions. It is not safe for
// concurrent use on its own: all mutation happens on the hub's run
// goroutine, which is what preserves the mutate-then-publish ordering
// of the presence set.
type Registry struct {
	sessions map[string]*Session
	order    []string // registration order, for stable user lists
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register adds a session for the connection id.
func (r *Registry) Register(id string) {
	if _, exists := r.sessions[id]; exists {
		return
	}
	r.sessions[id] = &Session{ID: id, JoinedAt: time.Now().UTC()}
	r.order = append(r.order, id)
}

// SetDisplayName attaches a display name to a live session.
func (r *Registry) SetDisplayName(id, name string) {
	if s, ok := r.sessions[id]; ok {
		s.DisplayName = name
	}
}

// Unregister removes a session. Idempotent.
func (r *Registry) Unregister(id string) {
	if _, ok := r.sessions[id]; !ok {
		return
	}
	delete(r.sessions, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// DisplayNames returns the names of sessions that have joined, in
// registration order. Sessions without a name are excluded.
func (r *Registry) DisplayNames() []string {
	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if s := r.sessions[id]; s != nil && s.DisplayName != "" {
			names = append(names, s.DisplayName)
		}
	}
	return names
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}
