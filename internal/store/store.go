package store

import (
	"context"
	"time"
)

// User represents a registered community member.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	LastActive   time.Time
	CreatedAt    time.Time
}

// Post is a long-form community post.
type Post struct {
	ID        int64
	AuthorID  int64
	Author    string // username, resolved on read
	Title     string
	Content   string
	CreatedAt time.Time
}

// Group is a support group listing.
type Group struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}

// Vibe is a short persisted mood note. Unlike chat messages, vibes
// survive restarts and feed the community stats.
type Vibe struct {
	ID        int64
	User      string
	Content   string
	CreatedAt time.Time
}

// Progress tracks a user's self-reported progress scores.
type Progress struct {
	Username  string
	Mood      int
	Learning  int
	Social    int
	UpdatedAt time.Time
}

// TimeSpent accumulates seconds a user has spent on the platform.
type TimeSpent struct {
	Username  string
	Seconds   int64
	UpdatedAt time.Time
}

// Resource is a curated external link shown on the resources page.
type Resource struct {
	ID          int64
	Title       string
	URL         string
	Description string
	Category    string
	CreatedAt   time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// TouchLastActive records activity for the user right now.
	TouchLastActive(ctx context.Context, id int64) error

	// CountUsers returns the total number of registered users.
	CountUsers(ctx context.Context) (int64, error)

	// CountActiveSince counts users whose last activity is at or after t.
	CountActiveSince(ctx context.Context, t time.Time) (int64, error)
}

// PostStore handles post persistence.
type PostStore interface {
	// CreatePost persists a post authored by the given user.
	CreatePost(ctx context.Context, authorID int64, title, content string) (*Post, error)

	// ListPosts returns posts newest-first.
	ListPosts(ctx context.Context) ([]*Post, error)

	// CountPosts returns the total number of posts.
	CountPosts(ctx context.Context) (int64, error)
}

// GroupStore handles support group persistence.
type GroupStore interface {
	// CreateGroup persists a new group.
	CreateGroup(ctx context.Context, name, description string) (*Group, error)

	// ListGroups returns all groups.
	ListGroups(ctx context.Context) ([]*Group, error)

	// CountGroups returns the total number of groups.
	CountGroups(ctx context.Context) (int64, error)
}

// VibeStore handles vibe persistence.
type VibeStore interface {
	// CreateVibe persists a vibe and returns it with the assigned ID
	// and creation timestamp.
	CreateVibe(ctx context.Context, user, content string) (*Vibe, error)

	// ListVibes returns vibes newest-first.
	ListVibes(ctx context.Context) ([]*Vibe, error)

	// CountVibes returns the total number of vibes.
	CountVibes(ctx context.Context) (int64, error)
}

// ProgressStore handles per-user progress records.
type ProgressStore interface {
	// UpsertProgress inserts or replaces the progress record keyed by username.
	UpsertProgress(ctx context.Context, p *Progress) error

	// ListProgress returns progress records for all users.
	ListProgress(ctx context.Context) ([]*Progress, error)
}

// TimeSpentStore handles per-user time accounting.
type TimeSpentStore interface {
	// AddTimeSpent adds seconds to the user's running total, creating
	// the record if absent.
	AddTimeSpent(ctx context.Context, username string, seconds int64) (*TimeSpent, error)

	// ListTimeSpent returns time records for all users.
	ListTimeSpent(ctx context.Context) ([]*TimeSpent, error)
}

// ResourceStore handles curated resource listings.
type ResourceStore interface {
	// ListResources returns up to limit resources.
	ListResources(ctx context.Context, limit int) ([]*Resource, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	PostStore
	GroupStore
	VibeStore
	ProgressStore
	TimeSpentStore
	ResourceStore

	// Close closes the underlying database connection.
	Close() error
}
