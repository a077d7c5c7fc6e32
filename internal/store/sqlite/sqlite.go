package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vibelink/vibelink-server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function
// instead of the default schema. Useful for tests.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	last_active   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS posts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	author_id  INTEGER NOT NULL REFERENCES users(id),
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS groups (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS vibes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS progress (
	username   TEXT PRIMARY KEY,
	mood       INTEGER NOT NULL DEFAULT 0,
	learning   INTEGER NOT NULL DEFAULT 0,
	social     INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS time_spent (
	username   TEXT PRIMARY KEY,
	seconds    INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS resources (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	url         TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT 'general',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, username, email, password_hash, last_active, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.LastActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, username, email, password_hash, last_active, created_at
		FROM users
		WHERE email = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.LastActive,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// TouchLastActive records activity for the user right now.
func (s *SQLiteStore) TouchLastActive(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_active = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("touch last_active: %w", err)
	}
	return nil
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountActiveSince counts users whose last activity is at or after t.
func (s *SQLiteStore) CountActiveSince(ctx context.Context, t time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE last_active >= ?`, t).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return n, nil
}

// ==== PostStore implementation ====

// CreatePost persists a post authored by the given user.
func (s *SQLiteStore) CreatePost(ctx context.Context, authorID int64, title, content string) (*store.Post, error) {
	query := `INSERT INTO posts (author_id, title, content) VALUES (?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query, authorID, title, content)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var post store.Post
	row := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.author_id, u.username, p.title, p.content, p.created_at
		FROM posts p JOIN users u ON u.id = p.author_id
		WHERE p.id = ?
	`, id)
	if err := row.Scan(&post.ID, &post.AuthorID, &post.Author, &post.Title, &post.Content, &post.CreatedAt); err != nil {
		return nil, fmt.Errorf("query post: %w", err)
	}
	return &post, nil
}

// ListPosts returns posts newest-first.
func (s *SQLiteStore) ListPosts(ctx context.Context) ([]*store.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.author_id, u.username, p.title, p.content, p.created_at
		FROM posts p JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []*store.Post
	for rows.Next() {
		var p store.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Author, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}

// CountPosts returns the total number of posts.
func (s *SQLiteStore) CountPosts(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM posts`)
}

// ==== GroupStore implementation ====

// CreateGroup persists a new group.
func (s *SQLiteStore) CreateGroup(ctx context.Context, name, description string) (*store.Group, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO groups (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var g store.Group
	row := s.db.QueryRowContext(ctx, `SELECT id, name, description, created_at FROM groups WHERE id = ?`, id)
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
		return nil, fmt.Errorf("query group: %w", err)
	}
	return &g, nil
}

// ListGroups returns all groups.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*store.Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description, created_at FROM groups ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []*store.Group
	for rows.Next() {
		var g store.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}

// CountGroups returns the total number of groups.
func (s *SQLiteStore) CountGroups(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM groups`)
}

// ==== VibeStore implementation ====

// CreateVibe persists a vibe and returns it with the assigned ID and timestamp.
func (s *SQLiteStore) CreateVibe(ctx context.Context, user, content string) (*store.Vibe, error) {
	result, err := s.db.ExecContext(ctx, `INSERT INTO vibes (user, content) VALUES (?, ?)`, user, content)
	if err != nil {
		return nil, fmt.Errorf("insert vibe: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var v store.Vibe
	row := s.db.QueryRowContext(ctx, `SELECT id, user, content, created_at FROM vibes WHERE id = ?`, id)
	if err := row.Scan(&v.ID, &v.User, &v.Content, &v.CreatedAt); err != nil {
		return nil, fmt.Errorf("query vibe: %w", err)
	}
	return &v, nil
}

// ListVibes returns vibes newest-first.
func (s *SQLiteStore) ListVibes(ctx context.Context) ([]*store.Vibe, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user, content, created_at FROM vibes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query vibes: %w", err)
	}
	defer rows.Close()

	var vibes []*store.Vibe
	for rows.Next() {
		var v store.Vibe
		if err := rows.Scan(&v.ID, &v.User, &v.Content, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vibe: %w", err)
		}
		vibes = append(vibes, &v)
	}
	return vibes, rows.Err()
}

// CountVibes returns the total number of vibes.
func (s *SQLiteStore) CountVibes(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM vibes`)
}

// ==== ProgressStore implementation ====

// UpsertProgress inserts or replaces the progress record keyed by username.
func (s *SQLiteStore) UpsertProgress(ctx context.Context, p *store.Progress) error {
	query := `
		INSERT INTO progress (username, mood, learning, social, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			mood = excluded.mood,
			learning = excluded.learning,
			social = excluded.social,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, p.Username, p.Mood, p.Learning, p.Social, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

// ListProgress returns progress records for all users.
func (s *SQLiteStore) ListProgress(ctx context.Context) ([]*store.Progress, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username, mood, learning, social, updated_at FROM progress`)
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	var records []*store.Progress
	for rows.Next() {
		var p store.Progress
		if err := rows.Scan(&p.Username, &p.Mood, &p.Learning, &p.Social, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		records = append(records, &p)
	}
	return records, rows.Err()
}

// ==== TimeSpentStore implementation ====

// AddTimeSpent adds seconds to the user's running total.
func (s *SQLiteStore) AddTimeSpent(ctx context.Context, username string, seconds int64) (*store.TimeSpent, error) {
	query := `
		INSERT INTO time_spent (username, seconds, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			seconds = time_spent.seconds + excluded.seconds,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, username, seconds, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert time_spent: %w", err)
	}

	var t store.TimeSpent
	row := s.db.QueryRowContext(ctx, `SELECT username, seconds, updated_at FROM time_spent WHERE username = ?`, username)
	if err := row.Scan(&t.Username, &t.Seconds, &t.UpdatedAt); err != nil {
		return nil, fmt.Errorf("query time_spent: %w", err)
	}
	return &t, nil
}

// ListTimeSpent returns time records for all users.
func (s *SQLiteStore) ListTimeSpent(ctx context.Context) ([]*store.TimeSpent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT username, seconds, updated_at FROM time_spent`)
	if err != nil {
		return nil, fmt.Errorf("query time_spent: %w", err)
	}
	defer rows.Close()

	var records []*store.TimeSpent
	for rows.Next() {
		var t store.TimeSpent
		if err := rows.Scan(&t.Username, &t.Seconds, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan time_spent: %w", err)
		}
		records = append(records, &t)
	}
	return records, rows.Err()
}

// ==== ResourceStore implementation ====

// ListResources returns up to limit resources.
func (s *SQLiteStore) ListResources(ctx context.Context, limit int) ([]*store.Resource, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, url, description, category, created_at FROM resources LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var resources []*store.Resource
	for rows.Next() {
		var r store.Resource
		if err := rows.Scan(&r.ID, &r.Title, &r.URL, &r.Description, &r.Category, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, &r)
	}
	return resources, rows.Err()
}

func (s *SQLiteStore) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}
