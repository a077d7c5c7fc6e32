package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/vibelink/vibelink-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "alice@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == 0 || u.Username != "alice" || u.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("lookup mismatch: %d vs %d", byEmail.ID, u.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); err == nil {
		t.Fatal("expected error for unknown email")
	}

	// Duplicate email is rejected by the unique constraint.
	if _, err := s.CreateUser(ctx, "alice2", "alice@example.com", "hash"); err == nil {
		t.Fatal("expected duplicate email to fail")
	}

	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestCountActiveSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "a@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, "bob", "b@example.com", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Push bob's activity a day into the past.
	if _, err := s.db.ExecContext(ctx, `UPDATE users SET last_active = ? WHERE username = 'bob'`,
		time.Now().UTC().Add(-24*time.Hour)); err != nil {
		t.Fatalf("backdate bob: %v", err)
	}
	if err := s.TouchLastActive(ctx, alice.ID); err != nil {
		t.Fatalf("touch alice: %v", err)
	}

	n, err := s.CountActiveSince(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if n != 1 {
		t.Fatalf("active count = %d, want 1", n)
	}
}

func TestVibeCreateAndListOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateVibe(ctx, "alice", "calm")
	if err != nil {
		t.Fatalf("create vibe: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("vibe missing assigned fields: %+v", first)
	}

	if _, err := s.CreateVibe(ctx, "bob", "energized"); err != nil {
		t.Fatalf("create vibe: %v", err)
	}

	vibes, err := s.ListVibes(ctx)
	if err != nil {
		t.Fatalf("list vibes: %v", err)
	}
	if len(vibes) != 2 {
		t.Fatalf("listed %d vibes, want 2", len(vibes))
	}
	// Newest first.
	if vibes[0].User != "bob" || vibes[1].User != "alice" {
		t.Fatalf("unexpected order: %s, %s", vibes[0].User, vibes[1].User)
	}

	n, err := s.CountVibes(ctx)
	if err != nil {
		t.Fatalf("count vibes: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func TestPostsJoinAuthor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, "alice", "a@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	p, err := s.CreatePost(ctx, alice.ID, "First post", "hello community")
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if p.Author != "alice" || p.Title != "First post" {
		t.Fatalf("unexpected post: %+v", p)
	}

	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	if len(posts) != 1 || posts[0].Author != "alice" {
		t.Fatalf("unexpected posts: %+v", posts)
	}
}

func TestGroupsCreateAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.CreateGroup(ctx, "Mindfulness", "daily check-ins")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if g.Name != "Mindfulness" || g.Description != "daily check-ins" {
		t.Fatalf("unexpected group: %+v", g)
	}

	groups, err := s.ListGroups(ctx)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("listed %d groups, want 1", len(groups))
	}

	n, err := s.CountGroups(ctx)
	if err != nil {
		t.Fatalf("count groups: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestProgressUpsertReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertProgress(ctx, &store.Progress{Username: "alice", Mood: 3, Learning: 5, Social: 2}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertProgress(ctx, &store.Progress{Username: "alice", Mood: 8, Learning: 6, Social: 4}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	records, err := s.ListProgress(ctx)
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("listed %d records, want 1", len(records))
	}
	r := records[0]
	if r.Mood != 8 || r.Learning != 6 || r.Social != 4 {
		t.Fatalf("upsert did not replace: %+v", r)
	}
}

func TestTimeSpentAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.AddTimeSpent(ctx, "alice", 120); err != nil {
		t.Fatalf("add time: %v", err)
	}
	total, err := s.AddTimeSpent(ctx, "alice", 30)
	if err != nil {
		t.Fatalf("add time: %v", err)
	}
	if total.Seconds != 150 {
		t.Fatalf("total = %d, want 150", total.Seconds)
	}

	records, err := s.ListTimeSpent(ctx)
	if err != nil {
		t.Fatalf("list time: %v", err)
	}
	if len(records) != 1 || records[0].Seconds != 150 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestListResourcesRespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO resources (title, url) VALUES (?, ?)`,
			"resource", "https://example.com"); err != nil {
			t.Fatalf("seed resource: %v", err)
		}
	}

	resources, err := s.ListResources(ctx, 5)
	if err != nil {
		t.Fatalf("list resources: %v", err)
	}
	if len(resources) != 5 {
		t.Fatalf("listed %d resources, want 5", len(resources))
	}
}
