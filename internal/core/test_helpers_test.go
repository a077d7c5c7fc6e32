package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vibelink/vibelink-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// fakeVibeStore records CreateVibe calls and assigns sequential ids.
type fakeVibeStore struct {
	mu    sync.Mutex
	vibes []*store.Vibe
	fail  bool
}

func (f *fakeVibeStore) CreateVibe(_ context.Context, user, content string) (*store.Vibe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("disk full")
	}
	v := &store.Vibe{
		ID:        int64(len(f.vibes) + 1),
		User:      user,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	f.vibes = append(f.vibes, v)
	return v, nil
}

func (f *fakeVibeStore) ListVibes(context.Context) ([]*store.Vibe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*store.Vibe(nil), f.vibes...), nil
}

func (f *fakeVibeStore) CountVibes(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.vibes)), nil
}

func (f *fakeVibeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.vibes)
}

// stubResponder replies with a fixed string and counts calls.
type stubResponder struct {
	mu    sync.Mutex
	reply string
	calls int
}

func (s *stubResponder) Reply(_ context.Context, _ string, _ string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply
}

func (s *stubResponder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
