// Package buffer coalesces bursts of incoming events into bounded,
// rate-limited state changes. It runs inside each connected client and
// is what keeps render cost flat when the hub fans out a burst.
package buffer

import (
	"context"
	"sync"
	"time"
)

// Category separates independent event streams; each gets its own
// pending queue and visible history.
type Category string

const (
	CategoryChat         Category = "chat"
	CategoryVibe         Category = "vibe"
	CategoryNotification Category = "notification"
	CategorySocial       Category = "social"
)

// FlushFunc is invoked at most once per category per flush interval,
// with the post-trim visible history for that category.
type FlushFunc func(cat Category, visible []any)

// UpdateBuffer queues incoming entries per category and flushes them
// into visible history at a fixed cadence, keeping only the newest
// historyCap entries.
type UpdateBuffer struct {
	interval   time.Duration
	historyCap int
	onFlush    FlushFunc

	mu      sync.Mutex
	pending map[Category][]any
	visible map[Category][]any
}

// New creates an update buffer. onFlush may be nil.
func New(interval time.Duration, historyCap int, onFlush FlushFunc) *UpdateBuffer {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if historyCap <= 0 {
		historyCap = 50
	}
	return &UpdateBuffer{
		interval:   interval,
		historyCap: historyCap,
		onFlush:    onFlush,
		pending:    make(map[Category][]any),
		visible:    make(map[Category][]any),
	}
}

// Push queues an entry. It never mutates visible state directly; the
// entry becomes visible on the next flush.
func (b *UpdateBuffer) Push(cat Category, entry any) {
	b.mu.Lock()
	b.pending[cat] = append(b.pending[cat], entry)
	b.mu.Unlock()
}

// Run flushes on the buffer's cadence until the context is cancelled.
func (b *UpdateBuffer) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Flush()
		}
	}
}

// Flush moves pending entries into visible history, trims each
// category to the newest historyCap entries, and notifies once per
// category that changed. Categories with nothing pending are left
// untouched.
func (b *UpdateBuffer) Flush() {
	type change struct {
		cat     Category
		visible []any
	}
	var changes []change

	b.mu.Lock()
	for cat, queued := range b.pending {
		if len(queued) == 0 {
			continue
		}
		merged := append(b.visible[cat], queued...)
		if excess := len(merged) - b.historyCap; excess > 0 {
			merged = merged[excess:] // evict oldest first
		}
		b.visible[cat] = merged
		delete(b.pending, cat)

		snapshot := make([]any, len(merged))
		copy(snapshot, merged)
		changes = append(changes, change{cat: cat, visible: snapshot})
	}
	b.mu.Unlock()

	if b.onFlush == nil {
		return
	}
	for _, ch := range changes {
		b.onFlush(ch.cat, ch.visible)
	}
}

// Visible returns a copy of a category's visible history.
func (b *UpdateBuffer) Visible(cat Category) []any {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]any, len(b.visible[cat]))
	copy(out, b.visible[cat])
	return out
}

// PendingLen reports how many entries await the next flush.
func (b *UpdateBuffer) PendingLen(cat Category) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending[cat])
}
