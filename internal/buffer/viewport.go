package buffer

import "sync"

// ViewportAnchor preserves a viewer's scroll position across
// flush-triggered mutations: the renderer saves the offset before
// applying a visible-state change and restores it on the next paint.
// Rendering-technology agnostic; the offset is whatever unit the
// renderer scrolls in.
type ViewportAnchor struct {
	mu     sync.Mutex
	offset int
	saved  bool
}

// Save records the current scroll offset.
func (v *ViewportAnchor) Save(offset int) {
	v.mu.Lock()
	v.offset = offset
	v.saved = true
	v.mu.Unlock()
}

// Restore returns the saved offset and clears it. The second return
// is false when nothing was saved since the last restore.
func (v *ViewportAnchor) Restore() (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.saved {
		return 0, false
	}
	v.saved = false
	return v.offset, true
}
