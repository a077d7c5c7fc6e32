// Package stats recomputes community counters on a fixed cadence and
// pushes full snapshots through the hub.
package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibelink/vibelink-server/internal/core"
)

// Broadcaster is the slice of the hub the aggregator needs.
type Broadcaster interface {
	Broadcast(ev *core.Event)
}

// CountStore is the slice of the store the aggregator needs.
type CountStore interface {
	CountPosts(ctx context.Context) (int64, error)
	CountGroups(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, t time.Time) (int64, error)
	CountVibes(ctx context.Context) (int64, error)
}

// queryTimeout bounds one full recompute against the store.
const queryTimeout = 5 * time.Second

// Aggregator queries the store on a timer and broadcasts a stats
// snapshot. Each snapshot fully replaces the previous one on clients;
// a failed tick is skipped, leaving the stale snapshot in place.
type Aggregator struct {
	store    CountStore
	hub      Broadcaster
	interval time.Duration
	refresh  chan struct{}
	log      zerolog.Logger
}

// New creates an aggregator broadcasting every interval.
func New(st CountStore, hub Broadcaster, interval time.Duration, logger *zerolog.Logger) *Aggregator {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}
	return &Aggregator{
		store:    st,
		hub:      hub,
		interval: interval,
		refresh:  make(chan struct{}, 1),
		log:      l,
	}
}

// Refresh requests an immediate out-of-cycle recompute, independent of
// the timer. Never blocks; coalesces with a pending refresh.
func (a *Aggregator) Refresh() {
	select {
	case a.refresh <- struct{}{}:
	default:
	}
}

// Run broadcasts snapshots until the context is cancelled. It runs
// regardless of how many clients are connected; with none the
// broadcast is a no-op fan-out.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.publish(ctx)
		case <-a.refresh:
			a.publish(ctx)
		}
	}
}

// publish recomputes every counter and broadcasts the snapshot. Any
// query failure skips this broadcast entirely.
func (a *Aggregator) publish(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	snap, err := a.compute(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("stats recompute failed, skipping broadcast")
		return
	}

	a.hub.Broadcast(&core.Event{Kind: core.EventStatsUpdate, Stats: snap})
}

func (a *Aggregator) compute(ctx context.Context) (*core.StatsSnapshot, error) {
	posts, err := a.store.CountPosts(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := a.store.CountGroups(ctx)
	if err != nil {
		return nil, err
	}
	members, err := a.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	// "Today" is pinned to UTC so multi-region deployments agree on
	// the boundary.
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	active, err := a.store.CountActiveSince(ctx, midnight)
	if err != nil {
		return nil, err
	}
	vibes, err := a.store.CountVibes(ctx)
	if err != nil {
		return nil, err
	}

	return &core.StatsSnapshot{
		Posts:       posts,
		Groups:      groups,
		Members:     members,
		ActiveToday: active,
		Vibes:       vibes,
		ComputedAt:  time.Now().UTC(),
	}, nil
}
