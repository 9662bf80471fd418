package snapshot

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/rally-tribble/internal/cache"
	"github.com/mauv0809/rally-tribble/internal/metrics"
	"github.com/mauv0809/rally-tribble/internal/tournament"
)

// DefaultTTL is how long a loaded snapshot is reused.
const DefaultTTL = 5 * time.Minute

// Snapshot is one consistent read of the player list and the full tournament history.
type Snapshot struct {
	Players     []tournament.Player
	Tournaments []tournament.Tournament
	LoadedAt    time.Time
}

// Loader serves snapshots from a TTL cache in front of the tournament store.
type Loader struct {
	store   tournament.Store
	cache   *cache.Cache[Snapshot]
	metrics metrics.Metrics
	loadMu  sync.Mutex
}

// NewLoader creates a loader. A nil clock means the real clock.
func NewLoader(store tournament.Store, ttl time.Duration, clock clockwork.Clock, metrics metrics.Metrics) *Loader {
	return &Loader{
		store:   store,
		cache:   cache.New[Snapshot](ttl, clock),
		metrics: metrics,
	}
}

// Load returns the cached snapshot, reading the store when it is missing or expired.
func (l *Loader) Load() (Snapshot, error) {
	if snap, ok := l.cache.Get(); ok {
		l.metrics.IncSnapshotHits()
		return snap, nil
	}

	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	// Another caller may have loaded it while we waited.
	if snap, ok := l.cache.Get(); ok {
		l.metrics.IncSnapshotHits()
		return snap, nil
	}
	l.metrics.IncSnapshotMisses()
	return l.fetch()
}

// Refresh reads the store and replaces the cached snapshot.
func (l *Loader) Refresh() (Snapshot, error) {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()
	return l.fetch()
}

// Invalidate drops the cached snapshot if it was loaded at or before at.
func (l *Loader) Invalidate(at time.Time) {
	l.cache.Invalidate(at)
	log.Debug("Snapshot invalidated", "at", at)
}

// Now returns the loader clock's current time.
func (l *Loader) Now() time.Time {
	return l.cache.Now()
}

// fetch reads tournaments before players: players are never deleted outside Clear, so every
// player a tournament references is in the list read after it. A snapshot read across an
// invalidation is returned to the caller but not cached.
func (l *Loader) fetch() (Snapshot, error) {
	stamp := l.cache.Stamp()
	tournaments, err := l.store.GetTournaments()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load tournaments: %w", err)
	}
	players, err := l.store.GetAllPlayers()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load players: %w", err)
	}

	snap := Snapshot{Players: players, Tournaments: tournaments, LoadedAt: stamp.At}
	if !l.cache.SetAt(snap, stamp) {
		log.Debug("Snapshot invalidated while loading, not cached")
		return snap, nil
	}
	log.Debug("Snapshot loaded", "players", len(players), "tournaments", len(tournaments))
	return snap, nil
}

// StartPrefetch refreshes the snapshot in the background every interval, starting immediately.
// The returned function stops the scheduler.
func (l *Loader) StartPrefetch(interval time.Duration, options ...gocron.SchedulerOption) (func() error, error) {
	sched, err := gocron.NewScheduler(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create prefetch scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := l.Refresh(); err != nil {
				log.Warn("Background snapshot prefetch failed", "error", err)
			}
		}),
		gocron.WithName("snapshot-prefetch"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule snapshot prefetch: %w", err)
	}

	sched.Start()
	log.Info("Snapshot prefetch started", "interval", interval)
	return sched.Shutdown, nil
}
