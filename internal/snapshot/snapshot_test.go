package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/rally-tribble/internal/metrics"
	"github.com/mauv0809/rally-tribble/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *tournament.MockStore {
	store := tournament.NewMock()
	store.GetAllPlayersFunc = func() ([]tournament.Player, error) {
		return []tournament.Player{{ID: 1, Name: "Ann"}}, nil
	}
	store.GetTournamentsFunc = func() ([]tournament.Tournament, error) {
		return []tournament.Tournament{{ID: 1, Status: tournament.StatusActive}}, nil
	}
	return store
}

func TestLoader_Load(t *testing.T) {
	store := newStore()
	clock := clockwork.NewFakeClock()
	m := metrics.NewMock()
	loader := NewLoader(store, DefaultTTL, clock, m)

	snap, err := loader.Load()
	require.NoError(t, err)
	assert.Len(t, snap.Players, 1)
	assert.Len(t, snap.Tournaments, 1)
	assert.Equal(t, clock.Now(), snap.LoadedAt)

	_, err = loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, store.GetTournamentsCalls, "second load should be served from the cache")
	assert.Equal(t, 1, m.SnapshotHits())
	assert.Equal(t, 1, m.SnapshotMisses())

	t.Run("expired snapshot is reloaded", func(t *testing.T) {
		clock.Advance(DefaultTTL + time.Second)
		_, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, 2, store.GetTournamentsCalls)
	})

	t.Run("invalidated snapshot is reloaded", func(t *testing.T) {
		loader.Invalidate(clock.Now())
		_, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, 3, store.GetTournamentsCalls)
	})
}

func TestLoader_LoadError(t *testing.T) {
	store := newStore()
	store.GetTournamentsFunc = func() ([]tournament.Tournament, error) {
		return nil, errors.New("db down")
	}
	loader := NewLoader(store, DefaultTTL, clockwork.NewFakeClock(), metrics.NewMock())

	_, err := loader.Load()
	assert.ErrorContains(t, err, "db down")

	store.GetTournamentsFunc = func() ([]tournament.Tournament, error) { return nil, nil }
	_, err = loader.Load()
	assert.NoError(t, err, "a failed load must not be cached")
}

func TestLoader_StartPrefetch(t *testing.T) {
	store := newStore()
	loader := NewLoader(store, DefaultTTL, nil, metrics.NewMock())

	stop, err := loader.StartPrefetch(time.Hour)
	require.NoError(t, err)
	defer stop()

	assert.Eventually(t, func() bool {
		return !loader.cache.LoadedAt().IsZero()
	}, 2*time.Second, 10*time.Millisecond, "prefetch should warm the cache")

	m := loader.metrics.(*metrics.Mock)
	_, err = loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, m.SnapshotHits())
	assert.Equal(t, 0, m.SnapshotMisses())
}

func TestLoader_InvalidateDuringFetch(t *testing.T) {
	store := newStore()
	clock := clockwork.NewFakeClock()
	loader := NewLoader(store, DefaultTTL, clock, metrics.NewMock())

	status := tournament.StatusActive
	store.GetTournamentsFunc = func() ([]tournament.Tournament, error) {
		return []tournament.Tournament{{ID: 1, Status: status}}, nil
	}
	// The tournament completes between the two reads of the first fetch.
	invalidated := false
	store.GetAllPlayersFunc = func() ([]tournament.Player, error) {
		if !invalidated {
			invalidated = true
			clock.Advance(time.Second)
			status = tournament.StatusCompleted
			loader.Invalidate(clock.Now())
		}
		return []tournament.Player{{ID: 1, Name: "Ann"}}, nil
	}

	snap, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, tournament.StatusActive, snap.Tournaments[0].Status)

	snap, err = loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, store.GetTournamentsCalls, "a snapshot read across an invalidation must not be cached")
	assert.Equal(t, tournament.StatusCompleted, snap.Tournaments[0].Status)

	_, err = loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, store.GetTournamentsCalls, "the fresh snapshot is cached")
}
