package session

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupTestStore(opts Options) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts.Now = clock.Now
	opts.Log = quietLogger()
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	return NewStore(opts), clock
}

func TestStoreCreateAndGet(t *testing.T) {
	s, _ := setupTestStore(Options{})

	session, err := s.Create(mines.Beginner)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	got, err = s.Lookup(session.ID.String())
	require.NoError(t, err)
	assert.Same(t, session, got)

	view := session.View()
	assert.Equal(t, mines.Beginner, view.Snapshot.GameParams)
	assert.Equal(t, mines.Playing, view.Snapshot.State)
	assert.True(t, view.StartedAt.IsZero())
}

func TestStoreReadMissing(t *testing.T) {
	s, _ := setupTestStore(Options{})

	_, err := s.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Lookup("not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreRejectsInvalidParams(t *testing.T) {
	s, _ := setupTestStore(Options{})

	_, err := s.Create(mines.GameParams{Width: 2, Height: 2, MineCount: 4})
	assert.ErrorIs(t, err, mines.ErrInvalidConfiguration)
	assert.Zero(t, s.Len())
}

func TestStoreFull(t *testing.T) {
	s, _ := setupTestStore(Options{MaxSessions: 2})

	for range 2 {
		_, err := s.Create(mines.Beginner)
		require.NoError(t, err)
	}
	_, err := s.Create(mines.Beginner)
	assert.ErrorIs(t, err, ErrStoreFull)
}

func TestStoreDelete(t *testing.T) {
	s, _ := setupTestStore(Options{})

	session, err := s.Create(mines.Beginner)
	require.NoError(t, err)
	s.Delete(session.ID)

	_, err = s.Get(session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSweep(t *testing.T) {
	s, clock := setupTestStore(Options{TTL: time.Minute})

	stale, err := s.Create(mines.Beginner)
	require.NoError(t, err)
	clock.Advance(45 * time.Second)

	fresh, err := s.Create(mines.Beginner)
	require.NoError(t, err)
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	_, err = s.Get(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// touching a session keeps it alive
	clock.Advance(50 * time.Second)
	_, err = fresh.Do(func(b *mines.Board) error { return nil })
	require.NoError(t, err)
	clock.Advance(50 * time.Second)
	assert.Zero(t, s.Sweep())
	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestStoreSweepWithoutTTL(t *testing.T) {
	s, clock := setupTestStore(Options{})
	_, err := s.Create(mines.Beginner)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	assert.Zero(t, s.Sweep())
}

func TestSessionTimestamps(t *testing.T) {
	s, clock := setupTestStore(Options{})
	session, err := s.Create(mines.GameParams{Width: 1, Height: 2, MineCount: 0})
	require.NoError(t, err)
	created := clock.Now()

	clock.Advance(time.Second)
	view, err := session.Do(func(b *mines.Board) error { return b.ToggleFlag(0, 0) })
	require.NoError(t, err)
	assert.True(t, view.StartedAt.IsZero(), "flagging does not start the game")

	clock.Advance(time.Second)
	view, err = session.Do(func(b *mines.Board) error {
		if err := b.ToggleFlag(0, 0); err != nil {
			return err
		}
		return b.Reveal(0, 1)
	})
	require.NoError(t, err)
	assert.Equal(t, mines.Won, view.Snapshot.State)
	assert.Equal(t, created, view.CreatedAt)
	assert.Equal(t, created.Add(2*time.Second), view.StartedAt)
	assert.Equal(t, created.Add(2*time.Second), view.EndedAt)

	clock.Advance(time.Second)
	view, err = session.Do(func(b *mines.Board) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, created.Add(2*time.Second), view.EndedAt)
}

func TestSessionDoReturnsError(t *testing.T) {
	s, _ := setupTestStore(Options{})
	session, err := s.Create(mines.Beginner)
	require.NoError(t, err)

	boom := errors.New("boom")
	view, err := session.Do(func(b *mines.Board) error {
		if err := b.ToggleFlag(0, 0); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, view.Snapshot.Flagged)

	_, err = session.Do(func(b *mines.Board) error { return b.Reveal(9, 9) })
	assert.ErrorIs(t, err, mines.ErrOutOfBounds)
}

func TestSessionConcurrentMoves(t *testing.T) {
	s, _ := setupTestStore(Options{})
	session, err := s.Create(mines.Expert)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for y := range mines.Expert.Height {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := range mines.Expert.Width {
				_, err := session.Do(func(b *mines.Board) error { return b.ToggleFlag(x, y) })
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, mines.Expert.CellCount(), session.View().Snapshot.Flagged)
}

func TestViewJSONHidesMines(t *testing.T) {
	s, _ := setupTestStore(Options{})
	session, err := s.Create(mines.GameParams{Width: 3, Height: 3, MineCount: 8})
	require.NoError(t, err)

	b, err := json.Marshal(session.View())
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(b, &payload))
	assert.Equal(t, session.ID.String(), payload["session_id"])
	assert.Equal(t, "playing", payload["state"])
	assert.EqualValues(t, 8, payload["mine_count"])
	assert.NotContains(t, payload, "started_at")
	assert.NotContains(t, payload, "cells")
	assert.Equal(t, []any{
		[]any{-2.0, -2.0, -2.0},
		[]any{-2.0, -2.0, -2.0},
		[]any{-2.0, -2.0, -2.0},
	}, payload["grid"])
}
