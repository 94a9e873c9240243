package session

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrStoreFull = errors.New("too many active sessions")
)

type Options struct {
	// Sessions untouched for longer than TTL are dropped by Sweep. Zero
	// keeps sessions forever.
	TTL time.Duration
	// Zero means no limit.
	MaxSessions int
	// Seed for board randomness. Zero seeds from the runtime.
	Seed uint64
	Now  func() time.Time
	Log  logrus.FieldLogger
}

// Store keeps sessions in memory. Nothing survives a restart.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	rnd      *rand.Rand
	opts     Options
}

func createRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(
			new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
		))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func NewStore(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		rnd:      createRand(opts.Seed),
		opts:     opts,
	}
}

// Create starts a new game. Each board gets a random source of its own, split
// off the store's source.
func (s *Store) Create(params mines.GameParams) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		return nil, ErrStoreFull
	}

	r := rand.New(rand.NewPCG(s.rnd.Uint64(), s.rnd.Uint64()))
	board, err := mines.NewBoard(params, r)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("unable to generate session id: %w", err)
	}

	now := s.opts.Now()
	session := &Session{
		ID:        id,
		CreatedAt: now,
		board:     board,
		touchedAt: now,
		now:       s.opts.Now,
	}
	s.sessions[id] = session

	s.opts.Log.WithFields(logrus.Fields{
		"session": id,
		"params":  params.Seed(),
	}).Debug("created session")

	return session, nil
}

func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session, nil
}

// ParseID reports malformed ids as ErrNotFound, since no session can have
// them.
func ParseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return parsed, nil
}

// Lookup parses id and fetches the session.
func (s *Store) Lookup(id string) (*Session, error) {
	parsed, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.Get(parsed)
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	if s.opts.TTL <= 0 {
		return 0
	}
	deadline := s.opts.Now().Add(-s.opts.TTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.idleSince().Before(deadline) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.opts.Log.WithFields(logrus.Fields{
			"removed": removed,
			"left":    len(s.sessions),
		}).Info("swept idle sessions")
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}
