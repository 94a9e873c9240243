package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

// Session owns one board and serialises every access to it.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu        sync.Mutex
	board     *mines.Board
	startedAt time.Time
	endedAt   time.Time
	touchedAt time.Time
	now       func() time.Time
}

// Do runs fn against the board under the session lock and returns the state
// of the board afterwards. The snapshot is taken even when fn fails.
func (s *Session) Do(fn func(*mines.Board) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.board)

	now := s.now()
	s.touchedAt = now
	if s.startedAt.IsZero() && s.board.Revealed() > 0 {
		s.startedAt = now
	}
	if s.endedAt.IsZero() && s.board.State().Over() {
		s.endedAt = now
	}

	return s.viewLocked(), err
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	return View{
		ID:        s.ID,
		Snapshot:  s.board.Snapshot(),
		CreatedAt: s.CreatedAt,
		StartedAt: s.startedAt,
		EndedAt:   s.endedAt,
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

// View is a point-in-time copy of a session.
type View struct {
	ID        uuid.UUID
	Snapshot  mines.Snapshot
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time
}

type viewJSON struct {
	SessionId string               `json:"session_id"`
	Grid      [][]mines.CellStatus `json:"grid"`
	Width     int                  `json:"width"`
	Height    int                  `json:"height"`
	MineCount int                  `json:"mine_count"`
	Revealed  int                  `json:"revealed"`
	Flagged   int                  `json:"flagged"`
	State     mines.GameState      `json:"state"`
	CreatedAt int64                `json:"created_at"`
	StartedAt *int64               `json:"started_at,omitempty"`
	EndedAt   *int64               `json:"ended_at,omitempty"`
}

func unixMilliOrNil(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// MarshalJSON exposes only what the player may see.
func (v View) MarshalJSON() ([]byte, error) {
	return json.Marshal(viewJSON{
		SessionId: v.ID.String(),
		Grid:      v.Snapshot.PlayerGrid(),
		Width:     v.Snapshot.Width,
		Height:    v.Snapshot.Height,
		MineCount: v.Snapshot.MineCount,
		Revealed:  v.Snapshot.Revealed,
		Flagged:   v.Snapshot.Flagged,
		State:     v.Snapshot.State,
		CreatedAt: v.CreatedAt.UnixMilli(),
		StartedAt: unixMilliOrNil(v.StartedAt),
		EndedAt:   unixMilliOrNil(v.EndedAt),
	})
}
