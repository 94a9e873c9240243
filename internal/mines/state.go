package mines

import (
	"fmt"
	"strconv"
)

type GameState int

const (
	Playing GameState = iota
	Won
	Lost
)

func (s GameState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "GameState(" + strconv.Itoa(int(s)) + ")"
	}
}

// Over reports whether the game has reached a terminal state.
func (s GameState) Over() bool {
	return s == Won || s == Lost
}

// [GameState] implements [encoding.TextMarshaler]
func (s GameState) MarshalText() ([]byte, error) {
	switch s {
	case Playing, Won, Lost:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown game state %d", int(s))
}

func (s *GameState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "playing":
		*s = Playing
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown game state %q", text)
	}
	return nil
}

type CellStatus int8

const (
	Unknown      CellStatus = -2
	Flagged      CellStatus = -1
	RevealedMine CellStatus = 64
	// 0-8 for an open cell with given number of mined neighbours
)

func (s CellStatus) String() string {
	switch {
	case s == Unknown:
		return "#"
	case s == Flagged:
		return "F"
	case s == RevealedMine:
		return "*"
	case s == 0:
		return "."
	case 0 < s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}
