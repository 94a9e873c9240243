package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type GameParams struct {
	Width     int `json:"width" yaml:"width"`
	Height    int `json:"height" yaml:"height"`
	MineCount int `json:"mine_count" yaml:"mine_count"`
}

var (
	Beginner     = GameParams{Width: 9, Height: 9, MineCount: 10}
	Intermediate = GameParams{Width: 16, Height: 16, MineCount: 40}
	Expert       = GameParams{Width: 30, Height: 16, MineCount: 99}
)

// Presets lists the classic difficulty levels by name.
var Presets = map[string]GameParams{
	"beginner":     Beginner,
	"intermediate": Intermediate,
	"expert":       Expert,
}

func PresetByName(name string) (GameParams, bool) {
	p, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

func (p GameParams) CellCount() int {
	return p.Width * p.Height
}

// Validate reports ErrInvalidConfiguration unless the board has at least one
// cell and at least one cell free of mines.
func (p GameParams) Validate() error {
	if p.Width < 1 || p.Height < 1 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d",
			ErrInvalidConfiguration, p.Width, p.Height)
	}
	if p.MineCount < 0 || p.MineCount >= p.CellCount() {
		return fmt.Errorf("%w: mine count must be in [0, %d), got %d",
			ErrInvalidConfiguration, p.CellCount(), p.MineCount)
	}
	return nil
}

func (p GameParams) PointInBounds(x, y int) bool {
	return 0 <= x && x < p.Width && 0 <= y && y < p.Height
}

// Seed encodes params as "width:height:mines".
func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Width, p.Height, p.MineCount)
}

// ParseSeed is the inverse of Seed. It does not validate the result.
func ParseSeed(seed string) (GameParams, error) {
	parts := strings.Split(strings.TrimSpace(seed), ":")
	if len(parts) != 3 {
		return GameParams{}, fmt.Errorf(`%w: seed %q must look like "width:height:mines"`,
			ErrInvalidConfiguration, seed)
	}
	var dims [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return GameParams{}, fmt.Errorf("%w: seed %q: %s",
				ErrInvalidConfiguration, seed, err)
		}
		dims[i] = n
	}
	return GameParams{Width: dims[0], Height: dims[1], MineCount: dims[2]}, nil
}
