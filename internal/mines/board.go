package mines

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

// Rand is the random source used for mine placement and first-click
// relocation. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

type Cell struct {
	X          int  `json:"x" yaml:"x"`
	Y          int  `json:"y" yaml:"y"`
	IsMine     bool `json:"mine" yaml:"mine"`
	Adjacent   int  `json:"adjacent" yaml:"adjacent"`
	IsRevealed bool `json:"revealed" yaml:"revealed"`
	IsFlagged  bool `json:"flagged" yaml:"flagged"`
}

func (c Cell) String() string {
	return fmt.Sprintf("Cell(%d, %d)", c.X, c.Y)
}

// Status is what a player is allowed to know about the cell.
func (c Cell) Status() CellStatus {
	switch {
	case c.IsFlagged:
		return Flagged
	case !c.IsRevealed:
		return Unknown
	case c.IsMine:
		return RevealedMine
	default:
		return CellStatus(c.Adjacent)
	}
}

// Board is a single game of minesweeper. It is not safe for concurrent use.
type Board struct {
	params   GameParams
	cells    [][]Cell // [y][x]
	revealed int
	flagged  int
	state    GameState
	rnd      Rand
}

// NewBoard starts a new game with mines placed uniformly at random. The mine
// under the first revealed cell, if any, is moved away by Reveal.
func NewBoard(params GameParams, r Rand) (*Board, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: no random source", ErrInvalidConfiguration)
	}

	b := &Board{
		params: params,
		cells:  make([][]Cell, params.Height),
		state:  Playing,
		rnd:    r,
	}
	for y := range params.Height {
		row := make([]Cell, params.Width)
		for x := range row {
			row[x] = Cell{X: x, Y: y}
		}
		b.cells[y] = row
	}

	if err := b.placeMines(); err != nil {
		return nil, err
	}

	Log.WithFields(logrus.Fields{
		"width":  params.Width,
		"height": params.Height,
		"mines":  params.MineCount,
	}).Debug("new board")

	return b, nil
}

// NewBoardWithMines starts a new game with mines at the given cells. r is
// still needed to move a mine away from the first revealed cell.
func NewBoardWithMines(width, height int, mines []Point, r Rand) (*Board, error) {
	params := GameParams{Width: width, Height: height, MineCount: len(mines)}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	for _, p := range mines {
		if !params.PointInBounds(p.X, p.Y) {
			return nil, fmt.Errorf("%w: mine at %s is outside a %dx%d board",
				ErrInvalidConfiguration, p, width, height)
		}
	}

	b, err := NewBoard(GameParams{Width: width, Height: height}, r)
	if err != nil {
		return nil, err
	}
	for _, p := range mines {
		if b.cells[p.Y][p.X].IsMine {
			return nil, fmt.Errorf("%w: duplicate mine at %s",
				ErrInvalidConfiguration, p)
		}
		if err := b.addMine(p.X, p.Y); err != nil {
			return nil, err
		}
	}
	b.params.MineCount = len(mines)
	return b, nil
}

func (b *Board) Params() GameParams {
	return b.params
}

func (b *Board) Width() int {
	return b.params.Width
}

func (b *Board) Height() int {
	return b.params.Height
}

func (b *Board) MineCount() int {
	return b.params.MineCount
}

func (b *Board) State() GameState {
	return b.state
}

func (b *Board) Revealed() int {
	return b.revealed
}

func (b *Board) Flagged() int {
	return b.flagged
}

// Cell returns a copy of the cell at x:y.
func (b *Board) Cell(x, y int) (Cell, error) {
	if err := b.checkBounds(x, y); err != nil {
		return Cell{}, err
	}
	return b.cells[y][x], nil
}

func (b *Board) checkBounds(x, y int) error {
	if !b.params.PointInBounds(x, y) {
		return fmt.Errorf("%w: (%d, %d) on a %dx%d board",
			ErrOutOfBounds, x, y, b.params.Width, b.params.Height)
	}
	return nil
}

// placeMines picks MineCount distinct cells without replacement.
func (b *Board) placeMines() error {
	n := b.params.CellCount()
	candidates := make([]int, n)
	for i := range candidates {
		candidates[i] = i
	}

	k := n
	for range b.params.MineCount {
		i := b.rnd.IntN(k)
		c := candidates[i]
		if err := b.addMine(c%b.params.Width, c/b.params.Width); err != nil {
			return err
		}
		k--
		candidates[i] = candidates[k]
	}
	return nil
}

func (b *Board) addMine(x, y int) error {
	cell := &b.cells[y][x]
	if cell.IsMine {
		err := AssertionError{fmt.Sprintf("tried to add a mine to %s which already has one", cell)}
		Log.Error(err)
		return err
	}
	cell.IsMine = true
	b.forEachNeighbor(x, y, func(nx, ny int) {
		b.cells[ny][nx].Adjacent++
	})
	return nil
}

func (b *Board) removeMine(x, y int) error {
	cell := &b.cells[y][x]
	if !cell.IsMine {
		err := AssertionError{fmt.Sprintf("tried to remove a mine from %s which has none", cell)}
		Log.Error(err)
		return err
	}
	cell.IsMine = false
	b.forEachNeighbor(x, y, func(nx, ny int) {
		b.cells[ny][nx].Adjacent--
	})
	return nil
}

// relocateMine moves the mine at x:y to a random cell that holds no mine.
// Validate guarantees such a cell exists.
func (b *Board) relocateMine(x, y int) error {
	n := b.params.CellCount()
	for {
		i := b.rnd.IntN(n)
		nx, ny := i%b.params.Width, i/b.params.Width
		if b.cells[ny][nx].IsMine {
			continue
		}
		if err := b.removeMine(x, y); err != nil {
			return err
		}
		if err := b.addMine(nx, ny); err != nil {
			// put the original mine back so the count stays intact
			_ = b.addMine(x, y)
			return err
		}
		Log.WithFields(logrus.Fields{
			"from": Point{x, y},
			"to":   Point{nx, ny},
		}).Debug("moved mine away from first click")
		return nil
	}
}

// forEachNeighbor calls fn for every in-bounds neighbour of x:y, row by row
// from the top left.
func (b *Board) forEachNeighbor(x, y int, fn func(nx, ny int)) {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if b.params.PointInBounds(nx, ny) {
				fn(nx, ny)
			}
		}
	}
}

// NeighborsOf lists the in-bounds neighbours of x:y in a fixed order.
func (b *Board) NeighborsOf(x, y int) ([]Point, error) {
	if err := b.checkBounds(x, y); err != nil {
		return nil, err
	}
	neighbors := make([]Point, 0, 8)
	b.forEachNeighbor(x, y, func(nx, ny int) {
		neighbors = append(neighbors, Point{nx, ny})
	})
	return neighbors, nil
}
