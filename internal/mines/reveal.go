package mines

import (
	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"
)

// Reveal opens the cell at x:y. Revealing a flagged or already open cell, or
// revealing after the game is over, does nothing. The first reveal of a game
// never hits a mine. Opening a cell with no mined neighbours opens the whole
// empty region around it together with its numbered border.
func (b *Board) Reveal(x, y int) error {
	if err := b.checkBounds(x, y); err != nil {
		return err
	}
	if !b.revealable(x, y) {
		return nil
	}

	if b.revealed == 0 && b.cells[y][x].IsMine {
		if err := b.relocateMine(x, y); err != nil {
			return err
		}
	}

	b.flood(x, y)
	return nil
}

func (b *Board) revealable(x, y int) bool {
	cell := &b.cells[y][x]
	return b.state == Playing && !cell.IsRevealed && !cell.IsFlagged
}

// flood reveals x:y and then walks the empty region depth first. Every cell is
// pushed at most once, so the walk is bounded by the number of cells.
func (b *Board) flood(x, y int) {
	var (
		pushed = make([]bool, b.params.CellCount())
		stack  deque.Deque[Point]
	)
	pushed[y*b.params.Width+x] = true
	stack.PushBack(Point{x, y})

	for stack.Len() > 0 {
		p := stack.PopBack()
		if !b.revealOne(p.X, p.Y) {
			continue
		}
		b.forEachNeighbor(p.X, p.Y, func(nx, ny int) {
			i := ny*b.params.Width + nx
			if pushed[i] || b.cells[ny][nx].IsRevealed {
				return
			}
			pushed[i] = true
			stack.PushBack(Point{nx, ny})
		})
	}
}

// revealOne opens a single cell and settles the game state. It reports
// whether the neighbours of the cell should be opened as well.
func (b *Board) revealOne(x, y int) bool {
	if !b.revealable(x, y) {
		return false
	}

	cell := &b.cells[y][x]
	cell.IsRevealed = true
	b.revealed++

	if cell.IsMine {
		b.state = Lost
		b.revealAllMines()
		Log.WithField("cell", Point{x, y}).Debug("revealed a mine, game lost")
		return false
	}

	if b.revealed == b.params.CellCount()-b.params.MineCount {
		b.state = Won
		b.revealAllMines()
		Log.WithFields(logrus.Fields{
			"revealed": b.revealed,
			"mines":    b.params.MineCount,
		}).Debug("revealed all safe cells, game won")
		return false
	}

	return cell.Adjacent == 0
}

// revealAllMines exposes every mine once the game is over. A flag on a mine
// is lifted so that a cell is never both flagged and revealed.
func (b *Board) revealAllMines() {
	for y := range b.cells {
		for x := range b.cells[y] {
			cell := &b.cells[y][x]
			if !cell.IsMine {
				continue
			}
			if cell.IsFlagged {
				cell.IsFlagged = false
				b.flagged--
			}
			cell.IsRevealed = true
		}
	}
}

// ToggleFlag flips the flag on an unrevealed cell while the game is on.
func (b *Board) ToggleFlag(x, y int) error {
	if err := b.checkBounds(x, y); err != nil {
		return err
	}
	cell := &b.cells[y][x]
	if b.state != Playing || cell.IsRevealed {
		return nil
	}
	cell.IsFlagged = !cell.IsFlagged
	if cell.IsFlagged {
		b.flagged++
	} else {
		b.flagged--
	}
	return nil
}
