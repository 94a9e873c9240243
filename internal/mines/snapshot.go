package mines

import "strings"

// Snapshot is a detached copy of a board. Changing it does not affect the
// board it was taken from.
type Snapshot struct {
	GameParams `yaml:",inline"`
	State      GameState `json:"state" yaml:"state"`
	Revealed   int       `json:"revealed" yaml:"revealed"`
	Flagged    int       `json:"flagged" yaml:"flagged"`
	Cells      [][]Cell  `json:"cells" yaml:"cells"` // [y][x]
}

func (b *Board) Snapshot() Snapshot {
	cells := make([][]Cell, len(b.cells))
	for y, row := range b.cells {
		cells[y] = make([]Cell, len(row))
		copy(cells[y], row)
	}
	return Snapshot{
		GameParams: b.params,
		State:      b.state,
		Revealed:   b.revealed,
		Flagged:    b.flagged,
		Cells:      cells,
	}
}

// PlayerGrid hides everything a player must not see, row by row.
func (s Snapshot) PlayerGrid() [][]CellStatus {
	grid := make([][]CellStatus, len(s.Cells))
	for y, row := range s.Cells {
		grid[y] = make([]CellStatus, len(row))
		for x, cell := range row {
			grid[y][x] = cell.Status()
		}
	}
	return grid
}

// Rows renders the player grid as one string per row.
func (s Snapshot) Rows() []string {
	rows := make([]string, len(s.Cells))
	for y, row := range s.Cells {
		var b strings.Builder
		for _, cell := range row {
			b.WriteString(cell.Status().String())
		}
		rows[y] = b.String()
	}
	return rows
}

// [Snapshot] implements [fmt.Stringer]
func (s Snapshot) String() string {
	return strings.Join(s.Rows(), "\n")
}

// Mines lists mine positions row by row.
func (s Snapshot) Mines() []Point {
	var mines []Point
	for _, row := range s.Cells {
		for _, cell := range row {
			if cell.IsMine {
				mines = append(mines, Point{cell.X, cell.Y})
			}
		}
	}
	return mines
}
