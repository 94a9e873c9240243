package command

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type Kind string

const (
	Noop   Kind = "g"
	Reveal Kind = "o"
	Flag   Kind = "f"
)

// Maps known commands to number of arguments
var commandNargs = map[Kind]int{
	Noop:   0,
	Reveal: 2,
	Flag:   2,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNargs          = errors.New("invalid number of arguments")
)

type Command struct {
	Kind Kind
	X, Y int
	// Line is the zero-based source line the command was read from.
	Line int
}

func (c Command) String() string {
	if c.Kind == Noop {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s %d %d", c.Kind, c.X, c.Y)
}

func parseXY(twoStrings []string) (x int, y int, err error) {
	if x, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = errors.New("first argument must be an int")
		return
	}
	if y, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = errors.New("second argument must be an int")
		return
	}
	return
}

// Parse reads a single command of following syntax:
//
//	g     // do nothing, just report the board
//	o x y // reveal a cell at x:y
//	f x y // toggle a flag at x:y
func Parse(line string) (Command, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return Command{}, ErrUnknownCommand
	}
	kind := Kind(parts[0])
	nargs, ok := commandNargs[kind]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return Command{}, fmt.Errorf("%w: %s takes %d", ErrNargs, kind, nargs)
	}
	cmd := Command{Kind: kind}
	if nargs == 2 {
		x, y, err := parseXY(parts[1:])
		if err != nil {
			return Command{}, err
		}
		cmd.X, cmd.Y = x, y
	}
	return cmd, nil
}

func (c Command) Apply(b *mines.Board) error {
	switch c.Kind {
	case Noop:
		return nil
	case Reveal:
		return b.Reveal(c.X, c.Y)
	case Flag:
		return b.ToggleFlag(c.X, c.Y)
	}
	return fmt.Errorf("%w %q", ErrUnknownCommand, c.Kind)
}

// LineError points at the command that failed in a batch.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

func byPiece(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

// ParseLines parses newline-separated commands. Blank lines are skipped
// but still count towards Line.
func ParseLines(text string) ([]Command, error) {
	var cmds []Command
	for i, line := range byPiece(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmd, err := Parse(line)
		if err != nil {
			return nil, &LineError{Line: i, Err: err}
		}
		cmd.Line = i
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// ApplyAll runs commands in order and stops as soon as the game is over.
func ApplyAll(b *mines.Board, cmds []Command) error {
	for _, cmd := range cmds {
		if err := cmd.Apply(b); err != nil {
			return &LineError{Line: cmd.Line, Err: err}
		}
		if b.State().Over() {
			break
		}
	}
	return nil
}
