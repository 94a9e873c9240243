// Package replay reruns recorded games. A script names the seed and the board
// and lists the moves in command syntax:
//
//	seed: 42
//	preset: beginner
//	moves:
//	  - o 4 4
//	  - f 0 0
//
// Custom boards give width, height and mine_count instead of preset, or the
// same three numbers as size: "16:16:40". The same script always produces the
// same game.
package replay

import (
	"bytes"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v2"

	"github.com/vancomm/minesweeper-engine/internal/command"
	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type Script struct {
	Seed      uint64   `yaml:"seed"`
	Preset    string   `yaml:"preset,omitempty"`
	Size      string   `yaml:"size,omitempty"`
	Width     int      `yaml:"width,omitempty"`
	Height    int      `yaml:"height,omitempty"`
	MineCount int      `yaml:"mine_count,omitempty"`
	Moves     []string `yaml:"moves"`
}

func LoadScript(in []byte) (*Script, error) {
	var script Script
	dec := yaml.NewDecoder(bytes.NewReader(in))
	dec.SetStrict(true)
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("unable to parse script: %w", err)
	}
	return &script, nil
}

func (s Script) Params() (mines.GameParams, error) {
	sources := 0
	if s.Preset != "" {
		sources++
	}
	if s.Size != "" {
		sources++
	}
	if s.Width != 0 || s.Height != 0 || s.MineCount != 0 {
		sources++
	}
	if sources > 1 {
		return mines.GameParams{}, fmt.Errorf(
			"%w: preset, size and explicit dimensions are exclusive",
			mines.ErrInvalidConfiguration,
		)
	}

	params := mines.GameParams{Width: s.Width, Height: s.Height, MineCount: s.MineCount}
	switch {
	case s.Preset != "":
		var ok bool
		if params, ok = mines.PresetByName(s.Preset); !ok {
			return mines.GameParams{}, fmt.Errorf("%w: unknown preset %q",
				mines.ErrInvalidConfiguration, s.Preset)
		}
		return params, nil
	case s.Size != "":
		var err error
		if params, err = mines.ParseSeed(s.Size); err != nil {
			return mines.GameParams{}, err
		}
	}
	return params, params.Validate()
}

func (s Script) commands() ([]command.Command, error) {
	cmds := make([]command.Command, len(s.Moves))
	for i, move := range s.Moves {
		cmd, err := command.Parse(move)
		if err != nil {
			return nil, &command.LineError{Line: i, Err: err}
		}
		cmd.Line = i
		cmds[i] = cmd
	}
	return cmds, nil
}

// Result is the final state of a replayed game.
type Result struct {
	Seed             uint64 `yaml:"seed"`
	mines.GameParams `yaml:",inline"`
	State            mines.GameState `yaml:"state"`
	Revealed         int             `yaml:"revealed"`
	Flagged          int             `yaml:"flagged"`
	Board            string          `yaml:"board"`
	Mines            []mines.Point   `yaml:"mines,flow"`
}

// Run plays the script on a fresh board. Moves after the game is over are
// ignored.
func Run(s *Script) (*Result, error) {
	params, err := s.Params()
	if err != nil {
		return nil, err
	}
	cmds, err := s.commands()
	if err != nil {
		return nil, err
	}

	board, err := mines.NewBoard(params, rand.New(rand.NewPCG(s.Seed, s.Seed)))
	if err != nil {
		return nil, err
	}
	if err := command.ApplyAll(board, cmds); err != nil {
		return nil, err
	}

	snap := board.Snapshot()
	return &Result{
		Seed:       s.Seed,
		GameParams: snap.GameParams,
		State:      snap.State,
		Revealed:   snap.Revealed,
		Flagged:    snap.Flagged,
		Board:      snap.String(),
		Mines:      snap.Mines(),
	}, nil
}

func (r *Result) Serialize() (string, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
