package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/schema"
	"github.com/vancomm/minesweeper-engine/internal/mines"
	"github.com/vancomm/minesweeper-engine/internal/session"
)

var errBadRequest = errors.New("bad request")

type Limits struct {
	MaxWidth  int
	MaxHeight int
}

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

func decodeQuery(dec *schema.Decoder, dst any, src url.Values) error {
	if err := dec.Decode(dst, src); err != nil {
		return fmt.Errorf("%w: %s", errBadRequest, err)
	}
	return nil
}

// CreateNewGameDTO picks a preset by name or describes a custom board.
type CreateNewGameDTO struct {
	Preset    string `schema:"preset"`
	Width     int    `schema:"width"`
	Height    int    `schema:"height"`
	MineCount int    `schema:"mine_count"`
}

func (d CreateNewGameDTO) Params(limits Limits) (mines.GameParams, error) {
	params := mines.GameParams{Width: d.Width, Height: d.Height, MineCount: d.MineCount}
	if d.Preset != "" {
		var ok bool
		if params, ok = mines.PresetByName(d.Preset); !ok {
			return mines.GameParams{}, fmt.Errorf("%w: unknown preset %q",
				mines.ErrInvalidConfiguration, d.Preset)
		}
	}
	if err := params.Validate(); err != nil {
		return mines.GameParams{}, err
	}
	if params.Width > limits.MaxWidth || params.Height > limits.MaxHeight {
		return mines.GameParams{}, fmt.Errorf("%w: board must be at most %dx%d",
			mines.ErrInvalidConfiguration, limits.MaxWidth, limits.MaxHeight)
	}
	return params, nil
}

type PositionDTO struct {
	X int `schema:"x,required"`
	Y int `schema:"y,required"`
}

type NewGameDTO struct {
	Token   string       `json:"token"`
	Session session.View `json:"session"`
}

type NeighborsDTO struct {
	X         int           `json:"x"`
	Y         int           `json:"y"`
	Neighbors []mines.Point `json:"neighbors"`
}

type StatusDTO struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type PresetDTO struct {
	Name string `json:"name"`
	mines.GameParams
}

func presetList() []PresetDTO {
	list := make([]PresetDTO, 0, len(mines.Presets))
	for name, params := range mines.Presets {
		list = append(list, PresetDTO{Name: name, GameParams: params})
	}
	slices.SortFunc(list, func(a, b PresetDTO) int {
		if c := a.CellCount() - b.CellCount(); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return list
}
