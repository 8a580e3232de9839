package web

import (
	"errors"
	"fmt"
	"lifegrid/src/universe"
	"math"
	"strings"
	"time"
)

//message types sent to the browser
const (
	TypeState = "state"
	TypeError = "error"
)

//actions accepted from the browser
const (
	ActionToggle    = "toggle"
	ActionPlay      = "play"
	ActionPause     = "pause"
	ActionPlayPause = "playPause"
	ActionStep      = "step"
	ActionSeed      = "seed"
	ActionClear     = "clear"
	ActionSpeed     = "speed"
)

var ErrUnknownAction = errors.New("unknown action")

//Command is a user gesture sent by the browser
type Command struct {
	Action  string   `json:"action"`
	Row     int      `json:"row,omitempty"`
	Col     int      `json:"col,omitempty"`
	Ms      int64    `json:"ms,omitempty"`
	Density *float64 `json:"density,omitempty"`
}

//State is the universe snapshot sent to the browser
//every row is encoded as a string of '0' and '1'
type State struct {
	Type       string   `json:"type"`
	Rows       []string `json:"rows"`
	Playing    bool     `json:"playing"`
	IntervalMs int64    `json:"intervalMs"`
	Generation int      `json:"generation"`
	LiveCells  int      `json:"liveCells"`
}

//ErrorMessage reports a rejected command to the browser which sent it
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newState(s universe.Snapshot) State {
	rows := make([]string, len(s.Grid.Cells))
	var b strings.Builder
	for i, row := range s.Grid.Cells {
		b.Reset()
		b.Grow(len(row))
		for _, c := range row {
			b.WriteByte('0' + byte(c))
		}
		rows[i] = b.String()
	}
	return State{
		Type:       TypeState,
		Rows:       rows,
		Playing:    s.Playing,
		IntervalMs: s.Interval.Milliseconds(),
		Generation: s.Generation,
		LiveCells:  s.LiveCells,
	}
}

//Dispatch applies the command to the universe
func Dispatch(u universe.Universe, cmd Command) error {
	switch cmd.Action {
	case ActionToggle:
		return u.ToggleCell(cmd.Row, cmd.Col)
	case ActionPlay:
		return u.Play()
	case ActionPause:
		return u.Pause()
	case ActionPlayPause:
		return u.TogglePlaying()
	case ActionStep:
		return u.Step()
	case ActionSeed:
		if cmd.Density != nil {
			return u.SeedRandom(*cmd.Density)
		}
		return u.Seed()
	case ActionClear:
		return u.Clear()
	case ActionSpeed:
		if cmd.Ms <= 0 || cmd.Ms > math.MaxInt64/int64(time.Millisecond) {
			return fmt.Errorf("speed %vms: %w", cmd.Ms, universe.ErrInvalidArgument)
		}
		return u.SetSpeed(time.Duration(cmd.Ms) * time.Millisecond)
	}
	return fmt.Errorf("%q: %w", cmd.Action, ErrUnknownAction)
}
