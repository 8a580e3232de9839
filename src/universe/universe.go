package universe

import (
	"errors"
	"time"
)

//Universe is the public contract of the simulation engine
//hosts drive it with commands and observe it through Snapshot and registered viewers
type Universe interface {
	Snapshot() Snapshot
	Options() Options
	ToggleCell(row int, col int) error
	Seed() error
	SeedRandom(density float64) error
	Clear() error
	SetSpeed(interval time.Duration) error
	Play() error
	Pause() error
	TogglePlaying() error
	Step() error
	RegisterViewer(v Viewer)
	Close()
}

//Viewer is the interface to any host which displays the universe
//Refresh is called on the engine goroutine after every change, it must not block or call back into the universe
type Viewer interface {
	Refresh(s Snapshot)
}

//Options represents the Universe's configurable options
type Options struct {
	Rows           int
	Cols           int
	Interval       time.Duration
	Density        float64
	MaxGenerations int   //auto pause after this generation, 0 is unlimited
	RandSeed       int64 //0 seeds from the current time
}

//Snapshot is a read-only copy of the universe state at a concrete moment
type Snapshot struct {
	Grid          Grid
	Playing       bool
	Interval      time.Duration
	Generation    int
	LiveCells     int
	IterationTime time.Duration
}

//Speed is the named step interval offered to the user
type Speed struct {
	Name     string
	Interval time.Duration
}

//default options
const (
	DefInterval       = 100 * time.Millisecond
	DefDensity        = 0.25
	DefMaxGenerations = 0
)

var (
	ErrOutOfRange      = errors.New("cell out of range")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrClosed          = errors.New("universe closed")
)

//SpeedPresets are the intervals the hosts offer, slowest first
var SpeedPresets = []Speed{
	{"Slow", 1000 * time.Millisecond},
	{"Medium", 500 * time.Millisecond},
	{"Fast", 100 * time.Millisecond},
	{"Lightning", 50 * time.Millisecond},
}

var DefaultOptions = Options{
	Rows:           Rows,
	Cols:           Cols,
	Interval:       DefInterval,
	Density:        DefDensity,
	MaxGenerations: DefMaxGenerations,
}
