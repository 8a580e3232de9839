package universe

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

//Engine is the universe's simulation engine, implements Universe interface
//every command runs to completion on the engine goroutine (mainLoop), so state needs no locks
//the autonomous run is a chain of one-shot delays: each step arms the next wake-up
//with the interval current at that moment, and the wake-up re-checks the playing flag
//at most one wake-up is pending, arming a new one abandons the previous
type Engine struct {
	options   Options
	state     Snapshot
	wakeCh    <-chan time.Time //pending wake-up of the run loop, nil when none
	rng       *rand.Rand
	clock     Clock
	views     []Viewer
	controlCh chan func()
	closeCh   chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	final     Snapshot //state at Close, read only after doneCh is closed
}

var _ Universe = (*Engine)(nil)

//New creates the Engine with all cells dead and the simulation stopped
func New(o *Options) (*Engine, error) {
	if o == nil {
		o = &DefaultOptions
	}
	return newEngine(*o, realClock{})
}

func newEngine(o Options, c Clock) (*Engine, error) {
	if o.Rows <= 0 || o.Cols <= 0 {
		return nil, fmt.Errorf("grid size %v x %v: %w", o.Rows, o.Cols, ErrInvalidArgument)
	}
	if o.Interval <= 0 {
		return nil, fmt.Errorf("interval %v: %w", o.Interval, ErrInvalidArgument)
	}
	if err := checkDensity(o.Density); err != nil {
		return nil, err
	}
	seed := uint64(o.RandSeed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	e := &Engine{
		options:   o,
		rng:       rand.New(rand.NewPCG(seed, 0)),
		clock:     c,
		controlCh: make(chan func()),
		closeCh:   make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
	e.state.Grid = NewGrid(o.Rows, o.Cols)
	e.state.Interval = o.Interval
	go e.mainLoop()
	return e, nil
}

//Options returns the configuration the universe was created with
func (e *Engine) Options() Options {
	return e.options
}

//Snapshot returns a copy of the current universe state
//after Close it returns the state the universe had when it was closed
func (e *Engine) Snapshot() (s Snapshot) {
	if err := e.do(func() { s = e.snapshot() }); err != nil {
		s = e.final
		s.Grid = e.final.Grid.Clone()
	}
	return s
}

//RegisterViewer registers the viewer, it's refreshed immediately and after every change
func (e *Engine) RegisterViewer(v Viewer) {
	_ = e.do(func() {
		e.views = append(e.views, v)
		v.Refresh(e.snapshot())
	})
}

//ToggleCell flips the cell at (row, col)
//coordinates outside the grid are rejected with ErrOutOfRange
func (e *Engine) ToggleCell(row int, col int) error {
	var err error
	if cerr := e.do(func() { err = e.toggleCell(row, col) }); cerr != nil {
		return cerr
	}
	return err
}

//Seed replaces the grid with random cells using the configured density
func (e *Engine) Seed() error {
	return e.SeedRandom(e.options.Density)
}

//SeedRandom replaces the grid with cells alive with probability density, playing is kept
func (e *Engine) SeedRandom(density float64) error {
	if err := checkDensity(density); err != nil {
		return err
	}
	return e.do(func() { e.seed(density) })
}

//Clear kills all cells, resets the counters and stops the simulation
func (e *Engine) Clear() error {
	return e.do(e.clear)
}

//SetSpeed changes the interval between generations
//a wait already in progress keeps its duration, the next one uses the new interval
func (e *Engine) SetSpeed(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("interval %v: %w", interval, ErrInvalidArgument)
	}
	return e.do(func() { e.setSpeed(interval) })
}

//Play starts the simulation: one generation immediately, then one per interval
//it does nothing when the simulation is already running or MaxGenerations is reached
func (e *Engine) Play() error {
	return e.do(e.play)
}

//Pause stops the simulation at the next wake-up, the wait in progress is not cut short
func (e *Engine) Pause() error {
	return e.do(e.pause)
}

//TogglePlaying switches between Play and Pause
func (e *Engine) TogglePlaying() error {
	return e.do(func() {
		if e.state.Playing {
			e.pause()
		} else {
			e.play()
		}
	})
}

//Step does one generation while the simulation is stopped
func (e *Engine) Step() error {
	return e.do(func() {
		if e.state.Playing {
			return
		}
		e.advance()
		e.refreshView()
	})
}

//Close stops the main loop, a pending wake-up is discarded
//subsequent calls return ErrClosed
func (e *Engine) Close() {
	e.closeOnce.Do(func() { close(e.closeCh) })
	<-e.doneCh
}

//do runs cmd on the engine goroutine and waits for it to finish
func (e *Engine) do(cmd func()) error {
	done := make(chan struct{})
	select {
	case e.controlCh <- func() { cmd(); close(done) }:
	case <-e.doneCh:
		return ErrClosed
	}
	<-done
	return nil
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command or wake-up and executes
func (e *Engine) mainLoop() {
	defer close(e.doneCh)
	for {
		select {
		case cmd := <-e.controlCh:
			cmd()
		case <-e.wakeCh:
			e.wakeCh = nil
			e.wake()
		case <-e.closeCh:
			e.final = e.snapshot()
			e.final.Playing = false
			return
		}
	}
}

func (e *Engine) toggleCell(row int, col int) error {
	if !e.state.Grid.InBounds(row, col) {
		return fmt.Errorf("toggle (%v, %v) on %v x %v grid: %w", row, col, e.state.Grid.Rows, e.state.Grid.Cols, ErrOutOfRange)
	}
	c := &e.state.Grid.Cells[row][col]
	if *c == Alive {
		*c = Dead
		e.state.LiveCells--
	} else {
		*c = Alive
		e.state.LiveCells++
	}
	e.refreshView()
	return nil
}

func (e *Engine) seed(density float64) {
	e.state.Grid = RandomGrid(e.options.Rows, e.options.Cols, density, e.rng)
	e.state.Generation = 0
	e.state.LiveCells = e.state.Grid.LiveCells()
	e.refreshView()
}

//clear clears the grid data, resets all counters
func (e *Engine) clear() {
	e.state.Grid = NewGrid(e.options.Rows, e.options.Cols)
	e.state.Playing = false
	e.state.Generation = 0
	e.state.LiveCells = 0
	e.state.IterationTime = 0
	e.refreshView()
}

func (e *Engine) setSpeed(interval time.Duration) {
	e.state.Interval = interval
	e.refreshView()
}

func (e *Engine) play() {
	if e.state.Playing || e.limitReached() {
		return
	}
	e.state.Playing = true
	e.advance()
	if e.state.Playing {
		e.schedule()
	}
	e.refreshView()
}

func (e *Engine) pause() {
	if !e.state.Playing {
		return
	}
	e.state.Playing = false
	e.refreshView()
}

//wake is the scheduled continuation of the run loop
func (e *Engine) wake() {
	if !e.state.Playing {
		return
	}
	e.advance()
	if e.state.Playing {
		e.schedule()
	}
	e.refreshView()
}

//schedule arms the next wake-up after the current interval
func (e *Engine) schedule() {
	e.wakeCh = e.clock.After(e.state.Interval)
}

//advance replaces the grid with the next generation and updates the counters
func (e *Engine) advance() {
	start := time.Now()
	e.state.Grid = NextGeneration(e.state.Grid)
	e.state.Generation++
	e.state.LiveCells = e.state.Grid.LiveCells()
	e.state.IterationTime = time.Since(start)
	if e.limitReached() {
		e.state.Playing = false
	}
}

func (e *Engine) limitReached() bool {
	limit := e.options.MaxGenerations
	return limit > 0 && e.state.Generation >= limit
}

func (e *Engine) snapshot() Snapshot {
	s := e.state
	s.Grid = e.state.Grid.Clone()
	return s
}

//refreshView calls Refresh for all registered views
func (e *Engine) refreshView() {
	if len(e.views) == 0 {
		return
	}
	s := e.snapshot()
	for _, v := range e.views {
		v.Refresh(s)
	}
}

func checkDensity(d float64) error {
	if math.IsNaN(d) || d < 0 || d > 1 {
		return fmt.Errorf("density %v: %w", d, ErrInvalidArgument)
	}
	return nil
}
