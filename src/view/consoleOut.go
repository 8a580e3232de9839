package view

import (
	"fmt"
	"io"
	"lifegrid/src/universe"
	"sort"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/gernest/wow"
	"github.com/gernest/wow/spin"
	"github.com/logrusorgru/aurora"
)

//ConsoleOut is the headless observer, implements universe.Viewer
//it reports the progress of a run and closes Done when the simulation stops
type ConsoleOut struct {
	w         io.Writer
	o         universe.Options
	startTime time.Time

	mu       sync.Mutex
	progress progress
	running  bool
	finished bool
	done     chan struct{}
}

//progress is the live indicator of a run
type progress interface {
	update(s universe.Snapshot)
	finish()
}

//barProgress shows the generations done out of MaxGenerations
type barProgress struct {
	bar *pb.ProgressBar
}

func (p barProgress) update(s universe.Snapshot) { p.bar.SetCurrent(int64(s.Generation)) }
func (p barProgress) finish()                    { p.bar.Finish() }

//spinProgress is used when the run has no generation limit
type spinProgress struct {
	w *wow.Wow
}

func (p spinProgress) update(s universe.Snapshot) {
	p.w.Text(fmt.Sprintf(" generation %v, live cells %v", s.Generation, s.LiveCells))
}
func (p spinProgress) finish() { p.w.Stop() }

func NewConsoleOut(w io.Writer, o universe.Options) *ConsoleOut {
	return &ConsoleOut{w: w, o: o, done: make(chan struct{})}
}

//Start prints the configuration and starts the progress indicator
func (c *ConsoleOut) Start() {
	fmt.Fprintln(c.w, "Running configuration:")
	c.printHashData(map[string]interface{}{
		"Dimension":       fmt.Sprintf("%v x %v", c.o.Cols, c.o.Rows),
		"Interval":        c.o.Interval,
		"Max generations": c.o.MaxGenerations,
		"Density":         c.o.Density,
	})
	fmt.Fprintln(c.w, "\nSimulation started...")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	if c.o.MaxGenerations > 0 {
		c.progress = barProgress{pb.New(c.o.MaxGenerations).SetWriter(c.w).Start()}
	} else {
		s := spinProgress{wow.New(c.w, spin.Get(spin.Dots), " generation 0")}
		s.w.Start()
		c.progress = s
	}
}

//Done is closed when a started run has stopped
func (c *ConsoleOut) Done() <-chan struct{} {
	return c.done
}

func (c *ConsoleOut) Refresh(s universe.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.progress == nil || c.finished {
		return
	}
	c.progress.update(s)
	if s.Playing {
		c.running = true
		return
	}
	//a run stopped by its first generation is never seen playing
	if !c.running && s.Generation == 0 {
		return
	}

	c.finished = true
	c.progress.finish()
	fmt.Fprintln(c.w, aurora.Green("\nFinished:"))
	c.printHashData(map[string]interface{}{
		"Generations": s.Generation,
		"Live cells":  s.LiveCells,
		"Total time":  time.Since(c.startTime).Round(time.Millisecond),
	})
	close(c.done)
}

func (c *ConsoleOut) printHashData(d map[string]interface{}) {
	propNames := make([]string, 0, len(d))
	for k := range d {
		propNames = append(propNames, k)
	}
	sort.Strings(propNames)
	for _, propName := range propNames {
		fmt.Fprintf(c.w, "  %s: %v\n", propName, d[propName])
	}
}
