package main

import (
	"context"
	"lifegrid/src/universe"
	"lifegrid/src/view"
	"lifegrid/src/web"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/integrii/flaggy"
)

type EnvOptions struct {
	mode       string
	addr       string
	randomData bool
}

//hosts maps the mode name to the function running the user facing side
var hosts = map[string]func(eo *EnvOptions, u universe.Universe) error{
	"terminal": runTerminal,
	"web":      runWeb,
	"headless": runHeadless,
}

func main() {
	eo, uo := initOptions()

	u, err := universe.New(uo)
	if err != nil {
		log.Fatal(err)
	}
	defer u.Close()

	if eo.randomData {
		if err := u.Seed(); err != nil {
			log.Fatal(err)
		}
	}

	if err := hosts[eo.mode](eo, u); err != nil {
		log.Fatal(err)
	}
}

func runTerminal(_ *EnvOptions, u universe.Universe) error {
	v, err := view.NewConsoleUI(u)
	if err != nil {
		return err
	}
	u.RegisterViewer(v)
	v.Start()
	return nil
}

func runWeb(eo *EnvOptions, u universe.Universe) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return web.NewServer(u).ListenAndServe(ctx, eo.addr)
}

func runHeadless(_ *EnvOptions, u universe.Universe) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := view.NewConsoleOut(os.Stdout, u.Options())
	c.Start()
	u.RegisterViewer(c)
	if err := u.Play(); err != nil {
		return err
	}
	select {
	case <-c.Done():
	case <-ctx.Done():
		return u.Pause()
	}
	return nil
}

func initOptions() (eo *EnvOptions, uo *universe.Options) {
	o := universe.DefaultOptions
	o.MaxGenerations = 1000
	uo = &o
	eo = &EnvOptions{mode: "terminal", addr: ":8080"}

	modeNames := make([]string, 0, len(hosts))
	for k := range hosts {
		modeNames = append(modeNames, k)
	}
	sort.Strings(modeNames)

	flaggy.SetName("lifegrid")
	flaggy.SetDescription("Conway's Game of Life")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&uo.Cols, "x", "cols", "Width of the grid")
	flaggy.Int(&uo.Rows, "y", "rows", "Height of the grid")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Float64(&uo.Density, "d", "density", "Probability of a cell to be alive when seeding")
	flaggy.Int(&uo.MaxGenerations, "s", "maxGenerations", "Stop the headless simulation after maxGenerations, 0 is unlimited")
	flaggy.Int64(&uo.RandSeed, "", "seed", "Random seed, 0 seeds from the current time")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.String(&eo.mode, "m", "mode", "Host to use ["+strings.Join(modeNames, "|")+"]")
	flaggy.String(&eo.addr, "a", "addr", "Listen address of the web host")

	flaggy.Parse()

	if _, ok := hosts[eo.mode]; !ok {
		flaggy.ShowHelpAndExit("unknown mode")
	}
	if uo.Rows <= 0 || uo.Cols <= 0 {
		flaggy.ShowHelpAndExit("rows and cols must be positive")
	}
	if uo.Interval <= 0 {
		flaggy.ShowHelpAndExit("interval must be positive")
	}
	if uo.Density < 0 || uo.Density > 1 {
		flaggy.ShowHelpAndExit("density must be between 0 and 1")
	}
	if uo.MaxGenerations < 0 {
		flaggy.ShowHelpAndExit("maxGenerations must not be negative")
	}
	//the generation limit is for unattended runs only
	if eo.mode != "headless" {
		uo.MaxGenerations = 0
	}

	return
}
