package view

import (
	"bytes"
	"errors"
	"fmt"
	"lifegrid/src/universe"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"
)

type keyBindings struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

//ConsoleUI is the interactive terminal host, implements universe.Viewer
type ConsoleUI struct {
	u universe.Universe
	g *gocui.Gui
	k []keyBindings

	mu sync.Mutex
	s  universe.Snapshot //last refreshed state

	liveFiller string
	deadFiller string
}

func NewConsoleUI(u universe.Universe) (*ConsoleUI, error) {
	t := ConsoleUI{
		u:          u,
		liveFiller: aurora.Green("█").String(),
		deadFiller: "░",
	}

	var err error
	t.g, err = gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	t.g.Mouse = true

	t.k = []keyBindings{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{gocui.KeySpace, "SPACE", "Play/Pause", t.cmdPlayPause, ""},
		{'p', "P", "Play/Pause", t.cmdPlayPause, ""},
		{'n', "N", "Next step", t.cmdNextRound, ""},
		{'w', "W", "Seed", t.cmdSeed, ""},
		{'c', "C", "Clear", t.cmdClear, ""},
		{gocui.MouseLeft, "MOUSE", "Toggle the cell", t.cmdMouseClick, "grid"},
	}
	for i, sp := range universe.SpeedPresets {
		key := rune('1' + i)
		t.k = append(t.k, keyBindings{key, string(key), sp.Name, t.cmdSpeed(sp.Interval), ""})
	}
	t.g.SetManagerFunc(t.layout)

	if err := t.initKeyBindings(t.k); err != nil {
		t.g.Close()
		return nil, err
	}
	return &t, nil
}

func (t *ConsoleUI) initKeyBindings(k []keyBindings) error {
	for _, kb := range k {
		h := kb.handler
		if err := t.g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(gui *gocui.Gui, view *gocui.View) error { return h(view) }); err != nil {
			return err
		}
	}
	return nil
}

//Start runs the terminal main loop until the user quits
func (t *ConsoleUI) Start() {
	defer t.g.Close()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
}

//Refresh stores the state and schedules a redraw, it's safe to call from any goroutine
func (t *ConsoleUI) Refresh(s universe.Snapshot) {
	t.mu.Lock()
	t.s = s
	t.mu.Unlock()
	t.g.Update(func(g *gocui.Gui) error {
		t.render(g)
		return nil
	})
}

func (t *ConsoleUI) snapshot() universe.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s
}

func (t *ConsoleUI) render(g *gocui.Gui) {
	s := t.snapshot()
	if v, err := g.View("grid"); err == nil {
		t.renderField(v, s.Grid)
	}
	if v, err := g.View("configuration"); err == nil {
		t.renderConfiguration(v, s)
	}
	if v, err := g.View("status"); err == nil {
		t.renderStatus(v, s)
	}
}

func (t *ConsoleUI) renderField(v *gocui.View, grid universe.Grid) {
	//the entire field is redrawing at once
	v.Clear()

	crop := false
	maxW, maxH := v.Size()
	if grid.Cols > maxW || grid.Rows > maxH {
		crop = true
	}

	var b bytes.Buffer
	for i, row := range grid.Cells {
		//discard the data outside the view area
		if i >= maxH {
			break
		}
		if i != 0 {
			b.WriteByte('\n')
		}
		if crop && i == (maxH-1) {
			b.WriteString(aurora.Red("The grid is larger than the viewing area").String())
			break
		}
		for j, c := range row {
			if j >= maxW {
				break
			}
			if c == universe.Alive {
				b.WriteString(t.liveFiller)
			} else {
				b.WriteString(t.deadFiller)
			}
		}
	}
	_, _ = fmt.Fprint(v, b.String())
}

func (t *ConsoleUI) renderStatus(v *gocui.View, s universe.Snapshot) {
	v.Clear()
	_, _ = fmt.Fprintln(v, renderProp("Generation", "%v", s.Generation))
	_, _ = fmt.Fprintln(v, renderProp("Live Cells", "%v", s.LiveCells))
	_, _ = fmt.Fprintln(v, renderProp("Evaluation time", "%v", s.IterationTime.Round(time.Microsecond)))
	_, _ = fmt.Fprintln(v, renderProp("Mode", "%v", modeDescr(s.Playing)))
}

func (t *ConsoleUI) renderConfiguration(v *gocui.View, s universe.Snapshot) {
	v.Clear()
	_, _ = fmt.Fprintln(v, renderProp("Dimension", "%v x %v", s.Grid.Cols, s.Grid.Rows))
	_, _ = fmt.Fprintln(v, renderProp("Interval", "%v", s.Interval))
	_, _ = fmt.Fprintln(v, renderProp("Speed", "%v", speedName(s.Interval)))
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	leftColumnWidth := 28
	minWindowHeight := 20

	if maxY < minWindowHeight {
		if _, err := t.headerLayout(g, maxY, "Terminal height too small"); err != nil && err != gocui.ErrUnknownView {
			return err
		}
		_ = g.DeleteView("configuration")
		_ = g.DeleteView("status")
		_ = g.DeleteView("grid")
		return nil
	}
	if _, err := t.headerLayout(g, 3, "Conway's Game of Life"); err != nil && err != gocui.ErrUnknownView {
		return err
	}

	if v, err := g.SetView("configuration", 0, 3, leftColumnWidth, 3+(maxY-5-3)/2); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Configuration"
		v.Frame = true
	}

	if v, err := g.SetView("status", 0, 3+(maxY-5-3)/2+1, leftColumnWidth, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Status"
		v.Frame = true
	}

	if v, err := g.SetView("grid", leftColumnWidth+1, 3, maxX-1, maxY-5); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Title = "Grid"
		v.Frame = true
	}
	t.render(g)

	if v, err := g.SetView("help", -1, maxY-5, maxX, maxY-3); err != nil {
		if err != gocui.ErrUnknownView || v == nil {
			return err
		}
		v.Frame = false
		v.Wrap = true
		_, _ = fmt.Fprintln(v, helpLine(t.k))
	}

	return nil
}

func (t *ConsoleUI) headerLayout(g *gocui.Gui, height int, text string) (v *gocui.View, err error) {
	maxX, _ := g.Size()
	if v, err = g.SetView("header", -1, -1, maxX+1, height); err != nil {
		if err == gocui.ErrUnknownView && v != nil {
			v.Frame = false
			v.BgColor = gocui.ColorCyan
			v.FgColor = gocui.ColorBlack
		}
	}
	if v != nil {
		v.Clear()
		pad := 0
		if maxX > len(text) {
			pad = (maxX - len(text)) / 2
		}
		_, _ = fmt.Fprintln(v, strings.Repeat("\n", height/2+1)+strings.Repeat(" ", pad)+text)
	}
	return
}

func (t *ConsoleUI) cmdQuit(_ *gocui.View) error {
	return gocui.ErrQuit
}

func (t *ConsoleUI) cmdPlayPause(_ *gocui.View) error {
	return t.u.TogglePlaying()
}

func (t *ConsoleUI) cmdNextRound(_ *gocui.View) error {
	return t.u.Step()
}

func (t *ConsoleUI) cmdSeed(_ *gocui.View) error {
	return t.u.Seed()
}

func (t *ConsoleUI) cmdClear(_ *gocui.View) error {
	return t.u.Clear()
}

func (t *ConsoleUI) cmdSpeed(interval time.Duration) func(*gocui.View) error {
	return func(_ *gocui.View) error {
		return t.u.SetSpeed(interval)
	}
}

func (t *ConsoleUI) cmdMouseClick(v *gocui.View) error {
	cx, cy := v.Cursor()
	ox, oy := v.Origin()
	//clicks on the free space around the grid are ignored
	if err := t.u.ToggleCell(cy+oy, cx+ox); err != nil && !errors.Is(err, universe.ErrOutOfRange) {
		return err
	}
	return nil
}

func helpLine(k []keyBindings) string {
	b := bytes.Buffer{}
	b.WriteString("KEYBINDINGS: ")
	for i, kb := range k {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(aurora.Green(kb.name).String())
		b.WriteString(": ")
		b.WriteString(kb.descr)
	}
	return b.String()
}

func renderProp(name string, valueformat string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+valueformat, values...)
}

func modeDescr(playing bool) string {
	if playing {
		return aurora.Colorize("running", aurora.CyanFg).String()
	}
	return aurora.Colorize("paused", aurora.BlueFg).String()
}

//speedName returns the preset name of the interval
func speedName(interval time.Duration) string {
	for _, sp := range universe.SpeedPresets {
		if sp.Interval == interval {
			return sp.Name
		}
	}
	return "custom"
}
