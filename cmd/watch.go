package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/signal-sim/signal-sim/sim"
	"github.com/signal-sim/signal-sim/sim/anneal"
)

const (
	sidebarWidth = 34
	maxSpeed     = 16.0
	minSpeed     = 0.25
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

var startHeatmap bool // Start the viewer with the heatmap on

// canvas is the part of tcell.Screen the viewer draws on.
type canvas interface {
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Size() (width, height int)
}

// Viewer renders frames of the live world in a terminal and maps keys onto
// speed, pause and heatmap controls. It owns no simulation state.
type Viewer struct {
	ctrl    *anneal.Controller
	speed   float64
	paused  bool
	heatmap bool
}

// NewViewer wraps a controller for display.
func NewViewer(ctrl *anneal.Controller, heatmap bool) *Viewer {
	return &Viewer{ctrl: ctrl, speed: 1, heatmap: heatmap}
}

// Tick advances the controller unless paused.
func (v *Viewer) Tick() {
	if v.paused {
		return
	}
	v.ctrl.Advance(tickSeconds, v.speed)
}

// HandleKey applies one key press. Returns false when the viewer should exit.
func (v *Viewer) HandleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case ' ':
			v.paused = !v.paused
		case '+', '=':
			v.speed = math.Min(v.speed*2, maxSpeed)
		case '-', '_':
			v.speed = math.Max(v.speed/2, minSpeed)
		case 'h':
			v.heatmap = !v.heatmap
		}
	}
	return true
}

// Draw paints one frame: the map on the left, the search panel on the right.
func (v *Viewer) Draw(c canvas, frame anneal.Frame) {
	width, height := c.Size()
	mapW := max(width-sidebarWidth, 1)
	snap := frame.World
	sx := float64(mapW) / snap.Width
	sy := float64(height) / snap.Height
	toCell := func(x, y float64) (int, int) {
		return int(x * sx), int(y * sy)
	}

	road := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for row := range snap.Rows {
		_, y := toCell(0, snap.Intersections[row*snap.Cols].Y)
		for x := 0; x < mapW; x++ {
			c.SetContent(x, y, '─', nil, road)
		}
	}
	for col := range snap.Cols {
		x, _ := toCell(snap.Intersections[col].X, 0)
		for y := 0; y < height; y++ {
			c.SetContent(x, y, '│', nil, road)
		}
	}

	for _, in := range snap.Intersections {
		x, y := toCell(in.X, in.Y)
		if v.heatmap && in.Heat > 0 {
			heat := tcell.StyleDefault.Background(heatColor(in.Heat))
			for dy := -1; dy <= 1; dy++ {
				for dx := -2; dx <= 2; dx++ {
					if dx != 0 || dy != 0 {
						c.SetContent(x+dx, y+dy, ' ', nil, heat)
					}
				}
			}
		}
		c.SetContent(x, y, phaseRune(in.Phase), nil, phaseStyle(in.Phase, in.Changed))
	}

	for _, veh := range snap.Vehicles {
		x, y := toCell(veh.X, veh.Y)
		if x < 0 || x >= mapW || y < 0 || y >= height {
			continue
		}
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		if veh.State == sim.Waiting {
			style = tcell.StyleDefault.Foreground(tcell.ColorRed)
		}
		c.SetContent(x, y, directionRune(veh.Direction), nil, style)
	}

	v.drawSidebar(c, mapW+1, frame)
}

func (v *Viewer) drawSidebar(c canvas, x0 int, frame anneal.Frame) {
	d := frame.Debug
	snap := frame.World
	label := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	text := tcell.StyleDefault

	speed := fmt.Sprintf("%.2fx", v.speed)
	if v.paused {
		speed += " (paused)"
	}
	lines := []struct {
		style tcell.Style
		s     string
	}{
		{label, "SIGNAL ANNEALING"},
		{text, fmt.Sprintf("clock     %.1fs  %s", snap.Clock, speed)},
		{text, fmt.Sprintf("status    %s", d.Status)},
		{text, fmt.Sprintf("          %s", d.Detail)},
		{text, fmt.Sprintf("temp      %.2f", d.Temperature)},
		{text, fmt.Sprintf("current   %s", formatFitness(d.CurrentFitness))},
		{text, fmt.Sprintf("best      %s", formatFitness(d.BestFitness))},
		{text, fmt.Sprintf("next eval %.1fs  horizon %.0fs", d.Countdown, d.EvalDuration)},
		{text, fmt.Sprintf("last      %.1f veh/min, %d done", d.LastThroughput, d.LastProcessed)},
		{text, fmt.Sprintf("max done  %d  evals %d", d.MaxProcessed, d.Evaluations)},
		{label, "LIVE"},
		{text, fmt.Sprintf("vehicles  %d  spawned %d", len(snap.Vehicles), snap.VehiclesSpawned)},
		{text, fmt.Sprintf("processed %d", snap.VehiclesProcessed)},
		{text, fmt.Sprintf("avg wait  %.2fs", snap.AvgWaitTime)},
		{text, fmt.Sprintf("fitness   %.2f", snap.Fitness)},
		{label, "BEST FITNESS"},
	}
	for i, l := range lines {
		drawText(c, x0, i, l.style, l.s)
	}
	drawText(c, x0, len(lines), text, sparkline(d.FitnessHistory, sidebarWidth-2))
	drawText(c, x0, len(lines)+2, label, "space pause  +/- speed  h heat  q quit")
}

func drawText(c canvas, x, y int, style tcell.Style, s string) {
	for _, r := range s {
		c.SetContent(x, y, r, nil, style)
		x++
	}
}

// sparkline renders the last width samples scaled between their extremes.
func sparkline(values []float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		out[i] = sparkRunes[idx]
	}
	return string(out)
}

func formatFitness(f float64) string {
	if math.IsInf(f, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", f)
}

func heatColor(heat float64) tcell.Color {
	level := int32(math.Min(heat/sim.MaxHeat, 1) * 255)
	return tcell.NewRGBColor(level, 0, 0)
}

func phaseRune(p sim.Phase) rune {
	switch p {
	case sim.PhaseNS:
		return '║'
	case sim.PhaseEW:
		return '═'
	default:
		return '╳'
	}
}

func phaseStyle(p sim.Phase, changed bool) tcell.Style {
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	if p == sim.PhaseAllRed {
		style = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
	if changed {
		style = style.Reverse(true)
	}
	return style
}

func directionRune(d sim.Direction) rune {
	switch d {
	case sim.North:
		return '^'
	case sim.South:
		return 'v'
	case sim.East:
		return '>'
	default:
		return '<'
	}
}

// watchCmd shows the live world and the search in the terminal
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the live simulation and the annealing search in the terminal",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := loadSimConfig(configFile)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		ctrl, err := newController(cfg, seed)
		if err != nil {
			logrus.Fatalf("unable to build simulation: %v", err)
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			logrus.Fatalf("unable to open terminal: %v", err)
		}
		if err := screen.Init(); err != nil {
			logrus.Fatalf("unable to initialise terminal: %v", err)
		}
		defer screen.Fini()

		watch(screen, NewViewer(ctrl, startHeatmap))
	},
}

// watch runs the ~60 FPS loop until the user quits.
func watch(screen tcell.Screen, v *Viewer) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !v.HandleKey(ev.Key(), ev.Rune()) {
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			v.Tick()
			screen.Clear()
			v.Draw(screen, v.ctrl.Frame())
			screen.Show()
		}
	}
}

func init() {
	watchCmd.Flags().BoolVar(&startHeatmap, "heatmap", false, "Start with the congestion heatmap shown")

	rootCmd.AddCommand(watchCmd)
}
