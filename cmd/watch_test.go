package cmd

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signal-sim/signal-sim/sim"
	"github.com/signal-sim/signal-sim/sim/anneal"
)

// recordingCanvas keeps the last rune drawn at each cell.
type recordingCanvas struct {
	w, h  int
	cells map[[2]int]rune
}

func newRecordingCanvas(w, h int) *recordingCanvas {
	return &recordingCanvas{w: w, h: h, cells: make(map[[2]int]rune)}
}

func (r *recordingCanvas) SetContent(x, y int, mainc rune, _ []rune, _ tcell.Style) {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return
	}
	r.cells[[2]int{x, y}] = mainc
}

func (r *recordingCanvas) Size() (int, int) { return r.w, r.h }

func (r *recordingCanvas) row(y int) string {
	var b strings.Builder
	for x := 0; x < r.w; x++ {
		if c, ok := r.cells[[2]int{x, y}]; ok {
			b.WriteRune(c)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

type constEvaluator struct{}

func (constEvaluator) Evaluate(sim.SignalConfig, float64, int64) (anneal.EvalResult, error) {
	return anneal.EvalResult{Fitness: 3, VehiclesProcessed: 4, ThroughputPerMinute: 24}, nil
}

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	w, err := sim.NewWorld(sim.DefaultWorldConfig(), 1)
	require.NoError(t, err)
	ctrl, err := anneal.NewController(w, constEvaluator{}, anneal.DefaultConfig(), 1)
	require.NoError(t, err)
	return NewViewer(ctrl, false)
}

func TestViewer_HandleKey(t *testing.T) {
	v := newTestViewer(t)

	assert.True(t, v.HandleKey(tcell.KeyRune, '+'))
	assert.Equal(t, 2.0, v.speed)
	assert.True(t, v.HandleKey(tcell.KeyRune, '-'))
	assert.True(t, v.HandleKey(tcell.KeyRune, '-'))
	assert.Equal(t, 0.5, v.speed)
	for range 10 {
		v.HandleKey(tcell.KeyRune, '-')
	}
	assert.Equal(t, minSpeed, v.speed)

	assert.True(t, v.HandleKey(tcell.KeyRune, ' '))
	assert.True(t, v.paused)
	assert.True(t, v.HandleKey(tcell.KeyRune, 'h'))
	assert.True(t, v.heatmap)

	assert.False(t, v.HandleKey(tcell.KeyRune, 'q'))
	assert.False(t, v.HandleKey(tcell.KeyEscape, 0))
}

func TestViewer_PausedTickLeavesWorldAlone(t *testing.T) {
	v := newTestViewer(t)
	v.HandleKey(tcell.KeyRune, ' ')
	for range 5 {
		v.Tick()
	}
	assert.Equal(t, 0.0, v.ctrl.World().Clock)

	v.HandleKey(tcell.KeyRune, ' ')
	v.Tick()
	assert.InDelta(t, tickSeconds, v.ctrl.World().Clock, 1e-12)
}

func TestViewer_DrawPlacesIntersectionsAndSidebar(t *testing.T) {
	v := newTestViewer(t)
	c := newRecordingCanvas(80+sidebarWidth, 40)

	v.Draw(c, v.ctrl.Frame())

	// 800x800 world on an 80x40 map: the first intersection (250, 250) lands on (25, 12).
	assert.Equal(t, '║', c.cells[[2]int{25, 12}], "intersections start in NS")
	assert.Equal(t, '─', c.cells[[2]int{0, 12}])
	assert.Equal(t, '│', c.cells[[2]int{25, 0}])
	assert.Contains(t, c.row(0), "SIGNAL ANNEALING")
	assert.Contains(t, c.row(2), "evaluating")
	assert.Contains(t, c.row(6), "best      -")
}

func TestViewer_DrawOnSimulationScreen(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(100, 30)

	v := newTestViewer(t)
	v.HandleKey(tcell.KeyRune, 'h')
	for range 120 {
		v.Tick()
	}
	screen.Clear()
	v.Draw(screen, v.ctrl.Frame())
	screen.Show()

	w, h := screen.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 30, h)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", sparkline(nil, 10))
	assert.Equal(t, "▁▁", sparkline([]float64{4, 4}, 10))
	assert.Equal(t, "▁█", sparkline([]float64{1, 2}, 10))
	assert.Equal(t, "█▁", sparkline([]float64{9, 5, 1}, 2))
}
