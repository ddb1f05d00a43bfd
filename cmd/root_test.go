package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/signal-sim/signal-sim/sim"
	"github.com/signal-sim/signal-sim/sim/anneal"
	"github.com/signal-sim/signal-sim/sim/trace"
)

func TestValidateRunFlags(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		speed    float64
		wantErr  string
	}{
		{"defaults", 0, 1, ""},
		{"bounded fast run", 120, 8, ""},
		{"zero speed", 60, 0, "--speed"},
		{"negative speed", 0, -1, "--speed"},
		{"negative duration", -5, 1, "--duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRunFlags(tt.duration, tt.speed)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRunLoop_StopsAtDuration(t *testing.T) {
	w, err := sim.NewWorld(sim.DefaultWorldConfig(), 3)
	require.NoError(t, err)
	ctrl, err := anneal.NewController(w, constEvaluator{}, anneal.DefaultConfig(), 3)
	require.NoError(t, err)

	runLoop(ctrl, 2, 1, false)

	assert.GreaterOrEqual(t, w.Clock, 2.0)
	assert.Less(t, w.Clock, 2.0+2*tickSeconds)
	assert.False(t, ctrl.Done())
}

func TestRunLoop_StopsWhenSearchIsDone(t *testing.T) {
	w, err := sim.NewWorld(sim.DefaultWorldConfig(), 3)
	require.NoError(t, err)
	cfg := anneal.DefaultConfig()
	cfg.TemperatureStart = 2
	cfg.TemperatureMin = 1
	cfg.CoolingRate = 0.5
	cfg.Interval = 0
	ctrl, err := anneal.NewController(w, constEvaluator{}, cfg, 3)
	require.NoError(t, err)

	runLoop(ctrl, 0, 1, false)

	assert.True(t, ctrl.Done())
	assert.Equal(t, anneal.Done, ctrl.Status())
}

func TestPrintRunReport(t *testing.T) {
	w, err := sim.NewWorld(sim.DefaultWorldConfig(), 3)
	require.NoError(t, err)
	ctrl, err := anneal.NewController(w, constEvaluator{}, anneal.DefaultConfig(), 3)
	require.NoError(t, err)
	runLoop(ctrl, 1, 1, false)

	var buf bytes.Buffer
	printRunReport(&buf, ctrl, time.Second)
	out := buf.String()

	assert.Contains(t, out, "Simulation Report")
	assert.Contains(t, out, "Search Trace")
	assert.Contains(t, out, "(2,2) NS=5s EW=5s")
}

func TestWriteTrace_RoundTripsRecords(t *testing.T) {
	st := trace.NewSearchTrace()
	st.Record(trace.EvaluationRecord{JobID: "a", Kind: trace.OutcomeInitialized, Fitness: 4, VehiclesProcessed: 3})
	st.Record(trace.EvaluationRecord{JobID: "b", Kind: trace.OutcomeGridlock})
	path := filepath.Join(t.TempDir(), "trace.yaml")

	require.NoError(t, writeTrace(path, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kind: gridlock")

	var back trace.SearchTrace
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, st.Records, back.Records)
}

func TestPrintEvalResult_FlagsGridlock(t *testing.T) {
	var buf bytes.Buffer
	printEvalResult(&buf, anneal.DefaultEvalOptions(), anneal.EvalResult{Fitness: 12})
	assert.Contains(t, buf.String(), "Gridlock")
}
