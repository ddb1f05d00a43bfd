package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/signal-sim/signal-sim/sim"
	"github.com/signal-sim/signal-sim/sim/anneal"
)

// SimConfig is the layout of a --config-file. Sections left out keep their
// defaults; fitness weights live under world.fitness.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type SimConfig struct {
	World      sim.WorldConfig    `yaml:"world"`
	Annealing  anneal.Config      `yaml:"annealing"`
	Evaluation anneal.EvalOptions `yaml:"evaluation"`
}

// DefaultSimConfig returns the configuration used when no file is given.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		World:      sim.DefaultWorldConfig(),
		Annealing:  anneal.DefaultConfig(),
		Evaluation: anneal.DefaultEvalOptions(),
	}
}

// Validate checks every section.
func (c SimConfig) Validate() error {
	if err := c.World.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if err := c.Annealing.Validate(); err != nil {
		return fmt.Errorf("annealing: %w", err)
	}
	if err := c.Evaluation.Validate(); err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	return nil
}

// loadSimConfig overlays the YAML file at path onto the defaults.
// An empty path yields the defaults. Unknown keys are errors.
func loadSimConfig(path string) (SimConfig, error) {
	cfg := DefaultSimConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := decodeStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// signalsDoc is the layout of a --signals-file.
type signalsDoc struct {
	Signals sim.SignalConfig `yaml:"signals"`
}

// loadSignalConfig reads a row-major list of per-intersection durations and
// checks it against the grid size.
func loadSignalConfig(path string, intersections int) (sim.SignalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading signals %s: %w", path, err)
	}
	var f signalsDoc
	if err := decodeStrict(data, &f); err != nil {
		return nil, fmt.Errorf("parsing signals %s: %w", path, err)
	}
	if err := f.Signals.Validate(intersections); err != nil {
		return nil, fmt.Errorf("signals %s: %w", path, err)
	}
	return f.Signals, nil
}

// decodeStrict parses YAML with strict field checking: typos must cause errors.
// An empty document leaves out untouched.
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
