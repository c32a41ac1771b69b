package replay

import (
	"encoding/json"
	"fmt"
	"os"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a scenario replay.
type Fixture struct {
	Description string        `json:"description"`
	Seed        int64         `json:"seed"`         // noise model seed (deterministic jitter)
	DtMs        int           `json:"dt_ms"`        // simulated dt per step
	Ticks       uint64        `json:"ticks"`        // total steps to run
	SampleEvery uint64        `json:"sample_every"` // record every Nth tick
	Steps       []Step        `json:"steps"`
	Expect      []Expectation `json:"expect"`
}

// Step schedules inputs at a given tick.
type Step struct {
	AtTick       uint64      `json:"at_tick"`
	PartnerInput bool        `json:"partner_input"`
	Inputs       []StepInput `json:"inputs"`
}

// StepInput is a JSON-friendly affect input.
type StepInput struct {
	Source string             `json:"source"`
	Deltas map[string]float64 `json:"deltas"`
}

// Expectation is a bound on one dimension's final value.
type Expectation struct {
	Dimension string  `json:"dimension"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

// #endregion fixture-types

// #region load-save

// LoadFixture reads and parses a fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if f.Ticks == 0 {
		return Fixture{}, fmt.Errorf("fixture %s: ticks must be > 0", path)
	}
	if f.DtMs <= 0 {
		f.DtMs = 100
	}
	if f.SampleEvery == 0 {
		f.SampleEvery = 10
	}
	return f, nil
}

// WriteSample writes a small demonstration fixture, useful as a template.
func WriteSample(path string) error {
	f := Fixture{
		Description: "sentiment spike then decay back toward baseline",
		Seed:        42,
		DtMs:        100,
		Ticks:       600,
		SampleEvery: 50,
		Steps: []Step{
			{
				AtTick:       10,
				PartnerInput: true,
				Inputs: []StepInput{
					{Source: "conversation:sentiment", Deltas: map[string]float64{
						"valence": 0.8, "arousal": 0.3,
					}},
				},
			},
			{
				AtTick: 300,
				Inputs: []StepInput{
					{Source: "goal:blocked", Deltas: map[string]float64{
						"frustration": 0.4, "valence": -0.2,
					}},
				},
			},
		},
		Expect: []Expectation{
			{Dimension: "valence", Min: -1, Max: 1},
			{Dimension: "frustration", Min: 0, Max: 1},
		},
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// #endregion load-save
