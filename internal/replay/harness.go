// Package replay runs scripted affect scenarios deterministically through
// the real engine tick path, without timers or persistence. Useful for
// tuning the dimension table and for regression-checking dynamics changes.
package replay

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wrenlabs/affect-engine/internal/affect"
	"github.com/wrenlabs/affect-engine/internal/engine"
	"github.com/wrenlabs/affect-engine/internal/expression"
	"github.com/wrenlabs/affect-engine/internal/noise"
)

// #region result-types

// Sample records the pipeline outputs at one sampled tick.
type Sample struct {
	Tick         uint64             `json:"tick"`
	Vector       map[string]float64 `json:"vector"`
	Intensity    float64            `json:"intensity"`
	HedonicTone  float64            `json:"hedonic_tone"`
	Expression   map[string]string  `json:"expression"`
	NoiseOverall float64            `json:"noise_overall"`
	ZeroNoise    bool               `json:"zero_noise"`
}

// Result is the outcome of one fixture run.
type Result struct {
	Description string   `json:"description"`
	Samples     []Sample `json:"samples"`
	Violations  []string `json:"violations"`
	Passed      bool     `json:"passed"`
}

// #endregion result-types

// #region run

// Run executes a fixture: steps the engine synchronously with the fixture's
// fixed dt, injecting scripted inputs at their scheduled ticks, and checks
// the expectations against the final snapshot.
func Run(f Fixture, logger *zap.Logger) (Result, error) {
	cfg := engine.DefaultConfig()
	cfg.PersistEvery = 0 // no vault in replay
	eng := engine.New(cfg, nil, logger)

	nzCfg := noise.DefaultConfig()
	nzCfg.Seed = f.Seed
	model := noise.NewModel(nzCfg, cfg.Thresholds)

	// Index scheduled steps by tick.
	byTick := make(map[uint64][]Step, len(f.Steps))
	for _, s := range f.Steps {
		byTick[s.AtTick] = append(byTick[s.AtTick], s)
	}

	dt := time.Duration(f.DtMs) * time.Millisecond
	res := Result{Description: f.Description}

	var snap affect.Snapshot
	for tick := uint64(1); tick <= f.Ticks; tick++ {
		for _, s := range byTick[tick] {
			if s.PartnerInput {
				eng.RecordPartnerInput()
			}
			for _, in := range s.Inputs {
				deltas := make(map[affect.Key]float64, len(in.Deltas))
				for k, v := range in.Deltas {
					deltas[affect.Key(k)] = v
				}
				if err := eng.SubmitInput(affect.NewInput(in.Source, deltas)); err != nil {
					return Result{}, fmt.Errorf("tick %d input %q: %w", tick, in.Source, err)
				}
			}
		}

		snap = eng.Step(dt)

		if tick%f.SampleEvery == 0 || tick == f.Ticks {
			res.Samples = append(res.Samples, sampleAt(tick, snap, model))
		}
	}

	for _, ex := range f.Expect {
		v := snap.Value(affect.Key(ex.Dimension))
		if v < ex.Min || v > ex.Max {
			res.Violations = append(res.Violations,
				fmt.Sprintf("%s = %.4f outside [%.4f, %.4f]", ex.Dimension, v, ex.Min, ex.Max))
		}
	}
	res.Passed = len(res.Violations) == 0
	return res, nil
}

func sampleAt(tick uint64, snap affect.Snapshot, model *noise.Model) Sample {
	vec := make(map[string]float64, affect.NumDimensions)
	for i, d := range affect.Dimensions {
		vec[string(d.Key)] = snap.Vec[i]
	}
	nz := model.Calculate(snap)
	return Sample{
		Tick:         tick,
		Vector:       vec,
		Intensity:    snap.Intensity(),
		HedonicTone:  snap.HedonicTone(),
		Expression:   expression.Drive(snap).Commands(),
		NoiseOverall: nz.Overall,
		ZeroNoise:    nz.ZeroNoise,
	}
}

// #endregion run
