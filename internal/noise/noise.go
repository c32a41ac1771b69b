// Package noise derives involuntary motor interference from the affect
// state. Amplitude scales with intensity and inverse coherence; correlated
// channel groups share tremor. The zero-noise state is an exact
// short-circuit, not a numerically small result.
package noise

import (
	"math/rand"
	"time"

	"github.com/wrenlabs/affect-engine/internal/affect"
	"github.com/wrenlabs/affect-engine/internal/expression"
)

// #region model

// Model samples per-channel noise. It is stateful only through its jitter
// source; the amplitude math is deterministic in the snapshot.
type Model struct {
	config     Config
	thresholds affect.Thresholds
	rng        *rand.Rand
}

// NewModel creates a noise model. A zero Seed seeds from the clock.
func NewModel(config Config, thresholds affect.Thresholds) *Model {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Model{
		config:     config,
		thresholds: thresholds,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// #endregion model

// #region calculate

// Calculate derives the noise result for one snapshot.
func (m *Model) Calculate(s affect.Snapshot) Result {
	intensity := s.Intensity()
	coherence := s.Value(affect.Coherence)

	if s.IsZeroNoise(m.thresholds) {
		return zeroResult(intensity, coherence)
	}

	base := intensity * (1 - coherence)

	amplitudes := make(map[expression.Channel]float64, len(expression.Channels))
	for _, ch := range expression.Channels {
		amplitudes[ch] = base * m.sensitivity(ch)
	}

	// Cross-channel correlation: within each group, pull every channel
	// toward the group maximum so tremor propagates across related systems.
	for _, group := range correlationGroups {
		groupMax := 0.0
		for _, ch := range group {
			if amplitudes[ch] > groupMax {
				groupMax = amplitudes[ch]
			}
		}
		for _, ch := range group {
			amplitudes[ch] += (groupMax - amplitudes[ch]) * m.config.CorrelationFactor
		}
	}

	jitter := make(map[expression.Channel]float64, len(expression.Channels))
	for _, ch := range expression.Channels {
		jitter[ch] = m.rng.NormFloat64() * amplitudes[ch]
	}

	return Result{
		Amplitudes: amplitudes,
		Jitter:     jitter,
		Overall:    base,
		Intensity:  intensity,
		Coherence:  coherence,
	}
}

func (m *Model) sensitivity(ch expression.Channel) float64 {
	if v, ok := m.config.Sensitivities[string(ch)]; ok {
		return v
	}
	return DefaultSensitivity
}

// zeroResult builds the exact all-zero result for the zero-noise state.
func zeroResult(intensity, coherence float64) Result {
	amplitudes := make(map[expression.Channel]float64, len(expression.Channels))
	jitter := make(map[expression.Channel]float64, len(expression.Channels))
	for _, ch := range expression.Channels {
		amplitudes[ch] = 0
		jitter[ch] = 0
	}
	return Result{
		Amplitudes: amplitudes,
		Jitter:     jitter,
		Overall:    0,
		Intensity:  intensity,
		Coherence:  coherence,
		ZeroNoise:  true,
	}
}

// #endregion calculate
