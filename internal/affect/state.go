package affect

import (
	"math"
	"time"
)

// #region state

// State is the live affect vector. It is owned by exactly one engine and
// mutated only inside the engine's tick critical section; everything else
// reads through Snapshot copies.
type State struct {
	Vec [NumDimensions]float64
}

// NewState returns a state resting at every dimension's baseline.
func NewState() *State {
	s := &State{}
	for i, d := range Dimensions {
		s.Vec[i] = d.Baseline
	}
	return s
}

// Snapshot returns a deep copy of the current vector. The caller must hold
// whatever lock guards the state; Snapshot itself does no synchronization.
func (s *State) Snapshot() Snapshot {
	return Snapshot{Vec: s.Vec, TakenAt: time.Now().UTC()}
}

// #endregion state

// #region snapshot

// Snapshot is an immutable copy of the affect vector at one instant.
type Snapshot struct {
	Vec     [NumDimensions]float64
	TakenAt time.Time
}

// Value returns the snapshot value for key, or 0 for an unknown key.
func (s Snapshot) Value(key Key) float64 {
	i := IndexOf(key)
	if i < 0 {
		return 0
	}
	return s.Vec[i]
}

// Intensity is the RMS magnitude of the vector, normalized so that a
// vector saturated at 1.0 in every dimension yields 1.0.
func (s Snapshot) Intensity() float64 {
	var sumSq float64
	for _, v := range s.Vec {
		sumSq += v * v
	}
	return math.Sqrt(sumSq / NumDimensions)
}

// HedonicTone collapses the vector into a single pleasantness scalar in
// [-1, 1], dominated by valence.
func (s Snapshot) HedonicTone() float64 {
	tone := 0.7*s.Value(Valence) + 0.2*(2*s.Value(Satiation)-1) - 0.1*s.Value(Frustration)
	if tone < -1 {
		return -1
	}
	if tone > 1 {
		return 1
	}
	return tone
}

// #endregion snapshot

// #region thresholds

// Thresholds holds the cutoffs for the zero-noise condition. The specific
// values are tuning parameters, not load-bearing constants.
type Thresholds struct {
	ZeroNoiseCoherence float64 `yaml:"zero_noise_coherence"`
	ZeroNoiseIntensity float64 `yaml:"zero_noise_intensity"`
}

// DefaultThresholds returns the standard zero-noise cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ZeroNoiseCoherence: 0.85,
		ZeroNoiseIntensity: 0.75,
	}
}

// IsZeroNoise reports the high-coherence, high-intensity condition under
// which all involuntary motor interference is exactly zero.
func (s Snapshot) IsZeroNoise(th Thresholds) bool {
	return s.Value(Coherence) >= th.ZeroNoiseCoherence && s.Intensity() >= th.ZeroNoiseIntensity
}

// #endregion thresholds
