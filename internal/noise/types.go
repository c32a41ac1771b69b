package noise

import (
	"github.com/wrenlabs/affect-engine/internal/expression"
)

// #region config

// Config holds the tuning parameters of the motor noise model.
type Config struct {
	// CorrelationFactor pulls each channel's amplitude toward its group
	// maximum: new = old + (groupMax - old) * factor.
	CorrelationFactor float64 `yaml:"correlation_factor"`
	// Sensitivities scales the base noise per channel. Channels absent from
	// the map fall back to DefaultSensitivity.
	Sensitivities map[string]float64 `yaml:"sensitivities"`
	// Seed seeds the jitter source; 0 means seed from the clock.
	Seed int64 `yaml:"seed"`
}

// DefaultSensitivity applies to channels without an explicit entry.
const DefaultSensitivity = 0.5

// DefaultConfig returns the standard noise tuning.
func DefaultConfig() Config {
	return Config{
		CorrelationFactor: 0.15,
		Sensitivities: map[string]float64{
			string(expression.ChannelEars):      0.9,
			string(expression.ChannelTail):      1.0,
			string(expression.ChannelVoice):     0.7,
			string(expression.ChannelPosture):   0.6,
			string(expression.ChannelGrip):      0.8,
			string(expression.ChannelBreathing): 0.5,
			string(expression.ChannelEyes):      0.85,
			string(expression.ChannelProximity): 0.4,
		},
	}
}

// #endregion config

// #region groups

// correlationGroups partitions channels into sets that tremble together.
var correlationGroups = [][]expression.Channel{
	{expression.ChannelVoice, expression.ChannelBreathing},
	{expression.ChannelPosture, expression.ChannelGrip, expression.ChannelProximity},
	{expression.ChannelEars, expression.ChannelEyes, expression.ChannelTail},
}

// #endregion groups

// #region result

// Result is the involuntary interference derived from one snapshot.
type Result struct {
	Amplitudes map[expression.Channel]float64 // per-channel noise amplitude
	Jitter     map[expression.Channel]float64 // sampled Gaussian jitter, scaled by amplitude
	Overall    float64                        // intensity * (1 - coherence)
	Intensity  float64                        // input copy
	Coherence  float64                        // input copy
	ZeroNoise  bool
}

// #endregion result
