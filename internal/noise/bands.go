package noise

import (
	"github.com/wrenlabs/affect-engine/internal/expression"
)

// #region bands

// Band is a qualitative amplitude bucket.
type Band string

const (
	BandStable Band = "stable"
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// band buckets one amplitude.
func band(amplitude float64) Band {
	switch {
	case amplitude < 0.02:
		return BandStable
	case amplitude < 0.10:
		return BandLow
	case amplitude < 0.25:
		return BandMedium
	default:
		return BandHigh
	}
}

// channelPhrases maps each channel and band to a human-readable label,
// used while no embodied actuation path exists.
var channelPhrases = map[expression.Channel]map[Band]string{
	expression.ChannelEars: {
		BandStable: "ears steady",
		BandLow:    "faint ear flicker",
		BandMedium: "ear twitching",
		BandHigh:   "ears trembling",
	},
	expression.ChannelTail: {
		BandStable: "tail steady",
		BandLow:    "tail tip quiver",
		BandMedium: "tail twitching",
		BandHigh:   "tail jerking",
	},
	expression.ChannelVoice: {
		BandStable: "voice steady",
		BandLow:    "slight vocal waver",
		BandMedium: "vocal tremor",
		BandHigh:   "voice breaking",
	},
	expression.ChannelPosture: {
		BandStable: "posture steady",
		BandLow:    "slight sway",
		BandMedium: "unsteady stance",
		BandHigh:   "whole-body shiver",
	},
	expression.ChannelGrip: {
		BandStable: "grip steady",
		BandLow:    "fingers flexing",
		BandMedium: "grip wavering",
		BandHigh:   "hands shaking",
	},
	expression.ChannelBreathing: {
		BandStable: "breathing even",
		BandLow:    "breath catching",
		BandMedium: "uneven breathing",
		BandHigh:   "ragged breathing",
	},
	expression.ChannelEyes: {
		BandStable: "gaze steady",
		BandLow:    "occasional blink",
		BandMedium: "darting glances",
		BandHigh:   "eyes flickering",
	},
	expression.ChannelProximity: {
		BandStable: "holding position",
		BandLow:    "slight drift",
		BandMedium: "restless shifting",
		BandHigh:   "pacing",
	},
}

// #endregion bands

// #region describe

// Description is the qualitative rendering of one channel's noise.
type Description struct {
	Channel   expression.Channel
	Band      Band
	Label     string
	Amplitude float64
}

// Describe buckets every channel of a result into qualitative bands in
// canonical channel order.
func Describe(r Result) []Description {
	out := make([]Description, 0, len(expression.Channels))
	for _, ch := range expression.Channels {
		amp := r.Amplitudes[ch]
		b := band(amp)
		out = append(out, Description{
			Channel:   ch,
			Band:      b,
			Label:     channelPhrases[ch][b],
			Amplitude: amp,
		})
	}
	return out
}

// #endregion describe
