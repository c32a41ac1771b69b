// Package expression maps an affect snapshot to discrete expression
// commands. Drive is a pure function: each channel is an ordered rule table
// evaluated top to bottom, first match wins. Survival and threat rules sit
// above mood-quadrant rules; the ordering is part of the contract. Every
// table ends with a catch-all so the function is total.
package expression

import (
	"github.com/wrenlabs/affect-engine/internal/affect"
)

// #region rule-table

// rule pairs a predicate with the channel value it selects.
type rule struct {
	when  func(affect.Snapshot) bool
	value string
}

func always(affect.Snapshot) bool { return true }

// evaluate walks the table and returns the first matching value.
func evaluate(table []rule, s affect.Snapshot) string {
	for _, r := range table {
		if r.when(s) {
			return r.value
		}
	}
	// Unreachable when the table ends with an always rule.
	return ""
}

// #endregion rule-table

// #region tables

var earRules = []rule{
	{func(s affect.Snapshot) bool { return s.Value(affect.Threat) > 0.7 }, "flat"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Vulnerability) > 0.7 }, "tucked"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Curiosity) > 0.6 && s.Value(affect.Arousal) > 0.4
	}, "perked"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Valence) >= 0 && s.Value(affect.Arousal) >= 0.5
	}, "up"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Valence) >= 0 }, "relaxed"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Arousal) >= 0.5 }, "back"},
	{always, "drooped"},
}

var tailRules = []rule{
	{func(s affect.Snapshot) bool { return s.Value(affect.Threat) > 0.7 }, "still-low"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Frustration) > 0.6 }, "lashing"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Valence) > 0.4 && s.Value(affect.Arousal) > 0.5
	}, "wagging"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Valence) > 0.2 }, "swaying"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Valence) < -0.3 }, "tucked"},
	{always, "neutral"},
}

var voiceRules = []rule{
	{func(s affect.Snapshot) bool { return s.Value(affect.Threat) > 0.7 }, "alert"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Frustration) > 0.6 }, "clipped"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Valence) > 0.4 && s.Value(affect.Arousal) < 0.4
	}, "warm"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Valence) > 0.4 }, "bright"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Valence) < -0.4 }, "subdued"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Certainty) < 0.3 }, "hesitant"},
	{always, "even"},
}

var postureRules = []rule{
	{func(s affect.Snapshot) bool { return s.Value(affect.Threat) > 0.7 }, "crouched"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Vulnerability) > 0.6 }, "guarded"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Arousal) > 0.7 }, "poised"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Satiation) > 0.7 && s.Value(affect.Arousal) < 0.4
	}, "sprawled"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Valence) >= 0 }, "upright"},
	{always, "slumped"},
}

var gripRules = []rule{
	{func(s affect.Snapshot) bool { return s.Value(affect.Threat) > 0.7 }, "clenched"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Frustration) > 0.6 }, "tight"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Attachment) > 0.7 && s.Value(affect.Valence) > 0.2
	}, "clinging"},
	{always, "loose"},
}

var breathingRules = []rule{
	{func(s affect.Snapshot) bool { return s.Value(affect.Threat) > 0.7 }, "rapid"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Arousal) > 0.7 }, "quick"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Arousal) < 0.25 && s.Value(affect.Valence) >= 0
	}, "slow"},
	{always, "steady"},
}

var eyeRules = []rule{
	{func(s affect.Snapshot) bool { return s.Value(affect.Threat) > 0.7 }, "wide"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Novelty) > 0.6 }, "scanning"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Attachment) > 0.7 && s.Value(affect.Valence) > 0.3
	}, "soft"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Satiation) > 0.7 && s.Value(affect.Arousal) < 0.3
	}, "half-closed"},
	{always, "attentive"},
}

var proximityRules = []rule{
	{func(s affect.Snapshot) bool { return s.Value(affect.Threat) > 0.7 }, "retreating"},
	{func(s affect.Snapshot) bool {
		return s.Value(affect.Attachment) > 0.7 && s.Value(affect.Vulnerability) < 0.5
	}, "close"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Valence) < -0.4 }, "withdrawn"},
	{func(s affect.Snapshot) bool { return s.Value(affect.Curiosity) > 0.6 }, "approaching"},
	{always, "nearby"},
}

// #endregion tables

// #region drive

// Drive computes the full expression output for one snapshot.
func Drive(s affect.Snapshot) Output {
	return Output{
		Ears:      evaluate(earRules, s),
		Tail:      evaluate(tailRules, s),
		Voice:     evaluate(voiceRules, s),
		Posture:   evaluate(postureRules, s),
		Grip:      evaluate(gripRules, s),
		Breathing: evaluate(breathingRules, s),
		Eyes:      evaluate(eyeRules, s),
		Proximity: evaluate(proximityRules, s),
		// Startle reflex: sudden high threat under high arousal.
		Poof: s.Value(affect.Threat) > 0.85 && s.Value(affect.Arousal) > 0.8,
	}
}

// #endregion drive
