package gate

import (
	"fmt"
	"math"

	"github.com/wrenlabs/affect-engine/internal/affect"
)

// #region gate
// Gate evaluates whether a submitted affect input should enter the engine's
// pending queue or be rejected outright.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes over one input. First veto found is the
// headline reason; all detected vetoes are reported.
func (g *Gate) Evaluate(in affect.Input) Decision {
	var vetoes []VetoSignal

	// 1. Empty delta set carries no information
	if len(in.Deltas) == 0 {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoEmpty,
			Reason: "input carries no dimension deltas",
		})
	}

	// 2. Source label must be present and bounded
	if in.Source == "" {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoSource,
			Reason: "empty source label",
		})
	} else if len(in.Source) > g.config.MaxSourceLength {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoSource,
			Reason: fmt.Sprintf("source label length %d exceeds %d", len(in.Source), g.config.MaxSourceLength),
		})
	}

	// 3. Per-delta checks: known dimension, finite, bounded magnitude
	for key, delta := range in.Deltas {
		if affect.IndexOf(key) < 0 {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoUnknownDimension,
				Reason: fmt.Sprintf("unknown dimension %q", key),
			})
			continue
		}
		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoNonFinite,
				Reason: fmt.Sprintf("non-finite delta for %q", key),
			})
			continue
		}
		if math.Abs(delta) > g.config.MaxDeltaAbs {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoMagnitude,
				Reason: fmt.Sprintf("delta %.4f for %q exceeds cap %.4f", delta, key, g.config.MaxDeltaAbs),
			})
		}
	}

	if len(vetoes) > 0 {
		return Decision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	return Decision{Action: "accept", Reason: "passed gate"}
}

// #endregion gate
