package orchestrator

import (
	"fmt"

	"github.com/wrenlabs/affect-engine/internal/affect"
)

// #region health

// Health runs lightweight invariant checks over the live pipeline:
// every dimension inside its hard range, overall intensity bounded, and
// the recent chain segment intact. Violations are diagnostics, not errors;
// the caller decides the consequence.
func (o *Orchestrator) Health() HealthReport {
	snap := o.engine.Snapshot()

	var metrics []HealthMetric
	passed := true

	for i, d := range affect.Dimensions {
		v := snap.Vec[i]
		ok := v >= d.Min && v <= d.Max
		metrics = append(metrics, HealthMetric{
			Name:  fmt.Sprintf("dim_%s_in_range", d.Key),
			Value: v,
			Pass:  ok,
		})
		if !ok {
			passed = false
		}
	}

	intensity := snap.Intensity()
	intensityOK := intensity >= 0 && intensity <= 1
	metrics = append(metrics, HealthMetric{
		Name:  "intensity_bounded",
		Value: intensity,
		Pass:  intensityOK,
	})
	if !intensityOK {
		passed = false
	}

	integrity := o.log.VerifyRecentIntegrity()
	integrityVal := 0.0
	if integrity {
		integrityVal = 1.0
	}
	metrics = append(metrics, HealthMetric{
		Name:  "chain_integrity",
		Value: integrityVal,
		Pass:  integrity,
	})
	if !integrity {
		passed = false
	}

	return HealthReport{Passed: passed, Metrics: metrics}
}

// #endregion health
