package gate

// #region veto-type
// VetoType enumerates hard veto categories for input admission.
type VetoType string

const (
	VetoUnknownDimension VetoType = "unknown_dimension"
	VetoNonFinite        VetoType = "non_finite_delta"
	VetoMagnitude        VetoType = "delta_magnitude"
	VetoEmpty            VetoType = "empty_input"
	VetoSource           VetoType = "bad_source"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds limits for input admission.
type GateConfig struct {
	MaxDeltaAbs     float64 `yaml:"max_delta_abs"`     // per-dimension cap on |target delta|
	MaxSourceLength int     `yaml:"max_source_length"` // cap on the provenance label
}

// DefaultGateConfig returns sensible admission limits.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MaxDeltaAbs:     2.0,
		MaxSourceLength: 128,
	}
}

// #endregion gate-config

// #region gate-decision
// Decision is the output of the gate evaluation.
type Decision struct {
	Action      string // "accept" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
}

// #endregion gate-decision
