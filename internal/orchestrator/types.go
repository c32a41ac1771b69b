package orchestrator

// #region config

// Config holds orchestrator tuning.
type Config struct {
	// LogEvery forwards every Nth tick callback to the chain log
	// (default 50 ≈ 5 s at a 100 ms tick).
	LogEvery uint64 `yaml:"log_every"`
}

// DefaultConfig returns the standard orchestrator tuning.
func DefaultConfig() Config {
	return Config{LogEvery: 50}
}

// #endregion config

// #region stats

// Stats is the compact status surface for trust/audit consumers.
type Stats struct {
	TickCount     uint64 `json:"tick_count"`
	EntryCount    uint64 `json:"entry_count"`
	ChainHeadHash string `json:"chain_head_hash"`
	IntegrityOK   bool   `json:"integrity_ok"`
}

// #endregion stats

// #region health

// HealthMetric is one named pass/fail check with its measured value.
type HealthMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// HealthReport aggregates all checks.
type HealthReport struct {
	Passed  bool           `json:"passed"`
	Metrics []HealthMetric `json:"metrics"`
}

// #endregion health
