package chainlog

import (
	"time"

	"github.com/wrenlabs/affect-engine/internal/affect"
)

// #region entry

// Entry is one persisted sample of the affect pipeline. Entries are
// append-only: once written they are never mutated or deleted, and each
// entry's hash chains to its predecessor's.
type Entry struct {
	Key          string                         `json:"key"` // vault key suffix, monotonic ULID
	Timestamp    time.Time                      `json:"timestamp"`
	Vector       [affect.NumDimensions]float64  `json:"vector"`
	InputSources []string                       `json:"input_sources"`
	Expression   map[string]string              `json:"expression"`
	NoiseScalar  float64                        `json:"noise_scalar"`
	ChannelNoise map[string]float64             `json:"channel_noise"`
	PrevHash     string                         `json:"prev_hash"`
	Hash         string                         `json:"hash"`
	Immutable    bool                           `json:"immutable"` // always true
}

// #endregion entry

// #region chain-head

// chainHead is the single mutable piece of chain metadata.
type chainHead struct {
	LastHash   string `json:"last_hash"`
	EntryCount uint64 `json:"entry_count"`
}

// #endregion chain-head

// #region config

// Config holds chain-log tuning.
type Config struct {
	// RecentCapacity bounds the in-memory ring used for fast verification
	// without full-history reads.
	RecentCapacity int `yaml:"recent_capacity"`
}

// DefaultConfig returns the standard chain-log tuning.
func DefaultConfig() Config {
	return Config{RecentCapacity: 64}
}

// #endregion config
