package engine

import (
	"time"

	"github.com/wrenlabs/affect-engine/internal/affect"
	"github.com/wrenlabs/affect-engine/internal/gate"
)

// #region config

// Config holds the engine's tuning parameters. The defaults are starting
// points, not derived truths; qualitative behavior is what matters.
type Config struct {
	TickInterval time.Duration // simulation period
	ReferenceDt  time.Duration // rate normalization constant
	PersistEvery uint64        // persist state every N ticks

	// RecentSourceCapacity bounds the input-source attribution ring.
	RecentSourceCapacity int

	// Temporal longing: drift toward longing during prolonged absence of a
	// bonded counterpart's input.
	LongingOnset       time.Duration // absence before drift starts
	LongingWindow      time.Duration // ramp from 0 to full factor
	LongingAttachRate  float64       // attachment gain per second at full factor
	LongingValenceRate float64       // valence loss per second at full factor

	Thresholds affect.Thresholds
	Gate       gate.GateConfig
}

// DefaultConfig returns the standard engine tuning.
func DefaultConfig() Config {
	return Config{
		TickInterval:         100 * time.Millisecond,
		ReferenceDt:          time.Second,
		PersistEvery:         100,
		RecentSourceCapacity: 32,
		LongingOnset:         5 * time.Minute,
		LongingWindow:        time.Hour,
		LongingAttachRate:    0.020,
		LongingValenceRate:   0.008,
		Thresholds:           affect.DefaultThresholds(),
		Gate:                 gate.DefaultGateConfig(),
	}
}

// #endregion config

// #region listener

// Listener is invoked once per tick, after the tick's mutation is complete,
// with the post-tick snapshot and the running tick counter. Listeners run
// outside the state lock; a panicking listener is logged and does not block
// the others.
type Listener func(snap affect.Snapshot, tick uint64)

// #endregion listener

// #region persisted-state

// persistedState is the vault record for the live vector and its temporal
// metadata. Chain-log state is persisted separately by the chainlog package.
type persistedState struct {
	Vector           [affect.NumDimensions]float64 `json:"vector"`
	TickCount        uint64                        `json:"tick_count"`
	LastPartnerInput time.Time                     `json:"last_partner_input"`
}

// #endregion persisted-state
