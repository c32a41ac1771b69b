package affect

import (
	"time"

	"github.com/google/uuid"
)

// #region input

// Input is one external nudge to the affect vector. Inputs are immutable
// values: the engine queues them, integrates the whole backlog on the next
// tick, and discards them.
type Input struct {
	ID        string
	Source    string // provenance label, e.g. "conversation:sentiment"
	Deltas    map[Key]float64
	CreatedAt time.Time
}

// NewInput builds an input with a fresh ID. The deltas map is copied so the
// caller cannot mutate the input after submission.
func NewInput(source string, deltas map[Key]float64) Input {
	copied := make(map[Key]float64, len(deltas))
	for k, v := range deltas {
		copied[k] = v
	}
	return Input{
		ID:        uuid.New().String(),
		Source:    source,
		Deltas:    copied,
		CreatedAt: time.Now().UTC(),
	}
}

// #endregion input
