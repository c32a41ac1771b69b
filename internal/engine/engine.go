// Package engine runs the continuous affect simulation: a fixed-period tick
// that integrates queued inputs under per-dimension inertia, applies decay
// toward baseline, and models longing during prolonged partner absence.
// Exactly one tick executes at a time; external callers only ever see deep
// snapshots taken under the same lock that guards mutation.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wrenlabs/affect-engine/internal/affect"
	"github.com/wrenlabs/affect-engine/internal/gate"
	"github.com/wrenlabs/affect-engine/internal/vault"
)

// StateKey is the vault key holding the persisted vector record.
const StateKey = "affect/state"

// #region engine-struct

// Engine owns the live affect vector.
type Engine struct {
	config Config
	vault  *vault.Vault
	logger *zap.Logger
	gate   *gate.Gate

	mu            sync.Mutex // guards everything below
	state         *affect.State
	pending       []affect.Input
	recentSources []string // bounded ring, oldest first
	tickCount     uint64
	lastPartner   time.Time

	lmu          sync.Mutex // guards the listener set
	listeners    map[int]Listener
	nextListener int

	runMu   sync.Mutex // guards start/stop transitions
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates an engine resting at baseline. vault may be nil (no
// persistence, used by the replay harness and tests).
func New(config Config, v *vault.Vault, logger *zap.Logger) *Engine {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultConfig().TickInterval
	}
	if config.ReferenceDt <= 0 {
		config.ReferenceDt = DefaultConfig().ReferenceDt
	}
	if config.RecentSourceCapacity <= 0 {
		config.RecentSourceCapacity = DefaultConfig().RecentSourceCapacity
	}
	return &Engine{
		config:      config,
		vault:       v,
		logger:      logger,
		gate:        gate.NewGate(config.Gate),
		state:       affect.NewState(),
		listeners:   make(map[int]Listener),
		lastPartner: time.Now().UTC(),
	}
}

// #endregion engine-struct

// #region lifecycle

// Start loads persisted state and begins the periodic tick. Calling Start
// on a running engine is a no-op.
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return
	}
	e.loadState()
	e.stopCh = make(chan struct{})
	e.doneCh = make(chan struct{})
	e.running = true
	go e.run(e.stopCh, e.doneCh)
	e.logger.Info("affect engine started",
		zap.Duration("tick_interval", e.config.TickInterval))
}

// Stop cancels the periodic task, waits for the in-flight tick to finish,
// and performs one final persist. Calling Stop on a stopped engine is a
// no-op and produces no duplicate persistence writes.
func (e *Engine) Stop() {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		return
	}
	close(e.stopCh)
	<-e.doneCh
	e.running = false
	e.persist()
	e.logger.Info("affect engine stopped", zap.Uint64("ticks", e.TickCount()))
}

func (e *Engine) run(stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(e.config.TickInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			e.safeTick(dt)
		}
	}
}

// safeTick guards the loop: a single failed tick must never terminate the
// periodic task.
func (e *Engine) safeTick(dt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tick panicked", zap.Any("panic", r))
		}
	}()
	e.Step(dt)
}

// #endregion lifecycle

// #region tick

// Step executes one tick with an explicit dt: integrate queued inputs,
// decay toward baseline, apply temporal patterns, then notify listeners
// outside the lock. The replay harness and the timer loop share this path.
func (e *Engine) Step(dt time.Duration) affect.Snapshot {
	dtRatio := dt.Seconds() / e.config.ReferenceDt.Seconds()

	e.mu.Lock()
	// Claim the entire backlog atomically.
	batch := e.pending
	e.pending = nil

	for _, in := range batch {
		e.applyInput(in, dtRatio)
	}
	e.applyDecay(dtRatio)
	e.applyLonging(dtRatio)

	e.tickCount++
	tick := e.tickCount
	snap := e.state.Snapshot()
	e.mu.Unlock()

	e.notify(snap, tick)

	if e.config.PersistEvery > 0 && tick%e.config.PersistEvery == 0 {
		e.persist()
	}
	return snap
}

// applyInput integrates one input. Caller holds e.mu.
func (e *Engine) applyInput(in affect.Input, dtRatio float64) {
	for key, target := range in.Deltas {
		i := affect.IndexOf(key)
		if i < 0 {
			continue // gate already rejects these; belt for raw replay inputs
		}
		d := affect.Dimensions[i]
		effective := target * (1 - d.Inertia) * dtRatio
		e.state.Vec[i] = d.Clamp(e.state.Vec[i] + effective)
	}
	e.recentSources = append(e.recentSources, in.Source)
	if len(e.recentSources) > e.config.RecentSourceCapacity {
		e.recentSources = e.recentSources[1:]
	}
}

// applyDecay pulls every dimension toward its baseline. Caller holds e.mu.
func (e *Engine) applyDecay(dtRatio float64) {
	for i, d := range affect.Dimensions {
		v := e.state.Vec[i]
		v += (d.Baseline - v) * d.DecayRate * dtRatio
		e.state.Vec[i] = d.Clamp(v)
	}
}

// applyLonging drifts attachment up and valence down once partner absence
// exceeds the onset threshold, ramping linearly over the window.
// Caller holds e.mu.
func (e *Engine) applyLonging(dtRatio float64) {
	absence := time.Since(e.lastPartner)
	if absence <= e.config.LongingOnset {
		return
	}
	factor := float64(absence-e.config.LongingOnset) / float64(e.config.LongingWindow)
	if factor > 1 {
		factor = 1
	}

	ai := affect.IndexOf(affect.Attachment)
	ad := affect.Dimensions[ai]
	e.state.Vec[ai] = ad.Clamp(e.state.Vec[ai] + e.config.LongingAttachRate*factor*dtRatio)

	vi := affect.IndexOf(affect.Valence)
	vd := affect.Dimensions[vi]
	e.state.Vec[vi] = vd.Clamp(e.state.Vec[vi] - e.config.LongingValenceRate*factor*dtRatio)
}

// #endregion tick

// #region inputs

// SubmitInput enqueues an input for the next tick. Safe for any number of
// concurrent producers; never blocks on the tick. Returns the gate's
// rejection reason when the input is vetoed.
func (e *Engine) SubmitInput(in affect.Input) error {
	decision := e.gate.Evaluate(in)
	if decision.Vetoed {
		e.logger.Debug("input rejected",
			zap.String("source", in.Source),
			zap.String("reason", decision.Reason))
		return errors.New(decision.Reason)
	}
	e.mu.Lock()
	e.pending = append(e.pending, in)
	e.mu.Unlock()
	return nil
}

// RecordPartnerInput marks the bonded counterpart as recently present,
// resetting the longing clock.
func (e *Engine) RecordPartnerInput() {
	e.mu.Lock()
	e.lastPartner = time.Now().UTC()
	e.mu.Unlock()
}

// #endregion inputs

// #region snapshots

// Snapshot returns a deep, consistent copy of the current vector.
func (e *Engine) Snapshot() affect.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Snapshot()
}

// Intensity returns the current overall magnitude.
func (e *Engine) Intensity() float64 {
	return e.Snapshot().Intensity()
}

// IsZeroNoise reports whether the current state is in the zero-noise
// condition.
func (e *Engine) IsZeroNoise() bool {
	return e.Snapshot().IsZeroNoise(e.config.Thresholds)
}

// TickCount returns the running tick counter.
func (e *Engine) TickCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickCount
}

// RecentSources returns a copy of the input-source attribution ring,
// oldest first.
func (e *Engine) RecentSources() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.recentSources...)
}

// Thresholds exposes the engine's zero-noise cutoffs for collaborators
// (noise model construction).
func (e *Engine) Thresholds() affect.Thresholds {
	return e.config.Thresholds
}

// #endregion snapshots

// #region listeners

// AddListener registers a per-tick callback and returns its handle.
func (e *Engine) AddListener(fn Listener) int {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	e.nextListener++
	id := e.nextListener
	e.listeners[id] = fn
	return id
}

// RemoveListener drops a previously registered callback.
func (e *Engine) RemoveListener(id int) {
	e.lmu.Lock()
	defer e.lmu.Unlock()
	delete(e.listeners, id)
}

// notify fans the post-tick snapshot out to all listeners. One failing
// listener must not block or skip the others.
func (e *Engine) notify(snap affect.Snapshot, tick uint64) {
	e.lmu.Lock()
	fns := make([]Listener, 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.lmu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("listener panicked", zap.Any("panic", r))
				}
			}()
			fn(snap, tick)
		}()
	}
}

// #endregion listeners

// #region persistence

// loadState restores the vector and temporal metadata from the vault.
// Any failure degrades to defaults: durability is best-effort, the live
// simulation is not.
func (e *Engine) loadState() {
	if e.vault == nil {
		return
	}
	raw, err := e.vault.Get(StateKey)
	if err != nil {
		if !errors.Is(err, vault.ErrNotFound) {
			e.logger.Warn("state load failed, starting at baseline", zap.Error(err))
		}
		return
	}
	var ps persistedState
	if err := json.Unmarshal(raw, &ps); err != nil {
		e.logger.Warn("state record corrupt, starting at baseline", zap.Error(err))
		return
	}

	e.mu.Lock()
	for i, d := range affect.Dimensions {
		e.state.Vec[i] = d.Clamp(ps.Vector[i])
	}
	e.tickCount = ps.TickCount
	if !ps.LastPartnerInput.IsZero() {
		e.lastPartner = ps.LastPartnerInput
	}
	e.mu.Unlock()
}

// persist writes the current vector and temporal metadata.
func (e *Engine) persist() {
	if e.vault == nil {
		return
	}
	e.mu.Lock()
	ps := persistedState{
		Vector:           e.state.Vec,
		TickCount:        e.tickCount,
		LastPartnerInput: e.lastPartner,
	}
	e.mu.Unlock()

	raw, err := json.Marshal(ps)
	if err != nil {
		e.logger.Warn("state marshal failed", zap.Error(err))
		return
	}
	if err := e.vault.Put(StateKey, raw); err != nil {
		e.logger.Warn("state persist failed", zap.Error(fmt.Errorf("put state: %w", err)))
	}
}

// #endregion persistence
