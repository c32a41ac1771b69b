// Package orchestrator wires the affect engine, expression driver, motor
// noise model, and chain log into the single façade the rest of the
// application uses. It subscribes to engine ticks, keeps last-known
// expression and noise results readable without recomputation, and samples
// the pipeline into the log on a fixed cadence.
package orchestrator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wrenlabs/affect-engine/internal/affect"
	"github.com/wrenlabs/affect-engine/internal/chainlog"
	"github.com/wrenlabs/affect-engine/internal/engine"
	"github.com/wrenlabs/affect-engine/internal/expression"
	"github.com/wrenlabs/affect-engine/internal/noise"
)

// #region orchestrator-struct

// Orchestrator owns one instance each of the engine, noise model, and log.
// The expression driver is stateless and needs no instance.
type Orchestrator struct {
	engine *engine.Engine
	noise  *noise.Model
	log    *chainlog.Log
	logger *zap.Logger
	config Config

	mu        sync.Mutex
	lastExpr  expression.Output
	lastNoise noise.Result
	haveLast  bool
	callbacks uint64

	listenerID int
}

// New creates a fully wired orchestrator.
func New(eng *engine.Engine, nz *noise.Model, log *chainlog.Log, logger *zap.Logger, config Config) *Orchestrator {
	if config.LogEvery == 0 {
		config.LogEvery = DefaultConfig().LogEvery
	}
	return &Orchestrator{
		engine: eng,
		noise:  nz,
		log:    log,
		logger: logger,
		config: config,
	}
}

// #endregion orchestrator-struct

// #region lifecycle

// Start subscribes to engine ticks and starts the engine.
func (o *Orchestrator) Start() {
	o.listenerID = o.engine.AddListener(o.onTick)
	o.engine.Start()
}

// Stop stops the engine and unsubscribes.
func (o *Orchestrator) Stop() {
	o.engine.Stop()
	o.engine.RemoveListener(o.listenerID)
}

// Engine exposes the underlying engine for callers that submit raw inputs
// or register their own listeners.
func (o *Orchestrator) Engine() *engine.Engine {
	return o.engine
}

// #endregion lifecycle

// #region tick-callback

// onTick drives the expression driver and noise model from the post-tick
// snapshot, caches the results, and forwards every Nth bundle to the log.
func (o *Orchestrator) onTick(snap affect.Snapshot, tick uint64) {
	expr := expression.Drive(snap)
	nz := o.noise.Calculate(snap)

	o.mu.Lock()
	o.lastExpr = expr
	o.lastNoise = nz
	o.haveLast = true
	o.callbacks++
	sample := o.callbacks%o.config.LogEvery == 0
	o.mu.Unlock()

	if !sample {
		return
	}
	if _, err := o.log.Append(snap, o.engine.RecentSources(), expr.Commands(), nz); err != nil {
		o.logger.Warn("log append failed", zap.Uint64("tick", tick), zap.Error(err))
	}
}

// #endregion tick-callback

// #region accessors

// LastExpression returns the most recent expression output.
func (o *Orchestrator) LastExpression() (expression.Output, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastExpr, o.haveLast
}

// LastNoise returns the most recent noise result.
func (o *Orchestrator) LastNoise() (noise.Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastNoise, o.haveLast
}

// AffectSnapshot bundles state, expression, noise, and log health into a
// plain key→value map suitable for status displays or periodic memory
// writes.
func (o *Orchestrator) AffectSnapshot() map[string]any {
	snap := o.engine.Snapshot()
	o.mu.Lock()
	expr := o.lastExpr
	nz := o.lastNoise
	o.mu.Unlock()

	dims := make(map[string]float64, affect.NumDimensions)
	for i, d := range affect.Dimensions {
		dims[string(d.Key)] = snap.Vec[i]
	}

	descriptions := noise.Describe(nz)
	noiseLabels := make(map[string]string, len(descriptions))
	for _, d := range descriptions {
		noiseLabels[string(d.Channel)] = d.Label
	}

	return map[string]any{
		"dimensions":    dims,
		"intensity":     snap.Intensity(),
		"hedonic_tone":  snap.HedonicTone(),
		"zero_noise":    nz.ZeroNoise,
		"tick":          o.engine.TickCount(),
		"expression":    expr.Commands(),
		"noise_overall": nz.Overall,
		"noise_labels":  noiseLabels,
		"log_entries":   o.log.EntryCount(),
		"log_head":      o.log.ChainHeadHash(),
		"log_intact":    o.log.VerifyRecentIntegrity(),
	}
}

// Stats returns counters, the chain head, and the integrity flag.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		TickCount:     o.engine.TickCount(),
		EntryCount:    o.log.EntryCount(),
		ChainHeadHash: o.log.ChainHeadHash(),
		IntegrityOK:   o.log.VerifyRecentIntegrity(),
	}
}

// #endregion accessors
