package engine

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/wrenlabs/affect-engine/internal/affect"
	"github.com/wrenlabs/affect-engine/internal/vault"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	return New(cfg, nil, zap.NewNop())
}

func tempVault(t *testing.T) *vault.Vault {
	t.Helper()
	dir := t.TempDir()
	v, err := vault.Open(filepath.Join(dir, "test.db"), filepath.Join(dir, "test.key"))
	if err != nil {
		t.Fatalf("vault.Open: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func approx(t *testing.T, got, want, eps float64, label string) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Fatalf("%s: got %.9f, want %.9f", label, got, want)
	}
}

func TestStepScalesDeltaByInertia(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	// Attachment: inertia 0.60, decay 0.005, baseline 0.50. A 0.5 target
	// delta over one reference interval lands 0.5 * 0.4 = 0.2, then decay
	// pulls back (0.5 - 0.7) * 0.005 = -0.001.
	in := affect.NewInput("test", map[affect.Key]float64{affect.Attachment: 0.5})
	if err := e.SubmitInput(in); err != nil {
		t.Fatalf("SubmitInput: %v", err)
	}
	snap := e.Step(time.Second)

	approx(t, snap.Value(affect.Attachment), 0.699, 1e-9, "attachment")
}

func TestStepScalesWithDt(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	in := affect.NewInput("test", map[affect.Key]float64{affect.Attachment: 0.5})
	if err := e.SubmitInput(in); err != nil {
		t.Fatalf("SubmitInput: %v", err)
	}
	// Half the reference interval: half the effective motion.
	snap := e.Step(500 * time.Millisecond)

	// 0.5 + 0.5*0.4*0.5 = 0.6, then decay (0.5-0.6)*0.005*0.5 = -0.00025.
	approx(t, snap.Value(affect.Attachment), 0.59975, 1e-9, "attachment")
}

func TestDecayConvergesToBaseline(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	e.mu.Lock()
	e.state.Vec[affect.IndexOf(affect.Novelty)] = 1.0
	e.mu.Unlock()

	// Novelty decays fast (0.120/s). After many seconds it should sit near
	// its 0.20 baseline.
	var snap affect.Snapshot
	for i := 0; i < 60; i++ {
		snap = e.Step(time.Second)
	}
	if math.Abs(snap.Value(affect.Novelty)-0.20) > 0.01 {
		t.Fatalf("novelty did not converge: %.4f", snap.Value(affect.Novelty))
	}

	// Decay must approach, never overshoot past, the baseline.
	if snap.Value(affect.Novelty) < 0.20 {
		t.Fatalf("novelty overshot its baseline: %.4f", snap.Value(affect.Novelty))
	}
}

func TestClampAtDimensionBounds(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	// Max gate delta is 2.0; valence effective motion 2.0 * 0.7 = 1.4
	// would exceed the [-1, 1] range without clamping.
	in := affect.NewInput("test", map[affect.Key]float64{affect.Valence: 2.0})
	if err := e.SubmitInput(in); err != nil {
		t.Fatalf("SubmitInput: %v", err)
	}
	snap := e.Step(time.Second)

	if snap.Value(affect.Valence) > 1 {
		t.Fatalf("valence exceeded its ceiling: %.4f", snap.Value(affect.Valence))
	}
}

func TestGateVetoRejectsSubmission(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	in := affect.NewInput("test", map[affect.Key]float64{"dread": 0.5})
	if err := e.SubmitInput(in); err == nil {
		t.Fatal("expected gate rejection for unknown dimension")
	}

	e.mu.Lock()
	pending := len(e.pending)
	e.mu.Unlock()
	if pending != 0 {
		t.Fatalf("vetoed input reached the queue: %d pending", pending)
	}
}

func TestStepDrainsBacklogAtomically(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	for i := 0; i < 3; i++ {
		in := affect.NewInput("test", map[affect.Key]float64{affect.Arousal: 0.1})
		if err := e.SubmitInput(in); err != nil {
			t.Fatalf("SubmitInput: %v", err)
		}
	}
	e.Step(time.Second)

	e.mu.Lock()
	pending := len(e.pending)
	e.mu.Unlock()
	if pending != 0 {
		t.Fatalf("backlog not drained: %d pending", pending)
	}
	if got := len(e.RecentSources()); got != 3 {
		t.Fatalf("expected 3 attributed sources, got %d", got)
	}
}

func TestRecentSourcesRing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RecentSourceCapacity = 2
	e := testEngine(t, cfg)

	for _, src := range []string{"a", "b", "c"} {
		in := affect.NewInput(src, map[affect.Key]float64{affect.Arousal: 0.05})
		if err := e.SubmitInput(in); err != nil {
			t.Fatalf("SubmitInput: %v", err)
		}
		e.Step(time.Second)
	}

	got := e.RecentSources()
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("expected [b c], got %v", got)
	}
}

func TestLongingDriftAfterOnset(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	// Absence past onset + full window: factor 1.
	e.mu.Lock()
	e.lastPartner = time.Now().UTC().Add(-2 * time.Hour)
	e.mu.Unlock()

	snap := e.Step(time.Second)

	// At baseline the decay terms are zero, so one reference interval adds
	// exactly the longing rates.
	approx(t, snap.Value(affect.Attachment), 0.52, 1e-9, "attachment")
	approx(t, snap.Value(affect.Valence), 0.092, 1e-9, "valence")
}

func TestLongingInactiveBeforeOnset(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	snap := e.Step(time.Second)

	approx(t, snap.Value(affect.Attachment), 0.50, 1e-9, "attachment")
	approx(t, snap.Value(affect.Valence), 0.10, 1e-9, "valence")
}

func TestLongingRampIsPartialInsideWindow(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine(t, cfg)

	// Halfway through the ramp window.
	e.mu.Lock()
	e.lastPartner = time.Now().UTC().Add(-(cfg.LongingOnset + cfg.LongingWindow/2))
	e.mu.Unlock()

	snap := e.Step(time.Second)

	drift := snap.Value(affect.Attachment) - 0.50
	if drift <= 0 || drift >= cfg.LongingAttachRate {
		t.Fatalf("expected partial drift in (0, %.3f), got %.6f", cfg.LongingAttachRate, drift)
	}
}

func TestRecordPartnerInputResetsLonging(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	e.mu.Lock()
	e.lastPartner = time.Now().UTC().Add(-2 * time.Hour)
	e.mu.Unlock()

	e.RecordPartnerInput()
	snap := e.Step(time.Second)

	approx(t, snap.Value(affect.Attachment), 0.50, 1e-9, "attachment")
}

func TestListenersSeePostTickSnapshot(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	var gotTick uint64
	var gotSnap affect.Snapshot
	e.AddListener(func(snap affect.Snapshot, tick uint64) {
		gotSnap = snap
		gotTick = tick
	})

	in := affect.NewInput("test", map[affect.Key]float64{affect.Arousal: 0.5})
	if err := e.SubmitInput(in); err != nil {
		t.Fatalf("SubmitInput: %v", err)
	}
	want := e.Step(time.Second)

	if gotTick != 1 {
		t.Fatalf("tick: got %d, want 1", gotTick)
	}
	if gotSnap.Vec != want.Vec {
		t.Fatal("listener snapshot differs from Step's return")
	}
}

func TestPanickingListenerDoesNotBlockOthers(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	e.AddListener(func(affect.Snapshot, uint64) { panic("boom") })
	called := false
	e.AddListener(func(affect.Snapshot, uint64) { called = true })

	e.Step(time.Second)

	if !called {
		t.Fatal("second listener was skipped after a panic in the first")
	}
}

func TestRemoveListener(t *testing.T) {
	e := testEngine(t, DefaultConfig())

	called := false
	id := e.AddListener(func(affect.Snapshot, uint64) { called = true })
	e.RemoveListener(id)

	e.Step(time.Second)

	if called {
		t.Fatal("removed listener was still invoked")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TickInterval = 5 * time.Millisecond
	e := New(cfg, nil, zap.NewNop())

	e.Start()
	e.Start() // no-op

	time.Sleep(30 * time.Millisecond)

	e.Stop()
	e.Stop() // no-op

	if e.TickCount() == 0 {
		t.Fatal("ticker never fired")
	}
}

func TestPersistenceRoundtrip(t *testing.T) {
	v := tempVault(t)

	cfg := DefaultConfig()
	cfg.PersistEvery = 1
	e1 := New(cfg, v, zap.NewNop())

	in := affect.NewInput("test", map[affect.Key]float64{affect.Frustration: 0.8})
	if err := e1.SubmitInput(in); err != nil {
		t.Fatalf("SubmitInput: %v", err)
	}
	want := e1.Step(time.Second)

	e2 := New(cfg, v, zap.NewNop())
	e2.loadState()

	got := e2.Snapshot()
	approx(t, got.Value(affect.Frustration), want.Value(affect.Frustration), 1e-9, "frustration")
	if e2.TickCount() != 1 {
		t.Fatalf("tick count not restored: %d", e2.TickCount())
	}
}

func TestCorruptStateRecordStartsAtBaseline(t *testing.T) {
	v := tempVault(t)
	if err := v.Put(StateKey, []byte("not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	e := New(DefaultConfig(), v, zap.NewNop())
	e.loadState()

	snap := e.Snapshot()
	for _, d := range affect.Dimensions {
		if snap.Value(d.Key) != d.Baseline {
			t.Fatalf("%s: got %.4f, want baseline %.4f", d.Key, snap.Value(d.Key), d.Baseline)
		}
	}
}
