// Package config loads the daemon's YAML configuration. Every tuned
// constant of the affect pipeline lives here with its default; a missing
// file or missing key falls back to defaults rather than failing startup.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wrenlabs/affect-engine/internal/affect"
	"github.com/wrenlabs/affect-engine/internal/chainlog"
	"github.com/wrenlabs/affect-engine/internal/engine"
	"github.com/wrenlabs/affect-engine/internal/gate"
	"github.com/wrenlabs/affect-engine/internal/noise"
	"github.com/wrenlabs/affect-engine/internal/orchestrator"
)

// #region file-schema

// EngineSection mirrors engine.Config with YAML-friendly integer units.
type EngineSection struct {
	TickIntervalMs       int     `yaml:"tick_interval_ms"`
	PersistEvery         uint64  `yaml:"persist_every"`
	RecentSourceCapacity int     `yaml:"recent_source_capacity"`
	LongingOnsetSec      int     `yaml:"longing_onset_sec"`
	LongingWindowSec     int     `yaml:"longing_window_sec"`
	LongingAttachRate    float64 `yaml:"longing_attach_rate"`
	LongingValenceRate   float64 `yaml:"longing_valence_rate"`
}

// File is the full configuration document.
type File struct {
	DBPath  string `yaml:"db_path"`
	KeyPath string `yaml:"key_path"`
	Debug   bool   `yaml:"debug"`

	Engine       EngineSection       `yaml:"engine"`
	Thresholds   affect.Thresholds   `yaml:"thresholds"`
	Gate         gate.GateConfig     `yaml:"gate"`
	Noise        noise.Config        `yaml:"noise"`
	Log          chainlog.Config     `yaml:"log"`
	Orchestrator orchestrator.Config `yaml:"orchestrator"`
}

// #endregion file-schema

// #region defaults

// Default returns the full default configuration.
func Default() File {
	ec := engine.DefaultConfig()
	return File{
		DBPath:  "affect.db",
		KeyPath: ".affect_key",
		Engine: EngineSection{
			TickIntervalMs:       int(ec.TickInterval / time.Millisecond),
			PersistEvery:         ec.PersistEvery,
			RecentSourceCapacity: ec.RecentSourceCapacity,
			LongingOnsetSec:      int(ec.LongingOnset / time.Second),
			LongingWindowSec:     int(ec.LongingWindow / time.Second),
			LongingAttachRate:    ec.LongingAttachRate,
			LongingValenceRate:   ec.LongingValenceRate,
		},
		Thresholds:   affect.DefaultThresholds(),
		Gate:         gate.DefaultGateConfig(),
		Noise:        noise.DefaultConfig(),
		Log:          chainlog.DefaultConfig(),
		Orchestrator: orchestrator.DefaultConfig(),
	}
}

// #endregion defaults

// #region load

// Load reads path over the defaults. A missing file returns pure defaults;
// a malformed file is an error.
func Load(path string) (File, error) {
	f := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return File{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	return f, nil
}

// #endregion load

// #region runtime-configs

// EngineConfig converts the file section into the runtime engine config.
func (f File) EngineConfig() engine.Config {
	return engine.Config{
		TickInterval:         time.Duration(f.Engine.TickIntervalMs) * time.Millisecond,
		ReferenceDt:          time.Second,
		PersistEvery:         f.Engine.PersistEvery,
		RecentSourceCapacity: f.Engine.RecentSourceCapacity,
		LongingOnset:         time.Duration(f.Engine.LongingOnsetSec) * time.Second,
		LongingWindow:        time.Duration(f.Engine.LongingWindowSec) * time.Second,
		LongingAttachRate:    f.Engine.LongingAttachRate,
		LongingValenceRate:   f.Engine.LongingValenceRate,
		Thresholds:           f.Thresholds,
		Gate:                 f.Gate,
	}
}

// #endregion runtime-configs
