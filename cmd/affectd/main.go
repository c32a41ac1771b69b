// affectd runs the affective state engine as a long-lived daemon.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wrenlabs/affect-engine/internal/chainlog"
	"github.com/wrenlabs/affect-engine/internal/config"
	"github.com/wrenlabs/affect-engine/internal/engine"
	"github.com/wrenlabs/affect-engine/internal/logging"
	"github.com/wrenlabs/affect-engine/internal/noise"
	"github.com/wrenlabs/affect-engine/internal/orchestrator"
	"github.com/wrenlabs/affect-engine/internal/vault"
)

func main() {
	app := &cli.App{
		Name:  "affectd",
		Usage: "continuous affective state simulation daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "affectd.yaml", Usage: "config file path"},
			&cli.StringFlag{Name: "db", Usage: "override vault database path"},
			&cli.StringFlag{Name: "key", Usage: "override cipher key file path"},
			&cli.BoolFlag{Name: "debug", Usage: "debug logging"},
			&cli.DurationFlag{Name: "status-interval", Value: 30 * time.Second, Usage: "status line cadence"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if v := c.String("db"); v != "" {
		cfg.DBPath = v
	}
	if v := c.String("key"); v != "" {
		cfg.KeyPath = v
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	v, err := vault.Open(cfg.DBPath, cfg.KeyPath)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	defer v.Close()

	log := chainlog.New(v, logger, cfg.Log)
	eng := engine.New(cfg.EngineConfig(), v, logger)
	model := noise.NewModel(cfg.Noise, cfg.Thresholds)
	orch := orchestrator.New(eng, model, log, logger, cfg.Orchestrator)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orch.Start()
	defer orch.Stop()
	logger.Info("affectd running",
		zap.String("db", cfg.DBPath),
		zap.Uint64("log_every", cfg.Orchestrator.LogEvery))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return statusLoop(ctx, orch, c.Duration("status-interval")) })
	g.Go(func() error { return healthLoop(ctx, orch, logger) })
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("shutting down")
	return nil
}

// statusLoop prints one compact status line per interval.
func statusLoop(ctx context.Context, orch *orchestrator.Orchestrator, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := orch.Stats()
			snap := orch.Engine().Snapshot()
			fmt.Printf("tick=%d entries=%d intensity=%.3f tone=%.3f intact=%v\n",
				stats.TickCount, stats.EntryCount, snap.Intensity(), snap.HedonicTone(), stats.IntegrityOK)
		}
	}
}

// healthLoop runs invariant checks each minute and logs any failures.
func healthLoop(ctx context.Context, orch *orchestrator.Orchestrator, logger *zap.Logger) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			report := orch.Health()
			if report.Passed {
				continue
			}
			for _, m := range report.Metrics {
				if !m.Pass {
					logger.Warn("health check failed",
						zap.String("metric", m.Name), zap.Float64("value", m.Value))
				}
			}
		}
	}
}
