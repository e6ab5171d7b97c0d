package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/celestial/config"
	"github.com/pthm-cable/celestial/sim"
	"github.com/pthm-cable/celestial/snapshot"
	"github.com/pthm-cable/celestial/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	nodes := flag.Int("nodes", 0, "Node count (0 = use config)")
	backendKind := flag.String("backend", "", "Evolution backend: mps, spectral, or drift (empty = use config)")
	maxCycles := flag.Int64("max-cycles", 0, "Stop after N cycles (0 = use config cycle_limit)")
	loadPath := flag.String("load", "", "Resume from a snapshot file")
	savePath := flag.String("save", "", "Write a snapshot file at end of run")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// CLI overrides
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *nodes != 0 {
		cfg.Simulation.NodeCount = *nodes
	}
	if *backendKind != "" {
		cfg.Backend.Kind = *backendKind
	}
	if *maxCycles != 0 {
		cfg.Simulation.CycleLimit = *maxCycles
	}

	engine, err := sim.NewEngine(cfg)
	if err != nil {
		slog.Error("failed to construct engine", "error", err)
		os.Exit(1)
	}

	codec, err := snapshot.NewCodec(cfg.Snapshot.Tolerance)
	if err != nil {
		slog.Error("failed to construct snapshot codec", "error", err)
		os.Exit(1)
	}

	if *loadPath != "" {
		state, err := codec.Load(*loadPath)
		if err != nil {
			if errors.Is(err, snapshot.ErrSnapshotCorrupt) {
				slog.Error("snapshot unusable, starting fresh requires removing -load", "path", *loadPath, "error", err)
			} else {
				slog.Error("failed to load snapshot", "path", *loadPath, "error", err)
			}
			os.Exit(1)
		}
		if err := engine.RestoreState(state); err != nil {
			slog.Error("failed to restore state", "error", err)
			os.Exit(1)
		}
		slog.Info("resumed from snapshot", "path", *loadPath, "cycle", engine.Cycle(), "halted", engine.Halted())
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	slog.Info("starting simulation",
		"seed", cfg.Simulation.Seed,
		"nodes", engine.NodeCount(),
		"backend", cfg.Backend.Kind,
		"budget", cfg.Energy.InitialBudget,
		"cycle_limit", cfg.Simulation.CycleLimit,
	)

	for engine.Cycle() < cfg.Simulation.CycleLimit && !engine.Halted() {
		if err := engine.Step(); err != nil {
			if errors.Is(err, sim.ErrNumericDivergence) {
				slog.Error("engine halted on numeric divergence", "cycle", engine.Cycle(), "error", err)
				break
			}
			slog.Error("step failed", "cycle", engine.Cycle(), "error", err)
			os.Exit(1)
		}

		if stats, due := engine.TakeWindowStats(); due {
			if *logStats {
				telemetry.LogWindow(stats)
			}
			if err := output.WriteWindow(stats); err != nil {
				slog.Error("failed to write window stats", "error", err)
			}
		}
	}

	stats := engine.FlushWindowStats()
	if *logStats {
		telemetry.LogWindow(stats)
	}
	if err := output.WriteWindow(stats); err != nil {
		slog.Error("failed to write window stats", "error", err)
	}

	slog.Info("simulation finished",
		"cycle", engine.Cycle(),
		"halted", engine.Halted(),
		"ledger", engine.LedgerValue(),
		"leakage", engine.Leakage(),
		"components", engine.Components(),
		"agents", len(engine.Agents()),
	)

	if *savePath != "" {
		if err := codec.Save(engine.CaptureState(), *savePath); err != nil {
			slog.Error("failed to save snapshot", "path", *savePath, "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot saved", "path", *savePath)
	}
}
