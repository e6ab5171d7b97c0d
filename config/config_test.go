package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.Simulation.NodeCount != 128 {
		t.Errorf("NodeCount = %d, want 128", cfg.Simulation.NodeCount)
	}
	if cfg.Simulation.Seed != 2025 {
		t.Errorf("Seed = %d, want 2025", cfg.Simulation.Seed)
	}
	if cfg.Backend.Kind != "mps" {
		t.Errorf("Backend.Kind = %q, want mps", cfg.Backend.Kind)
	}
	if cfg.Energy.InitialBudget != 1000 {
		t.Errorf("InitialBudget = %v, want 1000", cfg.Energy.InitialBudget)
	}
	if cfg.Entanglement.Probability != 0.05 {
		t.Errorf("Probability = %v, want 0.05", cfg.Entanglement.Probability)
	}
	if cfg.Snapshot.Tolerance != 0.01 {
		t.Errorf("Snapshot.Tolerance = %v, want 0.01", cfg.Snapshot.Tolerance)
	}
	if cfg.Telemetry.TrendHistory != 50 {
		t.Errorf("TrendHistory = %d, want 50", cfg.Telemetry.TrendHistory)
	}
	if cfg.Engine.AdaptiveSkip {
		t.Error("AdaptiveSkip should default to off")
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	body := `
simulation:
  node_count: 16
backend:
  kind: spectral
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing override: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Simulation.NodeCount != 16 {
		t.Errorf("NodeCount = %d, want the override 16", cfg.Simulation.NodeCount)
	}
	if cfg.Backend.Kind != "spectral" {
		t.Errorf("Backend.Kind = %q, want the override spectral", cfg.Backend.Kind)
	}
	// untouched sections keep defaults
	if cfg.Simulation.Seed != 2025 {
		t.Errorf("Seed = %d, want the default 2025", cfg.Simulation.Seed)
	}
	if cfg.Energy.InitialBudget != 1000 {
		t.Errorf("InitialBudget = %v, want the default 1000", cfg.Energy.InitialBudget)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"one node", "simulation:\n  node_count: 1\n"},
		{"bad stability weight", "entanglement:\n  stability_weight: 1.5\n"},
		{"bad probability", "entanglement:\n  probability: -0.1\n"},
		{"zero tolerance", "snapshot:\n  tolerance: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load should reject the invalid config")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Simulation.NodeCount = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if got.Simulation.NodeCount != 42 {
		t.Errorf("NodeCount = %d after round trip, want 42", got.Simulation.NodeCount)
	}
	if got.Backend.Kind != cfg.Backend.Kind {
		t.Errorf("Backend.Kind = %q, want %q", got.Backend.Kind, cfg.Backend.Kind)
	}
}
