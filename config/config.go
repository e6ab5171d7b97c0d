// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters. A Config is built
// once by Load and treated as immutable afterwards; constructors receive it
// explicitly rather than through a package-level singleton.
type Config struct {
	Simulation   SimulationConfig   `yaml:"simulation"`
	Entanglement EntanglementConfig `yaml:"entanglement"`
	Backend      BackendConfig      `yaml:"backend"`
	Energy       EnergyConfig       `yaml:"energy"`
	Engine       EngineConfig       `yaml:"engine"`
	Agents       AgentsConfig       `yaml:"agents"`
	Snapshot     SnapshotConfig     `yaml:"snapshot"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// SimulationConfig holds run-level parameters.
type SimulationConfig struct {
	NodeCount  int   `yaml:"node_count"`
	Seed       int64 `yaml:"seed"`
	CycleLimit int64 `yaml:"cycle_limit"`
}

// EntanglementConfig holds per-cycle merge sampling parameters.
type EntanglementConfig struct {
	Probability     float64 `yaml:"probability"`      // per-node chance of sampling a merge partner
	StabilityWeight float64 `yaml:"stability_weight"` // mixing weight w for the coherent field blend
}

// BackendConfig selects and tunes the evolution backend.
type BackendConfig struct {
	Kind          string  `yaml:"kind"` // mps, spectral, or drift
	BondDimension int     `yaml:"bond_dimension"`
	SpectralDecay float64 `yaml:"spectral_decay"`
	DriftSigma    float64 `yaml:"drift_sigma"`
}

// EnergyConfig holds the thermodynamic ledger parameters.
type EnergyConfig struct {
	InitialBudget float64 `yaml:"initial_budget"`
}

// EngineConfig holds cycle-step tuning parameters.
type EngineConfig struct {
	SparseEpsilon float64 `yaml:"sparse_epsilon"` // deltas below this magnitude are skipped
	AdaptiveSkip  bool    `yaml:"adaptive_skip"`  // enable the variance-based cycle skip
	SkipChunks    int     `yaml:"skip_chunks"`
	SkipThreshold float64 `yaml:"skip_threshold"`
}

// AgentsConfig holds emergent-agent parameters.
type AgentsConfig struct {
	EmergenceThreshold float64 `yaml:"emergence_threshold"`
	HarmFloor          float64 `yaml:"harm_floor"`
	MaxAdjustment      float64 `yaml:"max_adjustment"`
	AlignmentFloor     float64 `yaml:"alignment_floor"`
}

// SnapshotConfig holds codec parameters.
type SnapshotConfig struct {
	Tolerance float64 `yaml:"tolerance"` // max abs node-state error after a round trip
}

// TelemetryConfig holds history and stats-window sizes.
type TelemetryConfig struct {
	TrendHistory int   `yaml:"trend_history"`
	EventLogSize int   `yaml:"event_log_size"`
	StatsWindow  int64 `yaml:"stats_window"` // cycles per stats window
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Simulation.NodeCount < 2 {
		return fmt.Errorf("config: node_count must be at least 2, got %d", c.Simulation.NodeCount)
	}
	if w := c.Entanglement.StabilityWeight; w < 0 || w > 1 {
		return fmt.Errorf("config: stability_weight must be in [0,1], got %v", w)
	}
	if p := c.Entanglement.Probability; p < 0 || p > 1 {
		return fmt.Errorf("config: entanglement probability must be in [0,1], got %v", p)
	}
	if c.Snapshot.Tolerance <= 0 {
		return fmt.Errorf("config: snapshot tolerance must be positive, got %v", c.Snapshot.Tolerance)
	}
	if c.Telemetry.TrendHistory < 1 {
		return fmt.Errorf("config: trend_history must be at least 1, got %d", c.Telemetry.TrendHistory)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
