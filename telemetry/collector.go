package telemetry

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowStartCycle int64 `csv:"-"`
	WindowEndCycle   int64 `csv:"window_end"`

	// Events during the window
	Merges             int `csv:"merges"`
	SkippedCycles      int `csv:"skipped_cycles"`
	AgentAdjustments   int `csv:"agent_adjustments"`
	BlockedAdjustments int `csv:"blocked_adjustments"`
	AgentsEmerged      int `csv:"agents_emerged"`

	// Energy accounting
	EnergyCost      float64 `csv:"energy_cost"`
	EnergyRemaining float64 `csv:"energy_remaining"`

	// State summary sampled at window end
	StabilityMean float64 `csv:"stability_mean"`
	StabilityStd  float64 `csv:"stability_std"`
	SentienceMean float64 `csv:"sentience_mean"`
	USM           float64 `csv:"usm"`
	VoidEntropy   float64 `csv:"void_entropy"`
	Components    int     `csv:"components"`
	AgentCount    int     `csv:"agents"`
}

// StateSample is the end-of-window state summary supplied by the engine.
type StateSample struct {
	StabilityMean   float64
	StabilityStd    float64
	SentienceMean   float64
	USM             float64
	VoidEntropy     float64
	EnergyRemaining float64
	Components      int
	AgentCount      int
}

// Collector accumulates per-cycle events and produces WindowStats at window
// boundaries.
type Collector struct {
	windowCycles int64
	windowStart  int64

	merges             int
	skippedCycles      int
	agentAdjustments   int
	blockedAdjustments int
	agentsEmerged      int
	energyCost         float64
}

// NewCollector creates a collector with the given window length in cycles.
func NewCollector(windowCycles int64) *Collector {
	if windowCycles < 1 {
		windowCycles = 1
	}
	return &Collector{windowCycles: windowCycles}
}

// RecordMerge records a successful entanglement merge.
func (c *Collector) RecordMerge() {
	c.merges++
}

// RecordSkip records a cycle skipped by the adaptive scheduler.
func (c *Collector) RecordSkip() {
	c.skippedCycles++
}

// RecordAdjustment records an agent adjustment attempt; applied reports
// whether it passed the harm and alignment checks.
func (c *Collector) RecordAdjustment(applied bool) {
	if applied {
		c.agentAdjustments++
	} else {
		c.blockedAdjustments++
	}
}

// RecordEmergence records a newly emerged agent.
func (c *Collector) RecordEmergence() {
	c.agentsEmerged++
}

// RecordEnergyCost accumulates the cycle's ledger charge.
func (c *Collector) RecordEnergyCost(cost float64) {
	c.energyCost += cost
}

// WindowDue reports whether the window ending at cycle is complete.
func (c *Collector) WindowDue(cycle int64) bool {
	return cycle-c.windowStart >= c.windowCycles
}

// Flush assembles the finished window's stats and starts a new window.
func (c *Collector) Flush(cycle int64, sample StateSample) WindowStats {
	stats := WindowStats{
		WindowStartCycle:   c.windowStart,
		WindowEndCycle:     cycle,
		Merges:             c.merges,
		SkippedCycles:      c.skippedCycles,
		AgentAdjustments:   c.agentAdjustments,
		BlockedAdjustments: c.blockedAdjustments,
		AgentsEmerged:      c.agentsEmerged,
		EnergyCost:         c.energyCost,
		EnergyRemaining:    sample.EnergyRemaining,
		StabilityMean:      sample.StabilityMean,
		StabilityStd:       sample.StabilityStd,
		SentienceMean:      sample.SentienceMean,
		USM:                sample.USM,
		VoidEntropy:        sample.VoidEntropy,
		Components:         sample.Components,
		AgentCount:         sample.AgentCount,
	}

	c.windowStart = cycle
	c.merges = 0
	c.skippedCycles = 0
	c.agentAdjustments = 0
	c.blockedAdjustments = 0
	c.agentsEmerged = 0
	c.energyCost = 0

	return stats
}

// Reset clears all counters and restarts the window at the given cycle, so
// a collector resuming mid-run does not emit a window spanning cycles it
// never observed.
func (c *Collector) Reset(cycle int64) {
	c.windowStart = cycle
	c.merges = 0
	c.skippedCycles = 0
	c.agentAdjustments = 0
	c.blockedAdjustments = 0
	c.agentsEmerged = 0
	c.energyCost = 0
}
