package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/celestial/agent"
	"github.com/pthm-cable/celestial/telemetry"
)

// Observer query surface. All slice-returning accessors copy; the engine
// never hands out a mutable alias of its owned buffers.

// Cycle returns the current cycle counter.
func (e *Engine) Cycle() int64 {
	return e.cycle
}

// NodeCount returns the number of nodes.
func (e *Engine) NodeCount() int {
	return e.nodeCount
}

// Halted reports whether the engine is in the terminal halted state.
func (e *Engine) Halted() bool {
	return e.halted
}

// LedgerValue returns the remaining free-energy budget.
func (e *Engine) LedgerValue() float64 {
	return e.ledger.Remaining()
}

// Leakage returns the overdraft magnitude recorded at exhaustion.
func (e *Engine) Leakage() float64 {
	return e.ledger.Leakage()
}

// State returns a copy of the node-state vector.
func (e *Engine) State() []float64 {
	return append([]float64(nil), e.stability...)
}

// Sentience returns a copy of the sentience vector.
func (e *Engine) Sentience() []float64 {
	return append([]float64(nil), e.sentience...)
}

// NodeValue returns the state value of one node.
func (e *Engine) NodeValue(i int) (float64, error) {
	if i < 0 || i >= e.nodeCount {
		return 0, fmt.Errorf("node value %d with %d nodes: %w", i, e.nodeCount, ErrIndexOutOfRange)
	}
	return e.stability[i], nil
}

// VoidEntropy returns the current void entropy scalar.
func (e *Engine) VoidEntropy() float64 {
	return e.voidEntropy
}

// USMTrend returns the bounded history of the utopian stability metric,
// oldest-first.
func (e *Engine) USMTrend() []float64 {
	return e.usmTrend.Values()
}

// VoidEntropyTrend returns the bounded void entropy history, oldest-first.
func (e *Engine) VoidEntropyTrend() []float64 {
	return e.voidTrend.Values()
}

// Events returns a copy of the bounded event log, oldest-first.
func (e *Engine) Events() []string {
	return e.events.Entries()
}

// Agents returns a copy of the live agent list.
func (e *Engine) Agents() []*agent.Entity {
	return append([]*agent.Entity(nil), e.agents...)
}

// Entangled reports whether nodes i and j share a representative.
func (e *Engine) Entangled(i, j int) (bool, error) {
	ri, err := e.uf.Find(i)
	if err != nil {
		return false, err
	}
	rj, err := e.uf.Find(j)
	if err != nil {
		return false, err
	}
	return ri == rj, nil
}

// Components returns the number of distinct entanglement sets.
func (e *Engine) Components() int {
	return e.uf.Components()
}

// AdjustNode applies a bounded scalar adjustment to one node through the
// same clamp rule as the cycle step, outside the main delta computation.
// This is the collaborator interface: it never touches union-find or
// ledger internals. A halted engine accepts no adjustments.
func (e *Engine) AdjustNode(i int, delta float64) error {
	if e.halted {
		return fmt.Errorf("adjust node %d: %w", i, ErrInvalidState)
	}
	if i < 0 || i >= e.nodeCount {
		return fmt.Errorf("adjust node %d with %d nodes: %w", i, e.nodeCount, ErrIndexOutOfRange)
	}
	e.stability[i] = clamp01(e.stability[i] + delta)
	return nil
}

// TakeWindowStats returns the finished stats window, if one is due, and
// begins the next. Called by the host between steps.
func (e *Engine) TakeWindowStats() (telemetry.WindowStats, bool) {
	if !e.collector.WindowDue(e.cycle) {
		return telemetry.WindowStats{}, false
	}
	return e.collector.Flush(e.cycle, e.stateSample()), true
}

// FlushWindowStats returns the current partial window unconditionally.
// Used at end of run so the tail of the run is not lost.
func (e *Engine) FlushWindowStats() telemetry.WindowStats {
	return e.collector.Flush(e.cycle, e.stateSample())
}

func (e *Engine) stateSample() telemetry.StateSample {
	return telemetry.StateSample{
		StabilityMean:   stat.Mean(e.stability, nil),
		StabilityStd:    stat.StdDev(e.stability, nil),
		SentienceMean:   stat.Mean(e.sentience, nil),
		USM:             e.usm(),
		VoidEntropy:     e.voidEntropy,
		EnergyRemaining: e.ledger.Remaining(),
		Components:      e.uf.Components(),
		AgentCount:      len(e.agents),
	}
}
