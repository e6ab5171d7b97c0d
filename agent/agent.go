// Package agent implements the emergent entities that nudge individual node
// values. Agents interact with the engine only through the Simulation
// interface: they propose bounded adjustments to a single node and never
// touch entanglement or ledger internals.
package agent

import (
	"fmt"
	"math/rand"
)

// Simulation is the read-and-adjust surface the engine exposes to agents.
// AdjustNode applies a clamped delta to one node's value.
type Simulation interface {
	Cycle() int64
	NodeCount() int
	NodeValue(i int) (float64, error)
	AdjustNode(i int, delta float64) error
}

// Params bounds agent behavior. HarmFloor is the minimum node value an
// adjustment may leave behind; MaxAdjustment scales proposal magnitude;
// AlignmentFloor is the minimum value-alignment score for an action to pass.
type Params struct {
	HarmFloor      float64
	MaxAdjustment  float64
	AlignmentFloor float64
}

// valueMap scores proposed actions against modeled values.
var valueMap = map[string]float64{
	"harmony": 0.8,
	"growth":  0.6,
	"safety":  0.9,
}

// AlignmentScore returns the value-alignment score for an action. Unknown
// actions score 0.5.
func AlignmentScore(action string) float64 {
	if s, ok := valueMap[action]; ok {
		return s
	}
	return 0.5
}

// Entity is one emergent agent anchored to its origin node.
type Entity struct {
	ID       string
	Origin   int
	Strength float64
	Strategy string

	// duty, rules, alignment
	EthicalState [3]float64
}

// New creates an agent anchored to origin, sampling its strategy and
// ethical state from rng.
func New(origin int, cycle int64, rng *rand.Rand) *Entity {
	e := &Entity{
		ID:       fmt.Sprintf("AGI-%d-%04d", origin, cycle),
		Origin:   origin,
		Strength: 0.5,
		Strategy: "cooperative",
	}
	if rng.Float64() < 0.5 {
		e.Strategy = "disruptive"
	}
	for i := range e.EthicalState {
		e.EthicalState[i] = rng.Float64()
	}
	return e
}

// propose returns the agent's action tag and the adjustment it wants to
// apply to its origin node. Disruptive agents propose nothing.
func (e *Entity) propose(p Params) (string, float64) {
	if e.Strategy != "cooperative" {
		return "harmony", 0
	}
	return "harmony", (e.EthicalState[2] - 0.5) * p.MaxAdjustment
}

// isHarmful runs the counterfactual check: an adjustment is harmful if the
// origin is out of bounds or would push the node below the harm floor.
func (e *Entity) isHarmful(sim Simulation, adjustment float64, p Params) bool {
	if e.Origin < 0 || e.Origin >= sim.NodeCount() {
		return true
	}
	v, err := sim.NodeValue(e.Origin)
	if err != nil {
		return true
	}
	return v+adjustment < p.HarmFloor
}

// Update runs one agent decision: propose, filter through the harm check
// and value alignment, then apply through the simulation's clamp rule.
// It reports whether an adjustment was applied.
func (e *Entity) Update(sim Simulation, p Params) (bool, error) {
	action, adjustment := e.propose(p)

	if e.isHarmful(sim, adjustment, p) {
		return false, nil
	}
	if AlignmentScore(action) < p.AlignmentFloor {
		return false, nil
	}

	if err := sim.AdjustNode(e.Origin, adjustment); err != nil {
		return false, fmt.Errorf("agent %s adjust: %w", e.ID, err)
	}
	e.Strength = min(1.0, e.Strength+0.001*(1+e.EthicalState[2]))
	return true, nil
}
