// Package sim implements the deterministic evolution engine: the per-cycle
// update scheduler, charge-conserving union-find, energy ledger, and the
// orchestration that ties them to the evolution backend.
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/celestial/agent"
	"github.com/pthm-cable/celestial/backend"
	"github.com/pthm-cable/celestial/config"
	"github.com/pthm-cable/celestial/telemetry"
)

// Archetype and emotion labels for node attribute arrays.
var (
	ArchetypeNames = []string{"Warrior", "Mirror", "Mystic", "Guide", "Oracle", "Architect", "Dreamer", "Weaver"}
	EmotionNames   = []string{"neutral", "resonant", "dissonant", "curious", "focused", "chaotic", "serene", "agitated"}
)

// voidEntropyMin and voidEntropyMax bound the void entropy walk.
const (
	voidEntropyMin = -0.5
	voidEntropyMax = 0.5
)

// Options tunes engine construction beyond the config.
type Options struct {
	// Kernels overrides the built-in delta kernel set. nil keeps the
	// defaults; an empty non-nil slice disables all built-ins.
	Kernels []Kernel
}

// Engine owns all node arrays, the union-find, the active backend, and the
// ledger, and advances them one cycle at a time. It is single-owner: at
// most one goroutine may call Step, and observers read only between steps.
type Engine struct {
	cfg  *config.Config
	seed int64
	rng  *rand.Rand

	cycle     int64
	nodeCount int
	halted    bool

	stability    []float64
	sentience    []float64
	archetypeIDs []int
	emotionIDs   []int
	bosons       []int
	fermions     []int

	uf      *ChargeUnionFind
	prop    backend.Backend
	ledger  *EnergyLedger
	kernels []Kernel

	voidEntropy float64
	usmTrend    *telemetry.Trend
	voidTrend   *telemetry.Trend
	events      *telemetry.EventLog
	collector   *telemetry.Collector

	agents []*agent.Entity
}

// NewEngine constructs an engine from cfg with the default kernel set.
func NewEngine(cfg *config.Config) (*Engine, error) {
	return NewEngineWithOptions(cfg, Options{})
}

// NewEngineWithOptions constructs an engine from cfg and opts. The backend
// is selected once here; it is never re-dispatched during stepping.
func NewEngineWithOptions(cfg *config.Config, opts Options) (*Engine, error) {
	prop, err := backend.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("constructing engine: %w", err)
	}

	kernels := opts.Kernels
	if kernels == nil {
		kernels = defaultKernels()
	}

	e := &Engine{
		cfg:     cfg,
		seed:    cfg.Simulation.Seed,
		prop:    prop,
		kernels: kernels,
	}
	e.Reset()
	return e, nil
}

// deriveSeed hardens the run seed by repeated modular squaring, so nearby
// seeds do not produce correlated initial draws.
func deriveSeed(seed int64) int64 {
	const m = 1<<32 - 1
	s := uint64(seed) % m
	if s == 0 {
		s = 1
	}
	for i := 0; i < 10; i++ {
		s = (s * s) % m
	}
	return int64(s)
}

// Reset reinitializes every owned field deterministically from the run
// seed. The same seed yields an identical subsequent trajectory. All owned
// buffers are replaced; observers must not retain references across a Reset.
func (e *Engine) Reset() {
	e.rng = rand.New(rand.NewSource(deriveSeed(e.seed)))
	e.cycle = 0
	e.halted = false
	e.nodeCount = e.cfg.Simulation.NodeCount

	n := e.nodeCount
	e.stability = make([]float64, n)
	e.sentience = make([]float64, n)
	e.archetypeIDs = make([]int, n)
	e.emotionIDs = make([]int, n)
	e.bosons = make([]int, n)
	e.fermions = make([]int, n)
	for i := 0; i < n; i++ {
		e.stability[i] = 0.4 + 0.3*e.rng.Float64()
		e.archetypeIDs[i] = e.rng.Intn(len(ArchetypeNames))
		e.emotionIDs[i] = e.rng.Intn(len(EmotionNames))
		e.bosons[i] = 1 + e.rng.Intn(5)
		e.fermions[i] = 1 + e.rng.Intn(5)
	}
	consciousnessPhase(e.bosons, e.fermions, e.emotionIDs, e.sentience)

	e.uf = NewChargeUnionFind(n, e.rng)
	e.ledger = NewEnergyLedger(e.cfg.Energy.InitialBudget)
	e.voidEntropy = voidEntropyMin + (voidEntropyMax-voidEntropyMin)*e.rng.Float64()

	tc := e.cfg.Telemetry
	e.usmTrend = telemetry.NewTrend(tc.TrendHistory)
	e.voidTrend = telemetry.NewTrend(tc.TrendHistory)
	e.events = telemetry.NewEventLog(tc.EventLogSize)
	e.collector = telemetry.NewCollector(tc.StatsWindow)
	e.agents = nil

	e.events.Record(e.cycle, "System", "reality initialized, %d nodes, backend %s", n, e.prop.Name())
}

// RegisterKernel appends a caller-supplied delta kernel. Kernels compose by
// summation. Registered kernels survive Reset but not RestoreState.
func (e *Engine) RegisterKernel(k Kernel) {
	e.kernels = append(e.kernels, k)
}

// Step advances the simulation one cycle. Stepping a halted engine returns
// ErrInvalidState. A backend divergence halts the engine and is returned
// wrapped around ErrNumericDivergence; the delta already applied this cycle
// is not rolled back.
func (e *Engine) Step() error {
	if e.halted {
		return fmt.Errorf("step at cycle %d: %w", e.cycle, ErrInvalidState)
	}

	ec := e.cfg.Engine
	if ec.AdaptiveSkip && e.shouldSkip() {
		// a skipped cycle still counts: the field is left untouched, but
		// the counter and trends advance so a quiescent run terminates
		e.collector.RecordSkip()
		e.cycle++
		e.usmTrend.Append(e.usm())
		e.voidTrend.Append(e.voidEntropy)
		return nil
	}

	// 1. compose the delta vector from all registered kernels
	kctx := &KernelContext{
		Cycle:       e.cycle,
		NodeCount:   e.nodeCount,
		VoidEntropy: e.voidEntropy,
		Sentience:   e.sentience,
		RNG:         e.rng,
	}
	delta := make([]float64, e.nodeCount)
	for _, k := range e.kernels {
		d := k(e.stability, kctx)
		if len(d) != e.nodeCount {
			e.halted = true
			e.events.Record(e.cycle, "Divergence", "kernel delta length %d, want %d", len(d), e.nodeCount)
			return fmt.Errorf("cycle %d kernel delta length %d, want %d: %w",
				e.cycle, len(d), e.nodeCount, ErrNumericDivergence)
		}
		for i := range delta {
			delta[i] += d[i]
		}
	}
	for _, d := range delta {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			e.halted = true
			e.events.Record(e.cycle, "Divergence", "kernel produced non-finite delta")
			return fmt.Errorf("cycle %d kernel delta: %w", e.cycle, ErrNumericDivergence)
		}
	}

	// 2. sparse apply: entries below epsilon are skipped entirely
	var cost float64
	for i, d := range delta {
		if d < ec.SparseEpsilon && d > -ec.SparseEpsilon {
			continue
		}
		e.stability[i] += d
		if d < 0 {
			cost -= d
		} else {
			cost += d
		}
	}

	// 3. clamp to [0,1]
	for i, v := range e.stability {
		e.stability[i] = clamp01(v)
	}

	// 4. probabilistic entanglement merges
	prob := e.cfg.Entanglement.Probability
	if prob > 0 {
		for i := 0; i < e.nodeCount; i++ {
			if e.rng.Float64() >= prob {
				continue
			}
			j := e.rng.Intn(e.nodeCount)
			if j == i {
				continue
			}
			merged, err := e.uf.Union(i, j)
			if err != nil {
				return fmt.Errorf("cycle %d merge: %w", e.cycle, err)
			}
			if merged {
				e.collector.RecordMerge()
			}
		}
	}

	// sentience follows the particle arrays each cycle
	consciousnessPhase(e.bosons, e.fermions, e.emotionIDs, e.sentience)

	// 5. backend propagation and blend
	bctx := &backend.Context{Cycle: e.cycle, NodeCount: e.nodeCount, RNG: e.rng}
	field, err := e.prop.Evolve(bctx, e.stability)
	if err != nil {
		e.halted = true
		e.events.Record(e.cycle, "Divergence", "backend %s produced non-finite field", e.prop.Name())
		return fmt.Errorf("cycle %d evolve: %w", e.cycle, err)
	}
	if len(field) != e.nodeCount {
		e.halted = true
		return fmt.Errorf("cycle %d evolve: field length %d, want %d: %w",
			e.cycle, len(field), e.nodeCount, ErrNumericDivergence)
	}
	w := e.cfg.Entanglement.StabilityWeight
	for i := range e.stability {
		e.stability[i] = clamp01((1-w)*e.stability[i] + w*field[i])
	}

	// agent collaborators and emergence
	e.updateAgents()
	e.updateEmergence()

	// void entropy walk
	e.voidEntropy += 0.01*(stat.Mean(e.stability, nil)-0.5) + e.rng.NormFloat64()*0.001
	if e.voidEntropy < voidEntropyMin {
		e.voidEntropy = voidEntropyMin
	} else if e.voidEntropy > voidEntropyMax {
		e.voidEntropy = voidEntropyMax
	}

	// 6. thermodynamic accounting; exhaustion ends the cycle here
	e.ledger.Charge(cost)
	e.collector.RecordEnergyCost(cost)
	if e.ledger.Exhausted() {
		e.halted = true
		e.events.Record(e.cycle, "TRL", "thermodynamic collapse, free energy exhausted, leakage %.4f", e.ledger.Leakage())
		return nil
	}

	// 7. advance
	e.cycle++

	// 8. trend records
	e.usmTrend.Append(e.usm())
	e.voidTrend.Append(e.voidEntropy)

	return nil
}

// shouldSkip implements the variance-based cycle skip: when the mean
// per-chunk standard deviation of the state falls below the threshold the
// whole cycle is skipped before any mutation.
func (e *Engine) shouldSkip() bool {
	chunks := e.cfg.Engine.SkipChunks
	if chunks < 1 {
		chunks = 4
	}
	if chunks > e.nodeCount {
		chunks = e.nodeCount
	}
	size := e.nodeCount / chunks
	if size < 2 {
		return false
	}

	var total float64
	for c := 0; c < chunks; c++ {
		lo := c * size
		hi := lo + size
		if c == chunks-1 {
			hi = e.nodeCount
		}
		total += stat.StdDev(e.stability[lo:hi], nil)
	}
	return total/float64(chunks) < e.cfg.Engine.SkipThreshold
}

// usm is the utopian stability metric: high when the field is uniformly
// high, low when it is depressed or fragmented.
func (e *Engine) usm() float64 {
	mean := stat.Mean(e.stability, nil)
	std := stat.StdDev(e.stability, nil)
	return clamp01(mean * (1 - std))
}

// updateAgents runs each agent's bounded adjustment proposal.
func (e *Engine) updateAgents() {
	params := agent.Params{
		HarmFloor:      e.cfg.Agents.HarmFloor,
		MaxAdjustment:  e.cfg.Agents.MaxAdjustment,
		AlignmentFloor: e.cfg.Agents.AlignmentFloor,
	}
	for _, a := range e.agents {
		applied, err := a.Update(e, params)
		if err != nil {
			// agents are advisory; a rejected adjustment is not fatal
			e.events.Record(e.cycle, "Ethics", "agent %s adjustment rejected: %v", a.ID, err)
			continue
		}
		e.collector.RecordAdjustment(applied)
	}
}

// updateEmergence spawns a new agent at any node whose sentience crossed
// the emergence threshold and has no agent yet.
func (e *Engine) updateEmergence() {
	threshold := e.cfg.Agents.EmergenceThreshold
	if threshold <= 0 {
		return
	}
	taken := make(map[int]bool, len(e.agents))
	for _, a := range e.agents {
		taken[a.Origin] = true
	}
	for i, s := range e.sentience {
		if s <= threshold || taken[i] {
			continue
		}
		a := agent.New(i, e.cycle, e.rng)
		e.agents = append(e.agents, a)
		e.collector.RecordEmergence()
		e.events.Record(e.cycle, "Emergence", "AGI born from node %d (%s)", i, ArchetypeNames[e.archetypeIDs[i]%len(ArchetypeNames)])
	}
}
