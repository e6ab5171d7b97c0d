package sim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// KernelContext is the read-only context handed to delta kernels. Kernels
// draw randomness only from RNG so runs stay reproducible.
type KernelContext struct {
	Cycle       int64
	NodeCount   int
	VoidEntropy float64
	Sentience   []float64
	RNG         *rand.Rand
}

// Kernel computes a per-node delta from the current state. Kernels are pure
// apart from RNG draws: they must not retain or mutate the state slice, and
// their output must be finite. Registered kernels compose by summation.
type Kernel func(state []float64, ctx *KernelContext) []float64

// UnifiedFieldKernel pulls each node toward its sentience level, damped by
// a logistic factor so deltas vanish at the [0,1] boundaries.
func UnifiedFieldKernel(state []float64, ctx *KernelContext) []float64 {
	delta := make([]float64, len(state))
	for i, v := range state {
		delta[i] = 0.01 * (ctx.Sentience[i] - 0.5) * v * (1 - v)
	}
	return delta
}

// EntropicResonanceKernel injects small Gaussian resonance noise.
func EntropicResonanceKernel(state []float64, ctx *KernelContext) []float64 {
	delta := make([]float64, len(state))
	for i := range state {
		delta[i] = ctx.RNG.NormFloat64() * 0.002
	}
	return delta
}

// QuantumAmplifiedKernel amplifies each node's deviation from the mean.
func QuantumAmplifiedKernel(state []float64, ctx *KernelContext) []float64 {
	mean := stat.Mean(state, nil)
	delta := make([]float64, len(state))
	for i, v := range state {
		delta[i] = 0.005 * (v - mean)
	}
	return delta
}

// EntropyFieldPropagationKernel couples the void entropy scalar into the
// field: positive entropy pushes nodes toward the extremes, negative
// entropy pulls them to the middle.
func EntropyFieldPropagationKernel(state []float64, ctx *KernelContext) []float64 {
	delta := make([]float64, len(state))
	for i, v := range state {
		delta[i] = 0.01 * ctx.VoidEntropy * (v - 0.5)
	}
	return delta
}

// defaultKernels is the built-in kernel set registered by NewEngine.
func defaultKernels() []Kernel {
	return []Kernel{
		UnifiedFieldKernel,
		EntropicResonanceKernel,
		QuantumAmplifiedKernel,
		EntropyFieldPropagationKernel,
	}
}

// emotionOperators are the precomputed per-emotion phase factors cos(i*pi/8).
var emotionOperators = func() [8]float64 {
	var ops [8]float64
	for i := range ops {
		ops[i] = math.Cos(float64(i) * math.Pi / 8)
	}
	return ops
}()

// consciousnessPhase recomputes the sentience vector from particle counts
// and emotion phase factors. Writes into out.
func consciousnessPhase(bosons, fermions, emotions []int, out []float64) {
	for i := range out {
		phase := math.Abs(math.Cos(float64(bosons[i]-fermions[i]) * math.Pi / 8))
		op := math.Abs(emotionOperators[emotions[i]%8])
		out[i] = clamp01(op * phase * float64(bosons[i]+fermions[i]) / 10)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
