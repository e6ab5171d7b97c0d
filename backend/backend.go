// Package backend provides interchangeable evolution strategies that produce
// a coherent field from the node-state vector. Exactly one backend is active
// per engine, selected once at construction.
package backend

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/celestial/config"
)

// ErrNonFinite reports a backend whose output contained NaN or Inf values.
var ErrNonFinite = errors.New("backend: non-finite coherent field")

// Context carries the read-only simulation context a backend may consult.
// The RNG is the engine's per-run deterministic source; backends must draw
// from it (and nothing else) so that equal draw sequences give equal output.
type Context struct {
	Cycle     int64
	NodeCount int
	RNG       *rand.Rand
}

// Backend produces a smoothed, correlated version of the node-state vector.
// Contract: output length equals input length, output values are finite,
// and output is deterministic given the same RNG draw sequence. The input
// slice must not be modified.
type Backend interface {
	Name() string
	Evolve(ctx *Context, state []float64) ([]float64, error)
}

// New builds the backend selected by cfg.Backend.Kind.
func New(cfg *config.Config) (Backend, error) {
	bc := cfg.Backend
	switch bc.Kind {
	case "mps", "":
		bond := bc.BondDimension
		if bond < 1 {
			bond = 4
		}
		return &MPS{bond: bond}, nil
	case "spectral":
		decay := bc.SpectralDecay
		if decay <= 0 {
			decay = 10.0
		}
		return &Spectral{decay: decay}, nil
	case "drift":
		sigma := bc.DriftSigma
		if sigma < 0 {
			sigma = 0.001
		}
		return &Drift{sigma: sigma}, nil
	default:
		return nil, fmt.Errorf("backend: unknown kind %q", bc.Kind)
	}
}

// checkFinite validates the output contract, wrapping ErrNonFinite with the
// offending backend's name.
func checkFinite(name string, field []float64) error {
	for _, v := range field {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s: %w", name, ErrNonFinite)
		}
	}
	return nil
}
