package backend

// Drift perturbs the state with small Gaussian noise. It stands in for
// variational backends whose effect on the field is a bounded stochastic
// walk rather than a smoothing pass.
type Drift struct {
	sigma float64
}

// Name returns the backend tag.
func (d *Drift) Name() string { return "drift" }

// Evolve returns state plus N(0, sigma) noise per node.
func (d *Drift) Evolve(ctx *Context, state []float64) ([]float64, error) {
	field := make([]float64, len(state))
	for i, v := range state {
		field[i] = v + ctx.RNG.NormFloat64()*d.sigma
	}
	if err := checkFinite(d.Name(), field); err != nil {
		return nil, err
	}
	return field, nil
}
