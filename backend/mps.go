package backend

// MPS is the reference backend: a matrix-product-state-inspired propagator
// that applies bond-dimension rounds of random pairwise mixing, then rolls
// the result by the cycle index to keep the field moving.
type MPS struct {
	bond int
}

// Name returns the backend tag.
func (m *MPS) Name() string { return "mps" }

// Evolve mixes each node with a randomly sampled partner, bond times, and
// returns the rolled result.
func (m *MPS) Evolve(ctx *Context, state []float64) ([]float64, error) {
	n := len(state)
	field := append([]float64(nil), state...)
	next := make([]float64, n)
	for round := 0; round < m.bond; round++ {
		for i := 0; i < n; i++ {
			j := ctx.RNG.Intn(n)
			next[i] = 0.5 * (field[i] + field[j])
		}
		field, next = next, field
	}

	shift := int(ctx.Cycle % int64(n))
	rolled := make([]float64, n)
	for i := 0; i < n; i++ {
		rolled[(i+shift)%n] = field[i]
	}
	if err := checkFinite(m.Name(), rolled); err != nil {
		return nil, err
	}
	return rolled, nil
}
