package backend

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Spectral is a frequency-domain backend: it takes the real FFT of the
// state, attenuates each coefficient by exp(-freq*decay), and inverts.
// Low frequencies pass, high frequencies are damped, yielding a smoothed
// field. Fully deterministic; it draws nothing from the RNG.
type Spectral struct {
	decay float64

	// cached transform plan, rebuilt if the node count changes
	fft *fourier.FFT
	n   int
}

// Name returns the backend tag.
func (s *Spectral) Name() string { return "spectral" }

// Evolve low-pass filters the state vector.
func (s *Spectral) Evolve(ctx *Context, state []float64) ([]float64, error) {
	n := len(state)
	if s.fft == nil || s.n != n {
		s.fft = fourier.NewFFT(n)
		s.n = n
	}

	coeffs := s.fft.Coefficients(nil, state)
	for k := range coeffs {
		freq := float64(k) / float64(n)
		coeffs[k] *= complex(math.Exp(-freq*s.decay), 0)
	}

	field := s.fft.Sequence(nil, coeffs)
	// gonum's round trip scales by n
	inv := 1.0 / float64(n)
	for i := range field {
		field[i] *= inv
	}
	if err := checkFinite(s.Name(), field); err != nil {
		return nil, err
	}
	return field, nil
}
