// Package snapshot encodes and decodes full engine state. The container
// record is CBOR, wrapped in a zstd envelope. Integer, boolean, and charge
// fields round-trip exactly; the node-state vector is stored as a truncated
// frequency-domain transform and round-trips within a configured tolerance.
package snapshot

import (
	"errors"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Version is incremented when the record format changes.
const Version = 1

// DefaultTolerance is the documented bound on the max abs node-state error
// after an encode/decode round trip.
const DefaultTolerance = 1e-2

// ErrSnapshotCorrupt reports input that could not be decompressed or
// decoded. Callers must treat the save file as unusable.
var ErrSnapshotCorrupt = errors.New("snapshot: corrupt or truncated data")

// State is the serializable projection of engine state. It carries no
// behavior; the engine captures into and restores from it.
type State struct {
	Cycle       int64
	Halted      bool
	Seed        int64
	LedgerValue float64
	Leakage     float64
	Exhausted   bool
	VoidEntropy float64

	Parents      []int
	ChargeParity []int
	ChargePhase  []int

	Stability    []float64
	Bosons       []int
	Fermions     []int
	EmotionIDs   []int
	ArchetypeIDs []int

	USMTrend         []float64
	VoidEntropyTrend []float64
	Events           []string
}

// record is the CBOR wire form of State. Stability travels as a truncated
// DCT prefix plus the original length.
type record struct {
	Version     int     `cbor:"version"`
	Cycle       int64   `cbor:"cycle"`
	Halted      bool    `cbor:"halted"`
	Seed        int64   `cbor:"seed"`
	LedgerValue float64 `cbor:"ledger_value"`
	Leakage     float64 `cbor:"leakage"`
	Exhausted   bool    `cbor:"exhausted"`
	VoidEntropy float64 `cbor:"void_entropy"`

	Parents      []int `cbor:"unionfind_parents"`
	ChargeParity []int `cbor:"unionfind_charge_a"`
	ChargePhase  []int `cbor:"unionfind_charge_b"`

	NodeCount      int       `cbor:"node_count"`
	StateTransform []float64 `cbor:"node_state_transform"`

	Bosons       []int `cbor:"bosons"`
	Fermions     []int `cbor:"fermions"`
	EmotionIDs   []int `cbor:"emotion_ids"`
	ArchetypeIDs []int `cbor:"archetype_ids"`

	USMTrend         []float64 `cbor:"usm_trend"`
	VoidEntropyTrend []float64 `cbor:"void_entropy_trend"`
	Events           []string  `cbor:"events"`
}

// Codec transforms engine state to and from the compressed wire form.
type Codec struct {
	tolerance float64
	enc       *zstd.Encoder
	dec       *zstd.Decoder
}

// NewCodec creates a codec with the given node-state tolerance. Pass
// DefaultTolerance unless the caller has tuned it in config.
func NewCodec(tolerance float64) (*Codec, error) {
	if tolerance <= 0 {
		return nil, fmt.Errorf("snapshot: tolerance must be positive, got %v", tolerance)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: init zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: init zstd decoder: %w", err)
	}
	return &Codec{tolerance: tolerance, enc: enc, dec: dec}, nil
}

// Encode serializes s into a compressed byte blob.
func (c *Codec) Encode(s *State) ([]byte, error) {
	n := len(s.Stability)
	if n < 2 {
		return nil, fmt.Errorf("snapshot: need at least 2 nodes, got %d", n)
	}
	if len(s.Parents) != len(s.ChargeParity) || len(s.Parents) != len(s.ChargePhase) {
		return nil, fmt.Errorf("snapshot: union-find array lengths %d/%d/%d differ",
			len(s.Parents), len(s.ChargeParity), len(s.ChargePhase))
	}

	rec := record{
		Version:          Version,
		Cycle:            s.Cycle,
		Halted:           s.Halted,
		Seed:             s.Seed,
		LedgerValue:      s.LedgerValue,
		Leakage:          s.Leakage,
		Exhausted:        s.Exhausted,
		VoidEntropy:      s.VoidEntropy,
		Parents:          s.Parents,
		ChargeParity:     s.ChargeParity,
		ChargePhase:      s.ChargePhase,
		NodeCount:        n,
		StateTransform:   c.transform(s.Stability),
		Bosons:           s.Bosons,
		Fermions:         s.Fermions,
		EmotionIDs:       s.EmotionIDs,
		ArchetypeIDs:     s.ArchetypeIDs,
		USMTrend:         s.USMTrend,
		VoidEntropyTrend: s.VoidEntropyTrend,
		Events:           s.Events,
	}

	raw, err := cbor.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal record: %w", err)
	}
	return c.enc.EncodeAll(raw, nil), nil
}

// Decode inverts Encode. Corrupted or truncated input yields
// ErrSnapshotCorrupt.
func (c *Codec) Decode(data []byte) (*State, error) {
	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrSnapshotCorrupt, err)
	}

	var rec record
	if err := cbor.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: decode record: %v", ErrSnapshotCorrupt, err)
	}
	if rec.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSnapshotCorrupt, rec.Version)
	}
	if rec.NodeCount < 2 || len(rec.StateTransform) > rec.NodeCount {
		return nil, fmt.Errorf("%w: bad node count %d with %d coefficients",
			ErrSnapshotCorrupt, rec.NodeCount, len(rec.StateTransform))
	}
	n := len(rec.Parents)
	if len(rec.ChargeParity) != n || len(rec.ChargePhase) != n {
		return nil, fmt.Errorf("%w: union-find array lengths %d/%d/%d differ",
			ErrSnapshotCorrupt, n, len(rec.ChargeParity), len(rec.ChargePhase))
	}

	return &State{
		Cycle:            rec.Cycle,
		Halted:           rec.Halted,
		Seed:             rec.Seed,
		LedgerValue:      rec.LedgerValue,
		Leakage:          rec.Leakage,
		Exhausted:        rec.Exhausted,
		VoidEntropy:      rec.VoidEntropy,
		Parents:          rec.Parents,
		ChargeParity:     rec.ChargeParity,
		ChargePhase:      rec.ChargePhase,
		Stability:        c.reconstruct(rec.StateTransform, rec.NodeCount),
		Bosons:           rec.Bosons,
		Fermions:         rec.Fermions,
		EmotionIDs:       rec.EmotionIDs,
		ArchetypeIDs:     rec.ArchetypeIDs,
		USMTrend:         rec.USMTrend,
		VoidEntropyTrend: rec.VoidEntropyTrend,
		Events:           rec.Events,
	}, nil
}

// transform computes the DCT of the node vector and truncates the trailing
// coefficients adaptively: a coefficient is dropped only while the summed
// worst-case reconstruction error of everything dropped so far stays under
// half the tolerance. The bound is conservative, so the round-trip error
// guarantee holds for arbitrary inputs; smooth vectors compress hard,
// noisy ones degrade to nearly full length instead of losing fidelity.
func (c *Codec) transform(state []float64) []float64 {
	n := len(state)
	dct := fourier.NewDCT(n)
	coeffs := dct.Transform(nil, state)

	// Inverse-transform entries are bounded by 2, and the round trip
	// scales by 2(n-1), so dropping a set S of coefficients perturbs any
	// sample by at most sum_{k in S} |coeff_k| / (n-1).
	budget := c.tolerance / 2 * float64(n-1)
	keep := n
	var dropped float64
	for keep > 1 {
		next := dropped + math.Abs(coeffs[keep-1])
		if next > budget {
			break
		}
		dropped = next
		keep--
	}
	return coeffs[:keep]
}

// reconstruct pads the truncated coefficients back to full length, inverts
// the DCT, rescales, and clamps to [0,1].
func (c *Codec) reconstruct(coeffs []float64, n int) []float64 {
	full := make([]float64, n)
	copy(full, coeffs)

	dct := fourier.NewDCT(n)
	state := dct.Transform(nil, full)

	// gonum's DCT round trip scales by 2(n-1)
	inv := 1.0 / (2 * float64(n-1))
	for i := range state {
		v := state[i] * inv
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		state[i] = v
	}
	return state
}
