package snapshot

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"testing"
)

func sampleState(n int, seed int64) *State {
	rng := rand.New(rand.NewSource(seed))

	parents := make([]int, n)
	parity := make([]int, n)
	phase := make([]int, n)
	stability := make([]float64, n)
	bosons := make([]int, n)
	fermions := make([]int, n)
	emotions := make([]int, n)
	archetypes := make([]int, n)
	for i := 0; i < n; i++ {
		parents[i] = rng.Intn(i + 1)
		parity[i] = rng.Intn(2)
		phase[i] = rng.Intn(4)
		stability[i] = rng.Float64()
		bosons[i] = 1 + rng.Intn(5)
		fermions[i] = 1 + rng.Intn(5)
		emotions[i] = rng.Intn(8)
		archetypes[i] = rng.Intn(6)
	}

	return &State{
		Cycle:            1234,
		Halted:           true,
		Seed:             seed,
		LedgerValue:      -3.5,
		Leakage:          3.5,
		Exhausted:        true,
		VoidEntropy:      0.21,
		Parents:          parents,
		ChargeParity:     parity,
		ChargePhase:      phase,
		Stability:        stability,
		Bosons:           bosons,
		Fermions:         fermions,
		EmotionIDs:       emotions,
		ArchetypeIDs:     archetypes,
		USMTrend:         []float64{0.5, 0.51, 0.52},
		VoidEntropyTrend: []float64{0.0, 0.01},
		Events:           []string{"[C0000] Genesis: reality initialized"},
	}
}

func TestCodecExactFields(t *testing.T) {
	c, err := NewCodec(DefaultTolerance)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	want := sampleState(32, 7)
	data, err := c.Encode(want)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got, err := c.Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.Cycle != want.Cycle || got.Halted != want.Halted || got.Seed != want.Seed {
		t.Errorf("scalar fields changed: %+v", got)
	}
	if got.LedgerValue != want.LedgerValue || got.Leakage != want.Leakage || got.Exhausted != want.Exhausted {
		t.Errorf("ledger fields changed: %v/%v/%v", got.LedgerValue, got.Leakage, got.Exhausted)
	}
	if got.VoidEntropy != want.VoidEntropy {
		t.Errorf("void entropy = %v, want %v", got.VoidEntropy, want.VoidEntropy)
	}

	intSlices := []struct {
		name      string
		got, want []int
	}{
		{"parents", got.Parents, want.Parents},
		{"charge parity", got.ChargeParity, want.ChargeParity},
		{"charge phase", got.ChargePhase, want.ChargePhase},
		{"bosons", got.Bosons, want.Bosons},
		{"fermions", got.Fermions, want.Fermions},
		{"emotion ids", got.EmotionIDs, want.EmotionIDs},
		{"archetype ids", got.ArchetypeIDs, want.ArchetypeIDs},
	}
	for _, s := range intSlices {
		if len(s.got) != len(s.want) {
			t.Fatalf("%s: length %d, want %d", s.name, len(s.got), len(s.want))
		}
		for i := range s.want {
			if s.got[i] != s.want[i] {
				t.Fatalf("%s[%d] = %d, want %d", s.name, i, s.got[i], s.want[i])
			}
		}
	}

	for i := range want.USMTrend {
		if got.USMTrend[i] != want.USMTrend[i] {
			t.Fatalf("usm trend[%d] changed", i)
		}
	}
	if len(got.Events) != 1 || got.Events[0] != want.Events[0] {
		t.Errorf("events changed: %v", got.Events)
	}
}

func TestCodecNodeStateWithinTolerance(t *testing.T) {
	c, err := NewCodec(DefaultTolerance)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	for _, n := range []int{2, 8, 100, 128, 1000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			want := sampleState(n, int64(n))
			data, err := c.Encode(want)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			got, err := c.Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if len(got.Stability) != n {
				t.Fatalf("node count %d, want %d", len(got.Stability), n)
			}
			for i := range want.Stability {
				if diff := math.Abs(got.Stability[i] - want.Stability[i]); diff > DefaultTolerance {
					t.Fatalf("node %d error %v exceeds tolerance %v", i, diff, DefaultTolerance)
				}
			}
		})
	}
}

func TestCodecCompressesSmoothState(t *testing.T) {
	c, err := NewCodec(DefaultTolerance)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	n := 1024
	s := sampleState(n, 1)
	for i := range s.Stability {
		// slowly varying field: the transform should truncate hard
		s.Stability[i] = 0.5 + 0.4*math.Sin(2*math.Pi*float64(i)/float64(n))
	}

	kept := c.transform(s.Stability)
	if len(kept) >= n/2 {
		t.Errorf("smooth state kept %d of %d coefficients, expected heavy truncation", len(kept), n)
	}

	got := c.reconstruct(kept, n)
	for i := range s.Stability {
		if diff := math.Abs(got[i] - s.Stability[i]); diff > DefaultTolerance {
			t.Fatalf("node %d error %v exceeds tolerance", i, diff)
		}
	}
}

func TestCodecRejectsCorruptInput(t *testing.T) {
	c, err := NewCodec(DefaultTolerance)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	data, err := c.Encode(sampleState(16, 3))
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"garbage", []byte("not a snapshot at all")},
		{"truncated", data[:len(data)/2]},
		{"flipped bytes", func() []byte {
			b := append([]byte(nil), data...)
			for i := range b {
				b[i] ^= 0xA5
			}
			return b
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decode(tt.blob); !errors.Is(err, ErrSnapshotCorrupt) {
				t.Errorf("Decode(%s) = %v, want ErrSnapshotCorrupt", tt.name, err)
			}
		})
	}
}

func TestCodecRejectsTinyState(t *testing.T) {
	c, err := NewCodec(DefaultTolerance)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}
	s := sampleState(8, 2)
	s.Stability = s.Stability[:1]
	if _, err := c.Encode(s); err == nil {
		t.Error("Encode should reject fewer than 2 nodes")
	}
}

func TestCodecInvalidTolerance(t *testing.T) {
	if _, err := NewCodec(0); err == nil {
		t.Error("zero tolerance should fail")
	}
	if _, err := NewCodec(-1); err == nil {
		t.Error("negative tolerance should fail")
	}
}

func TestSaveLoad(t *testing.T) {
	c, err := NewCodec(DefaultTolerance)
	if err != nil {
		t.Fatalf("NewCodec failed: %v", err)
	}

	want := sampleState(64, 11)
	path := filepath.Join(t.TempDir(), "saves", "universe.qsnap")
	if err := c.Save(want, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Cycle != want.Cycle {
		t.Errorf("cycle = %d, want %d", got.Cycle, want.Cycle)
	}
	for i := range want.Stability {
		if diff := math.Abs(got.Stability[i] - want.Stability[i]); diff > DefaultTolerance {
			t.Fatalf("node %d error %v exceeds tolerance after save/load", i, diff)
		}
	}

	if _, err := c.Load(filepath.Join(t.TempDir(), "missing.qsnap")); err == nil {
		t.Error("Load of a missing file should fail")
	}
}
