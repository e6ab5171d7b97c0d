package sim

import (
	"fmt"
	"math/rand"
)

// ChargeUnionFind is a path-compressing disjoint-set structure over node
// indices. Each set root carries two modular conserved quantities: a parity
// charge (mod 2) and a phase charge (mod 4). Merging two sets folds the
// losing root's charges into the survivor, so the modular sum over all
// roots is invariant under any sequence of unions.
type ChargeUnionFind struct {
	parent       []int
	parityCharge []int // mod 2, valid at roots
	phaseCharge  []int // mod 4, valid at roots
}

// NewChargeUnionFind creates n singleton sets with charges sampled from rng.
func NewChargeUnionFind(n int, rng *rand.Rand) *ChargeUnionFind {
	uf := &ChargeUnionFind{
		parent:       make([]int, n),
		parityCharge: make([]int, n),
		phaseCharge:  make([]int, n),
	}
	for i := 0; i < n; i++ {
		uf.parent[i] = i
		uf.parityCharge[i] = rng.Intn(2)
		uf.phaseCharge[i] = rng.Intn(4)
	}
	return uf
}

// Len returns the number of nodes tracked.
func (uf *ChargeUnionFind) Len() int {
	return len(uf.parent)
}

// Find returns the canonical representative of i's set, compressing the
// traversed path. Amortized near-constant over repeated calls.
func (uf *ChargeUnionFind) Find(i int) (int, error) {
	if i < 0 || i >= len(uf.parent) {
		return 0, fmt.Errorf("find(%d) with %d nodes: %w", i, len(uf.parent), ErrIndexOutOfRange)
	}
	return uf.find(i), nil
}

func (uf *ChargeUnionFind) find(i int) int {
	root := i
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[i] != root {
		uf.parent[i], i = root, uf.parent[i]
	}
	return root
}

// Union merges the sets containing i and j. It reports whether a merge
// occurred; i and j already sharing a representative is a no-op. On merge
// the surviving root's charges become the modular sums of both roots'
// charges; the losing root's copies are discarded.
func (uf *ChargeUnionFind) Union(i, j int) (bool, error) {
	n := len(uf.parent)
	if i < 0 || i >= n || j < 0 || j >= n {
		return false, fmt.Errorf("union(%d, %d) with %d nodes: %w", i, j, n, ErrIndexOutOfRange)
	}
	ri, rj := uf.find(i), uf.find(j)
	if ri == rj {
		return false, nil
	}
	uf.parent[rj] = ri
	uf.parityCharge[ri] = (uf.parityCharge[ri] + uf.parityCharge[rj]) % 2
	uf.phaseCharge[ri] = (uf.phaseCharge[ri] + uf.phaseCharge[rj]) % 4
	return true, nil
}

// AddNode appends a new singleton set carrying the supplied charges and
// returns its index. Valid at any time, including after merges.
func (uf *ChargeUnionFind) AddNode(parity, phase int) int {
	idx := len(uf.parent)
	uf.parent = append(uf.parent, idx)
	uf.parityCharge = append(uf.parityCharge, ((parity%2)+2)%2)
	uf.phaseCharge = append(uf.phaseCharge, ((phase%4)+4)%4)
	return idx
}

// AddRandomNode appends a new singleton set with charges sampled from rng.
func (uf *ChargeUnionFind) AddRandomNode(rng *rand.Rand) int {
	return uf.AddNode(rng.Intn(2), rng.Intn(4))
}

// Charges returns the parity and phase charge stored at i's representative.
func (uf *ChargeUnionFind) Charges(i int) (parity, phase int, err error) {
	if i < 0 || i >= len(uf.parent) {
		return 0, 0, fmt.Errorf("charges(%d) with %d nodes: %w", i, len(uf.parent), ErrIndexOutOfRange)
	}
	r := uf.find(i)
	return uf.parityCharge[r], uf.phaseCharge[r], nil
}

// ChargeSums returns the modular sums of parity and phase charges over all
// current representatives. Conserved under Union.
func (uf *ChargeUnionFind) ChargeSums() (parity, phase int) {
	for i := range uf.parent {
		if uf.parent[i] == i {
			parity += uf.parityCharge[i]
			phase += uf.phaseCharge[i]
		}
	}
	return parity % 2, phase % 4
}

// Components returns the number of distinct sets.
func (uf *ChargeUnionFind) Components() int {
	count := 0
	for i, p := range uf.parent {
		if p == i {
			count++
		}
	}
	return count
}

// Arrays returns copies of the parent, parity, and phase arrays for
// serialization. Path compression state is preserved as-is; any parent
// chain restored from these arrays resolves to the same representatives.
func (uf *ChargeUnionFind) Arrays() (parents, parity, phase []int) {
	parents = append([]int(nil), uf.parent...)
	parity = append([]int(nil), uf.parityCharge...)
	phase = append([]int(nil), uf.phaseCharge...)
	return parents, parity, phase
}

// RestoreUnionFind rebuilds a ChargeUnionFind from serialized arrays.
func RestoreUnionFind(parents, parity, phase []int) (*ChargeUnionFind, error) {
	n := len(parents)
	if len(parity) != n || len(phase) != n {
		return nil, fmt.Errorf("restore union-find: array lengths %d/%d/%d differ", n, len(parity), len(phase))
	}
	for i, p := range parents {
		if p < 0 || p >= n {
			return nil, fmt.Errorf("restore union-find: parent[%d]=%d: %w", i, p, ErrIndexOutOfRange)
		}
	}
	return &ChargeUnionFind{
		parent:       append([]int(nil), parents...),
		parityCharge: append([]int(nil), parity...),
		phaseCharge:  append([]int(nil), phase...),
	}, nil
}
