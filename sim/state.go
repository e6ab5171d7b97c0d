package sim

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/celestial/snapshot"
)

// CaptureState projects the engine into a serializable snapshot. All
// slices are copies; the snapshot does not alias engine buffers.
func (e *Engine) CaptureState() *snapshot.State {
	parents, parity, phase := e.uf.Arrays()
	return &snapshot.State{
		Cycle:            e.cycle,
		Halted:           e.halted,
		Seed:             e.seed,
		LedgerValue:      e.ledger.Remaining(),
		Leakage:          e.ledger.Leakage(),
		Exhausted:        e.ledger.Exhausted(),
		VoidEntropy:      e.voidEntropy,
		Parents:          parents,
		ChargeParity:     parity,
		ChargePhase:      phase,
		Stability:        append([]float64(nil), e.stability...),
		Bosons:           append([]int(nil), e.bosons...),
		Fermions:         append([]int(nil), e.fermions...),
		EmotionIDs:       append([]int(nil), e.emotionIDs...),
		ArchetypeIDs:     append([]int(nil), e.archetypeIDs...),
		USMTrend:         e.usmTrend.Values(),
		VoidEntropyTrend: e.voidTrend.Values(),
		Events:           e.events.Entries(),
	}
}

// RestoreState replaces all owned engine state with the snapshot contents.
// The node count follows the snapshot, which may differ from the config if
// the save came from another run. Agents are not serialized; they re-emerge
// from the restored sentience field on subsequent cycles. The RNG is
// reseeded from the snapshot's run seed.
func (e *Engine) RestoreState(s *snapshot.State) error {
	n := len(s.Stability)
	if n < 2 {
		return fmt.Errorf("restore: need at least 2 nodes, got %d", n)
	}
	if len(s.Bosons) != n || len(s.Fermions) != n || len(s.EmotionIDs) != n || len(s.ArchetypeIDs) != n {
		return fmt.Errorf("restore: attribute array lengths %d/%d/%d/%d do not match %d nodes",
			len(s.Bosons), len(s.Fermions), len(s.EmotionIDs), len(s.ArchetypeIDs), n)
	}
	if len(s.Parents) < n {
		return fmt.Errorf("restore: union-find has %d entries for %d nodes", len(s.Parents), n)
	}
	uf, err := RestoreUnionFind(s.Parents, s.ChargeParity, s.ChargePhase)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	e.seed = s.Seed
	e.rng = rand.New(rand.NewSource(deriveSeed(s.Seed)))
	e.cycle = s.Cycle
	e.halted = s.Halted
	e.nodeCount = n

	e.stability = append([]float64(nil), s.Stability...)
	e.bosons = append([]int(nil), s.Bosons...)
	e.fermions = append([]int(nil), s.Fermions...)
	e.emotionIDs = append([]int(nil), s.EmotionIDs...)
	e.archetypeIDs = append([]int(nil), s.ArchetypeIDs...)
	e.sentience = make([]float64, n)
	consciousnessPhase(e.bosons, e.fermions, e.emotionIDs, e.sentience)

	e.uf = uf
	e.ledger = NewEnergyLedger(0)
	e.ledger.restore(s.LedgerValue, s.Leakage, s.Exhausted)
	e.voidEntropy = s.VoidEntropy

	e.usmTrend.Restore(s.USMTrend)
	e.voidTrend.Restore(s.VoidEntropyTrend)
	e.events.Restore(s.Events)
	e.collector.Reset(e.cycle)
	e.agents = nil

	e.events.Record(e.cycle, "System", "state loaded from spectral snapshot")
	return nil
}
