package sim

// EnergyLedger tracks the free-energy budget consumed by cycle updates.
// The budget only decreases under Charge; once it goes negative the ledger
// is exhausted and stays exhausted until an explicit Replenish. The
// overdraft magnitude is recorded as leakage.
type EnergyLedger struct {
	remaining float64
	leakage   float64
	exhausted bool
}

// NewEnergyLedger creates a ledger with the given starting budget.
func NewEnergyLedger(budget float64) *EnergyLedger {
	return &EnergyLedger{remaining: budget}
}

// Charge subtracts a non-negative cost from the remaining budget. Negative
// amounts are ignored; replenishment goes through Replenish only.
func (l *EnergyLedger) Charge(amount float64) {
	if amount < 0 {
		return
	}
	l.remaining -= amount
	if l.remaining < 0 && !l.exhausted {
		l.exhausted = true
		l.leakage = -l.remaining
	}
}

// Exhausted reports whether the budget has been overdrawn. Sticky: charging
// after exhaustion never un-exhausts the ledger.
func (l *EnergyLedger) Exhausted() bool {
	return l.exhausted
}

// Remaining returns the current budget value. Negative once exhausted.
func (l *EnergyLedger) Remaining() float64 {
	return l.remaining
}

// Leakage returns the overdraft magnitude recorded at exhaustion, or zero.
func (l *EnergyLedger) Leakage() float64 {
	return l.leakage
}

// Replenish resets the ledger to the given budget and clears exhaustion.
func (l *EnergyLedger) Replenish(budget float64) {
	l.remaining = budget
	l.leakage = 0
	l.exhausted = false
}

// restore sets the ledger fields directly. Used by snapshot loading.
func (l *EnergyLedger) restore(remaining, leakage float64, exhausted bool) {
	l.remaining = remaining
	l.leakage = leakage
	l.exhausted = exhausted
}
