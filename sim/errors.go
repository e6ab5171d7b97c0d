package sim

import (
	"errors"

	"github.com/pthm-cable/celestial/backend"
)

// Error taxonomy surfaced to callers. Budget exhaustion is not an error;
// it is the halted state, observable through Engine.Halted.
var (
	// ErrIndexOutOfRange reports a node index outside the current bounds.
	// This is a programmer error, fatal to the call that raised it.
	ErrIndexOutOfRange = errors.New("sim: node index out of range")

	// ErrNumericDivergence reports a backend that produced non-finite
	// output. The engine halts rather than poisoning downstream state.
	ErrNumericDivergence = backend.ErrNonFinite

	// ErrInvalidState reports an operation attempted in the wrong engine
	// state, such as stepping while halted.
	ErrInvalidState = errors.New("sim: operation invalid in current state")
)
