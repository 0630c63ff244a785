package checkout

import (
	"github.com/Iron-Ham/dwcheck/internal/status"
)

// Op names a workflow operation.
type Op string

const (
	OpCheckout Op = "checkout"
	OpCheckin  Op = "checkin"
	OpPush     Op = "push"
	OpPull     Op = "pull"
	OpStatus   Op = "status"
)

// Outcome describes what an operation did.
type Outcome string

const (
	// OutcomeDone means the operation ran. A non-nil error alongside it means a
	// later step (usually the transfer) failed after local state was committed.
	OutcomeDone Outcome = "done"
	// OutcomeNoop means there was nothing to do.
	OutcomeNoop Outcome = "noop"
	// OutcomeCanceled means the user declined a confirmation. Nothing changed.
	OutcomeCanceled Outcome = "canceled"
	// OutcomeBlocked means the ownership rules refused the operation.
	OutcomeBlocked Outcome = "blocked"
	// OutcomeFailed means the operation stopped before changing anything,
	// or stopped at the first fatal step.
	OutcomeFailed Outcome = "failed"
)

// Result reports the outcome of one operation on one path.
type Result struct {
	Op       Op
	Path     string
	Outcome  Outcome
	Record   status.Record
	Pulled   bool
	Pushed   bool
	Warnings []string
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
