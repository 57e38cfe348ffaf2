package models

import (
	"strconv"
	"time"
)

type OutcomeStatus string

const (
	OutcomePending   OutcomeStatus = "pending"
	OutcomeConfirmed OutcomeStatus = "confirmed"
	OutcomeFailed    OutcomeStatus = "failed"
	// OutcomeUnknown marks a submission that may or may not have been broadcast.
	OutcomeUnknown OutcomeStatus = "unknown"
)

// Outcome records a single attempt of a loop run.
type Outcome struct {
	Index    int
	Status   OutcomeStatus
	Handle   *TxHandle
	Receipt  *Receipt
	Balances *Balances
	Err      error
	At       time.Time

	// RefreshErr is set when a confirmed attempt could not re-read balances.
	RefreshErr error
}

// LoopRun is the state of one execution loop invocation.
type LoopRun struct {
	ID           string
	Kind         OperationKind
	Amount       string
	Total        int
	Current      int
	SuccessCount int
	Aborted      bool
	Attempts     []Outcome
}

// Summary renders the "successes/total" line shown after a run.
func (r LoopRun) Summary() string {
	return itoa(r.SuccessCount) + "/" + itoa(r.Total)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
