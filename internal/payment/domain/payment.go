package domain

import "time"

type CompletionStatus string

const (
	StatusCompleted    CompletionStatus = "completed"
	StatusNotCompleted CompletionStatus = "not_completed"
)

// StatusChecker reports whether a payment transaction has completed.
// It holds no state and is safe for concurrent use.
type StatusChecker struct{}

func NewStatusChecker() StatusChecker { return StatusChecker{} }

// IsCompleted returns the completion flag it is given.
func (StatusChecker) IsCompleted(completed bool) bool {
	return completed
}

func StatusOf(completed bool) CompletionStatus {
	if completed {
		return StatusCompleted
	}
	return StatusNotCompleted
}

// Check is one reported completion check for a transaction.
type Check struct {
	ID            string
	TransactionID string
	Completed     bool
	Status        CompletionStatus
	CheckedAt     time.Time
}

func NewCheck(id, transactionID string, completed bool, at time.Time) Check {
	return Check{
		ID:            id,
		TransactionID: transactionID,
		Completed:     completed,
		Status:        StatusOf(completed),
		CheckedAt:     at.UTC(),
	}
}
