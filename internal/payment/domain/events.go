package domain

import "time"

type TransactionCompleted struct {
	CheckID       string
	TransactionID string
	CheckedAt     time.Time
}

type TransactionNotCompleted struct {
	CheckID       string
	TransactionID string
	CheckedAt     time.Time
}

// EventFor returns the event type name and event value describing c.
func EventFor(c Check) (string, any) {
	if c.Completed {
		return "TransactionCompleted", TransactionCompleted{
			CheckID:       c.ID,
			TransactionID: c.TransactionID,
			CheckedAt:     c.CheckedAt,
		}
	}
	return "TransactionNotCompleted", TransactionNotCompleted{
		CheckID:       c.ID,
		TransactionID: c.TransactionID,
		CheckedAt:     c.CheckedAt,
	}
}
