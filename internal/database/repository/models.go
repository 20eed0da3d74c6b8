package repository

import "time"

// Outcome of a registration attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// Submission represents a submissions row.
type Submission struct {
	ID        string
	Title     string
	Outcome   Outcome
	Code      int
	Message   string
	CreatedAt time.Time
}
