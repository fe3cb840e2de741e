package domain

import "time"

// JobStatus enumerates lifecycle states for repair jobs. The values are
// stored verbatim and shown to customers, so they are human-readable.
type JobStatus string

const (
	JobStatusReceived      JobStatus = "Received"
	JobStatusAwaitingParts JobStatus = "Awaiting Parts"
	JobStatusInProgress    JobStatus = "In Progress"
	JobStatusCompleted     JobStatus = "Completed"
)

// JobStatuses lists every valid status.
var JobStatuses = []JobStatus{
	JobStatusReceived,
	JobStatusAwaitingParts,
	JobStatusInProgress,
	JobStatusCompleted,
}

// Valid reports whether the status is part of the fixed enumeration.
func (s JobStatus) Valid() bool {
	for _, candidate := range JobStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// NormalTransitions documents the flow the shop UI suggests. The status
// selector allows any transition, so this is advisory, not enforced.
var NormalTransitions = map[JobStatus][]JobStatus{
	JobStatusReceived:      {JobStatusAwaitingParts, JobStatusInProgress, JobStatusCompleted},
	JobStatusAwaitingParts: {JobStatusInProgress, JobStatusCompleted},
	JobStatusInProgress:    {JobStatusAwaitingParts, JobStatusCompleted},
	JobStatusCompleted:     {},
}

// Job is the aggregate for a repair ticket owned by a single user.
type Job struct {
	ID               string
	UserID           string
	JobCode          string
	CustomerName     string
	CustomerWhatsApp string
	ItemName         string
	Problem          string
	Price            float64
	Description      string
	Status           JobStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
