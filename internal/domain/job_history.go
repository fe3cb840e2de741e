package domain

import "time"

// JobHistory records a single status transition for a job.
type JobHistory struct {
	ID        string
	JobID     string
	OldStatus JobStatus
	NewStatus JobStatus
	CreatedAt time.Time
}
