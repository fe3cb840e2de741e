package events

import (
	"time"

	"github.com/Sam8709/repair-track-25-08/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventJobCreated       EventType = "job_created"
	EventJobStatusChanged EventType = "job_status_changed"
)

// Event represents a domain event emitted by services. Payloads carry
// everything the notification side needs so handlers never re-query.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	JobID     string      `json:"job_id"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// JobCreatedPayload payload.
type JobCreatedPayload struct {
	JobCode          string `json:"job_code"`
	CustomerName     string `json:"customer_name"`
	CustomerWhatsApp string `json:"customer_whatsapp"`
	ItemName         string `json:"item_name"`
}

// JobStatusChangedPayload payload.
type JobStatusChangedPayload struct {
	JobCode          string           `json:"job_code"`
	CustomerWhatsApp string           `json:"customer_whatsapp"`
	OldStatus        domain.JobStatus `json:"old_status"`
	NewStatus        domain.JobStatus `json:"new_status"`
}
