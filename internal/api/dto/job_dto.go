package dto

import (
	"time"

	"github.com/Sam8709/repair-track-25-08/internal/domain"
)

// CreateJobRequest payload. Field names mirror the shop UI form.
type CreateJobRequest struct {
	CustomerName     string  `json:"customer_name"`
	CustomerWhatsApp string  `json:"customer_whatsapp"`
	ItemName         string  `json:"item_name"`
	Problem          string  `json:"problem"`
	Price            float64 `json:"price"`
	Description      string  `json:"job_description"`
	RequestID        string  `json:"request_id"`
}

// UpdateJobStatusRequest payload.
type UpdateJobStatusRequest struct {
	Status domain.JobStatus `json:"status"`
}

// JobResponse is the full job representation for the owner.
type JobResponse struct {
	ID               string           `json:"id"`
	JobCode          string           `json:"job_code"`
	CustomerName     string           `json:"customer_name"`
	CustomerWhatsApp string           `json:"customer_whatsapp"`
	ItemName         string           `json:"item_name"`
	Problem          string           `json:"problem"`
	Price            float64          `json:"price"`
	Description      string           `json:"job_description"`
	Status           domain.JobStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TrackResponse is the public tracking representation. It deliberately
// omits customer contact details.
type TrackResponse struct {
	JobCode   string            `json:"job_code"`
	ItemName  string            `json:"item_name"`
	Status    domain.JobStatus  `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	History   []HistoryResponse `json:"history"`
}

// HistoryResponse is one entry of the status timeline.
type HistoryResponse struct {
	OldStatus domain.JobStatus `json:"old_status"`
	NewStatus domain.JobStatus `json:"new_status"`
	CreatedAt time.Time        `json:"created_at"`
}
