package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Sam8709/repair-track-25-08/internal/api/dto"
	"github.com/Sam8709/repair-track-25-08/internal/auth"
	"github.com/Sam8709/repair-track-25-08/internal/domain"
	"github.com/Sam8709/repair-track-25-08/internal/service"
	apperrors "github.com/Sam8709/repair-track-25-08/pkg/util"
)

// JobsHandler manages the shop owner's job endpoints plus the public
// tracking route.
type JobsHandler struct {
	service *service.JobService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService) *JobsHandler {
	return &JobsHandler{service: jobService}
}

// ListJobs GET /api/jobs.
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	var statusFilter *domain.JobStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := domain.JobStatus(raw)
		if !status.Valid() {
			return apperrors.NewValidationError("unknown status filter", map[string]any{"status": raw})
		}
		statusFilter = &status
	}

	jobs, err := h.service.ListJobs(c.UserContext(), user.ID, statusFilter)
	if err != nil {
		return err
	}
	items := make([]dto.JobResponse, 0, len(jobs))
	for i := range jobs {
		items = append(items, jobResponse(&jobs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateJob POST /api/jobs.
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	requestID := req.RequestID
	if headerID := c.Get("X-Request-ID"); headerID != "" {
		requestID = headerID
	}

	input := service.JobCreateInput{
		CustomerName:     req.CustomerName,
		CustomerWhatsApp: req.CustomerWhatsApp,
		ItemName:         req.ItemName,
		Problem:          req.Problem,
		Price:            req.Price,
		Description:      req.Description,
		RequestID:        requestID,
	}
	job, err := h.service.CreateJob(c.UserContext(), user.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": jobResponse(job)})
}

// UpdateStatus PATCH /api/jobs/:id/status.
func (h *JobsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateJobStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.service.UpdateStatus(c.UserContext(), user.ID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobResponse(job)})
}

// Track GET /track/:code. Public: returns the status timeline for the
// code printed on the customer's receipt.
func (h *JobsHandler) Track(c *fiber.Ctx) error {
	job, history, err := h.service.TrackByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}

	entries := make([]dto.HistoryResponse, 0, len(history))
	for _, entry := range history {
		entries = append(entries, dto.HistoryResponse{
			OldStatus: entry.OldStatus,
			NewStatus: entry.NewStatus,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": dto.TrackResponse{
		JobCode:   job.JobCode,
		ItemName:  job.ItemName,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
		History:   entries,
	}})
}

func jobResponse(job *domain.Job) dto.JobResponse {
	return dto.JobResponse{
		ID:               job.ID,
		JobCode:          job.JobCode,
		CustomerName:     job.CustomerName,
		CustomerWhatsApp: job.CustomerWhatsApp,
		ItemName:         job.ItemName,
		Problem:          job.Problem,
		Price:            job.Price,
		Description:      job.Description,
		Status:           job.Status,
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
	}
}
