package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/Sam8709/repair-track-25-08/internal/domain"
	"github.com/Sam8709/repair-track-25-08/internal/events"
	"github.com/Sam8709/repair-track-25-08/internal/idempotency"
	"github.com/Sam8709/repair-track-25-08/internal/jobcode"
	"github.com/Sam8709/repair-track-25-08/internal/observability"
	"github.com/Sam8709/repair-track-25-08/internal/repository"
	apperrors "github.com/Sam8709/repair-track-25-08/pkg/util"
)

// JobService coordinates the job lifecycle: validation, persistence,
// the in-memory job list and notification events. The cache is a read
// cache over repository state, never the source of truth; it mutates
// only after the corresponding repository write succeeded.
type JobService struct {
	jobs       repository.JobRepository
	history    repository.JobHistoryRepository
	dispatcher events.Dispatcher
	requests   idempotency.Store
	metrics    *observability.Metrics
	logger     *zap.Logger

	mu       sync.Mutex
	cache    map[string][]domain.Job
	inflight map[string]struct{}
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo      repository.JobRepository
	HistoryRepo  repository.JobHistoryRepository
	Dispatcher   events.Dispatcher
	RequestDedup idempotency.Store
	Metrics      *observability.Metrics
	Logger       *zap.Logger
}

// JobCreateInput describes the create-job payload. RequestID is the
// optional client-generated idempotency key.
type JobCreateInput struct {
	CustomerName     string  `validate:"required"`
	CustomerWhatsApp string  `validate:"required,inphone"`
	ItemName         string  `validate:"required"`
	Problem          string  `validate:"required"`
	Price            float64 `validate:"gte=0"`
	Description      string
	RequestID        string
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		jobs:       deps.JobRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		requests:   deps.RequestDedup,
		metrics:    deps.Metrics,
		logger:     logger,
		cache:      make(map[string][]domain.Job),
		inflight:   make(map[string]struct{}),
	}
}

// CreateJob validates input, persists the job with a server-allocated
// code, updates the cached list and announces the creation. The
// notification triggered by the event races independently; its outcome
// never affects the reported result.
func (s *JobService) CreateJob(ctx context.Context, userID string, input JobCreateInput) (*domain.Job, error) {
	if !s.beginCreate(userID) {
		return nil, apperrors.NewConflict("job creation already in progress", nil)
	}
	defer s.endCreate(userID)

	if err := validateStruct(input); err != nil {
		return nil, err
	}

	// Claim only after validation: a rejected payload must not consume
	// the client's request id, or the corrected retry would conflict.
	if err := s.claimRequestID(ctx, input.RequestID); err != nil {
		return nil, err
	}

	job := &domain.Job{
		UserID:           userID,
		CustomerName:     strings.TrimSpace(input.CustomerName),
		CustomerWhatsApp: strings.TrimSpace(input.CustomerWhatsApp),
		ItemName:         strings.TrimSpace(input.ItemName),
		Problem:          strings.TrimSpace(input.Problem),
		Price:            input.Price,
		Description:      strings.TrimSpace(input.Description),
		Status:           domain.JobStatusReceived,
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.cachePrepend(userID, *job)
	s.metrics.RecordJobCreated()

	s.publishEvent(ctx, events.Event{
		Type:   events.EventJobCreated,
		JobID:  job.ID,
		UserID: userID,
		Payload: events.JobCreatedPayload{
			JobCode:          job.JobCode,
			CustomerName:     job.CustomerName,
			CustomerWhatsApp: job.CustomerWhatsApp,
			ItemName:         job.ItemName,
		},
	})
	return job, nil
}

// UpdateStatus moves a job to a new status. Any status in the
// enumeration is accepted from any current status; the shop decides the
// flow, the service only rejects values outside the enumeration. The
// replaced status comes back from the update statement itself, so the
// history row is accurate even under concurrent updates.
func (s *JobService) UpdateStatus(ctx context.Context, userID, jobID string, newStatus domain.JobStatus) (*domain.Job, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
	}

	job, oldStatus, err := s.jobs.UpdateStatus(ctx, userID, jobID, newStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("job", nil)
		}
		return nil, err
	}

	s.recordHistory(ctx, job.ID, oldStatus, newStatus)
	s.cachePatch(userID, *job)
	s.metrics.RecordStatusUpdate()

	s.publishEvent(ctx, events.Event{
		Type:   events.EventJobStatusChanged,
		JobID:  job.ID,
		UserID: userID,
		Payload: events.JobStatusChangedPayload{
			JobCode:          job.JobCode,
			CustomerWhatsApp: job.CustomerWhatsApp,
			OldStatus:        oldStatus,
			NewStatus:        newStatus,
		},
	})
	return job, nil
}

// ListJobs returns the user's jobs newest first and refreshes the
// cached list. An optional status filters server-side.
func (s *JobService) ListJobs(ctx context.Context, userID string, status *domain.JobStatus) ([]domain.Job, error) {
	jobs, err := s.jobs.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if status == nil {
		s.cacheReplace(userID, jobs)
	}
	return jobs, nil
}

// TrackByCode resolves a job by its printed code together with its
// status timeline. Serves the public tracking route.
func (s *JobService) TrackByCode(ctx context.Context, code string) (*domain.Job, []domain.JobHistory, error) {
	if !jobcode.Valid(code) {
		return nil, nil, apperrors.NewNotFound("job", nil)
	}
	job, err := s.jobs.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("job", nil)
		}
		return nil, nil, err
	}
	history, err := s.history.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, nil, err
	}
	return job, history, nil
}

// CachedJobs snapshots the in-memory list for a user, newest first.
func (s *JobService) CachedJobs(userID string) []domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Job{}, s.cache[userID]...)
}

func (s *JobService) beginCreate(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[userID]; busy {
		return false
	}
	s.inflight[userID] = struct{}{}
	return true
}

func (s *JobService) endCreate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, userID)
}

// claimRequestID enforces the client idempotency key when one is
// supplied. A dedup store outage degrades to best-effort: job intake
// must not depend on redis being up.
func (s *JobService) claimRequestID(ctx context.Context, requestID string) error {
	if requestID == "" || s.requests == nil {
		return nil
	}
	ok, err := s.requests.Claim(ctx, requestID)
	if err != nil {
		s.logger.Warn("request dedup unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		return apperrors.NewConflict("duplicate create request", map[string]any{"request_id": requestID})
	}
	return nil
}

func (s *JobService) recordHistory(ctx context.Context, jobID string, oldStatus, newStatus domain.JobStatus) {
	if s.history == nil {
		return
	}
	entry := &domain.JobHistory{JobID: jobID, OldStatus: oldStatus, NewStatus: newStatus}
	if err := s.history.Create(ctx, entry); err != nil {
		// The status update already committed; the audit row is advisory.
		s.logger.Warn("record status history", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *JobService) cacheReplace(userID string, jobs []domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[userID] = append([]domain.Job{}, jobs...)
}

func (s *JobService) cachePrepend(userID string, job domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[userID] = append([]domain.Job{job}, s.cache[userID]...)
}

func (s *JobService) cachePatch(userID string, job domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.cache[userID]
	for i := range list {
		if list[i].ID == job.ID {
			list[i] = job
			return
		}
	}
}

func (s *JobService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
