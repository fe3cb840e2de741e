package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sam8709/repair-track-25-08/internal/config"
	"github.com/Sam8709/repair-track-25-08/internal/domain"
	"github.com/Sam8709/repair-track-25-08/internal/events"
	"github.com/Sam8709/repair-track-25-08/internal/idempotency"
	"github.com/Sam8709/repair-track-25-08/internal/jobcode"
	apperrors "github.com/Sam8709/repair-track-25-08/pkg/util"
)

// fakeJobRepo mimics the Postgres repository, including the atomic
// per-user/year code allocation performed inside the insert.
type fakeJobRepo struct {
	mu        sync.Mutex
	jobs      map[string]domain.Job
	order     []string
	counters  map[string]int
	creates   int
	updates   int
	createErr error
	updateErr error

	// when set, Create signals entered and blocks until unblock closes
	entered chan struct{}
	unblock chan struct{}
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{
		jobs:     make(map[string]domain.Job),
		counters: make(map[string]int),
	}
}

func (f *fakeJobRepo) Create(_ context.Context, job *domain.Job) error {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.unblock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.creates++
	year := time.Now().Year()
	key := fmt.Sprintf("%s|%d", job.UserID, year)
	f.counters[key]++
	job.ID = uuid.NewString()
	job.JobCode = jobcode.Format("RT", year, f.counters[key])
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	f.jobs[job.ID] = *job
	f.order = append(f.order, job.ID)
	return nil
}

func (f *fakeJobRepo) UpdateStatus(_ context.Context, userID, jobID string, status domain.JobStatus) (*domain.Job, domain.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, "", f.updateErr
	}
	f.updates++
	job, ok := f.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, "", pgx.ErrNoRows
	}
	oldStatus := job.Status
	job.Status = status
	job.UpdatedAt = time.Now()
	f.jobs[jobID] = job
	return &job, oldStatus, nil
}

func (f *fakeJobRepo) ListByUser(_ context.Context, userID string, status *domain.JobStatus) ([]domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Job
	for i := len(f.order) - 1; i >= 0; i-- {
		job := f.jobs[f.order[i]]
		if job.UserID != userID {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, job)
	}
	return result, nil
}

func (f *fakeJobRepo) GetByCode(_ context.Context, code string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var found []domain.Job
	for _, id := range f.order {
		if f.jobs[id].JobCode == code {
			found = append(found, f.jobs[id])
		}
	}
	if len(found) != 1 {
		return nil, pgx.ErrNoRows
	}
	job := found[0]
	return &job, nil
}

func (f *fakeJobRepo) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

type fakeHistoryRepo struct {
	mu        sync.Mutex
	entries   []domain.JobHistory
	createErr error
}

func (f *fakeHistoryRepo) Create(_ context.Context, entry *domain.JobHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) ListByJob(_ context.Context, jobID string) ([]domain.JobHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.JobHistory
	for _, entry := range f.entries {
		if entry.JobID == jobID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeHistoryRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func newTestJobService(repo *fakeJobRepo, history *fakeHistoryRepo, sender *fakeSender, dedup idempotency.Store) *JobService {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewJobService(JobDependencies{
		JobRepo:      repo,
		HistoryRepo:  history,
		Dispatcher:   dispatcher,
		RequestDedup: dedup,
		Logger:       zap.NewNop(),
	})
	notifications := NewNotificationService(dispatcher, sender, zap.NewNop(), nil, config.WhatsAppConfig{DefaultCountryCode: "+91"})
	notifications.RegisterHandlers()
	return svc
}

func validInput() JobCreateInput {
	return JobCreateInput{
		CustomerName:     "Asha",
		CustomerWhatsApp: "9876543210",
		ItemName:         "Phone",
		Problem:          "Screen cracked",
		Price:            500,
	}
}

func TestCreateJobAssignsSequentialCodeAndNotifies(t *testing.T) {
	repo := newFakeJobRepo()
	sender := newFakeSender()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, sender, nil)

	// three prior jobs already exist for this user this year
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &domain.Job{
			UserID:           "user-1",
			CustomerName:     "Prior",
			CustomerWhatsApp: "9876500000",
			ItemName:         "Laptop",
			Problem:          "Battery",
			Status:           domain.JobStatusReceived,
		}))
	}

	job, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusReceived, job.Status)
	assert.Equal(t, jobcode.Format("RT", time.Now().Year(), 4), job.JobCode)
	assert.Regexp(t, `^RT-\d{4}-\d{6}$`, job.JobCode)

	cached := svc.CachedJobs("user-1")
	require.Len(t, cached, 1, "create prepends only the new job")
	assert.Equal(t, job.ID, cached[0].ID)

	assert.Eventually(t, func() bool { return sender.attemptCount() == 1 }, time.Second, 10*time.Millisecond)
	msg := sender.lastMessage()
	assert.Equal(t, "+919876543210", msg.To)
	assert.Contains(t, msg.Body, "Asha")
	assert.Contains(t, msg.Body, job.JobCode)
}

func TestCreateJobValidationStopsBeforeAnyCall(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*JobCreateInput)
	}{
		{"missing customer name", func(in *JobCreateInput) { in.CustomerName = "" }},
		{"missing whatsapp", func(in *JobCreateInput) { in.CustomerWhatsApp = "" }},
		{"invalid whatsapp", func(in *JobCreateInput) { in.CustomerWhatsApp = "12345" }},
		{"missing item", func(in *JobCreateInput) { in.ItemName = "" }},
		{"missing problem", func(in *JobCreateInput) { in.Problem = "" }},
		{"negative price", func(in *JobCreateInput) { in.Price = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeJobRepo()
			sender := newFakeSender()
			svc := newTestJobService(repo, &fakeHistoryRepo{}, sender, nil)

			input := validInput()
			tc.mutate(&input)

			_, err := svc.CreateJob(context.Background(), "user-1", input)
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Equal(t, 0, repo.createCount())
			assert.Equal(t, 0, sender.attemptCount())
		})
	}
}

func TestCreateJobRepositoryFailureLeavesCacheUnchanged(t *testing.T) {
	repo := newFakeJobRepo()
	sender := newFakeSender()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, sender, nil)

	require.NoError(t, repo.Create(context.Background(), &domain.Job{
		UserID: "user-1", CustomerName: "Prior", CustomerWhatsApp: "9876500000",
		ItemName: "Laptop", Problem: "Battery", Status: domain.JobStatusReceived,
	}))
	_, err := svc.ListJobs(context.Background(), "user-1", nil)
	require.NoError(t, err)
	before := svc.CachedJobs("user-1")

	repo.createErr = fmt.Errorf("connection refused")
	_, err = svc.CreateJob(context.Background(), "user-1", validInput())
	require.Error(t, err)

	assert.Equal(t, before, svc.CachedJobs("user-1"))
	assert.Never(t, func() bool { return sender.attemptCount() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestCreateJobValidationFailureKeepsRequestID(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, newFakeSender(), idempotency.NewMemoryStore())

	input := validInput()
	input.RequestID = "req-77"
	input.Price = -1

	_, err := svc.CreateJob(context.Background(), "user-1", input)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	// retrying with corrected input and the same request id must work
	input.Price = 500
	job, err := svc.CreateJob(context.Background(), "user-1", input)
	require.NoError(t, err)
	assert.NotEmpty(t, job.JobCode)

	// the id is spent only by the create that passed validation
	_, err = svc.CreateJob(context.Background(), "user-1", input)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, 1, repo.createCount())
}

func TestCreateJobRejectsDuplicateRequestID(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, newFakeSender(), idempotency.NewMemoryStore())

	input := validInput()
	input.RequestID = "req-42"

	_, err := svc.CreateJob(context.Background(), "user-1", input)
	require.NoError(t, err)

	_, err = svc.CreateJob(context.Background(), "user-1", input)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	assert.Equal(t, 1, repo.createCount())
}

func TestCreateJobInFlightGuard(t *testing.T) {
	repo := newFakeJobRepo()
	repo.entered = make(chan struct{}, 1)
	repo.unblock = make(chan struct{})
	svc := newTestJobService(repo, &fakeHistoryRepo{}, newFakeSender(), nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.CreateJob(context.Background(), "user-1", validInput())
		firstDone <- err
	}()

	<-repo.entered // first create is now inside the repository write

	_, err := svc.CreateJob(context.Background(), "user-1", validInput())
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)

	close(repo.unblock)
	require.NoError(t, <-firstDone)
}

func TestConcurrentCreatesNeverDuplicateCodes(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, newFakeSender(), nil)

	const attempts = 10
	codes := make(chan string, attempts)
	errs := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, err := svc.CreateJob(context.Background(), "user-1", validInput())
			if err != nil {
				errs <- err
				return
			}
			codes <- job.JobCode
		}()
	}
	wg.Wait()
	close(codes)
	close(errs)

	seen := map[string]bool{}
	for code := range codes {
		assert.False(t, seen[code], "duplicate job code %s", code)
		seen[code] = true
	}
	assert.NotEmpty(t, seen, "at least one create must win")

	for err := range errs {
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CONFLICT", domainErr.Code)
	}
}

func TestUpdateStatusPatchesCacheAndRecordsHistory(t *testing.T) {
	repo := newFakeJobRepo()
	history := &fakeHistoryRepo{}
	sender := newFakeSender()
	svc := newTestJobService(repo, history, sender, nil)

	job, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return sender.attemptCount() == 1 }, time.Second, 10*time.Millisecond)

	updated, err := svc.UpdateStatus(context.Background(), "user-1", job.ID, domain.JobStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInProgress, updated.Status)

	cached := svc.CachedJobs("user-1")
	require.Len(t, cached, 1)
	assert.Equal(t, domain.JobStatusInProgress, cached[0].Status)

	require.Equal(t, 1, history.count())
	entries, err := history.ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusReceived, entries[0].OldStatus)
	assert.Equal(t, domain.JobStatusInProgress, entries[0].NewStatus)

	assert.Eventually(t, func() bool { return sender.attemptCount() == 2 }, time.Second, 10*time.Millisecond)
	msg := sender.lastMessage()
	assert.Contains(t, msg.Body, job.JobCode)
	assert.Contains(t, msg.Body, string(domain.JobStatusInProgress))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, newFakeSender(), nil)

	job, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "user-1", job.ID, domain.JobStatus("Exploded"))
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, 0, repo.updates)
}

func TestUpdateStatusHidesForeignJobs(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, newFakeSender(), nil)

	job, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "user-2", job.ID, domain.JobStatusCompleted)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestUpdateStatusSucceedsWhenNotificationFails(t *testing.T) {
	repo := newFakeJobRepo()
	sender := newFakeSender()
	sender.failWith(fmt.Errorf("provider down"))
	svc := newTestJobService(repo, &fakeHistoryRepo{}, sender, nil)

	job, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), "user-1", job.ID, domain.JobStatusCompleted)
	require.NoError(t, err, "delivery failure must never surface")
	assert.Equal(t, domain.JobStatusCompleted, updated.Status)
	assert.Eventually(t, func() bool { return sender.attemptCount() == 2 }, time.Second, 10*time.Millisecond)
}

func TestListJobsNewestFirstWithFilter(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, newFakeSender(), nil)

	first, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)
	second, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "user-1", first.ID, domain.JobStatusCompleted)
	require.NoError(t, err)

	all, err := svc.ListJobs(context.Background(), "user-1", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	completed := domain.JobStatusCompleted
	filtered, err := svc.ListJobs(context.Background(), "user-1", &completed)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, first.ID, filtered[0].ID)
}

func TestConcurrentStatusUpdatesRecordChainedHistory(t *testing.T) {
	repo := newFakeJobRepo()
	history := &fakeHistoryRepo{}
	svc := newTestJobService(repo, history, newFakeSender(), nil)

	job, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, status := range []domain.JobStatus{domain.JobStatusInProgress, domain.JobStatusCompleted} {
		wg.Add(1)
		go func(s domain.JobStatus) {
			defer wg.Done()
			_, err := svc.UpdateStatus(context.Background(), "user-1", job.ID, s)
			assert.NoError(t, err)
		}(status)
	}
	wg.Wait()

	entries, err := history.ListByJob(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// each audit row records the status the update actually replaced,
	// so the two rows chain from the initial status
	first, second := entries[0], entries[1]
	if second.OldStatus == domain.JobStatusReceived {
		first, second = second, first
	}
	assert.Equal(t, domain.JobStatusReceived, first.OldStatus)
	assert.Equal(t, first.NewStatus, second.OldStatus)
}

func TestTrackByCode(t *testing.T) {
	repo := newFakeJobRepo()
	history := &fakeHistoryRepo{}
	svc := newTestJobService(repo, history, newFakeSender(), nil)

	job, err := svc.CreateJob(context.Background(), "user-1", validInput())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "user-1", job.ID, domain.JobStatusInProgress)
	require.NoError(t, err)

	tracked, timeline, err := svc.TrackByCode(context.Background(), job.JobCode)
	require.NoError(t, err)
	assert.Equal(t, job.ID, tracked.ID)
	require.Len(t, timeline, 1)
	assert.Equal(t, domain.JobStatusInProgress, timeline[0].NewStatus)

	_, _, err = svc.TrackByCode(context.Background(), "not-a-code")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestTrackByCodeAmbiguousAcrossShops(t *testing.T) {
	repo := newFakeJobRepo()
	svc := newTestJobService(repo, &fakeHistoryRepo{}, newFakeSender(), nil)

	jobA, err := svc.CreateJob(context.Background(), "user-a", validInput())
	require.NoError(t, err)
	jobB, err := svc.CreateJob(context.Background(), "user-b", validInput())
	require.NoError(t, err)
	require.Equal(t, jobA.JobCode, jobB.JobCode, "per-shop sequences mint the same first code")

	// a code held by two shops must not resolve to either shop's job
	// on the unauthenticated tracking route
	_, _, err = svc.TrackByCode(context.Background(), jobA.JobCode)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
