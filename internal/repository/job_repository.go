package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sam8709/repair-track-25-08/internal/domain"
	"github.com/Sam8709/repair-track-25-08/internal/jobcode"
)

// JobRepository encapsulates job persistence. Create assigns the row id,
// job code and timestamps server-side, atomically with the insert.
// UpdateStatus also reports the status it replaced.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	UpdateStatus(ctx context.Context, userID, jobID string, status domain.JobStatus) (*domain.Job, domain.JobStatus, error)
	ListByUser(ctx context.Context, userID string, status *domain.JobStatus) ([]domain.Job, error)
	GetByCode(ctx context.Context, code string) (*domain.Job, error)
}

type jobRepository struct {
	pool   *pgxpool.Pool
	prefix string
}

// NewJobRepository returns a Postgres-backed implementation. The prefix
// is rendered into every generated job code.
func NewJobRepository(pool *pgxpool.Pool, prefix string) JobRepository {
	return &jobRepository{pool: pool, prefix: prefix}
}

const jobColumns = `id, user_id, job_code, customer_name, customer_whatsapp,
        item_name, problem, price, description, status, created_at, updated_at`

// Create inserts the job and allocates its code in one transaction. The
// counter upsert takes a row lock, so two concurrent creates for the
// same user serialize and can never receive the same sequence number.
func (r *jobRepository) Create(ctx context.Context, job *domain.Job) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	year := time.Now().Year()

	const counterQuery = `
        INSERT INTO job_code_counters (user_id, year, last_seq)
        VALUES ($1, $2, 1)
        ON CONFLICT (user_id, year)
        DO UPDATE SET last_seq = job_code_counters.last_seq + 1
        RETURNING last_seq`
	var seq int
	if err := tx.QueryRow(ctx, counterQuery, job.UserID, year).Scan(&seq); err != nil {
		return err
	}
	job.JobCode = jobcode.Format(r.prefix, year, seq)

	const insertQuery = `
        INSERT INTO jobs (user_id, job_code, customer_name, customer_whatsapp,
            item_name, problem, price, description, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertQuery,
		job.UserID,
		job.JobCode,
		job.CustomerName,
		job.CustomerWhatsApp,
		job.ItemName,
		job.Problem,
		job.Price,
		job.Description,
		job.Status,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateStatus updates the status of a job owned by userID and returns
// the persisted row together with the status it replaced. The outer
// select joins against the statement's pre-update snapshot of jobs, so
// the prior status comes from the same statement and concurrent updates
// cannot observe a stale value. Missing or foreign jobs yield
// pgx.ErrNoRows.
func (r *jobRepository) UpdateStatus(ctx context.Context, userID, jobID string, status domain.JobStatus) (*domain.Job, domain.JobStatus, error) {
	const query = `
        WITH updated AS (
            UPDATE jobs SET status=$1, updated_at=NOW()
            WHERE id=$2 AND user_id=$3
            RETURNING ` + jobColumns + `
        )
        SELECT u.id, u.user_id, u.job_code, u.customer_name, u.customer_whatsapp,
               u.item_name, u.problem, u.price, u.description, u.status,
               u.created_at, u.updated_at, prior.status
        FROM updated u JOIN jobs prior ON prior.id = u.id`

	var job domain.Job
	var oldStatus domain.JobStatus
	if err := r.pool.QueryRow(ctx, query, status, jobID, userID).Scan(
		&job.ID,
		&job.UserID,
		&job.JobCode,
		&job.CustomerName,
		&job.CustomerWhatsApp,
		&job.ItemName,
		&job.Problem,
		&job.Price,
		&job.Description,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
		&oldStatus,
	); err != nil {
		return nil, "", err
	}
	return &job, oldStatus, nil
}

// ListByUser returns the user's jobs newest first, optionally filtered
// to a single status.
func (r *jobRepository) ListByUser(ctx context.Context, userID string, status *domain.JobStatus) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE user_id=$1`
	args := []any{userID}
	if status != nil {
		args = append(args, *status)
		query += ` AND status=$2`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// GetByCode resolves a job by its printed code for the public tracking
// route. Codes are only unique within one shop, so a code held by more
// than one shop yields pgx.ErrNoRows rather than exposing an arbitrary
// shop's job on an unauthenticated route.
func (r *jobRepository) GetByCode(ctx context.Context, code string) (*domain.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE job_code=$1 LIMIT 2`
	rows, err := r.pool.Query(ctx, query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, err
	}
	if len(jobs) != 1 {
		return nil, pgx.ErrNoRows
	}
	return &jobs[0], nil
}

func scanJobs(rows pgx.Rows) ([]domain.Job, error) {
	var result []domain.Job
	for rows.Next() {
		var job domain.Job
		if err := rows.Scan(
			&job.ID,
			&job.UserID,
			&job.JobCode,
			&job.CustomerName,
			&job.CustomerWhatsApp,
			&job.ItemName,
			&job.Problem,
			&job.Price,
			&job.Description,
			&job.Status,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	return result, rows.Err()
}
