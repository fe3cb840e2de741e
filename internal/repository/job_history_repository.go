package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sam8709/repair-track-25-08/internal/domain"
)

// JobHistoryRepository records status transitions per job.
type JobHistoryRepository interface {
	Create(ctx context.Context, entry *domain.JobHistory) error
	ListByJob(ctx context.Context, jobID string) ([]domain.JobHistory, error)
}

type jobHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewJobHistoryRepository returns a Postgres-backed implementation.
func NewJobHistoryRepository(pool *pgxpool.Pool) JobHistoryRepository {
	return &jobHistoryRepository{pool: pool}
}

func (r *jobHistoryRepository) Create(ctx context.Context, entry *domain.JobHistory) error {
	const query = `
        INSERT INTO job_status_history (job_id, old_status, new_status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		entry.JobID,
		entry.OldStatus,
		entry.NewStatus,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *jobHistoryRepository) ListByJob(ctx context.Context, jobID string) ([]domain.JobHistory, error) {
	const query = `
        SELECT id, job_id, old_status, new_status, created_at
        FROM job_status_history WHERE job_id=$1
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobHistory
	for rows.Next() {
		var entry domain.JobHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.JobID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
