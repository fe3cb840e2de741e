package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sam8709/repair-track-25-08/internal/domain"
)

// ProfileRepository persists shop owner profiles, one row per user.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

// Upsert creates or replaces the profile keyed by the owning user id.
func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (id, full_name, phone, shop_name)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE
            SET full_name=EXCLUDED.full_name,
                phone=EXCLUDED.phone,
                shop_name=EXCLUDED.shop_name,
                updated_at=NOW()
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Phone,
		profile.ShopName,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

// GetByUserID returns the profile or pgx.ErrNoRows when none exists yet.
func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	const query = `
        SELECT id, full_name, phone, shop_name, created_at, updated_at
        FROM profiles WHERE id=$1`

	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Phone,
		&profile.ShopName,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
