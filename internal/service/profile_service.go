package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Sam8709/repair-track-25-08/internal/domain"
	"github.com/Sam8709/repair-track-25-08/internal/repository"
)

// ProfileService manages the single per-user shop profile.
type ProfileService struct {
	profiles repository.ProfileRepository
}

// ProfileInput describes the save-profile payload.
type ProfileInput struct {
	FullName string `validate:"required"`
	Phone    string `validate:"required,inphone"`
	ShopName string `validate:"required"`
}

// NewProfileService constructs the service.
func NewProfileService(profiles repository.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Get returns the user's profile. A missing profile is the normal
// first-login state, reported as (nil, nil) rather than an error.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// Save validates and upserts the profile keyed by the user id.
func (s *ProfileService) Save(ctx context.Context, userID string, input ProfileInput) (*domain.Profile, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:       userID,
		FullName: strings.TrimSpace(input.FullName),
		Phone:    strings.TrimSpace(input.Phone),
		ShopName: strings.TrimSpace(input.ShopName),
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
