package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Sam8709/repair-track-25-08/internal/api/dto"
	"github.com/Sam8709/repair-track-25-08/internal/auth"
	"github.com/Sam8709/repair-track-25-08/internal/domain"
	"github.com/Sam8709/repair-track-25-08/internal/service"
	apperrors "github.com/Sam8709/repair-track-25-08/pkg/util"
)

// ProfileHandler exposes the shop profile endpoints.
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: profileService}
}

// Get GET /api/profile. A missing profile is the normal first-login
// state and renders as data: null.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	profile, err := h.service.Get(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

// Save PUT /api/profile (create-or-replace keyed by user id).
func (h *ProfileHandler) Save(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SaveProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	profile, err := h.service.Save(c.UserContext(), user.ID, service.ProfileInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		ShopName: req.ShopName,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(profile)})
}

func profileResponse(profile *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        profile.ID,
		FullName:  profile.FullName,
		Phone:     profile.Phone,
		ShopName:  profile.ShopName,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}
