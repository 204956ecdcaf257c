package server

import (
	"fetchfolio/internal/middleware"
	"fetchfolio/internal/models"
	"fetchfolio/internal/observability"
	"fetchfolio/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetCurrentUser handles GET /api/users/current. The profile includes the
// user's dogs, private ones included; owners always see their own.
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user := s.requireUser(c)
	if user == nil {
		return nil
	}

	full, err := s.userRepo.GetWithDogs(c.Context(), user.Username)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(full)
}

// UpdateCurrentUser handles PATCH /api/users/current. Pointer fields make the
// update partial: only keys present in the body are written. Username is not
// accepted; it is the primary key and immutable.
func (s *Server) UpdateCurrentUser(c *fiber.Ctx) error {
	user := s.requireUser(c)
	if user == nil {
		return nil
	}

	var req struct {
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		Bio       *string `json:"bio"`
		Location  *string `json:"location"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	fields := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Name cannot be empty"))
		}
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		if err := validation.ValidateEmail(*req.Email); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		fields["email"] = *req.Email
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.AvatarURL != nil {
		fields["avatar_url"] = *req.AvatarURL
	}

	if err := s.userRepo.UpdateFields(c.Context(), user.Username, fields); err != nil {
		return respondError(c, err)
	}

	updated, err := s.userRepo.GetWithDogs(c.Context(), user.Username)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

// UpdatePassword handles PUT /api/users/current/password. The old password
// must verify against the stored hash before the new one is accepted.
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	user := s.requireUser(c)
	if user == nil {
		return nil
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Current password is incorrect"))
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if err := s.userRepo.UpdatePassword(c.Context(), user.Username, string(hashed)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Password updated"})
}

// DeleteCurrentUser handles DELETE /api/users/current. Everything reachable
// through the ownership graph goes with the account, atomically.
func (s *Server) DeleteCurrentUser(c *fiber.Ctx) error {
	user := s.requireUser(c)
	if user == nil {
		return nil
	}

	if err := s.userRepo.DeleteCascade(c.Context(), user.Username); err != nil {
		return respondError(c, err)
	}

	observability.CascadeDeletes.WithLabelValues("user").Inc()
	middleware.Logger.InfoContext(c.UserContext(), "user account deleted",
		"username", user.Username)

	return c.JSON(fiber.Map{"message": "User " + user.Username + " deleted"})
}
