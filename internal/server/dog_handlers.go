package server

import (
	"time"

	"fetchfolio/internal/middleware"
	"fetchfolio/internal/models"
	"fetchfolio/internal/observability"
	"fetchfolio/internal/policy"
	"fetchfolio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListPublicDogs handles GET /api/dogs. Returns every dog whose owner has
// not marked it private. Requires a resolved identity; anonymous callers see
// nothing, not even public dogs.
func (s *Server) ListPublicDogs(c *fiber.Ctx) error {
	if s.requireUser(c) == nil {
		return nil
	}

	dogs, err := s.dogRepo.ListPublic(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"dogs": dogs})
}

// ListMyDogs handles GET /api/dogs/current. Private dogs are always visible
// to their own owner.
func (s *Server) ListMyDogs(c *fiber.Ctx) error {
	user := s.requireUser(c)
	if user == nil {
		return nil
	}

	dogs, err := s.dogRepo.ListByOwner(c.Context(), user.Username)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"dogs": dogs})
}

// CreateDog handles POST /api/dogs/current. The owner is implicit: dogs are
// always created under the authenticated user, never under a named one.
func (s *Server) CreateDog(c *fiber.Ctx) error {
	user := s.requireUser(c)
	if user == nil {
		return nil
	}

	var req struct {
		Name      string     `json:"name"`
		BirthDate *time.Time `json:"birth_date"`
		Breed     string     `json:"breed"`
		Size      string     `json:"size"`
		Bio       string     `json:"bio"`
		ImageURL  string     `json:"image_url"`
		Private   *bool      `json:"private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Name == "" || req.Breed == "" || req.Size == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name, breed, and size are required"))
	}
	if err := validation.ValidateDogSize(req.Size); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	dog := &models.Dog{
		Name:          req.Name,
		Breed:         req.Breed,
		Size:          req.Size,
		Bio:           req.Bio,
		ImageURL:      req.ImageURL,
		OwnerUsername: user.Username,
	}
	if req.BirthDate != nil {
		dog.BirthDate = *req.BirthDate
	} else {
		dog.BirthDate = time.Now()
	}
	if dog.ImageURL == "" {
		dog.ImageURL = models.DefaultDogImageURL
	}
	if req.Private != nil {
		dog.Private = *req.Private
	}

	if err := s.dogRepo.Create(c.Context(), dog); err != nil {
		return respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "dog created",
		"dog_id", dog.ID, "owner", user.Username)

	return c.JSON(dog)
}

// GetDog handles GET /api/dogs/:dogId. The owner sees the full record with
// nested commands and events; other users see the dog record alone, and only
// if the dog is public. Commands, notes and events stay owner-only, same as
// the nested child endpoints.
// A denied read of a private dog is indistinguishable from a missing dog.
func (s *Server) GetDog(c *fiber.Ctx) error {
	dogID, err := s.parseID(c, "dogId")
	if err != nil {
		return nil
	}

	dog, res, err := s.resolver.DogChain(c.Context(), dogID)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.authorize(c, policy.ActionRead, res); err != nil {
		return nil
	}

	user := middleware.CurrentUser(c)
	if user == nil || user.Username != dog.OwnerUsername {
		return c.JSON(dog)
	}

	full, err := s.dogRepo.GetWithChildren(c.Context(), dogID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(full)
}

// UpdateDog handles PATCH /api/dogs/current/:dogId. Only the supplied fields
// change; owner_username is not an accepted field.
func (s *Server) UpdateDog(c *fiber.Ctx) error {
	dogID, err := s.parseID(c, "dogId")
	if err != nil {
		return nil
	}

	_, res, err := s.resolver.DogChain(c.Context(), dogID)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.authorize(c, policy.ActionUpdate, res); err != nil {
		return nil
	}

	var req struct {
		Name      *string    `json:"name"`
		BirthDate *time.Time `json:"birth_date"`
		Breed     *string    `json:"breed"`
		Size      *string    `json:"size"`
		Bio       *string    `json:"bio"`
		ImageURL  *string    `json:"image_url"`
		Private   *bool      `json:"private"`
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
	if req.BirthDate != nil {
		fields["birth_date"] = *req.BirthDate
	}
	if req.Breed != nil {
		fields["breed"] = *req.Breed
	}
	if req.Size != nil {
		if err := validation.ValidateDogSize(*req.Size); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		fields["size"] = *req.Size
	}
	if req.Bio != nil {
		fields["bio"] = *req.Bio
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Private != nil {
		fields["private"] = *req.Private
	}

	if err := s.dogRepo.UpdateFields(c.Context(), dogID, fields); err != nil {
		return respondError(c, err)
	}

	dog, err := s.dogRepo.GetWithChildren(c.Context(), dogID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(dog)
}

// DeleteDog handles DELETE /api/dogs/current/:dogId. Commands, command notes
// and events go with the dog in one transaction.
func (s *Server) DeleteDog(c *fiber.Ctx) error {
	dogID, err := s.parseID(c, "dogId")
	if err != nil {
		return nil
	}

	dog, res, err := s.resolver.DogChain(c.Context(), dogID)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.authorize(c, policy.ActionDelete, res); err != nil {
		return nil
	}

	if err := s.dogRepo.DeleteCascade(c.Context(), dogID); err != nil {
		return respondError(c, err)
	}

	observability.CascadeDeletes.WithLabelValues("dog").Inc()
	middleware.Logger.InfoContext(c.UserContext(), "dog deleted",
		"dog_id", dogID, "owner", dog.OwnerUsername)

	return c.JSON(fiber.Map{"message": "Dog " + dog.Name + " deleted"})
}
