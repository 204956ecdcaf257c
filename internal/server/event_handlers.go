package server

import (
	"time"

	"fetchfolio/internal/models"
	"fetchfolio/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// resolveDogEvents resolves the dog in the path and builds the resource for
// its event collection, addressed with a zero event ref.
func (s *Server) resolveDogEvents(c *fiber.Ctx) (uint, policy.Resource, bool) {
	dogID, err := s.parseID(c, "dogId")
	if err != nil {
		return 0, policy.Resource{}, false
	}

	dog, _, err := s.resolver.DogChain(c.Context(), dogID)
	if err != nil {
		_ = respondError(c, err)
		return 0, policy.Resource{}, false
	}

	res := policy.EventResource(
		dog.OwnerUsername,
		policy.DogRef{ID: dog.ID, Private: dog.Private},
		policy.EventRef{},
	)
	return dogID, res, true
}

// resolveEvent resolves the event in the path and checks it belongs to the
// dog in the path.
func (s *Server) resolveEvent(c *fiber.Ctx) (*models.Event, policy.Resource, bool) {
	dogID, err := s.parseID(c, "dogId")
	if err != nil {
		return nil, policy.Resource{}, false
	}
	eventID, err := s.parseID(c, "eventId")
	if err != nil {
		return nil, policy.Resource{}, false
	}

	event, res, err := s.resolver.EventChain(c.Context(), eventID)
	if err != nil {
		_ = respondError(c, err)
		return nil, policy.Resource{}, false
	}
	if event.DogID != dogID {
		_ = respondError(c, models.NewNotFoundError("Event", eventID))
		return nil, policy.Resource{}, false
	}

	return event, res, true
}

// ListEvents handles GET /api/dogs/current/:dogId/events
func (s *Server) ListEvents(c *fiber.Ctx) error {
	dogID, res, ok := s.resolveDogEvents(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionRead, res); err != nil {
		return nil
	}

	events, err := s.eventRepo.ListByDog(c.Context(), dogID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"events": events})
}

// CreateEvent handles POST /api/dogs/current/:dogId/events. start_time
// defaults to now and end_time to one hour after the start.
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	dogID, res, ok := s.resolveDogEvents(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionCreate, res); err != nil {
		return nil
	}

	var req struct {
		Title     string     `json:"title"`
		StartTime *time.Time `json:"start_time"`
		EndTime   *time.Time `json:"end_time"`
		Location  string     `json:"location"`
		Type      string     `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" || req.Type == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and type are required"))
	}

	typeOK, err := s.referenceRepo.EventTypeExists(c.Context(), req.Type)
	if err != nil {
		return respondError(c, err)
	}
	if !typeOK {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown event type: "+req.Type))
	}

	event := &models.Event{
		DogID:    dogID,
		Title:    req.Title,
		Location: req.Location,
		Type:     req.Type,
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	} else {
		event.StartTime = time.Now()
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	} else {
		event.EndTime = event.StartTime.Add(time.Hour)
	}

	if err := s.eventRepo.Create(c.Context(), event); err != nil {
		return respondError(c, err)
	}

	return c.JSON(event)
}

// GetEvent handles GET /api/dogs/current/:dogId/events/:eventId
func (s *Server) GetEvent(c *fiber.Ctx) error {
	event, res, ok := s.resolveEvent(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionRead, res); err != nil {
		return nil
	}

	return c.JSON(event)
}

// UpdateEvent handles PATCH /api/dogs/current/:dogId/events/:eventId.
// dog_id is not an accepted field; events never move between dogs.
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	event, res, ok := s.resolveEvent(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionUpdate, res); err != nil {
		return nil
	}

	var req struct {
		Title     *string    `json:"title"`
		StartTime *time.Time `json:"start_time"`
		EndTime   *time.Time `json:"end_time"`
		Location  *string    `json:"location"`
		Type      *string    `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	fields := map[string]any{}
	if req.Title != nil {
		if *req.Title == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Title cannot be empty"))
		}
		fields["title"] = *req.Title
	}
	if req.StartTime != nil {
		fields["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		fields["end_time"] = *req.EndTime
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Type != nil {
		typeOK, err := s.referenceRepo.EventTypeExists(c.Context(), *req.Type)
		if err != nil {
			return respondError(c, err)
		}
		if !typeOK {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unknown event type: "+*req.Type))
		}
		fields["type"] = *req.Type
	}

	if err := s.eventRepo.UpdateFields(c.Context(), event.ID, fields); err != nil {
		return respondError(c, err)
	}

	updated, err := s.eventRepo.GetByID(c.Context(), event.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

// DeleteEvent handles DELETE /api/dogs/current/:dogId/events/:eventId
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	event, res, ok := s.resolveEvent(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionDelete, res); err != nil {
		return nil
	}

	if err := s.eventRepo.Delete(c.Context(), event.ID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Event " + event.Title + " deleted"})
}
