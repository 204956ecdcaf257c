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

// resolveDogCommands resolves the dog in the path and builds the resource for
// its command collection. The collection is addressed with a zero command ref
// so the public-dog read carve-out never reaches a dog's children.
func (s *Server) resolveDogCommands(c *fiber.Ctx) (uint, policy.Resource, bool) {
	dogID, err := s.parseID(c, "dogId")
	if err != nil {
		return 0, policy.Resource{}, false
	}

	dog, _, err := s.resolver.DogChain(c.Context(), dogID)
	if err != nil {
		_ = respondError(c, err)
		return 0, policy.Resource{}, false
	}

	res := policy.CommandResource(
		dog.OwnerUsername,
		policy.DogRef{ID: dog.ID, Private: dog.Private},
		policy.CommandRef{},
	)
	return dogID, res, true
}

// resolveCommand resolves the command in the path and checks it actually
// belongs to the dog in the path; a mismatch is a 404, not a 401, so the
// response does not confirm the command exists elsewhere.
func (s *Server) resolveCommand(c *fiber.Ctx) (*models.Command, policy.Resource, bool) {
	dogID, err := s.parseID(c, "dogId")
	if err != nil {
		return nil, policy.Resource{}, false
	}
	commandID, err := s.parseID(c, "commandId")
	if err != nil {
		return nil, policy.Resource{}, false
	}

	cmd, res, err := s.resolver.CommandChain(c.Context(), commandID)
	if err != nil {
		_ = respondError(c, err)
		return nil, policy.Resource{}, false
	}
	if cmd.DogID != dogID {
		_ = respondError(c, models.NewNotFoundError("Command", commandID))
		return nil, policy.Resource{}, false
	}

	return cmd, res, true
}

// ListCommands handles GET /api/dogs/current/:dogId/commands
func (s *Server) ListCommands(c *fiber.Ctx) error {
	dogID, res, ok := s.resolveDogCommands(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionRead, res); err != nil {
		return nil
	}

	commands, err := s.commandRepo.ListByDog(c.Context(), dogID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"commands": commands})
}

// CreateCommand handles POST /api/dogs/current/:dogId/commands. A template_id
// prefills the descriptive fields from a seeded starter command; any field
// supplied in the body wins over the template value.
func (s *Server) CreateCommand(c *fiber.Ctx) error {
	dogID, res, ok := s.resolveDogCommands(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionCreate, res); err != nil {
		return nil
	}

	var req struct {
		TemplateID          *uint      `json:"template_id"`
		Name                string     `json:"name"`
		Type                string     `json:"type"`
		Description         string     `json:"description"`
		VoiceCommand        string     `json:"voice_command"`
		VisualCommand       string     `json:"visual_command"`
		CommandVideoURL     string     `json:"command_video_url"`
		PerformanceVideoURL string     `json:"performance_video_url"`
		Proficiency         *int       `json:"proficiency"`
		DateIntroduced      *time.Time `json:"date_introduced"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	cmd := &models.Command{
		DogID:               dogID,
		Name:                req.Name,
		Type:                req.Type,
		Description:         req.Description,
		VoiceCommand:        req.VoiceCommand,
		VisualCommand:       req.VisualCommand,
		CommandVideoURL:     req.CommandVideoURL,
		PerformanceVideoURL: req.PerformanceVideoURL,
		Proficiency:         1,
	}

	if req.TemplateID != nil {
		tmpl, err := s.referenceRepo.GetCommandTemplate(c.Context(), *req.TemplateID)
		if err != nil {
			return respondError(c, err)
		}
		if cmd.Name == "" {
			cmd.Name = tmpl.Name
		}
		if cmd.Type == "" {
			cmd.Type = tmpl.Type
		}
		if cmd.Description == "" {
			cmd.Description = tmpl.Description
		}
		if cmd.VoiceCommand == "" {
			cmd.VoiceCommand = tmpl.VoiceCommand
		}
		if cmd.VisualCommand == "" {
			cmd.VisualCommand = tmpl.VisualCommand
		}
		if cmd.CommandVideoURL == "" {
			cmd.CommandVideoURL = tmpl.CommandVideoURL
		}
	}

	if cmd.Name == "" || cmd.Type == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name and type are required"))
	}

	typeOK, err := s.referenceRepo.CommandTypeExists(c.Context(), cmd.Type)
	if err != nil {
		return respondError(c, err)
	}
	if !typeOK {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown command type: "+cmd.Type))
	}

	if req.Proficiency != nil {
		if err := validation.ValidateProficiency(*req.Proficiency); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		cmd.Proficiency = *req.Proficiency
	}
	if req.DateIntroduced != nil {
		cmd.DateIntroduced = *req.DateIntroduced
	} else {
		cmd.DateIntroduced = time.Now()
	}

	if err := s.commandRepo.Create(c.Context(), cmd); err != nil {
		return respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "command created",
		"command_id", cmd.ID, "dog_id", dogID)

	return c.JSON(cmd)
}

// GetCommand handles GET /api/dogs/current/:dogId/commands/:commandId
func (s *Server) GetCommand(c *fiber.Ctx) error {
	cmd, res, ok := s.resolveCommand(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionRead, res); err != nil {
		return nil
	}

	full, err := s.commandRepo.GetWithNotes(c.Context(), cmd.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(full)
}

// UpdateCommand handles PATCH /api/dogs/current/:dogId/commands/:commandId.
// dog_id is not an accepted field; commands never move between dogs.
func (s *Server) UpdateCommand(c *fiber.Ctx) error {
	cmd, res, ok := s.resolveCommand(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionUpdate, res); err != nil {
		return nil
	}

	var req struct {
		Name                *string    `json:"name"`
		Type                *string    `json:"type"`
		Description         *string    `json:"description"`
		VoiceCommand        *string    `json:"voice_command"`
		VisualCommand       *string    `json:"visual_command"`
		CommandVideoURL     *string    `json:"command_video_url"`
		PerformanceVideoURL *string    `json:"performance_video_url"`
		Proficiency         *int       `json:"proficiency"`
		DateIntroduced      *time.Time `json:"date_introduced"`
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
	if req.Type != nil {
		typeOK, err := s.referenceRepo.CommandTypeExists(c.Context(), *req.Type)
		if err != nil {
			return respondError(c, err)
		}
		if !typeOK {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Unknown command type: "+*req.Type))
		}
		fields["type"] = *req.Type
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.VoiceCommand != nil {
		fields["voice_command"] = *req.VoiceCommand
	}
	if req.VisualCommand != nil {
		fields["visual_command"] = *req.VisualCommand
	}
	if req.CommandVideoURL != nil {
		fields["command_video_url"] = *req.CommandVideoURL
	}
	if req.PerformanceVideoURL != nil {
		fields["performance_video_url"] = *req.PerformanceVideoURL
	}
	if req.Proficiency != nil {
		if err := validation.ValidateProficiency(*req.Proficiency); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		fields["proficiency"] = *req.Proficiency
	}
	if req.DateIntroduced != nil {
		fields["date_introduced"] = *req.DateIntroduced
	}

	if err := s.commandRepo.UpdateFields(c.Context(), cmd.ID, fields); err != nil {
		return respondError(c, err)
	}

	updated, err := s.commandRepo.GetWithNotes(c.Context(), cmd.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

// DeleteCommand handles DELETE /api/dogs/current/:dogId/commands/:commandId.
// The command's notes are removed in the same transaction.
func (s *Server) DeleteCommand(c *fiber.Ctx) error {
	cmd, res, ok := s.resolveCommand(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionDelete, res); err != nil {
		return nil
	}

	if err := s.commandRepo.DeleteCascade(c.Context(), cmd.ID); err != nil {
		return respondError(c, err)
	}

	observability.CascadeDeletes.WithLabelValues("command").Inc()

	return c.JSON(fiber.Map{"message": "Command " + cmd.Name + " deleted"})
}
