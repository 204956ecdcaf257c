package server

import (
	"time"

	"fetchfolio/internal/models"
	"fetchfolio/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// resolveCommandNotes resolves the command in the path and builds the
// resource for its note collection, addressed with a zero note ref.
func (s *Server) resolveCommandNotes(c *fiber.Ctx) (*models.Command, policy.Resource, bool) {
	cmd, res, ok := s.resolveCommand(c)
	if !ok {
		return nil, policy.Resource{}, false
	}

	res.Note = &policy.NoteRef{}
	return cmd, res, true
}

// resolveNote resolves the note in the path and checks it belongs to the
// command and dog in the path.
func (s *Server) resolveNote(c *fiber.Ctx) (*models.CommandNote, policy.Resource, bool) {
	cmd, _, ok := s.resolveCommand(c)
	if !ok {
		return nil, policy.Resource{}, false
	}

	noteID, err := s.parseID(c, "noteId")
	if err != nil {
		return nil, policy.Resource{}, false
	}

	note, res, err := s.resolver.NoteChain(c.Context(), noteID)
	if err != nil {
		_ = respondError(c, err)
		return nil, policy.Resource{}, false
	}
	if note.CommandID != cmd.ID {
		_ = respondError(c, models.NewNotFoundError("CommandNote", noteID))
		return nil, policy.Resource{}, false
	}

	return note, res, true
}

// ListCommandNotes handles GET .../commands/:commandId/notes
func (s *Server) ListCommandNotes(c *fiber.Ctx) error {
	cmd, res, ok := s.resolveCommandNotes(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionRead, res); err != nil {
		return nil
	}

	notes, err := s.commandRepo.ListNotes(c.Context(), cmd.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"notes": notes})
}

// CreateCommandNote handles POST .../commands/:commandId/notes
func (s *Server) CreateCommandNote(c *fiber.Ctx) error {
	cmd, res, ok := s.resolveCommandNotes(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionCreate, res); err != nil {
		return nil
	}

	var req struct {
		Note string     `json:"note"`
		Date *time.Time `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Note == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Note text is required"))
	}

	note := &models.CommandNote{
		CommandID: cmd.ID,
		Note:      req.Note,
		Date:      time.Now(),
	}
	if req.Date != nil {
		note.Date = *req.Date
	}

	if err := s.commandRepo.CreateNote(c.Context(), note); err != nil {
		return respondError(c, err)
	}

	return c.JSON(note)
}

// UpdateCommandNote handles PATCH .../notes/:noteId
func (s *Server) UpdateCommandNote(c *fiber.Ctx) error {
	note, res, ok := s.resolveNote(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionUpdate, res); err != nil {
		return nil
	}

	var req struct {
		Note *string    `json:"note"`
		Date *time.Time `json:"date"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	fields := map[string]any{}
	if req.Note != nil {
		if *req.Note == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Note text cannot be empty"))
		}
		fields["note"] = *req.Note
	}
	if req.Date != nil {
		fields["date"] = *req.Date
	}

	if err := s.commandRepo.UpdateNoteFields(c.Context(), note.ID, fields); err != nil {
		return respondError(c, err)
	}

	updated, err := s.commandRepo.GetNoteByID(c.Context(), note.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(updated)
}

// DeleteCommandNote handles DELETE .../notes/:noteId
func (s *Server) DeleteCommandNote(c *fiber.Ctx) error {
	note, res, ok := s.resolveNote(c)
	if !ok {
		return nil
	}
	if err := s.authorize(c, policy.ActionDelete, res); err != nil {
		return nil
	}

	if err := s.commandRepo.DeleteNote(c.Context(), note.ID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Note deleted"})
}
