package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetCommandTypes handles GET /api/reference/command-types
func (s *Server) GetCommandTypes(c *fiber.Ctx) error {
	if s.requireUser(c) == nil {
		return nil
	}

	types, err := s.referenceRepo.ListCommandTypes(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"command_types": types})
}

// GetEventTypes handles GET /api/reference/event-types
func (s *Server) GetEventTypes(c *fiber.Ctx) error {
	if s.requireUser(c) == nil {
		return nil
	}

	types, err := s.referenceRepo.ListEventTypes(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"event_types": types})
}

// GetCommandTemplates handles GET /api/reference/command-templates
func (s *Server) GetCommandTemplates(c *fiber.Ctx) error {
	if s.requireUser(c) == nil {
		return nil
	}

	templates, err := s.referenceRepo.ListCommandTemplates(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"command_templates": templates})
}
