package server

import (
	"errors"
	"strings"
	"unicode"

	"fetchfolio/internal/middleware"
	"fetchfolio/internal/models"
	"fetchfolio/internal/observability"
	"fetchfolio/internal/policy"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respondError maps an AppError code to its HTTP status and writes the
// standard error body. Conflicts surface as 400: the signup contract treats a
// duplicate username or email the same as any other invalid request.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	status := fiber.StatusInternalServerError
	switch appErr.Code {
	case "VALIDATION_ERROR", "CONFLICT":
		status = fiber.StatusBadRequest
	case "UNAUTHORIZED":
		status = fiber.StatusUnauthorized
	case "NOT_FOUND":
		status = fiber.StatusNotFound
	}

	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "internal error",
			"error", appErr.Error())
	}

	return models.RespondWithError(c, status, appErr)
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "dogId" -> "dog ID", "commandId" -> "command ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// methodAction maps an HTTP method to the policy action it implies. Used
// for denial metric labels when the request is rejected before a resource
// chain is resolved.
func methodAction(method string) policy.Action {
	switch method {
	case fiber.MethodPost:
		return policy.ActionCreate
	case fiber.MethodPut, fiber.MethodPatch:
		return policy.ActionUpdate
	case fiber.MethodDelete:
		return policy.ActionDelete
	default:
		return policy.ActionRead
	}
}

// requireUser writes a 401 and returns nil when the request is anonymous.
// Listing endpoints have no single resource to authorize against, so they
// gate on a resolved identity directly.
func (s *Server) requireUser(c *fiber.Ctx) *models.User {
	user := middleware.CurrentUser(c)
	if user == nil {
		observability.AuthorizationDenials.WithLabelValues(
			string(methodAction(c.Method())), "anonymous access").Inc()
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
		return nil
	}
	return user
}

// authorize consults the policy for the resolved chain. On deny it records
// the denial, writes the response and returns errResponseWritten.
//
// Denials always surface as 401, never 403. The one exception: a
// non-anonymous read of another user's private dog is masked as 404 so the
// response does not confirm the dog exists.
func (s *Server) authorize(c *fiber.Ctx, action policy.Action, res policy.Resource) error {
	id := middleware.Identity(c)
	decision := policy.Authorize(id, action, res)
	if decision.Allowed {
		return nil
	}

	observability.AuthorizationDenials.WithLabelValues(
		string(action), decision.Reason).Inc()
	middleware.Logger.WarnContext(c.UserContext(), "authorization denied",
		"action", string(action), "reason", decision.Reason)

	dogIsTarget := res.Dog != nil && res.Command == nil && res.Note == nil && res.Event == nil
	if !id.Anonymous && action == policy.ActionRead && dogIsTarget && res.Dog.Private {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Dog", res.Dog.ID))
		return errResponseWritten
	}

	_ = models.RespondWithError(c, fiber.StatusUnauthorized,
		models.NewUnauthorizedError("You do not have access to this resource"))
	return errResponseWritten
}
