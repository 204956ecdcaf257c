package middleware

import (
	"context"
	"strings"

	"fetchfolio/internal/models"
	"fetchfolio/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LocalsUser is the Fiber locals key holding the resolved *models.User.
const LocalsUser = "currentUser"

// Token issuer/audience values checked during identity resolution.
const (
	TokenIssuer   = "fetchfolio-api"
	TokenAudience = "fetchfolio-client"
)

// UserResolver looks up the subject embedded in a bearer credential. A nil
// user with a nil error means the subject does not exist.
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// ResolveIdentity returns the authentication middleware. It inspects the
// Authorization header and resolves it to a concrete user or to anonymous;
// it never rejects a request itself. A missing, malformed, expired or
// stale-subject token all resolve to anonymous, and the decision to deny
// anonymous access belongs to the authorization policy consulted by each
// handler.
func ResolveIdentity(secret string, users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, ok := subjectFromHeader(c.Get("Authorization"), secret)
		if !ok {
			return c.Next()
		}

		user, err := users.GetByUsername(c.UserContext(), username)
		if err != nil || user == nil {
			// A stale or forged subject must not silently pass.
			return c.Next()
		}

		c.Locals(LocalsUser, user)
		ctx := context.WithValue(c.UserContext(), UsernameKey, user.Username)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// subjectFromHeader validates the bearer token and extracts its subject.
func subjectFromHeader(authHeader, secret string) (string, bool) {
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}
	return sub, true
}

// CurrentUser returns the user resolved for this request, or nil for anonymous.
func CurrentUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(LocalsUser).(*models.User); ok {
		return user
	}
	return nil
}

// Identity converts the resolved request user into a policy identity.
func Identity(c *fiber.Ctx) policy.Identity {
	if user := CurrentUser(c); user != nil {
		return policy.ForUser(user.Username)
	}
	return policy.Anonymous()
}
