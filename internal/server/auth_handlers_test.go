package server

import (
	"fmt"
	"net/http"
	"testing"

	"fetchfolio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupValidation(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing fields", map[string]any{"username": "jules"}},
		{"bad username", map[string]any{"username": "j!", "email": "j@example.com", "password": "Password1", "name": "J"}},
		{"bad email", map[string]any{"username": "jules", "email": "not-an-email", "password": "Password1", "name": "J"}},
		{"weak password", map[string]any{"username": "jules", "email": "j@example.com", "password": "short", "name": "J"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
		})
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	t.Parallel()
	app, db := newTestApp(t)

	signupUser(t, app, "jules")

	status, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "jules",
		"email":    "other@example.com",
		"password": "Password1",
		"name":     "Jules Again",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "CONFLICT", body["code"])

	// Exactly one account survives the duplicate attempt.
	var count int64
	db.Model(&models.User{}).Where("username = ?", "jules").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestLoginFlow(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	signupUser(t, app, "jules")

	t.Run("wrong password", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"username": "jules",
			"password": "WrongPassword1",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("unknown user", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"username": "nobody",
			"password": "Password1",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("correct credentials", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"username": "jules",
			"password": "Password1",
		})
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, body["token"])

		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "jules", user["username"])
		// The bcrypt hash must never appear in responses.
		_, exposed := user["password"]
		assert.False(t, exposed)
	})
}

func TestCurrentUserLifecycle(t *testing.T) {
	t.Parallel()
	app, db := newTestApp(t)

	token := signupUser(t, app, "jules")

	t.Run("profile round trip", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/users/current", token, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "jules", body["username"])
	})

	t.Run("partial update touches only supplied fields", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPatch, "/api/users/current", token, map[string]any{
			"bio": "dog person",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "dog person", body["bio"])
		assert.Equal(t, "jules", body["name"])
		assert.Equal(t, "jules@example.com", body["email"])
	})

	t.Run("password change requires the old password", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPut, "/api/users/current/password", token, map[string]any{
			"old_password": "Nope1234",
			"new_password": "Password2",
		})
		assert.Equal(t, http.StatusUnauthorized, status)

		status, _ = doJSON(t, app, http.MethodPut, "/api/users/current/password", token, map[string]any{
			"old_password": "Password1",
			"new_password": "Password2",
		})
		require.Equal(t, http.StatusOK, status)

		status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]any{
			"username": "jules",
			"password": "Password2",
		})
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("account delete cascades through the ownership graph", func(t *testing.T) {
		dogID := createDog(t, app, token, "Petey", true)
		status, body := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/dogs/current/%d/commands", dogID), token, map[string]any{
				"name": "Sit", "type": "obedience",
			})
		require.Equal(t, http.StatusOK, status, "%v", body)

		status, _ = doJSON(t, app, http.MethodDelete, "/api/users/current", token, nil)
		require.Equal(t, http.StatusOK, status)

		var users, dogs, cmds int64
		db.Model(&models.User{}).Count(&users)
		db.Model(&models.Dog{}).Count(&dogs)
		db.Model(&models.Command{}).Count(&cmds)
		assert.Zero(t, users)
		assert.Zero(t, dogs)
		assert.Zero(t, cmds)

		// The old token now resolves to anonymous.
		status, _ = doJSON(t, app, http.MethodGet, "/api/users/current", token, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestForgedTokenResolvesAnonymous(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	signupUser(t, app, "jules")

	status, _ := doJSON(t, app, http.MethodGet, "/api/users/current", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
