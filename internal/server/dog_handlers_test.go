package server

import (
	"fmt"
	"net/http"
	"testing"

	"fetchfolio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dogNames(body map[string]any) []string {
	var names []string
	if dogs, ok := body["dogs"].([]any); ok {
		for _, d := range dogs {
			if dog, ok := d.(map[string]any); ok {
				names = append(names, dog["name"].(string))
			}
		}
	}
	return names
}

func TestDogVisibility(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	jules := signupUser(t, app, "jules")
	maeve := signupUser(t, app, "maeve")

	peteyID := createDog(t, app, jules, "Petey", true)
	createDog(t, app, jules, "Biscuit", false)

	t.Run("anonymous sees nothing", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodGet, "/api/dogs", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("public listing excludes private dogs", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/dogs", maeve, nil)
		require.Equal(t, http.StatusOK, status)
		names := dogNames(body)
		assert.Contains(t, names, "Biscuit")
		assert.NotContains(t, names, "Petey")
	})

	t.Run("owner listing includes private dogs", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, "/api/dogs/current", jules, nil)
		require.Equal(t, http.StatusOK, status)
		names := dogNames(body)
		assert.Contains(t, names, "Petey")
		assert.Contains(t, names, "Biscuit")
	})

	t.Run("private dog read is masked as 404 for other users", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/dogs/%d", peteyID), maeve, nil)
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/dogs/%d", peteyID), jules, nil)
		assert.Equal(t, http.StatusOK, status)
	})

	t.Run("visibility toggle is immediate", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/dogs/current/%d", peteyID), jules, map[string]any{
			"private": false,
		})
		require.Equal(t, http.StatusOK, status)

		status, body := doJSON(t, app, http.MethodGet, "/api/dogs", maeve, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, dogNames(body), "Petey")

		status, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/dogs/%d", peteyID), maeve, nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestCrossUserAccessDenied(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	jules := signupUser(t, app, "jules")
	maeve := signupUser(t, app, "maeve")

	// Public dog: readable by anyone authenticated, mutable only by the owner.
	dogID := createDog(t, app, jules, "Biscuit", false)

	t.Run("cross-user update denied", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/dogs/current/%d", dogID), maeve, map[string]any{
			"bio": "hijacked",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("cross-user delete denied", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/dogs/current/%d", dogID), maeve, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("public read carve-out does not reach commands", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/dogs/current/%d/commands", dogID), maeve, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("public read carve-out does not reach events", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/dogs/current/%d/events", dogID), maeve, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestPublicDogReadOmitsChildren(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	jules := signupUser(t, app, "jules")
	maeve := signupUser(t, app, "maeve")

	dogID := createDog(t, app, jules, "Biscuit", false)

	status, body := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/dogs/current/%d/commands", dogID), jules, map[string]any{
			"name": "Sit", "type": "obedience",
		})
	require.Equal(t, http.StatusOK, status, "%v", body)
	cmdID := uint(body["id"].(float64))

	status, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/dogs/current/%d/commands/%d/notes", dogID, cmdID), jules, map[string]any{
			"note": "solid at home, shaky at the park",
		})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/dogs/current/%d/events", dogID), jules, map[string]any{
			"title": "Vet checkup", "type": "vet",
		})
	require.Equal(t, http.StatusOK, status)

	t.Run("owner read includes the subtree", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/dogs/%d", dogID), jules, nil)
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, body["commands"])
		assert.NotEmpty(t, body["events"])
	})

	t.Run("cross-user read is the dog record alone", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/dogs/%d", dogID), maeve, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Biscuit", body["name"])
		assert.NotContains(t, body, "commands")
		assert.NotContains(t, body, "events")
	})
}

func TestDogPartialUpdate(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	jules := signupUser(t, app, "jules")
	dogID := createDog(t, app, jules, "Petey", false)

	t.Run("only supplied fields change", func(t *testing.T) {
		status, body := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/dogs/current/%d", dogID), jules, map[string]any{
			"bio": "a very good boy",
		})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "a very good boy", body["bio"])
		assert.Equal(t, "Petey", body["name"])
		assert.Equal(t, "Terrier", body["breed"])
		assert.Equal(t, false, body["private"])
	})

	t.Run("private must be a JSON boolean", func(t *testing.T) {
		status, _ := doRawJSON(t, app, http.MethodPatch,
			fmt.Sprintf("/api/dogs/current/%d", dogID), jules, `{"private":"yes"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("invalid size rejected", func(t *testing.T) {
		status, _ := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/dogs/current/%d", dogID), jules, map[string]any{
			"size": "enormous",
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestDogCascadeDelete(t *testing.T) {
	t.Parallel()
	app, db := newTestApp(t)

	jules := signupUser(t, app, "jules")
	dogID := createDog(t, app, jules, "Petey", false)

	status, body := doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/dogs/current/%d/commands", dogID), jules, map[string]any{
			"name": "Sit", "type": "obedience",
		})
	require.Equal(t, http.StatusOK, status, "%v", body)
	cmdID := uint(body["id"].(float64))

	status, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/dogs/current/%d/commands/%d/notes", dogID, cmdID), jules, map[string]any{
			"note": "holding for ten seconds",
		})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/dogs/current/%d/events", dogID), jules, map[string]any{
			"title": "Vet checkup", "type": "vet",
		})
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/dogs/current/%d", dogID), jules, nil)
	require.Equal(t, http.StatusOK, status)

	var dogs, cmds, notes, events int64
	db.Model(&models.Dog{}).Count(&dogs)
	db.Model(&models.Command{}).Count(&cmds)
	db.Model(&models.CommandNote{}).Count(&notes)
	db.Model(&models.Event{}).Count(&events)
	assert.Zero(t, dogs)
	assert.Zero(t, cmds)
	assert.Zero(t, notes)
	assert.Zero(t, events)

	// The user record is untouched by a dog delete.
	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.EqualValues(t, 1, users)
}

func TestDogCreateDefaults(t *testing.T) {
	t.Parallel()
	app, _ := newTestApp(t)

	jules := signupUser(t, app, "jules")

	status, body := doJSON(t, app, http.MethodPost, "/api/dogs/current", jules, map[string]any{
		"name":  "Petey",
		"breed": "Terrier",
		"size":  "small",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DefaultDogImageURL, body["image_url"])
	assert.Equal(t, false, body["private"])
	assert.Equal(t, "jules", body["owner_username"])
	assert.NotEmpty(t, body["birth_date"])
}
