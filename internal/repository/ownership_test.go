package repository

import (
	"context"
	"testing"
	"time"

	"fetchfolio/internal/models"
	"fetchfolio/internal/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Dog{},
		&models.Command{},
		&models.CommandNote{},
		&models.Event{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func seedChain(t *testing.T, db *gorm.DB) (models.Dog, models.Command, models.CommandNote, models.Event) {
	t.Helper()

	user := models.User{Username: "jules", Email: "jules@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	dog := models.Dog{Name: "Petey", Breed: "Terrier", OwnerUsername: "jules", Private: true}
	require.NoError(t, db.Create(&dog).Error)

	cmd := models.Command{DogID: dog.ID, Name: "Sit", Type: "obedience", DateIntroduced: time.Now()}
	require.NoError(t, db.Create(&cmd).Error)

	note := models.CommandNote{CommandID: cmd.ID, Note: "Holding for 10 seconds now", Date: time.Now()}
	require.NoError(t, db.Create(&note).Error)

	event := models.Event{DogID: dog.ID, Title: "Vet checkup", Type: "vet", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}
	require.NoError(t, db.Create(&event).Error)

	return dog, cmd, note, event
}

func TestOwnershipResolver_Chains(t *testing.T) {
	db := setupTestDB(t)
	resolver := NewOwnershipResolver(
		NewDogRepository(db),
		NewCommandRepository(db),
		NewEventRepository(db),
	)
	ctx := context.Background()

	dog, cmd, note, event := seedChain(t, db)

	t.Run("DogChain", func(t *testing.T) {
		got, res, err := resolver.DogChain(ctx, dog.ID)
		require.NoError(t, err)
		assert.Equal(t, dog.ID, got.ID)
		assert.Equal(t, "jules", res.OwnerUsername)
		require.NotNil(t, res.Dog)
		assert.True(t, res.Dog.Private)
		assert.Nil(t, res.Command)
	})

	t.Run("NoteChain walks to the root owner", func(t *testing.T) {
		got, res, err := resolver.NoteChain(ctx, note.ID)
		require.NoError(t, err)
		assert.Equal(t, note.ID, got.ID)
		assert.Equal(t, "jules", res.OwnerUsername)
		require.NotNil(t, res.Command)
		assert.Equal(t, cmd.ID, res.Command.ID)
		require.NotNil(t, res.Dog)
		assert.Equal(t, dog.ID, res.Dog.ID)
	})

	t.Run("EventChain", func(t *testing.T) {
		_, res, err := resolver.EventChain(ctx, event.ID)
		require.NoError(t, err)
		assert.Equal(t, "jules", res.OwnerUsername)
		require.NotNil(t, res.Event)
		assert.Equal(t, event.ID, res.Event.ID)
	})

	t.Run("Missing link surfaces as not found", func(t *testing.T) {
		_, _, err := resolver.CommandChain(ctx, 9999)
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("Resolved chain feeds the policy check", func(t *testing.T) {
		_, res, err := resolver.CommandChain(ctx, cmd.ID)
		require.NoError(t, err)

		owner := policy.Authorize(policy.ForUser("jules"), policy.ActionUpdate, res)
		assert.True(t, owner.Allowed)

		stranger := policy.Authorize(policy.ForUser("maeve"), policy.ActionRead, res)
		assert.False(t, stranger.Allowed)
	})
}

func TestDogRepository_DeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDogRepository(db)
	ctx := context.Background()

	dog, _, _, _ := seedChain(t, db)

	require.NoError(t, repo.DeleteCascade(ctx, dog.ID))

	var counts [4]int64
	db.Model(&models.Dog{}).Count(&counts[0])
	db.Model(&models.Command{}).Count(&counts[1])
	db.Model(&models.CommandNote{}).Count(&counts[2])
	db.Model(&models.Event{}).Count(&counts[3])
	for i, c := range counts {
		assert.Zero(t, c, "table %d should be empty after cascade", i)
	}

	// The user record itself is untouched.
	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.EqualValues(t, 1, users)
}

func TestUserRepository_DeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedChain(t, db)

	// A second user keeps their dog; the cascade only touches one subtree.
	other := models.User{Username: "maeve", Email: "maeve@example.com", Password: "x"}
	require.NoError(t, db.Create(&other).Error)
	otherDog := models.Dog{Name: "Biscuit", OwnerUsername: "maeve"}
	require.NoError(t, db.Create(&otherDog).Error)

	require.NoError(t, repo.DeleteCascade(ctx, "jules"))

	var users, dogs, cmds, notes, events int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Dog{}).Count(&dogs)
	db.Model(&models.Command{}).Count(&cmds)
	db.Model(&models.CommandNote{}).Count(&notes)
	db.Model(&models.Event{}).Count(&events)

	assert.EqualValues(t, 1, users)
	assert.EqualValues(t, 1, dogs)
	assert.Zero(t, cmds)
	assert.Zero(t, notes)
	assert.Zero(t, events)
}
