package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"fetchfolio/internal/cache"
	"fetchfolio/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"username", "email"}).
			AddRow("jules", "jules@example.com")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 ORDER BY "users"."username" LIMIT $2`)).
			WithArgs("jules", 1).
			WillReturnRows(rows)

		user, err := repo.GetByUsername(ctx, "jules")
		assert.NoError(t, err)
		if assert.NotNil(t, user) {
			assert.Equal(t, "jules", user.Username)
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
			WithArgs("ghost", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		// Absence is not an error; callers need the distinction for token
		// resolution and signup checks.
		user, err := repo.GetByUsername(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
			WithArgs("jules", 1).
			WillReturnError(errors.New("connection timeout"))

		user, err := repo.GetByUsername(ctx, "jules")
		assert.Error(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByUsername_CacheAside(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{
		Username: "jules", Email: "jules@example.com", Password: "old-hash", Name: "Jules",
	}))

	t.Run("hit keeps the password hash", func(t *testing.T) {
		u, err := repo.GetByUsername(ctx, "jules")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "old-hash", u.Password)

		// Second read is served from the cache: the row can vanish underneath
		// and the hash must survive the round trip.
		require.NoError(t, db.Exec("DELETE FROM users").Error)
		u, err = repo.GetByUsername(ctx, "jules")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "old-hash", u.Password)

		require.NoError(t, db.Create(&models.User{
			Username: "jules", Email: "jules@example.com", Password: "old-hash", Name: "Jules",
		}).Error)
	})

	t.Run("password change drops the cached entry", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, "jules", "new-hash"))

		u, err := repo.GetByUsername(ctx, "jules")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "new-hash", u.Password)
	})

	t.Run("profile update drops the cached entry", func(t *testing.T) {
		require.NoError(t, repo.UpdateFields(ctx, "jules", map[string]any{"bio": "trainer"}))

		u, err := repo.GetByUsername(ctx, "jules")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "trainer", u.Bio)
	})

	t.Run("absence is not cached", func(t *testing.T) {
		u, err := repo.GetByUsername(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, u)
		assert.False(t, mr.Exists(cache.UserKey("ghost")))
	})
}

func TestUserRepository_Create_Conflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_pkey" (SQLSTATE 23505)`))
	mock.ExpectRollback()

	err := repo.Create(ctx, &models.User{Username: "jules", Email: "jules@example.com"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
