package repository

import (
	"context"
	"errors"
	"time"

	"fetchfolio/internal/cache"
	"fetchfolio/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetWithDogs(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, username string, fields map[string]any) error
	UpdatePassword(ctx context.Context, username, hashed string) error
	DeleteCascade(ctx context.Context, username string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// cachedUser mirrors models.User for cache storage. The API-facing struct
// hides the password hash from JSON, but the cached copy must keep it so
// credential checks against a cache hit still work. Never serve this type
// to a client.
type cachedUser struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *cachedUser) toUser() *models.User {
	return &models.User{
		Username:  c.Username,
		Email:     c.Email,
		Password:  c.Password,
		Name:      c.Name,
		Bio:       c.Bio,
		Location:  c.Location,
		AvatarURL: c.AvatarURL,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func newCachedUser(u *models.User) cachedUser {
	return cachedUser{
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		Name:      u.Name,
		Bio:       u.Bio,
		Location:  u.Location,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// GetByUsername returns (nil, nil) when no such user exists, so callers can
// distinguish absence from storage failure. This is the hot read: the
// identity middleware resolves every bearer token through it, so hits are
// served from the cache. Absence is never cached.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var entry cachedUser
	err := cache.Aside(ctx, cache.UserKey(username), &entry, cache.UserTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", username)
			}
			return models.NewInternalError(err)
		}
		entry = newCachedUser(&user)
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
			return nil, nil
		}
		return nil, err
	}
	return entry.toUser(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetWithDogs(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("Dogs").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, username string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Updates(fields).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email already in use")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, username)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, username, hashed string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("password", hashed).Error; err != nil {
		return models.NewInternalError(err)
	}
	// A stale cached hash would let the old password keep working.
	cache.InvalidateUser(ctx, username)
	return nil
}

// DeleteCascade removes the user and everything reachable through the
// ownership graph (dogs, commands, command notes, events) in a single
// transaction, child-first so foreign keys never dangle.
func (r *userRepository) DeleteCascade(ctx context.Context, username string) error {
	var dogIDs []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Dog{}).
			Where("owner_username = ?", username).
			Pluck("id", &dogIDs).Error; err != nil {
			return err
		}

		if len(dogIDs) > 0 {
			commandIDs := tx.Model(&models.Command{}).Select("id").Where("dog_id IN ?", dogIDs)
			if err := tx.Where("command_id IN (?)", commandIDs).Delete(&models.CommandNote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("dog_id IN ?", dogIDs).Delete(&models.Command{}).Error; err != nil {
				return err
			}
			if err := tx.Where("dog_id IN ?", dogIDs).Delete(&models.Event{}).Error; err != nil {
				return err
			}
			if err := tx.Where("owner_username = ?", username).Delete(&models.Dog{}).Error; err != nil {
				return err
			}
		}

		return tx.Where("username = ?", username).Delete(&models.User{}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, username)
	for _, id := range dogIDs {
		cache.InvalidateDog(ctx, id)
	}
	return nil
}
