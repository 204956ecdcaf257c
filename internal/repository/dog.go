package repository

import (
	"context"
	"errors"

	"fetchfolio/internal/cache"
	"fetchfolio/internal/models"

	"gorm.io/gorm"
)

// DogRepository defines persistence operations for dogs.
type DogRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Dog, error)
	GetWithChildren(ctx context.Context, id uint) (*models.Dog, error)
	ListPublic(ctx context.Context) ([]models.Dog, error)
	ListByOwner(ctx context.Context, username string) ([]models.Dog, error)
	Create(ctx context.Context, dog *models.Dog) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	DeleteCascade(ctx context.Context, id uint) error
}

type dogRepository struct {
	db *gorm.DB
}

// NewDogRepository returns a new DogRepository implementation.
func NewDogRepository(db *gorm.DB) DogRepository {
	return &dogRepository{db: db}
}

func (r *dogRepository) GetByID(ctx context.Context, id uint) (*models.Dog, error) {
	var dog models.Dog
	err := cache.Aside(ctx, cache.DogKey(id), &dog, cache.DogTTL, func() error {
		if err := r.db.WithContext(ctx).First(&dog, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Dog", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dog, nil
}

func (r *dogRepository) GetWithChildren(ctx context.Context, id uint) (*models.Dog, error) {
	var dog models.Dog
	if err := r.db.WithContext(ctx).
		Preload("Commands", func(db *gorm.DB) *gorm.DB {
			return db.Order("date_introduced ASC")
		}).
		Preload("Commands.Notes").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("start_time ASC")
		}).
		First(&dog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Dog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &dog, nil
}

func (r *dogRepository) ListPublic(ctx context.Context) ([]models.Dog, error) {
	var dogs []models.Dog
	if err := r.db.WithContext(ctx).
		Where("private = ?", false).
		Order("name ASC").
		Find(&dogs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return dogs, nil
}

func (r *dogRepository) ListByOwner(ctx context.Context, username string) ([]models.Dog, error) {
	var dogs []models.Dog
	if err := r.db.WithContext(ctx).
		Where("owner_username = ?", username).
		Order("name ASC").
		Find(&dogs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return dogs, nil
}

func (r *dogRepository) Create(ctx context.Context, dog *models.Dog) error {
	if err := r.db.WithContext(ctx).Create(dog).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateFields applies a partial update: only the supplied columns change.
// OwnerUsername is never an accepted column; ownership is immutable.
func (r *dogRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Dog{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateDog(ctx, id)
	return nil
}

// DeleteCascade removes the dog and its commands, command notes and events
// as one all-or-nothing unit, child-first.
func (r *dogRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commandIDs := tx.Model(&models.Command{}).Select("id").Where("dog_id = ?", id)
		if err := tx.Where("command_id IN (?)", commandIDs).Delete(&models.CommandNote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dog_id = ?", id).Delete(&models.Command{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dog_id = ?", id).Delete(&models.Event{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Dog{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateDog(ctx, id)
	return nil
}
