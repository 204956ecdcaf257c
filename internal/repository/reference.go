package repository

import (
	"context"
	"errors"

	"fetchfolio/internal/models"

	"gorm.io/gorm"
)

// ReferenceRepository exposes the read-only reference sets.
type ReferenceRepository interface {
	ListCommandTypes(ctx context.Context) ([]models.CommandType, error)
	ListEventTypes(ctx context.Context) ([]models.EventType, error)
	ListCommandTemplates(ctx context.Context) ([]models.CommandTemplate, error)
	GetCommandTemplate(ctx context.Context, id uint) (*models.CommandTemplate, error)
	CommandTypeExists(ctx context.Context, t string) (bool, error)
	EventTypeExists(ctx context.Context, t string) (bool, error)
}

type referenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository returns a new ReferenceRepository implementation.
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListCommandTypes(ctx context.Context) ([]models.CommandType, error) {
	var types []models.CommandType
	if err := r.db.WithContext(ctx).Order("type ASC").Find(&types).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return types, nil
}

func (r *referenceRepository) ListEventTypes(ctx context.Context) ([]models.EventType, error) {
	var types []models.EventType
	if err := r.db.WithContext(ctx).Order("type ASC").Find(&types).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return types, nil
}

func (r *referenceRepository) ListCommandTemplates(ctx context.Context) ([]models.CommandTemplate, error) {
	var templates []models.CommandTemplate
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&templates).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return templates, nil
}

func (r *referenceRepository) GetCommandTemplate(ctx context.Context, id uint) (*models.CommandTemplate, error) {
	var tmpl models.CommandTemplate
	if err := r.db.WithContext(ctx).First(&tmpl, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("CommandTemplate", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &tmpl, nil
}

func (r *referenceRepository) CommandTypeExists(ctx context.Context, t string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommandType{}).
		Where("type = ?", t).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *referenceRepository) EventTypeExists(ctx context.Context, t string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.EventType{}).
		Where("type = ?", t).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
