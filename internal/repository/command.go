package repository

import (
	"context"
	"errors"

	"fetchfolio/internal/models"

	"gorm.io/gorm"
)

// CommandRepository defines persistence operations for commands and their notes.
type CommandRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Command, error)
	GetWithNotes(ctx context.Context, id uint) (*models.Command, error)
	ListByDog(ctx context.Context, dogID uint) ([]models.Command, error)
	Create(ctx context.Context, cmd *models.Command) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	DeleteCascade(ctx context.Context, id uint) error

	GetNoteByID(ctx context.Context, id uint) (*models.CommandNote, error)
	ListNotes(ctx context.Context, commandID uint) ([]models.CommandNote, error)
	CreateNote(ctx context.Context, note *models.CommandNote) error
	UpdateNoteFields(ctx context.Context, id uint, fields map[string]any) error
	DeleteNote(ctx context.Context, id uint) error
}

type commandRepository struct {
	db *gorm.DB
}

// NewCommandRepository returns a new CommandRepository implementation.
func NewCommandRepository(db *gorm.DB) CommandRepository {
	return &commandRepository{db: db}
}

func (r *commandRepository) GetByID(ctx context.Context, id uint) (*models.Command, error) {
	var cmd models.Command
	if err := r.db.WithContext(ctx).First(&cmd, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Command", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &cmd, nil
}

func (r *commandRepository) GetWithNotes(ctx context.Context, id uint) (*models.Command, error) {
	var cmd models.Command
	if err := r.db.WithContext(ctx).
		Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		}).
		First(&cmd, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Command", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &cmd, nil
}

func (r *commandRepository) ListByDog(ctx context.Context, dogID uint) ([]models.Command, error) {
	var cmds []models.Command
	if err := r.db.WithContext(ctx).
		Where("dog_id = ?", dogID).
		Order("date_introduced ASC").
		Find(&cmds).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return cmds, nil
}

func (r *commandRepository) Create(ctx context.Context, cmd *models.Command) error {
	if err := r.db.WithContext(ctx).Create(cmd).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commandRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Command{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DeleteCascade removes the command together with its notes in one transaction.
func (r *commandRepository) DeleteCascade(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("command_id = ?", id).Delete(&models.CommandNote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Command{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commandRepository) GetNoteByID(ctx context.Context, id uint) (*models.CommandNote, error) {
	var note models.CommandNote
	if err := r.db.WithContext(ctx).First(&note, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("CommandNote", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &note, nil
}

func (r *commandRepository) ListNotes(ctx context.Context, commandID uint) ([]models.CommandNote, error) {
	var notes []models.CommandNote
	if err := r.db.WithContext(ctx).
		Where("command_id = ?", commandID).
		Order("date ASC").
		Find(&notes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notes, nil
}

func (r *commandRepository) CreateNote(ctx context.Context, note *models.CommandNote) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commandRepository) UpdateNoteFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.CommandNote{}).
		Where("id = ?", id).
		Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commandRepository) DeleteNote(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.CommandNote{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
