package database

import (
	"errors"
	"fmt"

	"fetchfolio/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommandTypes is the closed set of command categories.
var CommandTypes = []string{"obedience", "trick", "agility", "task", "safety"}

// EventTypes is the closed set of event categories.
var EventTypes = []string{"vet", "grooming", "training", "walk", "playdate", "competition", "other"}

// commandTemplates are the built-in starter commands offered when adding a
// command to a dog.
var commandTemplates = []models.CommandTemplate{
	{Name: "Sit", Type: "obedience", Description: "Dog sits on its haunches until released.", VoiceCommand: "sit", VisualCommand: "flat palm raised"},
	{Name: "Stay", Type: "obedience", Description: "Dog holds position until released.", VoiceCommand: "stay", VisualCommand: "open palm forward"},
	{Name: "Recall", Type: "safety", Description: "Dog returns to the handler immediately.", VoiceCommand: "come", VisualCommand: "arms open"},
	{Name: "Leave It", Type: "safety", Description: "Dog ignores the indicated object.", VoiceCommand: "leave it", VisualCommand: "finger point away"},
	{Name: "Roll Over", Type: "trick", Description: "Dog rolls onto its back and over.", VoiceCommand: "roll over", VisualCommand: "circular hand motion"},
	{Name: "Weave", Type: "agility", Description: "Dog weaves through a line of poles.", VoiceCommand: "weave", VisualCommand: "alternating hand sweep"},
}

// SeedReferenceData inserts the closed reference sets (command types, event
// types, command templates). Idempotent: existing rows are left untouched.
func SeedReferenceData(db *gorm.DB) error {
	for _, t := range CommandTypes {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.CommandType{Type: t}).Error; err != nil {
			return fmt.Errorf("seed command type %q: %w", t, err)
		}
	}

	for _, t := range EventTypes {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.EventType{Type: t}).Error; err != nil {
			return fmt.Errorf("seed event type %q: %w", t, err)
		}
	}

	for _, tmpl := range commandTemplates {
		var existing models.CommandTemplate
		err := db.Where("name = ?", tmpl.Name).First(&existing).Error
		switch {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
			record := tmpl
			record.Proficiency = 1
			if err := db.Create(&record).Error; err != nil {
				return fmt.Errorf("seed command template %q: %w", tmpl.Name, err)
			}
		default:
			return fmt.Errorf("seed command template %q: %w", tmpl.Name, err)
		}
	}

	return nil
}
