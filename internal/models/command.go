package models

import (
	"time"
)

// Command is a trained behavior that belongs to exactly one Dog. The Type
// column is constrained by the command_types reference table.
type Command struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	DogID               uint          `gorm:"not null;index" json:"dog_id"`
	Name                string        `gorm:"size:200;not null" json:"name"`
	Type                string        `gorm:"size:30;not null" json:"type"`
	Description         string        `json:"description"`
	VoiceCommand        string        `gorm:"size:100" json:"voice_command"`
	VisualCommand       string        `gorm:"size:100" json:"visual_command"`
	CommandVideoURL     string        `json:"command_video_url"`
	PerformanceVideoURL string        `json:"performance_video_url"`
	Proficiency         int           `gorm:"not null;default:1" json:"proficiency"`
	DateIntroduced      time.Time     `gorm:"not null" json:"date_introduced"`
	UpdatedAt           time.Time     `json:"updated_at"`
	Notes               []CommandNote `gorm:"foreignKey:CommandID" json:"notes,omitempty"`
}

// CommandNote is a free-text progress note on a single Command.
type CommandNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommandID uint      `gorm:"not null;index" json:"command_id"`
	Note      string    `gorm:"not null" json:"note"`
	Date      time.Time `gorm:"not null" json:"date"`
}
