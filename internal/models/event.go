package models

import (
	"time"
)

// Event is a scheduled activity for a single Dog. When no end time is
// supplied it defaults to one hour after the start time.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DogID     uint      `gorm:"not null;index" json:"dog_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Location  string    `json:"location"`
	Type      string    `gorm:"size:30;not null" json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
