// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in FetchFolio. The username is the primary key
// and is immutable once assigned.
type User struct {
	Username  string    `gorm:"primaryKey" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Bio       string    `json:"bio"`
	Location  string    `json:"location"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Dogs      []Dog     `gorm:"foreignKey:OwnerUsername;references:Username" json:"dogs,omitempty"`
}
