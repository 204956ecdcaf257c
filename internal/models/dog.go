package models

import (
	"time"
)

// DefaultDogImageURL is used when a dog is created without an image.
const DefaultDogImageURL = "https://paradepets.com/.image/c_limit%2Ccs_srgb%2Cq_auto:good%2Cw_760/MTkxMzY1Nzg4MTM2NzExNzc4/teacup-dogs-jpg.webp"

// Dog sizes form a closed set validated at the handler boundary.
const (
	DogSizeSmall  = "small"
	DogSizeMedium = "medium"
	DogSizeLarge  = "large"
)

// Dog belongs to exactly one User via OwnerUsername, which is immutable
// after creation. The Private flag controls visibility to other users in
// list views; it never hides the dog from its own owner.
type Dog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	BirthDate     time.Time `gorm:"not null" json:"birth_date"`
	Breed         string    `gorm:"not null" json:"breed"`
	Size          string    `gorm:"size:10;not null" json:"size"`
	Bio           string    `json:"bio"`
	ImageURL      string    `json:"image_url"`
	Private       bool      `gorm:"not null;default:false" json:"private"`
	OwnerUsername string    `gorm:"not null;index" json:"owner_username"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Commands      []Command `gorm:"foreignKey:DogID" json:"commands,omitempty"`
	Events        []Event   `gorm:"foreignKey:DogID" json:"events,omitempty"`
}
