package models

// CommandType is a closed reference set constraining Command.Type. Rows are
// seeded at bootstrap and are not mutable by end users.
type CommandType struct {
	Type string `gorm:"primaryKey;size:30" json:"type"`
}

// TableName keeps the legacy table name used by earlier schema revisions.
func (CommandType) TableName() string { return "command_types" }

// EventType is a closed reference set constraining Event.Type.
type EventType struct {
	Type string `gorm:"primaryKey;size:30" json:"type"`
}

func (EventType) TableName() string { return "event_types" }

// CommandTemplate is a read-only starter definition for a command. Creating
// a command may reference a template to prefill its descriptive fields.
type CommandTemplate struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;not null" json:"name"`
	Type            string `gorm:"size:30;not null" json:"type"`
	Description     string `json:"description"`
	VoiceCommand    string `gorm:"size:100" json:"voice_command"`
	VisualCommand   string `gorm:"size:100" json:"visual_command"`
	CommandVideoURL string `json:"command_video_url"`
	Proficiency     int    `gorm:"not null;default:1" json:"proficiency"`
}
