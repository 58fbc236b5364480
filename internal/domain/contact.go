package domain

import "time"

// EmergencyContact is per-user reference data. IsFavorite and LastAccessedAt
// are maintained from device caches through the sync queue.
type EmergencyContact struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID         string     `json:"user_id" gorm:"type:uuid;index;not null"`
	Name           string     `json:"name" gorm:"size:120;not null"`
	Phone          string     `json:"phone" gorm:"size:30;not null"`
	Relation       string     `json:"relation" gorm:"size:60"`
	IsFavorite     bool       `json:"is_favorite" gorm:"default:false"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (EmergencyContact) TableName() string { return "emergency_contacts" }

type CreateContactRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required,max=30"`
	Relation string `json:"relation" validate:"max=60"`
}

type UpdateContactRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=120"`
	Phone      *string `json:"phone" validate:"omitempty,max=30"`
	Relation   *string `json:"relation" validate:"omitempty,max=60"`
	IsFavorite *bool   `json:"is_favorite"`
}
