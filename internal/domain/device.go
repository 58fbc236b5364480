package domain

import "time"

// Device is a registered client installation. LastSyncAt tracks the most
// recent successful queue drain reported by that device.
type Device struct {
	ID         string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     string     `json:"user_id" gorm:"type:uuid;index;not null"`
	Name       string     `json:"name" gorm:"size:120;not null"`
	Platform   string     `json:"platform" gorm:"size:30;not null"`
	AppVersion string     `json:"app_version" gorm:"size:30"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	LastActive time.Time  `json:"last_active"`
	CreatedAt  time.Time  `json:"created_at"`
	IsRevoked  bool       `json:"is_revoked" gorm:"default:false"`
}

func (Device) TableName() string { return "devices" }

type RegisterDeviceRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Platform   string `json:"platform" validate:"required,oneof=web android ios desktop"`
	AppVersion string `json:"app_version" validate:"max=30"`
}

type DeviceResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Platform   string     `json:"platform"`
	AppVersion string     `json:"app_version"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
	LastActive time.Time  `json:"last_active"`
	IsRevoked  bool       `json:"is_revoked"`
}
