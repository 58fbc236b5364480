package domain

import "time"

type AlertSeverity string

const (
	SeverityAdvisory AlertSeverity = "advisory"
	SeverityWatch    AlertSeverity = "watch"
	SeverityWarning  AlertSeverity = "warning"
)

// Alert is read-mostly reference data pushed over the feed. Expired alerts are
// purged server-side and dropped from device caches regardless of sync state.
type Alert struct {
	ID        string         `json:"id" gorm:"primaryKey;type:uuid"`
	Category  HazardCategory `json:"category" gorm:"size:30;index;not null"`
	Severity  AlertSeverity  `json:"severity" gorm:"size:20;not null"`
	Title     string         `json:"title" gorm:"size:255;not null"`
	Message   string         `json:"message" gorm:"type:text"`
	Region    string         `json:"region" gorm:"size:120;index"`
	Simulated bool           `json:"simulated" gorm:"default:false"`
	IssuedAt  time.Time      `json:"issued_at"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"index"`
}

func (Alert) TableName() string { return "alerts" }

// AlertView records that a user saw an alert, upserted by (user_id, alert_id).
type AlertView struct {
	ID       string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID   string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:ux_alert_views_user_alert,priority:1"`
	AlertID  string    `json:"alert_id" gorm:"type:uuid;not null;uniqueIndex:ux_alert_views_user_alert,priority:2"`
	ViewedAt time.Time `json:"viewed_at"`
}

func (AlertView) TableName() string { return "alert_views" }

type CreateAlertRequest struct {
	Category  HazardCategory `json:"category" validate:"required,oneof=earthquake flood fire typhoon landslide tsunami"`
	Severity  AlertSeverity  `json:"severity" validate:"required,oneof=advisory watch warning"`
	Title     string         `json:"title" validate:"required,max=255"`
	Message   string         `json:"message"`
	Region    string         `json:"region" validate:"max=120"`
	TTLHours  int            `json:"ttl_hours" validate:"min=1,max=168"`
}
