package domain

import (
	"time"

	"gorm.io/datatypes"
)

type DrillType string

const (
	DrillDropCoverHold DrillType = "drop_cover_hold"
	DrillHazardSpot    DrillType = "hazard_spot"
	DrillEvacuation    DrillType = "evacuation"
	DrillFirstAid      DrillType = "first_aid"
)

// Drill is a timed virtual exercise. Config is consumed by the client's
// mini-game runner and opaque to the server.
type Drill struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Type        DrillType      `json:"type" gorm:"size:30;not null"`
	Category    HazardCategory `json:"category" gorm:"size:30;index;not null"`
	Difficulty  Difficulty     `json:"difficulty" gorm:"size:20;not null;default:'BEGINNER'"`
	MaxScore    int            `json:"max_score" gorm:"not null;default:100"`
	PassScore   int            `json:"pass_score" gorm:"not null;default:60"`
	TimeLimit   int            `json:"time_limit"` // seconds, 0 = untimed
	Config      datatypes.JSON `json:"config,omitempty"`
	IsPublished bool           `json:"is_published" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Drill) TableName() string { return "drills" }

// DrillResult rows are append-only. ClientKey is generated on the device at
// submission time; the unique index makes an at-least-once retry a no-op
// instead of a double insert.
type DrillResult struct {
	ID        string         `json:"id" gorm:"primaryKey;type:uuid"`
	ClientKey string         `json:"client_key" gorm:"uniqueIndex;size:64;not null"`
	UserID    string         `json:"user_id" gorm:"type:uuid;index:idx_drill_results_user_drill;not null"`
	DrillID   string         `json:"drill_id" gorm:"type:uuid;index:idx_drill_results_user_drill;not null"`
	Score     int            `json:"score" gorm:"not null"`
	MaxScore  int            `json:"max_score" gorm:"not null"`
	TimeSpent int            `json:"time_spent"` // seconds
	Passed    bool           `json:"passed"`
	Detail    datatypes.JSON `json:"detail,omitempty"` // per-step breakdown from the mini-game
	CreatedAt time.Time      `json:"created_at"`
}

func (DrillResult) TableName() string { return "drill_results" }

type SubmitDrillResultRequest struct {
	ClientKey string         `json:"client_key" validate:"required,max=64"`
	DrillID   string         `json:"drill_id" validate:"required,uuid"`
	Score     int            `json:"score" validate:"min=0"`
	MaxScore  int            `json:"max_score" validate:"required,min=1"`
	TimeSpent int            `json:"time_spent" validate:"min=0"`
	Detail    datatypes.JSON `json:"detail"`
}

type CreateDrillRequest struct {
	Title       string         `json:"title" validate:"required,max=255"`
	Description string         `json:"description"`
	Type        DrillType      `json:"type" validate:"required,oneof=drop_cover_hold hazard_spot evacuation first_aid"`
	Category    HazardCategory `json:"category" validate:"required,oneof=earthquake flood fire typhoon landslide tsunami"`
	Difficulty  Difficulty     `json:"difficulty" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	MaxScore    int            `json:"max_score" validate:"required,min=1"`
	PassScore   int            `json:"pass_score" validate:"min=0"`
	TimeLimit   int            `json:"time_limit" validate:"min=0"`
	Config      datatypes.JSON `json:"config"`
}
