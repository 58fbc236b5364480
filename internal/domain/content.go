package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

// DifficultyMultiplier is shared by the scoring engine and dashboard views.
func DifficultyMultiplier(d Difficulty) float64 {
	switch d {
	case DifficultyIntermediate:
		return 1.2
	case DifficultyAdvanced:
		return 1.5
	default:
		return 1.0
	}
}

type HazardCategory string

const (
	HazardEarthquake HazardCategory = "earthquake"
	HazardFlood      HazardCategory = "flood"
	HazardFire       HazardCategory = "fire"
	HazardTyphoon    HazardCategory = "typhoon"
	HazardLandslide  HazardCategory = "landslide"
	HazardTsunami    HazardCategory = "tsunami"
)

func HazardCategories() []HazardCategory {
	return []HazardCategory{
		HazardEarthquake, HazardFlood, HazardFire,
		HazardTyphoon, HazardLandslide, HazardTsunami,
	}
}

// LearningModule is a unit of preparedness content made of ordered lessons.
type LearningModule struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    HazardCategory `json:"category" gorm:"size:30;index;not null"`
	Difficulty  Difficulty     `json:"difficulty" gorm:"size:20;not null;default:'BEGINNER'"`
	Duration    int            `json:"duration"` // estimated minutes
	IsPublished bool           `json:"is_published" gorm:"default:true"`
	Lessons     []Lesson       `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (LearningModule) TableName() string { return "learning_modules" }

type Lesson struct {
	ID        string         `json:"id" gorm:"primaryKey;type:uuid"`
	ModuleID  string         `json:"module_id" gorm:"type:uuid;index;not null"`
	Title     string         `json:"title" gorm:"size:255;not null"`
	Order     int            `json:"order" gorm:"column:sort_order;default:0"`
	Content   datatypes.JSON `json:"content,omitempty"` // rendered blocks, opaque to the server
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Lesson) TableName() string { return "lessons" }

type CreateModuleRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description"`
	Category    HazardCategory  `json:"category" validate:"required,oneof=earthquake flood fire typhoon landslide tsunami"`
	Difficulty  Difficulty      `json:"difficulty" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Duration    int             `json:"duration" validate:"min=0"`
	Lessons     []LessonPayload `json:"lessons" validate:"dive"`
}

type LessonPayload struct {
	Title   string         `json:"title" validate:"required,max=255"`
	Order   int            `json:"order"`
	Content datatypes.JSON `json:"content"`
}

type UpdateModuleRequest struct {
	Title       *string         `json:"title" validate:"omitempty,max=255"`
	Description *string         `json:"description"`
	Category    *HazardCategory `json:"category" validate:"omitempty,oneof=earthquake flood fire typhoon landslide tsunami"`
	Difficulty  *Difficulty     `json:"difficulty" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Duration    *int            `json:"duration" validate:"omitempty,min=0"`
	IsPublished *bool           `json:"is_published"`
}

type ModuleListFilter struct {
	Category   HazardCategory
	Difficulty Difficulty
	Page       int
	PerPage    int
}
