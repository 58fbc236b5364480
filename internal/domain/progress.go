package domain

import "time"

// ModuleProgress is upserted by (user_id, module_id). Replaying the same
// progress sync after a retry leaves exactly one row.
type ModuleProgress struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string     `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:ux_module_progress_user_module,priority:1"`
	ModuleID    string     `json:"module_id" gorm:"type:uuid;not null;uniqueIndex:ux_module_progress_user_module,priority:2"`
	Progress    int        `json:"progress" gorm:"not null;default:0"` // 0..100
	IsCompleted bool       `json:"is_completed" gorm:"default:false"`
	Downloaded  bool       `json:"downloaded" gorm:"default:false"`
	TimeSpent   int        `json:"time_spent" gorm:"default:0"` // seconds
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (ModuleProgress) TableName() string { return "module_progress" }

// LessonProgress is upserted by (user_id, lesson_id).
type LessonProgress struct {
	ID          string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string     `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:ux_lesson_progress_user_lesson,priority:1"`
	LessonID    string     `json:"lesson_id" gorm:"type:uuid;not null;uniqueIndex:ux_lesson_progress_user_lesson,priority:2"`
	ModuleID    string     `json:"module_id" gorm:"type:uuid;index;not null"`
	Progress    int        `json:"progress" gorm:"not null;default:0"`
	IsCompleted bool       `json:"is_completed" gorm:"default:false"`
	TimeSpent   int        `json:"time_spent" gorm:"default:0"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (LessonProgress) TableName() string { return "lesson_progress" }

type UpsertModuleProgressRequest struct {
	ModuleID    string `json:"module_id" validate:"required,uuid"`
	Progress    int    `json:"progress" validate:"min=0,max=100"`
	IsCompleted bool   `json:"is_completed"`
	Downloaded  bool   `json:"downloaded"`
	TimeSpent   int    `json:"time_spent" validate:"min=0"`
}

type UpsertLessonProgressRequest struct {
	LessonID    string `json:"lesson_id" validate:"required,uuid"`
	ModuleID    string `json:"module_id" validate:"required,uuid"`
	Progress    int    `json:"progress" validate:"min=0,max=100"`
	IsCompleted bool   `json:"is_completed"`
	TimeSpent   int    `json:"time_spent" validate:"min=0"`
}
