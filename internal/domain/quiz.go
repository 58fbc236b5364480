package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz is attached to a lesson; questions are served as an opaque block and
// graded on the client.
type Quiz struct {
	ID        string         `json:"id" gorm:"primaryKey;type:uuid"`
	LessonID  string         `json:"lesson_id" gorm:"type:uuid;index;not null"`
	Title     string         `json:"title" gorm:"size:255;not null"`
	Questions datatypes.JSON `json:"questions,omitempty"`
	PassScore int            `json:"pass_score" gorm:"not null;default:60"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Quiz) TableName() string { return "quizzes" }

// QuizResult rows are append-only, deduplicated by ClientKey the same way as
// drill results.
type QuizResult struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	ClientKey string    `json:"client_key" gorm:"uniqueIndex;size:64;not null"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index;not null"`
	QuizID    string    `json:"quiz_id" gorm:"type:uuid;index;not null"`
	Score     int       `json:"score" gorm:"not null"`
	MaxScore  int       `json:"max_score" gorm:"not null"`
	Passed    bool      `json:"passed"`
	CreatedAt time.Time `json:"created_at"`
}

func (QuizResult) TableName() string { return "quiz_results" }

type SubmitQuizResultRequest struct {
	ClientKey string `json:"client_key" validate:"required,max=64"`
	QuizID    string `json:"quiz_id" validate:"required,uuid"`
	Score     int    `json:"score" validate:"min=0"`
	MaxScore  int    `json:"max_score" validate:"required,min=1"`
}
