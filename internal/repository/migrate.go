package repository

import (
	"prepkit-sync-server/internal/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the relational schema for every persisted
// model. Run once at startup before any repository is used.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.UserProfile{},
		&domain.Device{},
		&domain.LearningModule{},
		&domain.Lesson{},
		&domain.Quiz{},
		&domain.Drill{},
		&domain.ModuleProgress{},
		&domain.LessonProgress{},
		&domain.DrillResult{},
		&domain.QuizResult{},
		&domain.Alert{},
		&domain.AlertView{},
		&domain.EmergencyContact{},
	)
}
