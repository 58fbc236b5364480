package repository

import (
	"errors"
	"fmt"
	"time"

	"prepkit-sync-server/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository interface {
	UpsertModuleProgress(p *domain.ModuleProgress) error
	UpsertLessonProgress(p *domain.LessonProgress) error
	FindModuleProgress(userID, moduleID string) (*domain.ModuleProgress, error)
	ListModuleProgress(userID string) ([]*domain.ModuleProgress, error)
	ListAllModuleProgress() ([]*domain.ModuleProgress, error)
	ListLessonProgress(userID, moduleID string) ([]*domain.LessonProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

// UpsertModuleProgress writes progress keyed by (user_id, module_id). This is
// the idempotency boundary for retried sync operations: replaying the same
// operation rewrites the same row instead of inserting a second one.
func (r *progressRepository) UpsertModuleProgress(p *domain.ModuleProgress) error {
	p.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"progress", "is_completed", "downloaded", "time_spent", "completed_at", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("failed to upsert module progress: %w", err)
	}
	return nil
}

// UpsertLessonProgress writes progress keyed by (user_id, lesson_id).
func (r *progressRepository) UpsertLessonProgress(p *domain.LessonProgress) error {
	p.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"progress", "is_completed", "time_spent", "completed_at", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return fmt.Errorf("failed to upsert lesson progress: %w", err)
	}
	return nil
}

func (r *progressRepository) FindModuleProgress(userID, moduleID string) (*domain.ModuleProgress, error) {
	var p domain.ModuleProgress
	if err := r.db.First(&p, "user_id = ? AND module_id = ?", userID, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find module progress: %w", err)
	}
	return &p, nil
}

func (r *progressRepository) ListModuleProgress(userID string) ([]*domain.ModuleProgress, error) {
	var progress []*domain.ModuleProgress
	if err := r.db.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to list module progress: %w", err)
	}
	return progress, nil
}

// ListAllModuleProgress loads progress across every user, for the leaderboard.
func (r *progressRepository) ListAllModuleProgress() ([]*domain.ModuleProgress, error) {
	var progress []*domain.ModuleProgress
	if err := r.db.Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to list module progress: %w", err)
	}
	return progress, nil
}

func (r *progressRepository) ListLessonProgress(userID, moduleID string) ([]*domain.LessonProgress, error) {
	var progress []*domain.LessonProgress
	if err := r.db.Where("user_id = ? AND module_id = ?", userID, moduleID).Find(&progress).Error; err != nil {
		return nil, fmt.Errorf("failed to list lesson progress: %w", err)
	}
	return progress, nil
}
