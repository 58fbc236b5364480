package repository

import (
	"errors"
	"fmt"
	"time"

	"prepkit-sync-server/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DrillRepository interface {
	Create(drill *domain.Drill) error
	FindByID(id string) (*domain.Drill, error)
	List(category domain.HazardCategory) ([]*domain.Drill, error)
	Update(drill *domain.Drill) error
	Delete(id string) error
}

type drillRepository struct {
	db *gorm.DB
}

func NewDrillRepository(db *gorm.DB) DrillRepository {
	return &drillRepository{db: db}
}

func (r *drillRepository) Create(drill *domain.Drill) error {
	if err := r.db.Create(drill).Error; err != nil {
		return fmt.Errorf("failed to create drill: %w", err)
	}
	return nil
}

func (r *drillRepository) FindByID(id string) (*domain.Drill, error) {
	var drill domain.Drill
	if err := r.db.First(&drill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find drill: %w", err)
	}
	return &drill, nil
}

func (r *drillRepository) List(category domain.HazardCategory) ([]*domain.Drill, error) {
	q := r.db.Where("is_published = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var drills []*domain.Drill
	if err := q.Order("created_at DESC").Find(&drills).Error; err != nil {
		return nil, fmt.Errorf("failed to list drills: %w", err)
	}
	return drills, nil
}

func (r *drillRepository) Update(drill *domain.Drill) error {
	drill.UpdatedAt = time.Now()
	if err := r.db.Save(drill).Error; err != nil {
		return fmt.Errorf("failed to update drill: %w", err)
	}
	return nil
}

func (r *drillRepository) Delete(id string) error {
	res := r.db.Delete(&domain.Drill{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete drill: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type ResultRepository interface {
	CreateDrillResult(result *domain.DrillResult) (created bool, err error)
	CreateQuizResult(result *domain.QuizResult) (created bool, err error)
	ListDrillResults(userID string) ([]*domain.DrillResult, error)
	ListAllDrillResults() ([]*domain.DrillResult, error)
	ListDrillResultsByDrill(userID, drillID string) ([]*domain.DrillResult, error)
	ListQuizResults(userID string) ([]*domain.QuizResult, error)
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

// CreateDrillResult inserts an append-only result row. The unique client_key
// index plus OnConflict DoNothing makes a replayed submission a no-op; the
// returned flag reports whether a row was actually written.
func (r *resultRepository) CreateDrillResult(result *domain.DrillResult) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_key"}},
		DoNothing: true,
	}).Create(result)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create drill result: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *resultRepository) CreateQuizResult(result *domain.QuizResult) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_key"}},
		DoNothing: true,
	}).Create(result)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create quiz result: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *resultRepository) ListDrillResults(userID string) ([]*domain.DrillResult, error) {
	var results []*domain.DrillResult
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list drill results: %w", err)
	}
	return results, nil
}

// ListAllDrillResults loads results across every user, for the leaderboard.
func (r *resultRepository) ListAllDrillResults() ([]*domain.DrillResult, error) {
	var results []*domain.DrillResult
	if err := r.db.Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list drill results: %w", err)
	}
	return results, nil
}

func (r *resultRepository) ListDrillResultsByDrill(userID, drillID string) ([]*domain.DrillResult, error) {
	var results []*domain.DrillResult
	err := r.db.Where("user_id = ? AND drill_id = ?", userID, drillID).
		Order("created_at ASC").Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list drill results: %w", err)
	}
	return results, nil
}

func (r *resultRepository) ListQuizResults(userID string) ([]*domain.QuizResult, error) {
	var results []*domain.QuizResult
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list quiz results: %w", err)
	}
	return results, nil
}
