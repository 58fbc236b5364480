package repository

import (
	"errors"
	"fmt"
	"time"

	"prepkit-sync-server/internal/domain"

	"gorm.io/gorm"
)

type ModuleRepository interface {
	Create(module *domain.LearningModule) error
	FindByID(id string) (*domain.LearningModule, error)
	List(filter domain.ModuleListFilter) ([]*domain.LearningModule, int64, error)
	Update(module *domain.LearningModule) error
	Delete(id string) error
	CountPublished() (int64, error)
}

type moduleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) ModuleRepository {
	return &moduleRepository{db: db}
}

func (r *moduleRepository) Create(module *domain.LearningModule) error {
	if err := r.db.Create(module).Error; err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

func (r *moduleRepository) FindByID(id string) (*domain.LearningModule, error) {
	var module domain.LearningModule
	err := r.db.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).First(&module, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find module: %w", err)
	}
	return &module, nil
}

func (r *moduleRepository) List(filter domain.ModuleListFilter) ([]*domain.LearningModule, int64, error) {
	q := r.db.Model(&domain.LearningModule{}).Where("is_published = ?", true)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Difficulty != "" {
		q = q.Where("difficulty = ?", filter.Difficulty)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count modules: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	var modules []*domain.LearningModule
	err := q.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&modules).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules, total, nil
}

func (r *moduleRepository) Update(module *domain.LearningModule) error {
	module.UpdatedAt = time.Now()
	if err := r.db.Save(module).Error; err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}
	return nil
}

func (r *moduleRepository) Delete(id string) error {
	res := r.db.Delete(&domain.LearningModule{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete module: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *moduleRepository) CountPublished() (int64, error) {
	var count int64
	if err := r.db.Model(&domain.LearningModule{}).Where("is_published = ?", true).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count modules: %w", err)
	}
	return count, nil
}

type LessonRepository interface {
	Create(lesson *domain.Lesson) error
	FindByID(id string) (*domain.Lesson, error)
	ListByModule(moduleID string) ([]*domain.Lesson, error)
	CountByModule(moduleID string) (int64, error)
}

type lessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) LessonRepository {
	return &lessonRepository{db: db}
}

func (r *lessonRepository) Create(lesson *domain.Lesson) error {
	if err := r.db.Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

func (r *lessonRepository) FindByID(id string) (*domain.Lesson, error) {
	var lesson domain.Lesson
	if err := r.db.First(&lesson, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find lesson: %w", err)
	}
	return &lesson, nil
}

func (r *lessonRepository) ListByModule(moduleID string) ([]*domain.Lesson, error) {
	var lessons []*domain.Lesson
	if err := r.db.Where("module_id = ?", moduleID).Order("sort_order ASC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return lessons, nil
}

func (r *lessonRepository) CountByModule(moduleID string) (int64, error) {
	var count int64
	if err := r.db.Model(&domain.Lesson{}).Where("module_id = ?", moduleID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return count, nil
}
