package repository

import (
	"errors"
	"fmt"

	"prepkit-sync-server/internal/domain"

	"gorm.io/gorm"
)

type QuizRepository interface {
	Create(quiz *domain.Quiz) error
	FindByID(id string) (*domain.Quiz, error)
	ListByLesson(lessonID string) ([]*domain.Quiz, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(quiz *domain.Quiz) error {
	if err := r.db.Create(quiz).Error; err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (r *quizRepository) FindByID(id string) (*domain.Quiz, error) {
	var quiz domain.Quiz
	if err := r.db.First(&quiz, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find quiz: %w", err)
	}
	return &quiz, nil
}

func (r *quizRepository) ListByLesson(lessonID string) ([]*domain.Quiz, error) {
	var quizzes []*domain.Quiz
	if err := r.db.Where("lesson_id = ?", lessonID).Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	return quizzes, nil
}
