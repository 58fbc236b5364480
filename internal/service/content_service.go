package service

import (
	"fmt"
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"

	"github.com/google/uuid"
)

// ContentService manages learning modules, their lessons and quizzes.
type ContentService struct {
	moduleRepo repository.ModuleRepository
	lessonRepo repository.LessonRepository
	quizRepo   repository.QuizRepository
	resultRepo repository.ResultRepository
}

func NewContentService(moduleRepo repository.ModuleRepository, lessonRepo repository.LessonRepository, quizRepo repository.QuizRepository, resultRepo repository.ResultRepository) *ContentService {
	return &ContentService{
		moduleRepo: moduleRepo,
		lessonRepo: lessonRepo,
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
	}
}

func (s *ContentService) CreateModule(req *domain.CreateModuleRequest) (*domain.LearningModule, error) {
	now := time.Now()
	module := &domain.LearningModule{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		Duration:    req.Duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for i, l := range req.Lessons {
		order := l.Order
		if order == 0 {
			order = i + 1
		}
		module.Lessons = append(module.Lessons, domain.Lesson{
			ID:        uuid.New().String(),
			ModuleID:  module.ID,
			Title:     l.Title,
			Order:     order,
			Content:   l.Content,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.moduleRepo.Create(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *ContentService) GetModule(id string) (*domain.LearningModule, error) {
	return s.moduleRepo.FindByID(id)
}

func (s *ContentService) ListModules(filter domain.ModuleListFilter) ([]*domain.LearningModule, int64, error) {
	return s.moduleRepo.List(filter)
}

func (s *ContentService) UpdateModule(id string, req *domain.UpdateModuleRequest) (*domain.LearningModule, error) {
	module, err := s.moduleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Description != nil {
		module.Description = *req.Description
	}
	if req.Category != nil {
		module.Category = *req.Category
	}
	if req.Difficulty != nil {
		module.Difficulty = *req.Difficulty
	}
	if req.Duration != nil {
		module.Duration = *req.Duration
	}
	if req.IsPublished != nil {
		module.IsPublished = *req.IsPublished
	}

	if err := s.moduleRepo.Update(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *ContentService) DeleteModule(id string) error {
	return s.moduleRepo.Delete(id)
}

func (s *ContentService) ListLessons(moduleID string) ([]*domain.Lesson, error) {
	if _, err := s.moduleRepo.FindByID(moduleID); err != nil {
		return nil, err
	}
	return s.lessonRepo.ListByModule(moduleID)
}

func (s *ContentService) GetLesson(id string) (*domain.Lesson, error) {
	return s.lessonRepo.FindByID(id)
}

func (s *ContentService) ListQuizzes(lessonID string) ([]*domain.Quiz, error) {
	return s.quizRepo.ListByLesson(lessonID)
}

// SubmitQuizResult records a client-graded quiz attempt. Replays of the same
// client key return the duplicate flag instead of inserting a second row.
func (s *ContentService) SubmitQuizResult(userID string, req *domain.SubmitQuizResultRequest) (*domain.QuizResult, bool, error) {
	quiz, err := s.quizRepo.FindByID(req.QuizID)
	if err != nil {
		return nil, false, err
	}

	passed := false
	if req.MaxScore > 0 {
		passed = req.Score*100 >= quiz.PassScore*req.MaxScore
	}

	result := &domain.QuizResult{
		ID:        uuid.New().String(),
		ClientKey: req.ClientKey,
		UserID:    userID,
		QuizID:    req.QuizID,
		Score:     req.Score,
		MaxScore:  req.MaxScore,
		Passed:    passed,
		CreatedAt: time.Now(),
	}

	created, err := s.resultRepo.CreateQuizResult(result)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record quiz result: %w", err)
	}
	return result, !created, nil
}
