package service

import (
	"fmt"
	"math"
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"

	"github.com/google/uuid"
)

type ProgressService struct {
	progressRepo repository.ProgressRepository
	lessonRepo   repository.LessonRepository
}

func NewProgressService(progressRepo repository.ProgressRepository, lessonRepo repository.LessonRepository) *ProgressService {
	return &ProgressService{
		progressRepo: progressRepo,
		lessonRepo:   lessonRepo,
	}
}

// UpsertModuleProgress writes the device-reported module progress. The row is
// keyed by (user, module) so retried syncs converge on one row.
func (s *ProgressService) UpsertModuleProgress(userID string, req *domain.UpsertModuleProgressRequest) (*domain.ModuleProgress, error) {
	now := time.Now()
	p := &domain.ModuleProgress{
		ID:          uuid.New().String(),
		UserID:      userID,
		ModuleID:    req.ModuleID,
		Progress:    req.Progress,
		IsCompleted: req.IsCompleted,
		Downloaded:  req.Downloaded,
		TimeSpent:   req.TimeSpent,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsCompleted {
		p.Progress = 100
		p.CompletedAt = &now
	}

	if err := s.progressRepo.UpsertModuleProgress(p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertLessonProgress writes lesson progress, then recomputes the parent
// module's percentage from the completed-lesson count.
func (s *ProgressService) UpsertLessonProgress(userID string, req *domain.UpsertLessonProgressRequest) (*domain.LessonProgress, error) {
	now := time.Now()
	p := &domain.LessonProgress{
		ID:          uuid.New().String(),
		UserID:      userID,
		LessonID:    req.LessonID,
		ModuleID:    req.ModuleID,
		Progress:    req.Progress,
		IsCompleted: req.IsCompleted,
		TimeSpent:   req.TimeSpent,
		UpdatedAt:   now,
	}
	if req.IsCompleted {
		p.Progress = 100
		p.CompletedAt = &now
	}

	if err := s.progressRepo.UpsertLessonProgress(p); err != nil {
		return nil, err
	}

	if err := s.recomputeModuleProgress(userID, req.ModuleID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProgressService) recomputeModuleProgress(userID, moduleID string) error {
	total, err := s.lessonRepo.CountByModule(moduleID)
	if err != nil {
		return err
	}
	if total == 0 {
		return nil
	}

	lessons, err := s.progressRepo.ListLessonProgress(userID, moduleID)
	if err != nil {
		return err
	}

	done := 0
	timeSpent := 0
	for _, lp := range lessons {
		if lp.IsCompleted {
			done++
		}
		timeSpent += lp.TimeSpent
	}

	now := time.Now()
	progress := int(math.Round(float64(done) / float64(total) * 100))
	mp := &domain.ModuleProgress{
		ID:          uuid.New().String(),
		UserID:      userID,
		ModuleID:    moduleID,
		Progress:    progress,
		IsCompleted: done == int(total),
		TimeSpent:   timeSpent,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if mp.IsCompleted {
		mp.CompletedAt = &now
	}

	if err := s.progressRepo.UpsertModuleProgress(mp); err != nil {
		return fmt.Errorf("failed to roll up module progress: %w", err)
	}
	return nil
}

func (s *ProgressService) GetModuleProgress(userID, moduleID string) (*domain.ModuleProgress, error) {
	return s.progressRepo.FindModuleProgress(userID, moduleID)
}

func (s *ProgressService) ListModuleProgress(userID string) ([]*domain.ModuleProgress, error) {
	return s.progressRepo.ListModuleProgress(userID)
}

func (s *ProgressService) ListLessonProgress(userID, moduleID string) ([]*domain.LessonProgress, error) {
	return s.progressRepo.ListLessonProgress(userID, moduleID)
}

// ApplyProgressSync translates a queued ModuleProgress operation into the
// same upsert the REST path uses.
func (s *ProgressService) ApplyProgressSync(userID string, p *domain.ModuleProgressPayload) error {
	if p.LessonID != "" && p.Action == "lesson_completed" {
		_, err := s.UpsertLessonProgress(userID, &domain.UpsertLessonProgressRequest{
			LessonID:    p.LessonID,
			ModuleID:    p.ModuleID,
			Progress:    100,
			IsCompleted: true,
			TimeSpent:   p.TimeSpent,
		})
		return err
	}

	_, err := s.UpsertModuleProgress(userID, &domain.UpsertModuleProgressRequest{
		ModuleID:    p.ModuleID,
		Progress:    p.Progress,
		IsCompleted: p.IsCompleted || p.Action == "completed",
		Downloaded:  p.Action == "downloaded",
		TimeSpent:   p.TimeSpent,
	})
	return err
}
