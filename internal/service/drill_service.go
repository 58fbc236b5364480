package service

import (
	"fmt"
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"

	"github.com/google/uuid"
)

type DrillService struct {
	drillRepo  repository.DrillRepository
	resultRepo repository.ResultRepository
}

func NewDrillService(drillRepo repository.DrillRepository, resultRepo repository.ResultRepository) *DrillService {
	return &DrillService{
		drillRepo:  drillRepo,
		resultRepo: resultRepo,
	}
}

func (s *DrillService) Create(req *domain.CreateDrillRequest) (*domain.Drill, error) {
	now := time.Now()
	passScore := req.PassScore
	if passScore == 0 {
		passScore = req.MaxScore * 60 / 100
	}

	drill := &domain.Drill{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		MaxScore:    req.MaxScore,
		PassScore:   passScore,
		TimeLimit:   req.TimeLimit,
		Config:      req.Config,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.drillRepo.Create(drill); err != nil {
		return nil, err
	}
	return drill, nil
}

func (s *DrillService) Get(id string) (*domain.Drill, error) {
	return s.drillRepo.FindByID(id)
}

func (s *DrillService) List(category domain.HazardCategory) ([]*domain.Drill, error) {
	return s.drillRepo.List(category)
}

// SubmitResult records one drill run. The pass verdict is derived server-side
// from the drill's pass score, not trusted from the client. Replaying the
// same client key is a no-op; the duplicate flag is returned so the sync
// handler can still acknowledge the operation.
func (s *DrillService) SubmitResult(userID string, req *domain.SubmitDrillResultRequest) (*domain.DrillResult, bool, error) {
	drill, err := s.drillRepo.FindByID(req.DrillID)
	if err != nil {
		return nil, false, err
	}

	if req.Score > req.MaxScore {
		return nil, false, fmt.Errorf("score %d exceeds max score %d", req.Score, req.MaxScore)
	}

	passed := false
	if req.MaxScore > 0 {
		// Scale to the drill's own scoring range before comparing.
		passed = req.Score*drill.MaxScore >= drill.PassScore*req.MaxScore
	}

	result := &domain.DrillResult{
		ID:        uuid.New().String(),
		ClientKey: req.ClientKey,
		UserID:    userID,
		DrillID:   req.DrillID,
		Score:     req.Score,
		MaxScore:  req.MaxScore,
		TimeSpent: req.TimeSpent,
		Passed:    passed,
		Detail:    req.Detail,
		CreatedAt: time.Now(),
	}

	created, err := s.resultRepo.CreateDrillResult(result)
	if err != nil {
		return nil, false, fmt.Errorf("failed to record drill result: %w", err)
	}
	return result, !created, nil
}

func (s *DrillService) ListResults(userID string) ([]*domain.DrillResult, error) {
	return s.resultRepo.ListDrillResults(userID)
}

func (s *DrillService) ListResultsByDrill(userID, drillID string) ([]*domain.DrillResult, error) {
	return s.resultRepo.ListDrillResultsByDrill(userID, drillID)
}
