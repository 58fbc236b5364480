package service

import (
	"fmt"
	"sort"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/gamification"
	"prepkit-sync-server/internal/repository"
)

// StatsService assembles the gamification dashboard: it loads a user's raw
// records and hands them to the pure scoring engine.
type StatsService struct {
	progressRepo repository.ProgressRepository
	resultRepo   repository.ResultRepository
	moduleRepo   repository.ModuleRepository
	drillRepo    repository.DrillRepository
	userRepo     repository.UserRepository
}

func NewStatsService(progressRepo repository.ProgressRepository, resultRepo repository.ResultRepository, moduleRepo repository.ModuleRepository, drillRepo repository.DrillRepository, userRepo repository.UserRepository) *StatsService {
	return &StatsService{
		progressRepo: progressRepo,
		resultRepo:   resultRepo,
		moduleRepo:   moduleRepo,
		drillRepo:    drillRepo,
		userRepo:     userRepo,
	}
}

// Summary recomputes the full derived view on every call. Nothing here is
// persisted; two calls over the same records give the same answer.
func (s *StatsService) Summary(userID string) (*gamification.Summary, error) {
	modules, drills, err := s.loadRecords(userID)
	if err != nil {
		return nil, err
	}
	summary := gamification.Summarize(modules, drills)
	return &summary, nil
}

func (s *StatsService) Achievements(userID string) ([]gamification.Achievement, error) {
	modules, drills, err := s.loadRecords(userID)
	if err != nil {
		return nil, err
	}
	return gamification.EvaluateAchievements(gamification.Count(modules, drills)), nil
}

func (s *StatsService) Badges(userID string) ([]gamification.Badge, error) {
	modules, _, err := s.loadRecords(userID)
	if err != nil {
		return nil, err
	}
	return gamification.EvaluateBadges(modules), nil
}

// Leaderboard ranks every user with recorded activity by total XP. Ties break
// on user ID so the ordering is stable across calls. Usernames are resolved
// only for the requested page.
func (s *StatsService) Leaderboard(page, perPage int) ([]*domain.LeaderboardEntry, int64, error) {
	progress, err := s.progressRepo.ListAllModuleProgress()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load progress: %w", err)
	}
	results, err := s.resultRepo.ListAllDrillResults()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load drill results: %w", err)
	}

	progressByUser := make(map[string][]*domain.ModuleProgress)
	moduleIndex := make(map[string]*domain.LearningModule)
	for _, p := range progress {
		progressByUser[p.UserID] = append(progressByUser[p.UserID], p)
		if _, ok := moduleIndex[p.ModuleID]; ok {
			continue
		}
		if m, err := s.moduleRepo.FindByID(p.ModuleID); err == nil {
			moduleIndex[p.ModuleID] = m
		}
	}

	resultsByUser := make(map[string][]*domain.DrillResult)
	drillIndex := make(map[string]*domain.Drill)
	for _, res := range results {
		resultsByUser[res.UserID] = append(resultsByUser[res.UserID], res)
		if _, ok := drillIndex[res.DrillID]; ok {
			continue
		}
		if d, err := s.drillRepo.FindByID(res.DrillID); err == nil {
			drillIndex[res.DrillID] = d
		}
	}

	seen := make(map[string]bool)
	for id := range progressByUser {
		seen[id] = true
	}
	for id := range resultsByUser {
		seen[id] = true
	}

	entries := make([]*domain.LeaderboardEntry, 0, len(seen))
	for id := range seen {
		modules := gamification.BuildModuleRecords(progressByUser[id], moduleIndex)
		drills := gamification.ReducePerformances(resultsByUser[id], drillIndex)
		xp := gamification.TotalXP(modules, drills)
		entries = append(entries, &domain.LeaderboardEntry{
			UserID: id,
			XP:     xp,
			Level:  gamification.CalculateLevel(xp).Level,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i, e := range entries {
		e.Rank = i + 1
	}

	total := int64(len(entries))
	start := (page - 1) * perPage
	if start >= len(entries) {
		return []*domain.LeaderboardEntry{}, total, nil
	}
	end := start + perPage
	if end > len(entries) {
		end = len(entries)
	}
	pageEntries := entries[start:end]

	ids := make([]string, 0, len(pageEntries))
	for _, e := range pageEntries {
		ids = append(ids, e.UserID)
	}
	users, err := s.userRepo.ListByIDs(ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	for _, e := range pageEntries {
		e.Username = names[e.UserID]
	}

	return pageEntries, total, nil
}

func (s *StatsService) loadRecords(userID string) ([]gamification.ModuleRecord, []gamification.DrillPerformance, error) {
	progress, err := s.progressRepo.ListModuleProgress(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load progress: %w", err)
	}

	moduleIndex := make(map[string]*domain.LearningModule)
	for _, p := range progress {
		if _, ok := moduleIndex[p.ModuleID]; ok {
			continue
		}
		m, err := s.moduleRepo.FindByID(p.ModuleID)
		if err != nil {
			// Module removed after progress was recorded; skip the row.
			continue
		}
		moduleIndex[p.ModuleID] = m
	}

	results, err := s.resultRepo.ListDrillResults(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load drill results: %w", err)
	}

	drillIndex := make(map[string]*domain.Drill)
	for _, res := range results {
		if _, ok := drillIndex[res.DrillID]; ok {
			continue
		}
		d, err := s.drillRepo.FindByID(res.DrillID)
		if err != nil {
			continue
		}
		drillIndex[res.DrillID] = d
	}

	return gamification.BuildModuleRecords(progress, moduleIndex),
		gamification.ReducePerformances(results, drillIndex), nil
}
