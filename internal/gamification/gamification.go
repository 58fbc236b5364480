// Package gamification derives preparedness scores, levels, achievements and
// badges from raw progress and drill records. Every function here is a pure
// computation over its inputs; nothing is persisted and everything is safe to
// recompute on each request.
package gamification

import (
	"sort"

	"prepkit-sync-server/internal/domain"
)

// ModuleRecord is a user's standing in one learning module, joined with the
// module's static attributes.
type ModuleRecord struct {
	ModuleID   string
	Progress   int // 0..100
	Completed  bool
	Difficulty domain.Difficulty
	Category   domain.HazardCategory
}

// DrillPerformance is the fold of all historical results for one (user, drill)
// pair. Attempts >= 1 whenever a performance exists.
type DrillPerformance struct {
	DrillID      string
	BestScore    int
	MaxScore     int
	Attempts     int
	Passes       int
	AverageScore float64
	Perfect      bool
	Difficulty   domain.Difficulty
	Category     domain.HazardCategory
}

// BuildModuleRecords joins progress rows with their modules. Progress rows
// whose module is unknown are skipped.
func BuildModuleRecords(progress []*domain.ModuleProgress, modules map[string]*domain.LearningModule) []ModuleRecord {
	records := make([]ModuleRecord, 0, len(progress))
	for _, p := range progress {
		m, ok := modules[p.ModuleID]
		if !ok {
			continue
		}
		records = append(records, ModuleRecord{
			ModuleID:   p.ModuleID,
			Progress:   clampProgress(p.Progress),
			Completed:  p.IsCompleted,
			Difficulty: m.Difficulty,
			Category:   m.Category,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ModuleID < records[j].ModuleID })
	return records
}

// ReducePerformances folds result rows into one performance per drill.
// Results referencing an unknown drill are skipped.
func ReducePerformances(results []*domain.DrillResult, drills map[string]*domain.Drill) []DrillPerformance {
	byDrill := make(map[string]*DrillPerformance)
	totals := make(map[string]int)

	for _, res := range results {
		d, ok := drills[res.DrillID]
		if !ok {
			continue
		}
		perf, ok := byDrill[res.DrillID]
		if !ok {
			perf = &DrillPerformance{
				DrillID:    res.DrillID,
				MaxScore:   d.MaxScore,
				Difficulty: d.Difficulty,
				Category:   d.Category,
			}
			byDrill[res.DrillID] = perf
		}
		perf.Attempts++
		totals[res.DrillID] += res.Score
		if res.Score > perf.BestScore {
			perf.BestScore = res.Score
		}
		if res.Score >= d.PassScore {
			perf.Passes++
		}
	}

	out := make([]DrillPerformance, 0, len(byDrill))
	for id, perf := range byDrill {
		perf.AverageScore = float64(totals[id]) / float64(perf.Attempts)
		if perf.BestScore > perf.MaxScore {
			perf.BestScore = perf.MaxScore
		}
		perf.Perfect = perf.MaxScore > 0 && perf.BestScore == perf.MaxScore
		out = append(out, *perf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DrillID < out[j].DrillID })
	return out
}

// Summary is the full derived view the dashboard renders.
type Summary struct {
	ModuleScore     int           `json:"module_score"`
	DrillScore      int           `json:"drill_score"`
	OverallScore    int           `json:"overall_score"`
	TotalXP         int           `json:"total_xp"`
	Level           LevelInfo     `json:"level"`
	Achievements    []Achievement `json:"achievements"`
	Badges          []Badge       `json:"badges"`
	ModulesStarted  int           `json:"modules_started"`
	ModulesComplete int           `json:"modules_complete"`
	DrillsAttempted int           `json:"drills_attempted"`
	DrillsPassed    int           `json:"drills_passed"`
	PerfectDrills   int           `json:"perfect_drills"`
}

// Summarize runs the whole engine over one user's records.
func Summarize(modules []ModuleRecord, drills []DrillPerformance) Summary {
	xp := TotalXP(modules, drills)
	counters := Count(modules, drills)
	return Summary{
		ModuleScore:     MeanModuleScore(modules),
		DrillScore:      MeanDrillScore(drills),
		OverallScore:    OverallScore(modules, drills),
		TotalXP:         xp,
		Level:           CalculateLevel(xp),
		Achievements:    EvaluateAchievements(counters),
		Badges:          EvaluateBadges(modules),
		ModulesStarted:  counters.ModulesStarted,
		ModulesComplete: counters.ModulesCompleted,
		DrillsAttempted: counters.DrillsAttempted,
		DrillsPassed:    counters.DrillsPassed,
		PerfectDrills:   counters.PerfectDrills,
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
