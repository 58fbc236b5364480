package gamification

import (
	"math"

	"prepkit-sync-server/internal/domain"
)

const completionBonus = 20

// ModuleScore scores a single module: progress plus a completion bonus,
// weighted by difficulty.
func ModuleScore(m ModuleRecord) int {
	bonus := 0
	if m.Completed {
		bonus = completionBonus
	}
	return int(math.Round(float64(m.Progress+bonus) * domain.DifficultyMultiplier(m.Difficulty)))
}

// DrillScore scores a single drill performance: accuracy weighted by
// difficulty plus a bonus that rewards fewer attempts. A zero or negative
// MaxScore yields 0 rather than propagating a division artifact.
func DrillScore(p DrillPerformance) float64 {
	if p.MaxScore <= 0 {
		return 0
	}
	accuracy := float64(p.BestScore) / float64(p.MaxScore)
	attemptBonus := float64(10 - p.Attempts)
	if attemptBonus < 0 {
		attemptBonus = 0
	}
	return accuracy*100*domain.DifficultyMultiplier(p.Difficulty) + attemptBonus
}

// MeanModuleScore averages module scores; an empty collection is 0, not NaN.
func MeanModuleScore(modules []ModuleRecord) int {
	if len(modules) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range modules {
		sum += float64(ModuleScore(m))
	}
	return int(math.Round(sum / float64(len(modules))))
}

// MeanDrillScore averages drill scores; an empty collection is 0, not NaN.
func MeanDrillScore(drills []DrillPerformance) int {
	if len(drills) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range drills {
		sum += DrillScore(p)
	}
	return int(math.Round(sum / float64(len(drills))))
}

// OverallScore blends modules and drills 70/30. The result is deliberately not
// clamped to 100: completion bonuses and difficulty multipliers can push it
// past 100 and the product treats that as earned bonus points.
func OverallScore(modules []ModuleRecord, drills []DrillPerformance) int {
	return int(math.Round(0.7*float64(MeanModuleScore(modules)) + 0.3*float64(MeanDrillScore(drills))))
}
