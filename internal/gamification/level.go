package gamification

import "math"

const (
	levelBaseXP = 1000
	levelGrowth = 1.5

	xpPerCompletedModule = 100
	xpPerProgressTenth   = 10
	xpPerDrillPass       = 50
	xpPerfectDrillBonus  = 100
)

// LevelInfo places a user's XP on the level curve.
type LevelInfo struct {
	Level              int `json:"level"`
	XPIntoLevel        int `json:"xp_into_level"`
	XPForNextLevel     int `json:"xp_for_next_level"`
	ProgressToNext     int `json:"progress_to_next"` // percent, 0..100
	CumulativeXPBottom int `json:"cumulative_xp_bottom"`
}

// TotalXP accumulates experience from module progress and drill performances.
// Lessons feed in as +10 per full 10% of module progress; completion adds a
// flat +100. Each passing drill attempt is +50, a perfect best score +100.
func TotalXP(modules []ModuleRecord, drills []DrillPerformance) int {
	xp := 0
	for _, m := range modules {
		xp += (clampProgress(m.Progress) / 10) * xpPerProgressTenth
		if m.Completed {
			xp += xpPerCompletedModule
		}
	}
	for _, p := range drills {
		xp += p.Passes * xpPerDrillPass
		if p.Perfect {
			xp += xpPerfectDrillBonus
		}
	}
	return xp
}

// LevelThreshold is the XP cost of moving from the given level to the next:
// 1000 at level 1, growing by 1.5x per level.
func LevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Round(levelBaseXP * math.Pow(levelGrowth, float64(level-1))))
}

// CalculateLevel converts total XP into a level by iteratively subtracting
// level thresholds. Non-decreasing in xp.
func CalculateLevel(xp int) LevelInfo {
	if xp < 0 {
		xp = 0
	}
	level := 1
	bottom := 0
	remaining := xp
	for remaining >= LevelThreshold(level) {
		cost := LevelThreshold(level)
		remaining -= cost
		bottom += cost
		level++
	}

	next := LevelThreshold(level)
	progress := 0
	if next > 0 {
		progress = int(math.Round(float64(remaining) / float64(next) * 100))
	}

	return LevelInfo{
		Level:              level,
		XPIntoLevel:        remaining,
		XPForNextLevel:     next,
		ProgressToNext:     progress,
		CumulativeXPBottom: bottom,
	}
}
