package gamification

import (
	"testing"

	"prepkit-sync-server/internal/domain"
)

func TestTotalXP(t *testing.T) {
	tests := []struct {
		name    string
		modules []ModuleRecord
		drills  []DrillPerformance
		want    int
	}{
		{
			name: "empty",
			want: 0,
		},
		{
			name: "completed module",
			modules: []ModuleRecord{
				{Progress: 100, Completed: true},
			},
			want: 200, // 10 progress tenths + completion
		},
		{
			name: "partial progress rounds down to tenths",
			modules: []ModuleRecord{
				{Progress: 47},
			},
			want: 40,
		},
		{
			name: "drill passes and perfect bonus",
			drills: []DrillPerformance{
				{Attempts: 3, Passes: 2, BestScore: 100, MaxScore: 100, Perfect: true},
			},
			want: 200, // 2*50 + 100
		},
		{
			name: "mixed",
			modules: []ModuleRecord{
				{Progress: 100, Completed: true},
				{Progress: 30},
			},
			drills: []DrillPerformance{
				{Attempts: 1, Passes: 1},
			},
			want: 280,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalXP(tt.modules, tt.drills); got != tt.want {
				t.Errorf("TotalXP() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLevelThresholdGrows(t *testing.T) {
	if got := LevelThreshold(1); got != 1000 {
		t.Errorf("LevelThreshold(1) = %d, want 1000", got)
	}
	if got := LevelThreshold(2); got != 1500 {
		t.Errorf("LevelThreshold(2) = %d, want 1500", got)
	}
	if got := LevelThreshold(3); got != 2250 {
		t.Errorf("LevelThreshold(3) = %d, want 2250", got)
	}

	for level := 1; level < 20; level++ {
		if LevelThreshold(level+1) <= LevelThreshold(level) {
			t.Fatalf("threshold not strictly increasing at level %d", level)
		}
	}
}

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		name      string
		xp        int
		wantLevel int
		wantInto  int
	}{
		{"zero xp", 0, 1, 0},
		{"just below level 2", 999, 1, 999},
		{"exactly level 2", 1000, 2, 0},
		{"mid level 2", 2000, 2, 1000},
		{"level 3", 2500, 3, 0},
		{"negative clamps to zero", -50, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := CalculateLevel(tt.xp)
			if info.Level != tt.wantLevel {
				t.Errorf("Level = %d, want %d", info.Level, tt.wantLevel)
			}
			if info.XPIntoLevel != tt.wantInto {
				t.Errorf("XPIntoLevel = %d, want %d", info.XPIntoLevel, tt.wantInto)
			}
		})
	}
}

func TestCalculateLevelMonotonic(t *testing.T) {
	prev := CalculateLevel(0).Level
	for xp := 0; xp <= 50000; xp += 97 {
		level := CalculateLevel(xp).Level
		if level < prev {
			t.Fatalf("level decreased from %d to %d at xp=%d", prev, level, xp)
		}
		prev = level
	}
}

func TestCountAndAchievements(t *testing.T) {
	modules := []ModuleRecord{
		{ModuleID: "a", Progress: 100, Completed: true, Category: domain.HazardEarthquake},
		{ModuleID: "b", Progress: 100, Completed: true, Category: domain.HazardFlood},
		{ModuleID: "c", Progress: 40, Category: domain.HazardFire},
	}
	drills := []DrillPerformance{
		{DrillID: "x", Attempts: 4, Passes: 3, BestScore: 100, MaxScore: 100, Perfect: true},
	}

	c := Count(modules, drills)
	if c.ModulesStarted != 3 || c.ModulesCompleted != 2 {
		t.Errorf("counters = %+v, want 3 started / 2 completed", c)
	}
	if c.DrillsPassed != 3 || c.PerfectDrills != 1 {
		t.Errorf("counters = %+v, want 3 passes / 1 perfect", c)
	}
	if c.CategoriesDone != 2 {
		t.Errorf("CategoriesDone = %d, want 2", c.CategoriesDone)
	}

	achievements := EvaluateAchievements(c)
	byID := make(map[string]Achievement)
	for _, a := range achievements {
		byID[a.ID] = a
	}

	if !byID["first-steps"].IsUnlocked {
		t.Error("first-steps locked with 2 completed modules")
	}
	if byID["first-steps"].UnlockedAt == nil {
		t.Error("unlocked achievement missing timestamp")
	}
	if byID["module-scholar"].IsUnlocked {
		t.Error("module-scholar unlocked with only 2 completions")
	}
	if got := byID["module-scholar"].Progress; got != 2 {
		t.Errorf("module-scholar progress = %d, want 2", got)
	}
	if !byID["first-drill"].IsUnlocked {
		t.Error("first-drill locked with 3 passes")
	}
	if byID["all-hazards"].IsUnlocked {
		t.Error("all-hazards unlocked with 2 categories")
	}
}

func TestEvaluateAchievementsProgressCapped(t *testing.T) {
	c := Counters{ModulesCompleted: 50}
	for _, a := range EvaluateAchievements(c) {
		if a.Progress > a.MaxProgress {
			t.Errorf("%s progress %d exceeds max %d", a.ID, a.Progress, a.MaxProgress)
		}
	}
}

func TestEvaluateBadgesTiers(t *testing.T) {
	mk := func(n int, cat domain.HazardCategory) []ModuleRecord {
		out := make([]ModuleRecord, n)
		for i := range out {
			out[i] = ModuleRecord{
				ModuleID:   string(cat) + string(rune('a'+i)),
				Completed:  true,
				Category:   cat,
				Difficulty: domain.DifficultyBeginner,
			}
		}
		return out
	}

	tests := []struct {
		name      string
		completed int
		wantTier  BadgeTier
	}{
		{"one completion no tier", 1, TierNone},
		{"two completions bronze", 2, TierBronze},
		{"three completions silver", 3, TierSilver},
		{"four completions silver", 4, TierSilver},
		{"five completions gold", 5, TierGold},
		{"seven completions gold", 7, TierGold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			badges := EvaluateBadges(mk(tt.completed, domain.HazardFlood))
			var got BadgeTier
			for _, b := range badges {
				if b.Group == "category" && b.Key == string(domain.HazardFlood) {
					got = b.Tier
				}
			}
			if got != tt.wantTier {
				t.Errorf("tier = %q, want %q", got, tt.wantTier)
			}
		})
	}
}

func TestEvaluateBadgesSkipsIncomplete(t *testing.T) {
	badges := EvaluateBadges([]ModuleRecord{
		{ModuleID: "a", Progress: 90, Category: domain.HazardFire, Difficulty: domain.DifficultyBeginner},
	})
	if len(badges) != 0 {
		t.Errorf("badges from incomplete modules = %d, want 0", len(badges))
	}
}

func TestSummarizeEmptyUser(t *testing.T) {
	s := Summarize(nil, nil)
	if s.OverallScore != 0 || s.TotalXP != 0 {
		t.Errorf("empty summary scores = %d/%d, want 0/0", s.OverallScore, s.TotalXP)
	}
	if s.Level.Level != 1 {
		t.Errorf("empty summary level = %d, want 1", s.Level.Level)
	}
	if len(s.Achievements) == 0 {
		t.Error("achievement list should always enumerate definitions")
	}
	for _, a := range s.Achievements {
		if a.IsUnlocked {
			t.Errorf("achievement %s unlocked for empty user", a.ID)
		}
	}
}
