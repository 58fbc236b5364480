package gamification

import "time"

// Counters are the aggregate tallies achievements are judged against.
type Counters struct {
	ModulesStarted   int
	ModulesCompleted int
	DrillsAttempted  int
	DrillsPassed     int
	PerfectDrills    int
	CategoriesDone   int
}

// Count tallies the aggregates from the engine's input records.
func Count(modules []ModuleRecord, drills []DrillPerformance) Counters {
	c := Counters{}
	categories := make(map[string]bool)
	for _, m := range modules {
		if m.Progress > 0 || m.Completed {
			c.ModulesStarted++
		}
		if m.Completed {
			c.ModulesCompleted++
			categories[string(m.Category)] = true
		}
	}
	for _, p := range drills {
		if p.Attempts > 0 {
			c.DrillsAttempted++
		}
		c.DrillsPassed += p.Passes
		if p.Perfect {
			c.PerfectDrills++
		}
	}
	c.CategoriesDone = len(categories)
	return c
}

// Achievement is a threshold over a counter. UnlockedAt is stamped at
// evaluation time: unlock state is always derived, never stored, so the
// timestamp only says "unlocked as of this read".
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Progress    int        `json:"progress"`
	MaxProgress int        `json:"max_progress"`
	IsUnlocked  bool       `json:"is_unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

type achievementDef struct {
	id          string
	title       string
	description string
	max         int
	counter     func(Counters) int
}

var achievementDefs = []achievementDef{
	{"first-steps", "First Steps", "Complete your first learning module", 1,
		func(c Counters) int { return c.ModulesCompleted }},
	{"module-scholar", "Preparedness Scholar", "Complete 5 learning modules", 5,
		func(c Counters) int { return c.ModulesCompleted }},
	{"module-master", "Preparedness Master", "Complete 10 learning modules", 10,
		func(c Counters) int { return c.ModulesCompleted }},
	{"first-drill", "Drill Rookie", "Pass your first virtual drill", 1,
		func(c Counters) int { return c.DrillsPassed }},
	{"drill-veteran", "Drill Veteran", "Pass 10 virtual drills", 10,
		func(c Counters) int { return c.DrillsPassed }},
	{"sharp-shooter", "Sharpshooter", "Earn a perfect score on 5 drills", 5,
		func(c Counters) int { return c.PerfectDrills }},
	{"all-hazards", "All-Hazards Ready", "Complete modules across 4 hazard categories", 4,
		func(c Counters) int { return c.CategoriesDone }},
}

// EvaluateAchievements runs every fixed achievement definition against the
// counters. Pure threshold comparison, recomputed on every call.
func EvaluateAchievements(c Counters) []Achievement {
	now := time.Now()
	out := make([]Achievement, 0, len(achievementDefs))
	for _, def := range achievementDefs {
		progress := def.counter(c)
		if progress > def.max {
			progress = def.max
		}
		a := Achievement{
			ID:          def.id,
			Title:       def.title,
			Description: def.description,
			Progress:    progress,
			MaxProgress: def.max,
			IsUnlocked:  progress >= def.max,
		}
		if a.IsUnlocked {
			a.UnlockedAt = &now
		}
		out = append(out, a)
	}
	return out
}
