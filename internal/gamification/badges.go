package gamification

import (
	"sort"

	"prepkit-sync-server/internal/domain"
)

type BadgeTier string

const (
	TierNone   BadgeTier = ""
	TierBronze BadgeTier = "BRONZE"
	TierSilver BadgeTier = "SILVER"
	TierGold   BadgeTier = "GOLD"
)

// Badge is a tiered award for completed modules, grouped either by hazard
// category or by difficulty.
type Badge struct {
	ID        string    `json:"id"`
	Group     string    `json:"group"` // "category" or "difficulty"
	Key       string    `json:"key"`
	Tier      BadgeTier `json:"tier"`
	Completed int       `json:"completed"`
	NextAt    int       `json:"next_at,omitempty"` // completions needed for the next tier, 0 at gold
}

func tierFor(completed int) (BadgeTier, int) {
	switch {
	case completed >= 5:
		return TierGold, 0
	case completed >= 3:
		return TierSilver, 5
	case completed >= 2:
		return TierBronze, 3
	default:
		return TierNone, 2
	}
}

// EvaluateBadges derives category and difficulty badges from completed
// modules. Only groups with at least one completion appear.
func EvaluateBadges(modules []ModuleRecord) []Badge {
	byCategory := make(map[string]int)
	byDifficulty := make(map[string]int)
	for _, m := range modules {
		if !m.Completed {
			continue
		}
		byCategory[string(m.Category)]++
		byDifficulty[string(m.Difficulty)]++
	}

	badges := make([]Badge, 0, len(byCategory)+len(byDifficulty))
	for key, n := range byCategory {
		tier, next := tierFor(n)
		badges = append(badges, Badge{
			ID: "category-" + key, Group: "category", Key: key,
			Tier: tier, Completed: n, NextAt: next,
		})
	}
	for key, n := range byDifficulty {
		tier, next := tierFor(n)
		badges = append(badges, Badge{
			ID: "difficulty-" + key, Group: "difficulty", Key: key,
			Tier: tier, Completed: n, NextAt: next,
		})
	}

	sort.Slice(badges, func(i, j int) bool { return badges[i].ID < badges[j].ID })
	return badges
}

// CategoryKeys lists the hazard categories badges can be earned in, in a
// stable order for dashboard rendering.
func CategoryKeys() []string {
	cats := domain.HazardCategories()
	keys := make([]string, len(cats))
	for i, c := range cats {
		keys[i] = string(c)
	}
	return keys
}
