package service

import (
	"testing"

	"prepkit-sync-server/internal/domain"
)

func newLeaderboardFixture(t *testing.T) *StatsService {
	t.Helper()

	userRepo := newMockUserRepository()
	progressRepo := newMockProgressRepository()
	resultRepo := newMockResultRepository()
	moduleRepo := newMockModuleRepository()
	drillRepo := newMockDrillRepository()

	userRepo.Create(&domain.User{ID: "user-a", Username: "alice", Email: "a@example.com"})
	userRepo.Create(&domain.User{ID: "user-b", Username: "bob", Email: "b@example.com"})
	userRepo.Create(&domain.User{ID: "user-c", Username: "carol", Email: "c@example.com"})

	moduleRepo.Create(&domain.LearningModule{ID: "mod-1", Difficulty: domain.DifficultyBeginner, Category: domain.HazardEarthquake})
	drillRepo.Create(&domain.Drill{ID: "drill-1", MaxScore: 100, PassScore: 60})

	// alice: completed module (200 XP) + perfect passing drill (150 XP) = 350.
	progressRepo.UpsertModuleProgress(&domain.ModuleProgress{
		ID: "p-1", UserID: "user-a", ModuleID: "mod-1", Progress: 100, IsCompleted: true,
	})
	resultRepo.CreateDrillResult(&domain.DrillResult{
		ID: "r-1", ClientKey: "key-a", UserID: "user-a", DrillID: "drill-1", Score: 100, MaxScore: 100,
	})

	// bob: half a module = 50 XP. carol: no activity, stays off the board.
	progressRepo.UpsertModuleProgress(&domain.ModuleProgress{
		ID: "p-2", UserID: "user-b", ModuleID: "mod-1", Progress: 50,
	})

	return NewStatsService(progressRepo, resultRepo, moduleRepo, drillRepo, userRepo)
}

func TestStatsService_Leaderboard(t *testing.T) {
	stats := newLeaderboardFixture(t)

	entries, total, err := stats.Leaderboard(1, 20)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if total != 2 {
		t.Errorf("total = %d, want 2 (users without activity excluded)", total)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	first, second := entries[0], entries[1]
	if first.UserID != "user-a" || first.Rank != 1 {
		t.Errorf("first entry = %+v, want user-a at rank 1", first)
	}
	if first.XP != 350 {
		t.Errorf("first XP = %d, want 350", first.XP)
	}
	if first.Username != "alice" {
		t.Errorf("first username = %q, want alice", first.Username)
	}
	if second.UserID != "user-b" || second.Rank != 2 || second.XP != 50 {
		t.Errorf("second entry = %+v, want user-b at rank 2 with 50 XP", second)
	}
	if first.Level < 1 || second.Level < 1 {
		t.Error("levels must start at 1")
	}
}

func TestStatsService_LeaderboardPaginationKeepsGlobalRank(t *testing.T) {
	stats := newLeaderboardFixture(t)

	entries, total, err := stats.Leaderboard(2, 1)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(entries) != 1 {
		t.Fatalf("entries on page 2 = %d, want 1", len(entries))
	}
	if entries[0].UserID != "user-b" || entries[0].Rank != 2 {
		t.Errorf("page 2 entry = %+v, want user-b keeping global rank 2", entries[0])
	}
	if entries[0].Username != "bob" {
		t.Errorf("username = %q, want bob", entries[0].Username)
	}
}

func TestStatsService_LeaderboardPastEnd(t *testing.T) {
	stats := newLeaderboardFixture(t)

	entries, total, err := stats.Leaderboard(5, 20)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(entries) != 0 {
		t.Errorf("entries past the end = %d, want 0", len(entries))
	}
}

func TestStatsService_LeaderboardDeterministicTieBreak(t *testing.T) {
	stats := newLeaderboardFixture(t)

	first, _, err := stats.Leaderboard(1, 20)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _, err := stats.Leaderboard(1, 20)
		if err != nil {
			t.Fatalf("Leaderboard() error = %v", err)
		}
		for j := range first {
			if again[j].UserID != first[j].UserID || again[j].Rank != first[j].Rank {
				t.Fatalf("ordering changed between calls: %+v vs %+v", again[j], first[j])
			}
		}
	}
}
