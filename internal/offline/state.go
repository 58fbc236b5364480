package offline

import (
	"time"

	"prepkit-sync-server/internal/domain"
)

// Module is a local snapshot of remote module content plus in-flight progress.
// The server copy is authoritative for content; this copy is authoritative for
// progress until it has been synced.
type Module struct {
	Content          domain.LearningModule `json:"content"`
	Progress         int                   `json:"progress"` // 0..100
	IsComplete       bool                  `json:"is_complete"`
	CompletedLessons map[string]bool       `json:"completed_lessons"`
	TimeSpent        int                   `json:"time_spent"` // seconds
	LastAccessed     time.Time             `json:"last_accessed"`
	DownloadedAt     time.Time             `json:"downloaded_at"`
}

// Drill is a local drill snapshot with the device's result history appended as
// drills are played, including while offline.
type Drill struct {
	Content      domain.Drill         `json:"content"`
	Results      []domain.DrillResult `json:"results"`
	BestScore    int                  `json:"best_score"`
	LastAccessed time.Time            `json:"last_accessed"`
}

// Alert is cached read-mostly reference data with a local-only read flag.
// Expired alerts are purged regardless of sync state.
type Alert struct {
	Content domain.Alert `json:"content"`
	IsRead  bool         `json:"is_read"`
}

// Contact caches an emergency contact with local-only favorite/access state.
type Contact struct {
	Content      domain.EmergencyContact `json:"content"`
	IsFavorite   bool                    `json:"is_favorite"`
	LastAccessed time.Time               `json:"last_accessed"`
}

// Settings are device-scoped preferences.
type Settings struct {
	AutoSync bool `json:"auto_sync"`
}

// Snapshot is a deep-enough copy of the store's state handed to readers;
// mutating it never affects the store.
type Snapshot struct {
	Modules  map[string]Module
	Drills   map[string]Drill
	Alerts   map[string]Alert
	Contacts map[string]Contact
	Settings Settings
	Queue    []domain.SyncOperation
}
