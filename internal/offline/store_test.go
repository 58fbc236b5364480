package offline

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"prepkit-sync-server/internal/domain"
)

type memoryBlobStore struct {
	blobs map[string][]byte
	saves int
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *memoryBlobStore) Save(key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = cp
	m.saves++
	return nil
}

func (m *memoryBlobStore) Load(key string) ([]byte, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (m *memoryBlobStore) Close() error { return nil }

func testModule(id string, lessonCount int) domain.LearningModule {
	m := domain.LearningModule{
		ID:         id,
		Title:      "Earthquake Basics",
		Category:   domain.HazardEarthquake,
		Difficulty: domain.DifficultyBeginner,
	}
	for i := 0; i < lessonCount; i++ {
		m.Lessons = append(m.Lessons, domain.Lesson{
			ID:       fmt.Sprintf("%s-lesson-%d", id, i),
			ModuleID: id,
			Order:    i + 1,
		})
	}
	return m
}

func TestStore_DownloadAndProgress(t *testing.T) {
	store, err := NewStore(newMemoryBlobStore())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	store.DownloadModule(testModule("mod-1", 4))

	snap := store.State()
	if len(snap.Modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(snap.Modules))
	}
	if snap.Modules["mod-1"].Progress != 0 {
		t.Errorf("fresh download progress = %d, want 0", snap.Modules["mod-1"].Progress)
	}
	if store.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1 (downloaded event)", store.PendingCount())
	}

	store.CompleteLesson("mod-1", "mod-1-lesson-0", 120)
	snap = store.State()
	if got := snap.Modules["mod-1"].Progress; got != 25 {
		t.Errorf("progress after 1/4 lessons = %d, want 25", got)
	}

	store.CompleteLesson("mod-1", "mod-1-lesson-1", 60)
	store.CompleteLesson("mod-1", "mod-1-lesson-2", 60)
	store.CompleteLesson("mod-1", "mod-1-lesson-3", 60)
	snap = store.State()
	m := snap.Modules["mod-1"]
	if m.Progress != 100 {
		t.Errorf("progress after all lessons = %d, want 100", m.Progress)
	}
	if !m.IsComplete {
		t.Error("module not marked complete after all lessons")
	}
	if m.TimeSpent != 300 {
		t.Errorf("TimeSpent = %d, want 300", m.TimeSpent)
	}
}

func TestStore_CompleteLessonIdempotent(t *testing.T) {
	store, _ := NewStore(nil)
	store.DownloadModule(testModule("mod-1", 2))

	store.CompleteLesson("mod-1", "mod-1-lesson-0", 30)
	store.CompleteLesson("mod-1", "mod-1-lesson-0", 30)

	snap := store.State()
	if got := snap.Modules["mod-1"].Progress; got != 50 {
		t.Errorf("progress after repeating a lesson = %d, want 50", got)
	}
}

func TestStore_QueueEvictionAtCap(t *testing.T) {
	store, _ := NewStore(nil)
	store.DownloadModule(testModule("mod-1", 1))
	oldestID := store.QueueSnapshot()[0].ID

	// One op already queued from the download; push well past the cap.
	for i := 0; i < DefaultQueueCap+50; i++ {
		store.UpdateModuleProgress("mod-1", i%100, "")
	}

	if got := store.PendingCount(); got != DefaultQueueCap {
		t.Fatalf("PendingCount() = %d, want cap %d", got, DefaultQueueCap)
	}

	// Eviction is oldest-first: the download event must be gone and the most
	// recent operation must have survived.
	ops := store.QueueSnapshot()
	for _, op := range ops {
		if op.ID == oldestID {
			t.Fatal("oldest operation survived eviction")
		}
	}
	var last domain.ModuleProgressPayload
	if err := json.Unmarshal(ops[len(ops)-1].Payload, &last); err != nil {
		t.Fatalf("failed to decode newest payload: %v", err)
	}
	if last.Progress != (DefaultQueueCap+49)%100 {
		t.Errorf("newest op progress = %d, want %d", last.Progress, (DefaultQueueCap+49)%100)
	}
}

func TestStore_ResolveAttemptsRetryBudget(t *testing.T) {
	store, _ := NewStore(nil)
	store.DownloadModule(testModule("mod-1", 1))

	ops := store.QueueSnapshot()
	if len(ops) != 1 {
		t.Fatalf("expected 1 queued op, got %d", len(ops))
	}
	id := ops[0].ID

	// Three failed retries keep the operation queued.
	for attempt := 1; attempt <= DefaultMaxRetries; attempt++ {
		dropped := store.ResolveAttempts(nil, []string{id}, time.Now())
		if len(dropped) != 0 {
			t.Fatalf("attempt %d: dropped %d ops, want 0", attempt, len(dropped))
		}
		if store.PendingCount() != 1 {
			t.Fatalf("attempt %d: PendingCount() = %d, want 1", attempt, store.PendingCount())
		}
	}

	// The fourth failure exhausts the budget.
	dropped := store.ResolveAttempts(nil, []string{id}, time.Now())
	if len(dropped) != 1 {
		t.Fatalf("dropped %d ops after budget exhausted, want 1", len(dropped))
	}
	if dropped[0].ID != id {
		t.Errorf("dropped op ID = %s, want %s", dropped[0].ID, id)
	}
	if store.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d after drop, want 0", store.PendingCount())
	}
}

func TestStore_ResolveAttemptsSuccessRemoves(t *testing.T) {
	store, _ := NewStore(nil)
	store.DownloadModule(testModule("mod-1", 1))
	store.UpdateModuleProgress("mod-1", 40, "")

	ops := store.QueueSnapshot()
	if len(ops) != 2 {
		t.Fatalf("expected 2 queued ops, got %d", len(ops))
	}

	store.ResolveAttempts([]string{ops[0].ID}, nil, time.Now())
	if store.PendingCount() != 1 {
		t.Errorf("PendingCount() = %d, want 1", store.PendingCount())
	}
	remaining := store.QueueSnapshot()
	if remaining[0].ID != ops[1].ID {
		t.Errorf("wrong op confirmed: remaining %s, want %s", remaining[0].ID, ops[1].ID)
	}
}

func TestStore_CompleteDrillGeneratesClientKey(t *testing.T) {
	store, _ := NewStore(nil)
	store.AddDrill(domain.Drill{ID: "drill-1", MaxScore: 100, PassScore: 60})

	store.CompleteDrill("drill-1", 80, 100, 45)
	store.CompleteDrill("drill-1", 95, 100, 30)

	snap := store.State()
	d := snap.Drills["drill-1"]
	if len(d.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(d.Results))
	}
	if d.Results[0].ClientKey == "" || d.Results[1].ClientKey == "" {
		t.Error("results missing client keys")
	}
	if d.Results[0].ClientKey == d.Results[1].ClientKey {
		t.Error("two results share a client key")
	}
	if d.BestScore != 95 {
		t.Errorf("BestScore = %d, want 95", d.BestScore)
	}
	if !d.Results[0].Passed {
		t.Error("score 80 vs pass 60 not marked passed")
	}
}

func TestStore_ExpireOldAlerts(t *testing.T) {
	store, _ := NewStore(nil)
	store.AddAlert(domain.Alert{ID: "fresh", ExpiresAt: time.Now().Add(time.Hour)})
	store.AddAlert(domain.Alert{ID: "stale", ExpiresAt: time.Now().Add(time.Hour)})

	// Expire one by rewriting its content through the map is not possible
	// from outside; instead add an already-expired alert and confirm it was
	// never cached, then age the fresh one via ExpireOldAlerts no-op.
	store.AddAlert(domain.Alert{ID: "dead", ExpiresAt: time.Now().Add(-time.Minute)})

	snap := store.State()
	if _, ok := snap.Alerts["dead"]; ok {
		t.Error("already-expired alert was cached")
	}

	if removed := store.ExpireOldAlerts(); removed != 0 {
		t.Errorf("ExpireOldAlerts() removed %d, want 0", removed)
	}
	if len(store.State().Alerts) != 2 {
		t.Errorf("active alerts = %d, want 2", len(store.State().Alerts))
	}
}

func TestStore_MarkAlertReadQueuesOnce(t *testing.T) {
	store, _ := NewStore(nil)
	store.AddAlert(domain.Alert{ID: "a1", ExpiresAt: time.Now().Add(time.Hour)})

	store.MarkAlertRead("a1")
	store.MarkAlertRead("a1") // second read is a no-op

	if got := store.PendingCount(); got != 1 {
		t.Errorf("PendingCount() = %d, want 1", got)
	}
}

func TestStore_PersistRestore(t *testing.T) {
	blobs := newMemoryBlobStore()

	store, _ := NewStore(blobs)
	store.DownloadModule(testModule("mod-1", 2))
	store.CompleteLesson("mod-1", "mod-1-lesson-0", 90)
	store.AddDrill(domain.Drill{ID: "drill-1", MaxScore: 100, PassScore: 60})
	store.CompleteDrill("drill-1", 70, 100, 20)
	store.SetAutoSync(false)

	wantPending := store.PendingCount()

	restored, err := NewStore(blobs)
	if err != nil {
		t.Fatalf("NewStore() after restart error = %v", err)
	}

	snap := restored.State()
	if got := snap.Modules["mod-1"].Progress; got != 50 {
		t.Errorf("restored progress = %d, want 50", got)
	}
	if len(snap.Drills["drill-1"].Results) != 1 {
		t.Errorf("restored drill results = %d, want 1", len(snap.Drills["drill-1"].Results))
	}
	if snap.Settings.AutoSync {
		t.Error("restored AutoSync = true, want false")
	}
	if got := restored.PendingCount(); got != wantPending {
		t.Errorf("restored PendingCount() = %d, want %d", got, wantPending)
	}
}

func TestStore_RestoreRejectsSchemaMismatch(t *testing.T) {
	blobs := newMemoryBlobStore()
	blobs.blobs[stateKey] = []byte(`{"schema_version": 99}`)

	if _, err := NewStore(blobs); err == nil {
		t.Error("NewStore() accepted blob with unknown schema version")
	}
}

func TestStore_MutationHookFires(t *testing.T) {
	store, _ := NewStore(nil)
	fired := 0
	store.SetMutationHook(func() { fired++ })

	store.DownloadModule(testModule("mod-1", 1))
	store.UpdateModuleProgress("mod-1", 10, "")

	if fired != 2 {
		t.Errorf("mutation hook fired %d times, want 2", fired)
	}
}
