package offline

import (
	"log"
	"math"
	"sync"
	"time"

	"prepkit-sync-server/internal/domain"

	"github.com/google/uuid"
)

const (
	// DefaultQueueCap bounds the outbound queue; beyond it the oldest
	// operations are evicted first. Sustained disconnection can therefore
	// lose very old operations — accepted lossy degradation, not a bug.
	DefaultQueueCap = 1000

	// DefaultMaxRetries is the retry budget per operation: after this many
	// failed retries (so DefaultMaxRetries+1 attempts) the operation is
	// dropped and surfaced as a permanent failure.
	DefaultMaxRetries = 3
)

// Store is the device-local view of content and progress plus the durable
// outbound queue. All state lives behind one mutex; every mutation is written
// through to the blob store so it survives process restarts.
type Store struct {
	mu       sync.Mutex
	modules  map[string]Module
	drills   map[string]Drill
	alerts   map[string]Alert
	contacts map[string]Contact
	settings Settings
	queue    queue

	blobs       BlobStore
	subscribers []func(Snapshot)
	onMutate    func()
}

// NewStore loads any persisted state from blobs and returns a ready store.
// A missing blob is a fresh install, not an error.
func NewStore(blobs BlobStore) (*Store, error) {
	s := &Store{
		modules:  make(map[string]Module),
		drills:   make(map[string]Drill),
		alerts:   make(map[string]Alert),
		contacts: make(map[string]Contact),
		settings: Settings{AutoSync: true},
		queue:    queue{cap: DefaultQueueCap, maxRetries: DefaultMaxRetries},
		blobs:    blobs,
	}
	if blobs != nil {
		data, err := blobs.Load(stateKey)
		if err != nil {
			return nil, err
		}
		if data != nil {
			if err := s.restore(data); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// Subscribe registers a callback invoked with a fresh snapshot after every
// mutation. Callbacks run synchronously under no lock.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// SetMutationHook installs the sync engine's local-mutation trigger.
func (s *Store) SetMutationHook(fn func()) {
	s.mu.Lock()
	s.onMutate = fn
	s.mu.Unlock()
}

// DownloadModule snapshots remote content locally with zero progress and
// queues a downloaded event.
func (s *Store) DownloadModule(content domain.LearningModule) {
	s.mu.Lock()
	now := time.Now()
	s.modules[content.ID] = Module{
		Content:          content,
		Progress:         0,
		CompletedLessons: make(map[string]bool),
		LastAccessed:     now,
		DownloadedAt:     now,
	}
	s.enqueueLocked(domain.OpModuleProgress, domain.ModuleProgressPayload{
		ModuleID: content.ID,
		Action:   "downloaded",
	})
	s.commitLocked()
}

// UpdateModuleProgress mutates the local snapshot and queues a progress
// update. Progress is clamped to [0,100]; unknown modules are ignored.
func (s *Store) UpdateModuleProgress(moduleID string, progress int, lessonID string) {
	s.mu.Lock()
	m, ok := s.modules[moduleID]
	if !ok {
		s.mu.Unlock()
		return
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	m.Progress = progress
	m.LastAccessed = time.Now()
	s.modules[moduleID] = m

	s.enqueueLocked(domain.OpModuleProgress, domain.ModuleProgressPayload{
		ModuleID: moduleID,
		LessonID: lessonID,
		Action:   "progress",
		Progress: progress,
	})
	s.commitLocked()
}

// CompleteLesson marks one lesson done and recomputes module progress as
// round(100 * completed / total).
func (s *Store) CompleteLesson(moduleID, lessonID string, timeSpent int) {
	s.mu.Lock()
	m, ok := s.modules[moduleID]
	if !ok {
		s.mu.Unlock()
		return
	}
	if m.CompletedLessons == nil {
		m.CompletedLessons = make(map[string]bool)
	}
	m.CompletedLessons[lessonID] = true
	m.TimeSpent += timeSpent
	if total := len(m.Content.Lessons); total > 0 {
		done := 0
		for _, lesson := range m.Content.Lessons {
			if m.CompletedLessons[lesson.ID] {
				done++
			}
		}
		m.Progress = int(math.Round(100 * float64(done) / float64(total)))
	}
	m.IsComplete = m.Progress >= 100
	m.LastAccessed = time.Now()
	s.modules[moduleID] = m

	s.enqueueLocked(domain.OpModuleProgress, domain.ModuleProgressPayload{
		ModuleID:    moduleID,
		LessonID:    lessonID,
		Action:      "lesson_completed",
		Progress:    m.Progress,
		IsCompleted: m.IsComplete,
		TimeSpent:   timeSpent,
	})
	s.commitLocked()
}

// CompleteModule forces full progress and queues the completion event.
func (s *Store) CompleteModule(moduleID string) {
	s.mu.Lock()
	m, ok := s.modules[moduleID]
	if !ok {
		s.mu.Unlock()
		return
	}
	m.Progress = 100
	m.IsComplete = true
	m.LastAccessed = time.Now()
	s.modules[moduleID] = m

	s.enqueueLocked(domain.OpModuleProgress, domain.ModuleProgressPayload{
		ModuleID:    moduleID,
		Action:      "completed",
		Progress:    100,
		IsCompleted: true,
	})
	s.commitLocked()
}

// AddDrill caches drill content locally.
func (s *Store) AddDrill(content domain.Drill) {
	s.mu.Lock()
	if _, ok := s.drills[content.ID]; !ok {
		s.drills[content.ID] = Drill{Content: content, LastAccessed: time.Now()}
	}
	s.commitLocked()
}

// CompleteDrill appends a result to the local history and queues a result
// sync. The result's client key is generated here, once, so a retried upload
// of the same result cannot double-insert server-side.
func (s *Store) CompleteDrill(drillID string, score, maxScore, timeSpent int) {
	s.mu.Lock()
	d, ok := s.drills[drillID]
	if !ok {
		s.mu.Unlock()
		return
	}
	clientKey := uuid.New().String()
	result := domain.DrillResult{
		ID:        clientKey,
		ClientKey: clientKey,
		DrillID:   drillID,
		Score:     score,
		MaxScore:  maxScore,
		TimeSpent: timeSpent,
		Passed:    score >= d.Content.PassScore,
		CreatedAt: time.Now(),
	}
	d.Results = append(d.Results, result)
	if score > d.BestScore {
		d.BestScore = score
	}
	d.LastAccessed = time.Now()
	s.drills[drillID] = d

	s.enqueueLocked(domain.OpDrillResult, domain.DrillResultPayload{
		ClientKey: clientKey,
		DrillID:   drillID,
		Score:     score,
		MaxScore:  maxScore,
		TimeSpent: timeSpent,
	})
	s.commitLocked()
}

// AddAlert caches an incoming alert. Already-expired alerts are ignored.
func (s *Store) AddAlert(alert domain.Alert) {
	s.mu.Lock()
	if alert.ExpiresAt.Before(time.Now()) {
		s.mu.Unlock()
		return
	}
	if _, ok := s.alerts[alert.ID]; !ok {
		s.alerts[alert.ID] = Alert{Content: alert}
	}
	s.commitLocked()
}

// MarkAlertRead flips the local read flag and queues a view receipt.
func (s *Store) MarkAlertRead(alertID string) {
	s.mu.Lock()
	a, ok := s.alerts[alertID]
	if !ok || a.IsRead {
		s.mu.Unlock()
		return
	}
	a.IsRead = true
	s.alerts[alertID] = a

	s.enqueueLocked(domain.OpAlertView, domain.AlertViewPayload{
		AlertID:  alertID,
		ViewedAt: time.Now(),
	})
	s.commitLocked()
}

// ExpireOldAlerts drops every cached alert whose expiry has passed. Pure
// filter, idempotent, independent of sync state.
func (s *Store) ExpireOldAlerts() int {
	s.mu.Lock()
	now := time.Now()
	removed := 0
	for id, a := range s.alerts {
		if a.Content.ExpiresAt.Before(now) {
			delete(s.alerts, id)
			removed++
		}
	}
	if removed == 0 {
		s.mu.Unlock()
		return 0
	}
	s.commitLocked()
	return removed
}

// AddContact caches an emergency contact.
func (s *Store) AddContact(contact domain.EmergencyContact) {
	s.mu.Lock()
	if _, ok := s.contacts[contact.ID]; !ok {
		s.contacts[contact.ID] = Contact{
			Content:    contact,
			IsFavorite: contact.IsFavorite,
		}
	}
	s.commitLocked()
}

// TouchContact records access and an optional favorite flip, queueing the
// change for the server.
func (s *Store) TouchContact(contactID string, favorite bool) {
	s.mu.Lock()
	c, ok := s.contacts[contactID]
	if !ok {
		s.mu.Unlock()
		return
	}
	now := time.Now()
	c.IsFavorite = favorite
	c.LastAccessed = now
	s.contacts[contactID] = c

	s.enqueueLocked(domain.OpContactAccess, domain.ContactAccessPayload{
		ContactID:  contactID,
		IsFavorite: favorite,
		AccessedAt: now,
	})
	s.commitLocked()
}

// UpdateProfile queues a profile sync.
func (s *Store) UpdateProfile(p domain.UserProfilePayload) {
	s.mu.Lock()
	s.settings.AutoSync = p.AutoSyncEnabled
	s.enqueueLocked(domain.OpUserProfile, p)
	s.commitLocked()
}

// SetAutoSync toggles the post-mutation sync trigger.
func (s *Store) SetAutoSync(on bool) {
	s.mu.Lock()
	s.settings.AutoSync = on
	s.commitLocked()
}

// AutoSync reports whether post-mutation drains are wanted.
func (s *Store) AutoSync() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.AutoSync
}

// PendingCount is the number of queued, unconfirmed operations.
func (s *Store) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue.ops)
}

// QueueSnapshot copies the current queue for a drain. Operations enqueued
// after this call belong to the next drain cycle.
func (s *Store) QueueSnapshot() []domain.SyncOperation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.snapshot()
}

// ResolveAttempts applies a drain outcome: succeeded operations leave the
// queue; failed ones get retryCount+1 and lastAttemptAt, and any that exceed
// the retry budget are removed and returned as dropped.
func (s *Store) ResolveAttempts(succeeded, failed []string, at time.Time) []domain.SyncOperation {
	s.mu.Lock()
	dropped := s.queue.resolve(succeeded, failed, at)
	s.commitLocked()
	return dropped
}

// State returns a point-in-time snapshot for rendering.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// StorageUsageMB serializes the whole state and reports its size. An
// approximation of the persisted footprint, not an exact accounting.
func (s *Store) StorageUsageMB() float64 {
	s.mu.Lock()
	data, err := s.persisted()
	s.mu.Unlock()
	if err != nil {
		return 0
	}
	return float64(len(data)) / (1024 * 1024)
}

func (s *Store) enqueueLocked(kind domain.OperationKind, payload any) {
	op, err := newOperation(kind, payload)
	if err != nil {
		log.Printf("[offline] failed to encode %s operation: %v", kind, err)
		return
	}
	s.queue.push(op)
}

// commitLocked persists, releases the lock, then notifies subscribers and the
// mutation hook outside of it.
func (s *Store) commitLocked() {
	data, err := s.persisted()
	if err != nil {
		log.Printf("[offline] failed to serialize state: %v", err)
	} else if s.blobs != nil {
		if err := s.blobs.Save(stateKey, data); err != nil {
			log.Printf("[offline] failed to persist state: %v", err)
		}
	}
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), len(s.subscribers))
	copy(subs, s.subscribers)
	hook := s.onMutate
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	if hook != nil {
		hook()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Modules:  make(map[string]Module, len(s.modules)),
		Drills:   make(map[string]Drill, len(s.drills)),
		Alerts:   make(map[string]Alert, len(s.alerts)),
		Contacts: make(map[string]Contact, len(s.contacts)),
		Settings: s.settings,
		Queue:    s.queue.snapshot(),
	}
	for id, m := range s.modules {
		lessons := make(map[string]bool, len(m.CompletedLessons))
		for k, v := range m.CompletedLessons {
			lessons[k] = v
		}
		m.CompletedLessons = lessons
		snap.Modules[id] = m
	}
	for id, d := range s.drills {
		results := make([]domain.DrillResult, len(d.Results))
		copy(results, d.Results)
		d.Results = results
		snap.Drills[id] = d
	}
	for id, a := range s.alerts {
		snap.Alerts[id] = a
	}
	for id, c := range s.contacts {
		snap.Contacts[id] = c
	}
	return snap
}
