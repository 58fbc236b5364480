package service

import (
	"encoding/json"
	"testing"
	"time"

	"prepkit-sync-server/internal/domain"
)

type syncFixture struct {
	sync     *SyncService
	progress *mockProgressRepository
	results  *mockResultRepository
	profiles *mockProfileRepository
	alerts   *mockAlertRepository
	contacts *mockContactRepository
	devices  *mockDeviceRepository
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	userRepo := newMockUserRepository()
	profileRepo := newMockProfileRepository()
	moduleRepo := newMockModuleRepository()
	lessonRepo := newMockLessonRepository()
	quizRepo := newMockQuizRepository()
	progressRepo := newMockProgressRepository()
	drillRepo := newMockDrillRepository()
	resultRepo := newMockResultRepository()
	alertRepo := newMockAlertRepository()
	contactRepo := newMockContactRepository()
	deviceRepo := newMockDeviceRepository()

	userRepo.Create(&domain.User{ID: "user-1", Username: "prepper", Email: "p@example.com"})
	profileRepo.Upsert(&domain.UserProfile{ID: "prof-1", UserID: "user-1", AutoSyncEnabled: true})
	moduleRepo.Create(&domain.LearningModule{ID: "mod-1", Difficulty: domain.DifficultyBeginner, Category: domain.HazardEarthquake})
	drillRepo.Create(&domain.Drill{ID: "drill-1", MaxScore: 100, PassScore: 60})
	quizRepo.Create(&domain.Quiz{ID: "quiz-1", LessonID: "lesson-1", PassScore: 60})
	alertRepo.Create(&domain.Alert{ID: "alert-1", ExpiresAt: time.Now().Add(time.Hour)})
	contactRepo.Create(&domain.EmergencyContact{ID: "contact-1", UserID: "user-1", Name: "Mom", Phone: "123"})
	deviceRepo.Create(&domain.Device{ID: "device-1", UserID: "user-1", Name: "phone", Platform: "android"})

	users := NewUserService(userRepo, profileRepo)
	content := NewContentService(moduleRepo, lessonRepo, quizRepo, resultRepo)
	drills := NewDrillService(drillRepo, resultRepo)
	progress := NewProgressService(progressRepo, lessonRepo)
	alerts := NewAlertService(alertRepo, nil)
	contacts := NewContactService(contactRepo)
	devices := NewDeviceService(deviceRepo)

	return &syncFixture{
		sync:     NewSyncService(progress, drills, content, users, alerts, contacts, devices, nil, 10),
		progress: progressRepo,
		results:  resultRepo,
		profiles: profileRepo,
		alerts:   alertRepo,
		contacts: contactRepo,
		devices:  deviceRepo,
	}
}

func op(id string, kind domain.OperationKind, payload any) domain.SyncOperation {
	raw, _ := json.Marshal(payload)
	return domain.SyncOperation{
		ID:        id,
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now(),
	}
}

func TestSyncService_ApplyOperations(t *testing.T) {
	f := newSyncFixture(t)

	req := &domain.ApplyOperationsRequest{
		DeviceID: "device-1",
		Operations: []domain.SyncOperation{
			op("op-1", domain.OpModuleProgress, domain.ModuleProgressPayload{
				ModuleID: "mod-1", Action: "progress", Progress: 40,
			}),
			op("op-2", domain.OpDrillResult, domain.DrillResultPayload{
				ClientKey: "key-1", DrillID: "drill-1", Score: 80, MaxScore: 100,
			}),
			op("op-3", domain.OpAlertView, domain.AlertViewPayload{
				AlertID: "alert-1", ViewedAt: time.Now(),
			}),
			op("op-4", domain.OpContactAccess, domain.ContactAccessPayload{
				ContactID: "contact-1", IsFavorite: true, AccessedAt: time.Now(),
			}),
			op("op-5", domain.OpUserProfile, domain.UserProfilePayload{
				DisplayName: "Prepper", Region: "Metro", HouseholdSize: 4,
				NotificationsOn: true, AutoSyncEnabled: true,
			}),
		},
	}

	resp, err := f.sync.ApplyOperations("user-1", req)
	if err != nil {
		t.Fatalf("ApplyOperations() error = %v", err)
	}

	for _, r := range resp.Results {
		if !r.Applied {
			t.Errorf("operation %s failed: %s", r.OperationID, r.Error)
		}
	}

	if p, err := f.progress.FindModuleProgress("user-1", "mod-1"); err != nil || p.Progress != 40 {
		t.Errorf("module progress not applied: %v, %+v", err, p)
	}
	if len(f.results.drillResults) != 1 {
		t.Errorf("drill results = %d, want 1", len(f.results.drillResults))
	}
	if len(f.alerts.views) != 1 {
		t.Errorf("alert views = %d, want 1", len(f.alerts.views))
	}
	if c, _ := f.contacts.FindByID("contact-1"); !c.IsFavorite {
		t.Error("contact favorite flag not applied")
	}
	if p, _ := f.profiles.FindByUserID("user-1"); p.Region != "Metro" {
		t.Errorf("profile region = %q, want Metro", p.Region)
	}

	d, _ := f.devices.FindByID("device-1")
	if d.LastSyncAt == nil {
		t.Error("device LastSyncAt not recorded after successful batch")
	}
}

// Replaying the exact same batch (as a device does after a lost response)
// must converge: same verdicts, no duplicate rows.
func TestSyncService_ApplyOperationsIdempotentReplay(t *testing.T) {
	f := newSyncFixture(t)

	req := &domain.ApplyOperationsRequest{
		DeviceID: "device-1",
		Operations: []domain.SyncOperation{
			op("op-1", domain.OpModuleProgress, domain.ModuleProgressPayload{
				ModuleID: "mod-1", Action: "progress", Progress: 70,
			}),
			op("op-2", domain.OpDrillResult, domain.DrillResultPayload{
				ClientKey: "key-1", DrillID: "drill-1", Score: 90, MaxScore: 100,
			}),
		},
	}

	for i := 0; i < 3; i++ {
		resp, err := f.sync.ApplyOperations("user-1", req)
		if err != nil {
			t.Fatalf("replay %d: ApplyOperations() error = %v", i, err)
		}
		for _, r := range resp.Results {
			if !r.Applied {
				t.Errorf("replay %d: operation %s failed: %s", i, r.OperationID, r.Error)
			}
		}
	}

	if got := len(f.results.drillResults); got != 1 {
		t.Errorf("drill result rows after 3 replays = %d, want 1", got)
	}
	if got := len(f.progress.modules); got != 1 {
		t.Errorf("module progress rows after 3 replays = %d, want 1", got)
	}
}

func TestSyncService_FailedOperationIsolation(t *testing.T) {
	f := newSyncFixture(t)

	req := &domain.ApplyOperationsRequest{
		DeviceID: "device-1",
		Operations: []domain.SyncOperation{
			op("bad", domain.OpDrillResult, domain.DrillResultPayload{
				ClientKey: "key-x", DrillID: "no-such-drill", Score: 10, MaxScore: 100,
			}),
			op("good", domain.OpModuleProgress, domain.ModuleProgressPayload{
				ModuleID: "mod-1", Action: "progress", Progress: 55,
			}),
		},
	}

	resp, err := f.sync.ApplyOperations("user-1", req)
	if err != nil {
		t.Fatalf("ApplyOperations() error = %v", err)
	}

	if resp.Results[0].Applied {
		t.Error("operation against missing drill reported as applied")
	}
	if resp.Results[0].Error == "" {
		t.Error("failed operation missing error detail")
	}
	if !resp.Results[1].Applied {
		t.Errorf("sibling operation aborted: %s", resp.Results[1].Error)
	}
}

func TestSyncService_BatchLimit(t *testing.T) {
	f := newSyncFixture(t)

	ops := make([]domain.SyncOperation, 11)
	for i := range ops {
		ops[i] = op("op", domain.OpModuleProgress, domain.ModuleProgressPayload{ModuleID: "mod-1"})
	}

	_, err := f.sync.ApplyOperations("user-1", &domain.ApplyOperationsRequest{
		DeviceID:   "device-1",
		Operations: ops,
	})
	if err == nil {
		t.Error("ApplyOperations() accepted a batch over the limit")
	}
}

func TestSyncService_UnknownKindRejected(t *testing.T) {
	f := newSyncFixture(t)

	resp, err := f.sync.ApplyOperations("user-1", &domain.ApplyOperationsRequest{
		DeviceID: "device-1",
		Operations: []domain.SyncOperation{
			{ID: "op-1", Kind: "Bogus", Payload: []byte(`{}`)},
		},
	})
	if err != nil {
		t.Fatalf("ApplyOperations() error = %v", err)
	}
	if resp.Results[0].Applied {
		t.Error("unknown operation kind reported as applied")
	}
}

func TestSyncService_ForeignContactRejected(t *testing.T) {
	f := newSyncFixture(t)
	f.contacts.Create(&domain.EmergencyContact{ID: "contact-2", UserID: "someone-else", Name: "X", Phone: "999"})

	resp, err := f.sync.ApplyOperations("user-1", &domain.ApplyOperationsRequest{
		DeviceID: "device-1",
		Operations: []domain.SyncOperation{
			op("op-1", domain.OpContactAccess, domain.ContactAccessPayload{
				ContactID: "contact-2", IsFavorite: true, AccessedAt: time.Now(),
			}),
		},
	})
	if err != nil {
		t.Fatalf("ApplyOperations() error = %v", err)
	}
	if resp.Results[0].Applied {
		t.Error("contact access applied across users")
	}
}
