package service

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"prepkit-sync-server/internal/domain"
)

// SyncNotifier tells a user's other devices that one device finished a drain.
type SyncNotifier interface {
	NotifySyncComplete(userID, deviceID string, at time.Time) error
}

// SyncService is the server half of the offline queue: it takes a batch of
// queued operations from a device and applies each one through the same
// services the REST API uses. Every apply path is idempotent, so a device
// retrying a batch after a lost response cannot double-write.
type SyncService struct {
	progress *ProgressService
	drills   *DrillService
	content  *ContentService
	users    *UserService
	alerts   *AlertService
	contacts *ContactService
	devices  *DeviceService
	notifier SyncNotifier
	maxBatch int
}

func NewSyncService(progress *ProgressService, drills *DrillService, content *ContentService, users *UserService, alerts *AlertService, contacts *ContactService, devices *DeviceService, notifier SyncNotifier, maxBatch int) *SyncService {
	if maxBatch <= 0 {
		maxBatch = 10
	}
	return &SyncService{
		progress: progress,
		drills:   drills,
		content:  content,
		users:    users,
		alerts:   alerts,
		contacts: contacts,
		devices:  devices,
		notifier: notifier,
		maxBatch: maxBatch,
	}
}

// ApplyOperations processes one batch. Operations are applied in order, each
// in isolation: a failed operation gets an error verdict and its siblings
// still run.
func (s *SyncService) ApplyOperations(userID string, req *domain.ApplyOperationsRequest) (*domain.ApplyOperationsResponse, error) {
	if len(req.Operations) > s.maxBatch {
		return nil, fmt.Errorf("batch of %d exceeds limit of %d", len(req.Operations), s.maxBatch)
	}

	now := time.Now()
	resp := &domain.ApplyOperationsResponse{
		Results:  make([]domain.OperationResult, 0, len(req.Operations)),
		SyncTime: now,
	}

	anyApplied := false
	for _, op := range req.Operations {
		result := domain.OperationResult{OperationID: op.ID, Applied: true}
		if err := s.apply(userID, &op); err != nil {
			result.Applied = false
			result.Error = err.Error()
			log.Printf("[sync] %s %s from device %s failed: %v", op.Kind, op.ID, req.DeviceID, err)
		} else {
			anyApplied = true
		}
		resp.Results = append(resp.Results, result)
	}

	if anyApplied {
		if err := s.devices.TouchSync(userID, req.DeviceID, now); err != nil {
			log.Printf("[sync] failed to record sync time for device %s: %v", req.DeviceID, err)
		}
		if s.notifier != nil {
			if err := s.notifier.NotifySyncComplete(userID, req.DeviceID, now); err != nil {
				log.Printf("[sync] notify failed: %v", err)
			}
		}
	}
	return resp, nil
}

func (s *SyncService) apply(userID string, op *domain.SyncOperation) error {
	switch op.Kind {
	case domain.OpModuleProgress:
		var p domain.ModuleProgressPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return s.progress.ApplyProgressSync(userID, &p)

	case domain.OpDrillResult:
		var p domain.DrillResultPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		_, _, err := s.drills.SubmitResult(userID, &domain.SubmitDrillResultRequest{
			ClientKey: p.ClientKey,
			DrillID:   p.DrillID,
			Score:     p.Score,
			MaxScore:  p.MaxScore,
			TimeSpent: p.TimeSpent,
		})
		return err

	case domain.OpQuizResult:
		var p domain.QuizResultPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		_, _, err := s.content.SubmitQuizResult(userID, &domain.SubmitQuizResultRequest{
			ClientKey: p.ClientKey,
			QuizID:    p.QuizID,
			Score:     p.Score,
			MaxScore:  p.MaxScore,
		})
		return err

	case domain.OpUserProfile:
		var p domain.UserProfilePayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return s.users.ApplyProfileSync(userID, &p)

	case domain.OpAlertView:
		var p domain.AlertViewPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return s.alerts.MarkViewed(userID, p.AlertID, p.ViewedAt)

	case domain.OpContactAccess:
		var p domain.ContactAccessPayload
		if err := json.Unmarshal(op.Payload, &p); err != nil {
			return fmt.Errorf("bad payload: %w", err)
		}
		return s.contacts.ApplyAccessSync(userID, &p)

	default:
		return fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}
