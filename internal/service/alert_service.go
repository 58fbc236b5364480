package service

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"

	"github.com/google/uuid"
)

// AlertBroadcaster pushes feed events to connected clients. Implemented by
// the websocket layer; nil disables pushing.
type AlertBroadcaster interface {
	BroadcastNewAlert(alert *domain.Alert) error
	BroadcastExpiredAlert(alertID string) error
}

type AlertService struct {
	alertRepo   repository.AlertRepository
	broadcaster AlertBroadcaster
}

func NewAlertService(alertRepo repository.AlertRepository, broadcaster AlertBroadcaster) *AlertService {
	return &AlertService{
		alertRepo:   alertRepo,
		broadcaster: broadcaster,
	}
}

func (s *AlertService) Create(req *domain.CreateAlertRequest) (*domain.Alert, error) {
	now := time.Now()
	alert := &domain.Alert{
		ID:        uuid.New().String(),
		Category:  req.Category,
		Severity:  req.Severity,
		Title:     req.Title,
		Message:   req.Message,
		Region:    req.Region,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Duration(req.TTLHours) * time.Hour),
	}

	if err := s.alertRepo.Create(alert); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastNewAlert(alert); err != nil {
			log.Printf("[alert] broadcast failed: %v", err)
		}
	}
	return alert, nil
}

func (s *AlertService) ListActive(region string) ([]*domain.Alert, error) {
	return s.alertRepo.ListActive(region)
}

// MarkViewed records a read receipt. Replays from the sync queue rewrite the
// same (user, alert) row.
func (s *AlertService) MarkViewed(userID, alertID string, viewedAt time.Time) error {
	if viewedAt.IsZero() {
		viewedAt = time.Now()
	}
	return s.alertRepo.UpsertView(&domain.AlertView{
		ID:       uuid.New().String(),
		UserID:   userID,
		AlertID:  alertID,
		ViewedAt: viewedAt,
	})
}

func (s *AlertService) ListViews(userID string) ([]*domain.AlertView, error) {
	return s.alertRepo.ListViews(userID)
}

// RunPurge deletes expired alerts on a fixed cadence until ctx is cancelled.
func (s *AlertService) RunPurge(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.alertRepo.DeleteExpired(time.Now())
			if err != nil {
				log.Printf("[alert] purge failed: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("[alert] purged %d expired alerts", purged)
			}
		}
	}
}

// simulatedTemplates seed the training-mode alert feed.
var simulatedTemplates = []struct {
	Category domain.HazardCategory
	Severity domain.AlertSeverity
	Title    string
	Message  string
}{
	{domain.HazardEarthquake, domain.SeverityWarning, "Earthquake Drill Alert", "Simulated magnitude 6.2 earthquake. Drop, cover, and hold on."},
	{domain.HazardFlood, domain.SeverityWatch, "Flood Watch Drill", "Simulated heavy rainfall. Review your evacuation route now."},
	{domain.HazardFire, domain.SeverityWarning, "Fire Drill Alert", "Simulated structure fire nearby. Practice your exit plan."},
	{domain.HazardTyphoon, domain.SeverityAdvisory, "Typhoon Advisory Drill", "Simulated typhoon approach. Check your emergency kit."},
	{domain.HazardTsunami, domain.SeverityWarning, "Tsunami Drill Alert", "Simulated tsunami threat. Move to higher ground immediately."},
	{domain.HazardLandslide, domain.SeverityWatch, "Landslide Watch Drill", "Simulated slope saturation. Know your safe zones."},
}

// RunSimulator emits a simulated alert on each tick for training mode.
// Simulated alerts are flagged so clients can render them distinctly.
func (s *AlertService) RunSimulator(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.emitSimulated(ttl); err != nil {
				log.Printf("[alert] simulator failed: %v", err)
			}
		}
	}
}

func (s *AlertService) emitSimulated(ttl time.Duration) error {
	tmpl := simulatedTemplates[rand.Intn(len(simulatedTemplates))]
	now := time.Now()
	alert := &domain.Alert{
		ID:        uuid.New().String(),
		Category:  tmpl.Category,
		Severity:  tmpl.Severity,
		Title:     tmpl.Title,
		Message:   tmpl.Message,
		Simulated: true,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.alertRepo.Create(alert); err != nil {
		return fmt.Errorf("failed to create simulated alert: %w", err)
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastNewAlert(alert); err != nil {
			log.Printf("[alert] broadcast failed: %v", err)
		}
	}
	log.Printf("[alert] simulated %s/%s alert issued", alert.Category, alert.Severity)
	return nil
}
