package repository

import (
	"fmt"
	"time"

	"prepkit-sync-server/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository interface {
	Create(alert *domain.Alert) error
	ListActive(region string) ([]*domain.Alert, error)
	DeleteExpired(now time.Time) (int64, error)
	UpsertView(view *domain.AlertView) error
	ListViews(userID string) ([]*domain.AlertView, error)
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(alert *domain.Alert) error {
	if err := r.db.Create(alert).Error; err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *alertRepository) ListActive(region string) ([]*domain.Alert, error) {
	q := r.db.Where("expires_at > ?", time.Now())
	if region != "" {
		q = q.Where("region = ? OR region = ''", region)
	}
	var alerts []*domain.Alert
	if err := q.Order("issued_at DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// DeleteExpired removes every alert whose expiry is in the past. Idempotent;
// returns the number of rows purged.
func (r *alertRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.db.Where("expires_at <= ?", now).Delete(&domain.Alert{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge expired alerts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// UpsertView records a read receipt keyed by (user_id, alert_id); replays
// update the single existing row.
func (r *alertRepository) UpsertView(view *domain.AlertView) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "alert_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"viewed_at"}),
	}).Create(view).Error
	if err != nil {
		return fmt.Errorf("failed to upsert alert view: %w", err)
	}
	return nil
}

func (r *alertRepository) ListViews(userID string) ([]*domain.AlertView, error) {
	var views []*domain.AlertView
	if err := r.db.Where("user_id = ?", userID).Find(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to list alert views: %w", err)
	}
	return views, nil
}
