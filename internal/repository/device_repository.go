package repository

import (
	"errors"
	"fmt"
	"time"

	"prepkit-sync-server/internal/domain"

	"gorm.io/gorm"
)

type DeviceRepository interface {
	Create(device *domain.Device) error
	List(userID string) ([]*domain.Device, error)
	FindByID(deviceID string) (*domain.Device, error)
	Revoke(deviceID string) error
	UpdateLastActive(deviceID string) error
	UpdateLastSync(deviceID string, at time.Time) error
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) Create(device *domain.Device) error {
	if err := r.db.Create(device).Error; err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	return nil
}

func (r *deviceRepository) List(userID string) ([]*domain.Device, error) {
	var devices []*domain.Device
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

func (r *deviceRepository) FindByID(deviceID string) (*domain.Device, error) {
	var device domain.Device
	if err := r.db.First(&device, "id = ?", deviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find device: %w", err)
	}
	return &device, nil
}

func (r *deviceRepository) Revoke(deviceID string) error {
	res := r.db.Model(&domain.Device{}).Where("id = ?", deviceID).Update("is_revoked", true)
	if res.Error != nil {
		return fmt.Errorf("failed to revoke device: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *deviceRepository) UpdateLastActive(deviceID string) error {
	err := r.db.Model(&domain.Device{}).Where("id = ?", deviceID).
		Update("last_active", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}

func (r *deviceRepository) UpdateLastSync(deviceID string, at time.Time) error {
	err := r.db.Model(&domain.Device{}).Where("id = ?", deviceID).Updates(map[string]any{
		"last_sync_at": at,
		"last_active":  at,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update last sync: %w", err)
	}
	return nil
}
