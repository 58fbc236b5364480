package service

import (
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"

	"github.com/google/uuid"
)

type DeviceService struct {
	repo repository.DeviceRepository
}

func NewDeviceService(repo repository.DeviceRepository) *DeviceService {
	return &DeviceService{
		repo: repo,
	}
}

func (s *DeviceService) Register(userID string, req *domain.RegisterDeviceRequest) (*domain.DeviceResponse, error) {
	now := time.Now()

	device := &domain.Device{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       req.Name,
		Platform:   req.Platform,
		AppVersion: req.AppVersion,
		LastActive: now,
		CreatedAt:  now,
		IsRevoked:  false,
	}

	if err := s.repo.Create(device); err != nil {
		return nil, err
	}

	return toDeviceResponse(device), nil
}

func (s *DeviceService) List(userID string) ([]*domain.DeviceResponse, error) {
	devices, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}

	var responses []*domain.DeviceResponse
	for _, d := range devices {
		responses = append(responses, toDeviceResponse(d))
	}
	return responses, nil
}

func (s *DeviceService) Revoke(userID, deviceID string) error {
	device, err := s.repo.FindByID(deviceID)
	if err != nil {
		return err
	}

	if device.UserID != userID {
		return ErrForbidden
	}

	return s.repo.Revoke(deviceID)
}

func (s *DeviceService) UpdateLastActive(deviceID string) error {
	return s.repo.UpdateLastActive(deviceID)
}

// TouchSync records a successful queue drain from the device.
func (s *DeviceService) TouchSync(userID, deviceID string, at time.Time) error {
	device, err := s.repo.FindByID(deviceID)
	if err != nil {
		return err
	}
	if device.UserID != userID {
		return ErrForbidden
	}
	return s.repo.UpdateLastSync(deviceID, at)
}

func toDeviceResponse(d *domain.Device) *domain.DeviceResponse {
	return &domain.DeviceResponse{
		ID:         d.ID,
		Name:       d.Name,
		Platform:   d.Platform,
		AppVersion: d.AppVersion,
		LastSyncAt: d.LastSyncAt,
		LastActive: d.LastActive,
		IsRevoked:  d.IsRevoked,
	}
}
