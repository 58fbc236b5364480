package service

import (
	"fmt"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"
)

type UserService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
}

func NewUserService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository) *UserService {
	return &UserService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

func (s *UserService) GetByID(id string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	user.Password = ""
	return user, nil
}

func (s *UserService) GetProfile(userID string) (*domain.UserProfile, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("profile not found")
	}
	return profile, nil
}

// UpdateProfile applies a partial update from the UI or a full replacement
// from a device's profile sync. Both end in the same upsert.
func (s *UserService) UpdateProfile(userID string, req *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("profile not found")
	}

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Region != nil {
		profile.Region = *req.Region
	}
	if req.HouseholdSize != nil {
		profile.HouseholdSize = *req.HouseholdSize
	}
	if req.PreferredHazards != nil {
		profile.PreferredHazards = *req.PreferredHazards
	}
	if req.NotificationsOn != nil {
		profile.NotificationsOn = *req.NotificationsOn
	}
	if req.AutoSyncEnabled != nil {
		profile.AutoSyncEnabled = *req.AutoSyncEnabled
	}

	if err := s.profileRepo.Upsert(profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// ApplyProfileSync replaces the synced profile fields wholesale. The payload
// always carries the device's full profile state, so re-applying it after a
// retry converges on the same row.
func (s *UserService) ApplyProfileSync(userID string, p *domain.UserProfilePayload) error {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return fmt.Errorf("profile not found")
	}

	profile.DisplayName = p.DisplayName
	profile.Region = p.Region
	profile.HouseholdSize = p.HouseholdSize
	profile.PreferredHazards = p.PreferredHazards
	profile.NotificationsOn = p.NotificationsOn
	profile.AutoSyncEnabled = p.AutoSyncEnabled

	if err := s.profileRepo.Upsert(profile); err != nil {
		return fmt.Errorf("failed to apply profile sync: %w", err)
	}
	return nil
}
