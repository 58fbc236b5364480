package service

import (
	"time"

	"prepkit-sync-server/internal/domain"
	"prepkit-sync-server/internal/repository"

	"github.com/google/uuid"
)

type ContactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

func (s *ContactService) Create(userID string, req *domain.CreateContactRequest) (*domain.EmergencyContact, error) {
	now := time.Now()
	contact := &domain.EmergencyContact{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      req.Name,
		Phone:     req.Phone,
		Relation:  req.Relation,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.contactRepo.Create(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) List(userID string) ([]*domain.EmergencyContact, error) {
	return s.contactRepo.List(userID)
}

func (s *ContactService) Update(userID, contactID string, req *domain.UpdateContactRequest) (*domain.EmergencyContact, error) {
	contact, err := s.contactRepo.FindByID(contactID)
	if err != nil {
		return nil, err
	}
	if contact.UserID != userID {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		contact.Name = *req.Name
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if req.Relation != nil {
		contact.Relation = *req.Relation
	}
	if req.IsFavorite != nil {
		contact.IsFavorite = *req.IsFavorite
	}

	if err := s.contactRepo.Update(contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) Delete(userID, contactID string) error {
	contact, err := s.contactRepo.FindByID(contactID)
	if err != nil {
		return err
	}
	if contact.UserID != userID {
		return ErrForbidden
	}
	return s.contactRepo.Delete(contactID)
}

// ApplyAccessSync applies a queued ContactAccess operation: the favorite flag
// and last-access timestamp as the device saw them.
func (s *ContactService) ApplyAccessSync(userID string, p *domain.ContactAccessPayload) error {
	contact, err := s.contactRepo.FindByID(p.ContactID)
	if err != nil {
		return err
	}
	if contact.UserID != userID {
		return ErrForbidden
	}
	return s.contactRepo.TouchAccess(p.ContactID, p.IsFavorite, p.AccessedAt)
}
