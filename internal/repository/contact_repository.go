package repository

import (
	"errors"
	"fmt"
	"time"

	"prepkit-sync-server/internal/domain"

	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(contact *domain.EmergencyContact) error
	FindByID(id string) (*domain.EmergencyContact, error)
	List(userID string) ([]*domain.EmergencyContact, error)
	Update(contact *domain.EmergencyContact) error
	Delete(id string) error
	TouchAccess(id string, favorite bool, accessedAt time.Time) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(contact *domain.EmergencyContact) error {
	if err := r.db.Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) FindByID(id string) (*domain.EmergencyContact, error) {
	var contact domain.EmergencyContact
	if err := r.db.First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return &contact, nil
}

func (r *contactRepository) List(userID string) ([]*domain.EmergencyContact, error) {
	var contacts []*domain.EmergencyContact
	err := r.db.Where("user_id = ?", userID).
		Order("is_favorite DESC, name ASC").Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (r *contactRepository) Update(contact *domain.EmergencyContact) error {
	contact.UpdatedAt = time.Now()
	if err := r.db.Save(contact).Error; err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Delete(id string) error {
	res := r.db.Delete(&domain.EmergencyContact{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchAccess applies a ContactAccess sync operation: favorite flag plus the
// access timestamp from the device. Updating the same row twice is harmless.
func (r *contactRepository) TouchAccess(id string, favorite bool, accessedAt time.Time) error {
	res := r.db.Model(&domain.EmergencyContact{}).Where("id = ?", id).Updates(map[string]any{
		"is_favorite":      favorite,
		"last_accessed_at": accessedAt,
		"updated_at":       time.Now(),
	})
	if res.Error != nil {
		return fmt.Errorf("failed to touch contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
