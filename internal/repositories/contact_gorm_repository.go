package repositories

import (
	"context"
	"fmt"
	"time"

	"gnsons/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{db: db}
}

func (r *GORMContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// ListAll returns every submission, newest first.
func (r *GORMContactRepository) ListAll(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (r *GORMContactRepository) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Contact{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	return rowsOrNotFound(res, "contact", id)
}
