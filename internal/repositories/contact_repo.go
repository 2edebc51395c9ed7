package repositories

import (
	"context"

	"gnsons/internal/models"
)

// ContactRepository defines the interface for contact-form storage.
type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	ListAll(ctx context.Context) ([]models.Contact, error)
	UpdateStatus(ctx context.Context, id string, status models.ContactStatus) error
}
