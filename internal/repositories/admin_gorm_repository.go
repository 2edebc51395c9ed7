package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gnsons/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAdminRepository is a GORM implementation of AdminRepository.
type GORMAdminRepository struct {
	db *gorm.DB
}

// NewGORMAdminRepository creates a new instance of GORMAdminRepository.
func NewGORMAdminRepository(db *gorm.DB) *GORMAdminRepository {
	return &GORMAdminRepository{db: db}
}

// Create inserts a new admin.
func (r *GORMAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("admin %s: %w", admin.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

// GetByID retrieves an admin by ID.
func (r *GORMAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by ID %s: %w", id, err)
	}
	return &admin, nil
}

// GetByEmail retrieves an admin by their normalised email.
func (r *GORMAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin by email %s: %w", email, err)
	}
	return &admin, nil
}

// UpdateLastLogin stamps the admin's last successful login.
func (r *GORMAdminRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Update("last_login", at)
	if res.Error != nil {
		return fmt.Errorf("failed to update last login: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("admin with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an admin by ID.
func (r *GORMAdminRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Admin{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete admin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("admin with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
