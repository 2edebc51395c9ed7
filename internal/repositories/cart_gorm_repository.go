package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gnsons/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// GetByUserID retrieves the cart owned by userID.
func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Save inserts or conditionally updates the cart.
func (r *GORMCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	if cart.Version == 0 {
		if cart.ID == "" {
			cart.ID = uuid.New().String()
		}
		cart.Version = 1
		cart.UpdatedAt = now
		if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
			cart.Version = 0
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("cart for user %s created concurrently: %w", cart.UserID, ErrVersionConflict)
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		return nil
	}

	res := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]interface{}{
			"items":      cart.Items,
			"total":      cart.Total,
			"version":    cart.Version + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update cart: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart %s at version %d: %w", cart.ID, cart.Version, ErrVersionConflict)
	}
	cart.Version++
	cart.UpdatedAt = now
	return nil
}

// Reset empties the user's cart, creating an empty one if none exists.
func (r *GORMCartRepository) Reset(ctx context.Context, userID string) error {
	for attempt := 0; attempt < 2; attempt++ {
		res := r.db.WithContext(ctx).Model(&models.Cart{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"items":      datatypes.JSONSlice[models.CartItem]{},
				"total":      0,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to reset cart for user %s: %w", userID, res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}

		err := r.Save(ctx, models.NewCart(userID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
	}
	return fmt.Errorf("cart for user %s: %w", userID, ErrVersionConflict)
}
