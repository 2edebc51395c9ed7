package repositories

import (
	"context"

	"gnsons/internal/models"
)

// CartRepository defines the interface for cart data access.
//
// Save is a compare-and-swap on Cart.Version: a cart with Version 0 is inserted,
// any other cart is written only if the stored version still matches, and the
// version is bumped on success. A lost race yields ErrVersionConflict.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Reset(ctx context.Context, userID string) error
}
