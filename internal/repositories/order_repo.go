package repositories

import (
	"context"

	"gnsons/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are never deleted.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// UpdateStatus writes status only if the order is still at version.
	UpdateStatus(ctx context.Context, id string, version int64, status models.OrderStatus) error
}
