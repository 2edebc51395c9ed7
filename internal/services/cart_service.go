package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gnsons/internal/models"
	"gnsons/internal/repositories"

	"go.uber.org/zap"
)

const cartSaveAttempts = 3

// CartService handles cart mutations. Every mutation recomputes the total and
// is written with a version check, retrying when another writer got there first.
type CartService struct {
	carts repositories.CartRepository
	log   *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(carts repositories.CartRepository, log *zap.Logger) *CartService {
	return &CartService{carts: carts, log: log}
}

func requireUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}
	return nil
}

// GetCart returns the user's cart, or an empty unsaved cart when none exists.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	cart, err := s.carts.GetByUserID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.NewCart(userID), nil
	}
	return cart, err
}

// AddItem adds item to the cart, merging quantities when the product is
// already present.
func (s *CartService) AddItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if item.ProductID == "" || item.Quantity < 1 || item.Price < 0 {
		return nil, fmt.Errorf("%w: productId, quantity >= 1 and price >= 0 are required", ErrValidation)
	}

	return s.mutate(ctx, userID, true, func(cart *models.Cart) error {
		if i := cart.FindItem(item.ProductID); i >= 0 {
			cart.Items[i].Quantity += item.Quantity
			return nil
		}
		cart.Items = append(cart.Items, item)
		return nil
	})
}

// RemoveItem drops productID from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, false, func(cart *models.Cart) error {
		i := cart.FindItem(productID)
		if i < 0 {
			return nil
		}
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		return nil
	})
}

// UpdateItem sets the quantity of a product already in the cart.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	return s.mutate(ctx, userID, false, func(cart *models.Cart) error {
		i := cart.FindItem(productID)
		if i < 0 {
			return fmt.Errorf("item %s not in cart: %w", productID, ErrNotFound)
		}
		cart.Items[i].Quantity = quantity
		return nil
	})
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := requireUserID(userID); err != nil {
		return err
	}
	return s.carts.Reset(ctx, userID)
}

func (s *CartService) mutate(ctx context.Context, userID string, create bool, fn func(*models.Cart) error) (*models.Cart, error) {
	for i := 0; i < cartSaveAttempts; i++ {
		cart, err := s.carts.GetByUserID(ctx, userID)
		if errors.Is(err, repositories.ErrNotFound) && create {
			cart, err = models.NewCart(userID), nil
		}
		if err != nil {
			return nil, err
		}

		if err := fn(cart); err != nil {
			return nil, err
		}
		cart.Recalculate()

		err = s.carts.Save(ctx, cart)
		if errors.Is(err, repositories.ErrVersionConflict) {
			s.log.Debug("Cart changed concurrently, retrying", zap.String("user_id", userID), zap.Int("attempt", i+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		return cart, nil
	}
	return nil, ErrConflict
}
