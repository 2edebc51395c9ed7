// Package seed populates an empty store with a demo admin and a starter catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gnsons/internal/models"
	"gnsons/internal/repositories"
	"gnsons/internal/services"

	"go.uber.org/zap"
)

// Demo admin credentials.
const (
	AdminEmail    = "admin@gnsons.com"
	AdminPassword = "Admin@123"
	AdminName     = "Admin User"
)

// SampleProducts is the starter catalog.
var SampleProducts = []models.Product{
	{Name: "Premium Leather Watch", Category: "Watches", Price: 4500, OriginalPrice: 6000, Description: "High-quality leather strap watch with classic design", Stock: 25, IsFeatured: true},
	{Name: "Wireless Headphones", Category: "Electronics", Price: 3500, OriginalPrice: 5000, Description: "Noise-cancelling wireless headphones with 20-hour battery", Stock: 50, IsFeatured: true},
	{Name: "Designer Sunglasses", Category: "Accessories", Price: 2500, OriginalPrice: 4000, Description: "Premium UV protection sunglasses with trendy design", Stock: 40},
	{Name: "Luxury Perfume", Category: "Beauty", Price: 3000, OriginalPrice: 4500, Description: "Original imported perfume with long-lasting fragrance", Stock: 60, IsFeatured: true},
	{Name: "Smartphone Case", Category: "Electronics", Price: 800, OriginalPrice: 1200, Description: "Premium protective case with shock absorption", Stock: 150},
}

// Result counts what Run actually inserted.
type Result struct {
	AdminCreated    bool
	ProductsCreated int
}

// Run is safe to call repeatedly: existing admins and products with the same
// name are left untouched.
func Run(ctx context.Context, store *repositories.Store, log *zap.Logger) (Result, error) {
	var res Result

	auth := services.NewAuthService(store.Admins, nil, log)
	_, err := auth.Register(ctx, AdminEmail, AdminPassword, AdminName)
	switch {
	case err == nil:
		res.AdminCreated = true
		log.Info("Demo admin created", zap.String("email", AdminEmail))
	case errors.Is(err, services.ErrAlreadyExists):
		log.Info("Demo admin already exists", zap.String("email", AdminEmail))
	default:
		return res, fmt.Errorf("failed to create demo admin: %w", err)
	}

	for _, sample := range SampleProducts {
		exists, err := productExists(ctx, store.Products, sample.Name)
		if err != nil {
			return res, err
		}
		if exists {
			continue
		}
		p := sample
		if err := store.Products.Create(ctx, &p); err != nil {
			return res, fmt.Errorf("failed to create product %q: %w", sample.Name, err)
		}
		res.ProductsCreated++
	}
	log.Info("Sample products ensured", zap.Int("created", res.ProductsCreated), zap.Int("total", len(SampleProducts)))
	return res, nil
}

func productExists(ctx context.Context, products repositories.ProductRepository, name string) (bool, error) {
	matches, err := products.List(ctx, models.ProductFilter{Search: name})
	if err != nil {
		return false, fmt.Errorf("failed to look up product %q: %w", name, err)
	}
	for _, m := range matches {
		if strings.EqualFold(m.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
