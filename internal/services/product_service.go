package services

import (
	"context"
	"fmt"
	"strings"

	"gnsons/internal/models"
	"gnsons/internal/repositories"

	"go.uber.org/zap"
)

// ProductInput carries catalog fields. On update, nil fields are left unchanged.
type ProductInput struct {
	Name             *string  `json:"name" validate:"omitempty,min=3,max=100"`
	Category         *string  `json:"category" validate:"omitempty,min=1,max=100"`
	Price            *float64 `json:"price" validate:"omitempty,gte=0"`
	OriginalPrice    *float64 `json:"originalPrice" validate:"omitempty,gte=0"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"shortDescription"`
	Stock            *int     `json:"stock" validate:"omitempty,gte=0"`
	Rating           *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Reviews          *int     `json:"reviews" validate:"omitempty,gte=0"`
	IsFeatured       *bool    `json:"isFeatured"`
	IsNewArrival     *bool    `json:"isNewArrival"`
	IsUsed           *bool    `json:"isUsed"`
	Images           []string `json:"images"`
}

func (in ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = *in.OriginalPrice
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ShortDescription != nil {
		p.ShortDescription = *in.ShortDescription
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.Reviews != nil {
		p.Reviews = *in.Reviews
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.IsNewArrival != nil {
		p.IsNewArrival = *in.IsNewArrival
	}
	if in.IsUsed != nil {
		p.IsUsed = *in.IsUsed
	}
	if in.Images != nil {
		p.Images = in.Images
	}
}

// ImageRemover deletes a stored image by its public URL.
type ImageRemover interface {
	RemoveByURL(url string) error
}

// ProductService handles catalog business logic.
type ProductService struct {
	products repositories.ProductRepository
	images   ImageRemover
	log      *zap.Logger
}

// NewProductService creates a new ProductService. images may be nil.
func NewProductService(products repositories.ProductRepository, images ImageRemover, log *zap.Logger) *ProductService {
	return &ProductService{products: products, images: images, log: log}
}

// ListProducts returns the products matching filter.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return s.products.List(ctx, filter)
}

// GetProduct returns one product.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// Categories returns the distinct product categories.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.products.Categories(ctx)
}

// CreateProduct adds a listing. Name, category and price are required;
// originalPrice defaults to price.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == nil || len(strings.TrimSpace(*in.Name)) < 3 {
		return nil, fmt.Errorf("%w: name must be at least 3 characters", ErrValidation)
	}
	if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	if in.Price == nil || *in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be a non-negative number", ErrValidation)
	}

	product := &models.Product{Images: []string{}}
	in.apply(product)
	if in.OriginalPrice == nil {
		product.OriginalPrice = product.Price
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.log.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct applies a partial update.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(product)
	if len(product.Name) < 3 {
		return nil, fmt.Errorf("%w: name must be at least 3 characters", ErrValidation)
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a listing and, best-effort, its locally stored images.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	if s.images != nil {
		for _, url := range product.Images {
			if err := s.images.RemoveByURL(url); err != nil {
				s.log.Warn("Failed to delete product image", zap.String("product_id", id), zap.String("url", url), zap.Error(err))
			}
		}
	}
	s.log.Info("Product deleted", zap.String("product_id", id))
	return nil
}
