package models

import (
	"time"

	"gorm.io/datatypes"
)

// Product represents a catalog listing.
type Product struct {
	ID               string                      `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name             string                      `json:"name" gorm:"type:varchar(100);not null" bson:"name"`
	Category         string                      `json:"category" gorm:"type:varchar(100);index" bson:"category"`
	Price            float64                     `json:"price" gorm:"not null" bson:"price"`
	OriginalPrice    float64                     `json:"originalPrice" bson:"originalPrice"`
	Description      string                      `json:"description" bson:"description"`
	ShortDescription string                      `json:"shortDescription" bson:"shortDescription"`
	Stock            int                         `json:"stock" bson:"stock"`
	Rating           float64                     `json:"rating" bson:"rating"`
	Reviews          int                         `json:"reviews" bson:"reviews"`
	IsFeatured       bool                        `json:"isFeatured" bson:"isFeatured"`
	IsNewArrival     bool                        `json:"isNewArrival" bson:"isNewArrival"`
	IsUsed           bool                        `json:"isUsed" bson:"isUsed"`
	Images           datatypes.JSONSlice[string] `json:"images" bson:"images"`
	CreatedAt        time.Time                   `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt" bson:"updatedAt"`
}

// ProductFilter narrows a catalog listing. Zero values mean "no constraint".
type ProductFilter struct {
	Category   string
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	Featured   bool
	NewArrival bool
	Used       bool
}
