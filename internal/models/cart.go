package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CartItem is a line in a shopping cart.
type CartItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Image     string  `json:"image,omitempty" bson:"image,omitempty"`
}

// Cart holds one user's pending items. Version guards concurrent read-modify-write
// cycles; a cart that has never been stored has Version 0.
type Cart struct {
	ID        string                        `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID    string                        `json:"userId" gorm:"uniqueIndex;type:varchar(255);not null" bson:"userId"`
	Items     datatypes.JSONSlice[CartItem] `json:"items" bson:"items"`
	Total     float64                       `json:"total" bson:"total"`
	Version   int64                         `json:"version" gorm:"not null" bson:"version"`
	UpdatedAt time.Time                     `json:"updatedAt" bson:"updatedAt"`
}

// NewCart returns an empty, unsaved cart for userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: datatypes.JSONSlice[CartItem]{}}
}

// Recalculate sets Total to the sum of price × quantity over all items.
func (c *Cart) Recalculate() {
	sum := decimal.Zero
	for _, item := range c.Items {
		sum = sum.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	c.Total = sum.InexactFloat64()
}

// FindItem returns the index of productID in the cart, or -1.
func (c *Cart) FindItem(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
