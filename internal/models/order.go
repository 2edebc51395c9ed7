package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentMethod is a label only; no payment is processed.
type PaymentMethod string

const (
	PaymentCOD       PaymentMethod = "COD"
	PaymentEasypaisa PaymentMethod = "EASYPAISA"
	PaymentJazzCash  PaymentMethod = "JAZZCASH"
)

// Valid reports whether m belongs to the accepted set.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentEasypaisa, PaymentJazzCash:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// GuestUserID is recorded on orders placed without a user identity.
const GuestUserID = "guest"

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"` // Price at the time of order
	Quantity  int     `json:"quantity" bson:"quantity"`
}

// Order represents a customer order.
type Order struct {
	ID              string                         `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	UserID          string                         `json:"userId" gorm:"type:varchar(255);index" bson:"userId"`
	Items           datatypes.JSONSlice[OrderItem] `json:"items" bson:"items"`
	TotalPrice      float64                        `json:"totalPrice" gorm:"not null" bson:"totalPrice"`
	DiscountAmount  float64                        `json:"discountAmount" bson:"discountAmount"`
	FinalPrice      float64                        `json:"finalPrice" gorm:"not null" bson:"finalPrice"`
	CouponCode      *string                        `json:"couponCode" bson:"couponCode"`
	ShippingAddress string                         `json:"shippingAddress" bson:"shippingAddress"`
	CustomerEmail   string                         `json:"customerEmail" bson:"customerEmail"`
	CustomerPhone   string                         `json:"customerPhone" bson:"customerPhone"`
	PaymentMethod   PaymentMethod                  `json:"paymentMethod" gorm:"type:varchar(16)" bson:"paymentMethod"`
	Status          OrderStatus                    `json:"status" gorm:"type:varchar(16);index" bson:"status"`
	TrackingNumber  string                         `json:"trackingNumber" gorm:"type:varchar(64)" bson:"trackingNumber"`
	Version         int64                          `json:"version" gorm:"not null" bson:"version"`
	CreatedAt       time.Time                      `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt       time.Time                      `json:"updatedAt" bson:"updatedAt"`
}
