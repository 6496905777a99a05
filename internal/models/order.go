package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment methods and statuses
const (
	PaymentMethodOnline = "online"
	PaymentMethodCOD    = "cod"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// OrderItem is a priced line of an order. UnitPrice and InstallationCost are
// snapshots taken at order creation and must never be recomputed from live
// catalog or rule data afterwards.
type OrderItem struct {
	ID               uuid.UUID `json:"id" db:"id"`
	OrderID          uuid.UUID `json:"order_id" db:"order_id"`
	ProductID        uuid.UUID `json:"product_id" db:"product_id"`
	ProductName      string    `json:"product_name" db:"product_name"`
	Quantity         int       `json:"quantity" db:"quantity"`
	UnitPrice        float64   `json:"unit_price" db:"unit_price"`
	HasInstallation  bool      `json:"has_installation" db:"has_installation"`
	InstallationCost float64   `json:"installation_cost" db:"installation_cost"`
}

// LineTotal is quantity times unit price plus per-unit installation.
func (i *OrderItem) LineTotal() float64 {
	return float64(i.Quantity) * (i.UnitPrice + i.InstallationCost)
}

// Address is the shipping destination. Orders are only accepted inside the
// serviced region (state + PIN prefix check at checkout).
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone"`
}

// TimelineEntry records a single order status change.
type TimelineEntry struct {
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Items           []*OrderItem    `json:"items" db:"-"`
	Subtotal        float64         `json:"subtotal" db:"subtotal"`
	Total           float64         `json:"total" db:"total"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	PaymentStatus   string          `json:"payment_status" db:"payment_status"`
	OrderStatus     string          `json:"order_status" db:"order_status"`
	ShippingAddress Address         `json:"shipping_address" db:"shipping_address"`
	Vehicle         *Vehicle        `json:"vehicle,omitempty" db:"vehicle"`
	RazorpayOrderID *string         `json:"razorpay_order_id,omitempty" db:"razorpay_order_id"`
	RazorpayPayID   *string         `json:"razorpay_payment_id,omitempty" db:"razorpay_payment_id"`
	Timeline        []TimelineEntry `json:"timeline" db:"timeline"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderSearchFilter holds filter criteria for admin order queries
type OrderSearchFilter struct {
	OrderStatus   *string    `json:"order_status,omitempty"`
	PaymentStatus *string    `json:"payment_status,omitempty"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	CreatedFrom   *time.Time `json:"created_from,omitempty"`
	CreatedTo     *time.Time `json:"created_to,omitempty"`
	Limit         int        `json:"limit,omitempty"`
	Offset        int        `json:"offset,omitempty"`
}
