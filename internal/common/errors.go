package common

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Checkout error taxonomy. All of these are terminal for order creation: no
// partial order is persisted when any of them occurs.
var (
	ErrProductNotFound         = errors.New("product not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrInstallationUnavailable = errors.New("installation not available for this product")
	ErrOutOfServiceArea        = errors.New("shipping address is outside the serviced area")
	ErrPaymentGateway          = errors.New("payment gateway request failed")
	ErrCatalogUnavailable      = errors.New("catalog store unavailable")
	ErrInvalidInput            = errors.New("invalid input")
)

// InsufficientStockError names the product and the quantity actually
// available so the storefront can show a useful message.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}
