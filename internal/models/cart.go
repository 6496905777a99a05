package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one product in a user's cart. WantsInstallation marks whether
// the doorstep installation add-on was requested; its price is resolved at
// display and checkout time, never stored on the cart row.
type CartItem struct {
	ID                uuid.UUID `json:"id" db:"id"`
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	ProductID         uuid.UUID `json:"product_id" db:"product_id"`
	Quantity          int       `json:"quantity" db:"quantity"`
	WantsInstallation bool      `json:"wants_installation" db:"wants_installation"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}
