package models

import (
	"time"

	"github.com/google/uuid"
)

// InstallationRule is a category-level default installation price table. It is
// keyed by the (category, sub_category, sub_sub_category) triple; a rule scoped
// to a whole category leaves the narrower levels nil. At most one active rule
// exists per distinct key triple.
type InstallationRule struct {
	ID             uuid.UUID           `json:"id" db:"id"`
	Category       string              `json:"category" db:"category"`
	SubCategory    *string             `json:"sub_category" db:"sub_category"`
	SubSubCategory *string             `json:"sub_sub_category" db:"sub_sub_category"`
	SegmentRates   map[Segment]float64 `json:"segment_rates" db:"segment_rates"`
	IsActive       bool                `json:"is_active" db:"is_active"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" db:"updated_at"`
}
