package models

import (
	"time"

	"github.com/google/uuid"
)

// InstallationOverride is a product-level installation setting that supersedes
// category rules. IsAvailable=false opts the product out entirely. When both a
// flat rate and segment rates are set, the flat rate wins.
type InstallationOverride struct {
	IsAvailable  bool                `json:"is_available"`
	FlatRate     *float64            `json:"flat_rate,omitempty"`
	SegmentRates map[Segment]float64 `json:"segment_rates,omitempty"`
}

type Product struct {
	ID             uuid.UUID             `json:"id" db:"id"`
	Slug           string                `json:"slug" db:"slug"`
	Name           string                `json:"name" db:"name"`
	Description    *string               `json:"description" db:"description"`
	Category       string                `json:"category" db:"category"`
	SubCategory    *string               `json:"sub_category" db:"sub_category"`
	SubSubCategory *string               `json:"sub_sub_category" db:"sub_sub_category"`
	Price          float64               `json:"price" db:"price"`
	DiscountPrice  *float64              `json:"discount_price" db:"discount_price"`
	Stock          int                   `json:"stock" db:"stock"`
	Images         []string              `json:"images" db:"images"`
	Installation   *InstallationOverride `json:"installation,omitempty" db:"installation"`
	CreatedAt      time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at" db:"updated_at"`
}

// UnitPrice returns the price a customer is actually charged: the discount
// price when one is set and strictly below the list price, otherwise the list
// price. Client-submitted prices are never trusted over this.
func (p *Product) UnitPrice() float64 {
	if p.DiscountPrice != nil && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

// ProductSearchFilter holds search and filter criteria for product queries
type ProductSearchFilter struct {
	Query         string   `json:"query,omitempty"`          // Text search across name, slug, description
	CategorySlugs []string `json:"category_slugs,omitempty"` // Match any of category/sub/sub-sub slugs
	MinPrice      *float64 `json:"min_price,omitempty"`
	MaxPrice      *float64 `json:"max_price,omitempty"`
	InStockOnly   bool     `json:"in_stock_only,omitempty"`
	SortBy        string   `json:"sort_by,omitempty"`    // Sort field: name, created_at, price
	SortOrder     string   `json:"sort_order,omitempty"` // asc, desc
	Limit         int      `json:"limit,omitempty"`      // Page size (default: 50)
	Offset        int      `json:"offset,omitempty"`     // Page offset
}
