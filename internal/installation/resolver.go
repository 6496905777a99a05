package installation

import (
	"context"

	"torqbay/internal/models"
)

// Source reports which layer produced a resolved installation price.
type Source string

const (
	SourceOverride Source = "override"
	SourceCategory Source = "category"
	SourceNone     Source = "none"
)

// Result is the outcome of resolving installation pricing for one product.
// A nil Price with Available=true never occurs; Available=false is the only
// signal that installation is not offered. A zero price is a deliberate
// free-installation rate, not a sentinel.
type Result struct {
	Price     *float64 `json:"price"`
	Source    Source   `json:"source"`
	Available bool     `json:"available"`
}

// RuleFinder is the exact-match rule lookup the resolver falls back to.
// Absent key levels are matched against explicit "no value", not wildcarded,
// and only active rules are returned.
type RuleFinder interface {
	FindRule(ctx context.Context, category string, subCategory, subSubCategory *string) (*models.InstallationRule, error)
}

// Resolve determines whether doorstep installation is offered for a product
// and at what price. Both the display/quote path and the checkout commit path
// call this one function, so the shown price and the charged price cannot
// diverge.
//
// Precedence, first match wins:
//  1. override present with IsAvailable=false: not offered, terminal.
//  2. override available with a flat rate: that rate, regardless of segment.
//  3. override available with a rate for the given segment: that rate.
//  4. category rules, most specific key first (sub-sub, sub, category);
//     requires a known segment.
//  5. otherwise not offered.
//
// Rule-store failures never produce a price; they resolve as unavailable.
func Resolve(ctx context.Context, rules RuleFinder, product *models.Product, segment models.Segment) Result {
	if ov := product.Installation; ov != nil {
		if !ov.IsAvailable {
			return Result{Source: SourceNone, Available: false}
		}
		if ov.FlatRate != nil {
			price := *ov.FlatRate
			return Result{Price: &price, Source: SourceOverride, Available: true}
		}
		if segment != "" {
			if rate, ok := ov.SegmentRates[segment]; ok {
				price := rate
				return Result{Price: &price, Source: SourceOverride, Available: true}
			}
		}
	}

	// Category rules price per segment; with no segment there is nothing to
	// look up.
	if segment == "" {
		return Result{Source: SourceNone, Available: false}
	}

	for _, key := range candidateKeys(product) {
		rule, err := rules.FindRule(ctx, key.category, key.subCategory, key.subSubCategory)
		if err != nil {
			return Result{Source: SourceNone, Available: false}
		}
		if rule == nil || !rule.IsActive {
			continue
		}
		if rate, ok := rule.SegmentRates[segment]; ok {
			price := rate
			return Result{Price: &price, Source: SourceCategory, Available: true}
		}
	}

	return Result{Source: SourceNone, Available: false}
}

type ruleKey struct {
	category       string
	subCategory    *string
	subSubCategory *string
}

// candidateKeys lists rule keys from most to least specific, limited to the
// category levels actually set on the product. Broad defaults with narrow
// exceptions work without duplicating rules.
func candidateKeys(p *models.Product) []ruleKey {
	var keys []ruleKey
	if p.SubSubCategory != nil && p.SubCategory != nil {
		keys = append(keys, ruleKey{p.Category, p.SubCategory, p.SubSubCategory})
	}
	if p.SubCategory != nil {
		keys = append(keys, ruleKey{p.Category, p.SubCategory, nil})
	}
	keys = append(keys, ruleKey{category: p.Category})
	return keys
}
