package installation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"torqbay/internal/models"
)

// stubFinder serves rules from an in-memory map keyed on the full key triple.
type stubFinder struct {
	rules map[string]*models.InstallationRule
	err   error
	calls []string
}

func finderKey(category string, subCategory, subSubCategory *string) string {
	sub, subSub := "-", "-"
	if subCategory != nil {
		sub = *subCategory
	}
	if subSubCategory != nil {
		subSub = *subSubCategory
	}
	return fmt.Sprintf("%s/%s/%s", category, sub, subSub)
}

func (f *stubFinder) FindRule(_ context.Context, category string, subCategory, subSubCategory *string) (*models.InstallationRule, error) {
	key := finderKey(category, subCategory, subSubCategory)
	f.calls = append(f.calls, key)
	if f.err != nil {
		return nil, f.err
	}
	return f.rules[key], nil
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func activeRule(category string, sub, subSub *string, rates map[models.Segment]float64) *models.InstallationRule {
	return &models.InstallationRule{
		Category:       category,
		SubCategory:    sub,
		SubSubCategory: subSub,
		SegmentRates:   rates,
		IsActive:       true,
	}
}

func TestResolve_OverrideUnavailableIsTerminal(t *testing.T) {
	// A matching category rule exists, but the product opted out.
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"alloy-wheels/-/-": activeRule("alloy-wheels", nil, nil, map[models.Segment]float64{models.SegmentSedan: 500}),
	}}
	product := &models.Product{
		Category:     "alloy-wheels",
		Installation: &models.InstallationOverride{IsAvailable: false},
	}

	result := Resolve(context.Background(), finder, product, models.SegmentSedan)

	assert.False(t, result.Available)
	assert.Nil(t, result.Price)
	assert.Equal(t, SourceNone, result.Source)
	assert.Empty(t, finder.calls, "unavailable override must not hit the rule store")
}

func TestResolve_OverrideFlatRateWins(t *testing.T) {
	// Flat rate beats the override's own segment rates and any category rule.
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"alloy-wheels/-/-": activeRule("alloy-wheels", nil, nil, map[models.Segment]float64{models.SegmentSUV: 800}),
	}}
	product := &models.Product{
		Category: "alloy-wheels",
		Installation: &models.InstallationOverride{
			IsAvailable:  true,
			FlatRate:     floatPtr(299),
			SegmentRates: map[models.Segment]float64{models.SegmentSUV: 999},
		},
	}

	result := Resolve(context.Background(), finder, product, models.SegmentSUV)

	require.True(t, result.Available)
	require.NotNil(t, result.Price)
	assert.Equal(t, 299.0, *result.Price)
	assert.Equal(t, SourceOverride, result.Source)
	assert.Empty(t, finder.calls)
}

func TestResolve_OverrideFlatRateWithoutSegment(t *testing.T) {
	// A flat rate needs no segment at all.
	product := &models.Product{
		Category:     "horns",
		Installation: &models.InstallationOverride{IsAvailable: true, FlatRate: floatPtr(150)},
	}

	result := Resolve(context.Background(), &stubFinder{}, product, "")

	require.True(t, result.Available)
	assert.Equal(t, 150.0, *result.Price)
	assert.Equal(t, SourceOverride, result.Source)
}

func TestResolve_OverrideSegmentRate(t *testing.T) {
	product := &models.Product{
		Category: "car-audio",
		Installation: &models.InstallationOverride{
			IsAvailable:  true,
			SegmentRates: map[models.Segment]float64{models.SegmentHatchback: 400, models.SegmentSUV: 650},
		},
	}

	result := Resolve(context.Background(), &stubFinder{}, product, models.SegmentSUV)

	require.True(t, result.Available)
	assert.Equal(t, 650.0, *result.Price)
	assert.Equal(t, SourceOverride, result.Source)
}

func TestResolve_OverrideWithoutMatchingSegmentFallsToRules(t *testing.T) {
	// The override covers hatchbacks only; an SUV falls through to the
	// category rule.
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"car-audio/-/-": activeRule("car-audio", nil, nil, map[models.Segment]float64{models.SegmentSUV: 700}),
	}}
	product := &models.Product{
		Category: "car-audio",
		Installation: &models.InstallationOverride{
			IsAvailable:  true,
			SegmentRates: map[models.Segment]float64{models.SegmentHatchback: 400},
		},
	}

	result := Resolve(context.Background(), finder, product, models.SegmentSUV)

	require.True(t, result.Available)
	assert.Equal(t, 700.0, *result.Price)
	assert.Equal(t, SourceCategory, result.Source)
}

func TestResolve_MostSpecificRuleWins(t *testing.T) {
	// Rules exist at all three levels; the sub-sub-category one must win.
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"seat-covers/-/-":                    activeRule("seat-covers", nil, nil, map[models.Segment]float64{models.SegmentSedan: 1000}),
		"seat-covers/leatherette/-":          activeRule("seat-covers", strPtr("leatherette"), nil, map[models.Segment]float64{models.SegmentSedan: 1500}),
		"seat-covers/leatherette/bucket-fit": activeRule("seat-covers", strPtr("leatherette"), strPtr("bucket-fit"), map[models.Segment]float64{models.SegmentSedan: 1800}),
	}}
	product := &models.Product{
		Category:       "seat-covers",
		SubCategory:    strPtr("leatherette"),
		SubSubCategory: strPtr("bucket-fit"),
	}

	result := Resolve(context.Background(), finder, product, models.SegmentSedan)

	require.True(t, result.Available)
	assert.Equal(t, 1800.0, *result.Price)
	assert.Equal(t, SourceCategory, result.Source)
	assert.Equal(t, []string{"seat-covers/leatherette/bucket-fit"}, finder.calls)
}

func TestResolve_SpecificRuleWithoutSegmentRateFallsToParent(t *testing.T) {
	// The narrow rule prices luxury cars only; a sedan keeps walking up to
	// the broader rule. Broad defaults with narrow exceptions.
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"seat-covers/leatherette/-": activeRule("seat-covers", strPtr("leatherette"), nil, map[models.Segment]float64{models.SegmentLuxury: 3000}),
		"seat-covers/-/-":           activeRule("seat-covers", nil, nil, map[models.Segment]float64{models.SegmentSedan: 1200}),
	}}
	product := &models.Product{
		Category:    "seat-covers",
		SubCategory: strPtr("leatherette"),
	}

	result := Resolve(context.Background(), finder, product, models.SegmentSedan)

	require.True(t, result.Available)
	assert.Equal(t, 1200.0, *result.Price)
	assert.Equal(t, SourceCategory, result.Source)
	assert.Equal(t, []string{"seat-covers/leatherette/-", "seat-covers/-/-"}, finder.calls)
}

func TestResolve_InactiveRuleIsSkipped(t *testing.T) {
	inactive := activeRule("lighting", nil, nil, map[models.Segment]float64{models.SegmentSedan: 450})
	inactive.IsActive = false
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"lighting/-/-": inactive,
	}}
	product := &models.Product{Category: "lighting"}

	result := Resolve(context.Background(), finder, product, models.SegmentSedan)

	assert.False(t, result.Available)
	assert.Nil(t, result.Price)
}

func TestResolve_NoSegmentNoCategoryPricing(t *testing.T) {
	// Without a known segment the category rules cannot price anything.
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"floor-mats/-/-": activeRule("floor-mats", nil, nil, map[models.Segment]float64{models.SegmentSedan: 300}),
	}}
	product := &models.Product{Category: "floor-mats"}

	result := Resolve(context.Background(), finder, product, "")

	assert.False(t, result.Available)
	assert.Empty(t, finder.calls)
}

func TestResolve_NoRuleAnywhere(t *testing.T) {
	product := &models.Product{Category: "body-care"}

	result := Resolve(context.Background(), &stubFinder{}, product, models.SegmentMUV)

	assert.False(t, result.Available)
	assert.Nil(t, result.Price)
	assert.Equal(t, SourceNone, result.Source)
}

func TestResolve_ZeroRateIsFreeNotMissing(t *testing.T) {
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"floor-mats/-/-": activeRule("floor-mats", nil, nil, map[models.Segment]float64{models.SegmentHatchback: 0}),
	}}
	product := &models.Product{Category: "floor-mats"}

	result := Resolve(context.Background(), finder, product, models.SegmentHatchback)

	require.True(t, result.Available)
	require.NotNil(t, result.Price)
	assert.Equal(t, 0.0, *result.Price)
}

func TestResolve_StoreErrorResolvesUnavailable(t *testing.T) {
	// A rule store failure must never invent a price.
	finder := &stubFinder{err: errors.New("connection refused")}
	product := &models.Product{Category: "dash-cameras"}

	result := Resolve(context.Background(), finder, product, models.SegmentSedan)

	assert.False(t, result.Available)
	assert.Nil(t, result.Price)
	assert.Equal(t, SourceNone, result.Source)
}

func TestResolve_ResultPriceIsACopy(t *testing.T) {
	// Mutating the returned price must not leak into the stored rule.
	rates := map[models.Segment]float64{models.SegmentSedan: 500}
	finder := &stubFinder{rules: map[string]*models.InstallationRule{
		"alloy-wheels/-/-": activeRule("alloy-wheels", nil, nil, rates),
	}}
	product := &models.Product{Category: "alloy-wheels"}

	result := Resolve(context.Background(), finder, product, models.SegmentSedan)
	require.NotNil(t, result.Price)
	*result.Price = 9999

	assert.Equal(t, 500.0, rates[models.SegmentSedan])
}
