package vehicles

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"torqbay/internal/models"
)

func TestSegmentForModel(t *testing.T) {
	tests := []struct {
		model   string
		segment models.Segment
		found   bool
	}{
		{"Swift", models.SegmentHatchback, true},
		{"Dzire", models.SegmentSedan, true},
		{"Creta", models.SegmentSUV, true},
		{"Ertiga", models.SegmentMUV, true},
		{"C-Class", models.SegmentLuxury, true},
		{"swift", models.SegmentHatchback, true}, // case-insensitive
		{"INNOVA CRYSTA", models.SegmentMUV, true},
		{"DeLorean", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		segment, found := SegmentForModel(tc.model)
		assert.Equal(t, tc.found, found, "model %q", tc.model)
		assert.Equal(t, tc.segment, segment, "model %q", tc.model)
	}
}

func TestBrands_AllSegmentsValid(t *testing.T) {
	for _, brand := range Brands() {
		assert.NotEmpty(t, brand.Name)
		assert.NotEmpty(t, brand.Models)
		for model, segment := range brand.Models {
			assert.True(t, models.ValidSegment(segment), "%s %s has invalid segment %q", brand.Name, model, segment)
		}
	}
}
