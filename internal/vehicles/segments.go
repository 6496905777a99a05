package vehicles

import (
	"strings"

	"torqbay/internal/models"
)

// Brand groups the models sold under one marque with their segment
// assignments. Append-only reference data; never mutated at runtime.
type Brand struct {
	Name   string
	Models map[string]models.Segment
}

var brands = []Brand{
	{
		Name: "Maruti Suzuki",
		Models: map[string]models.Segment{
			"Alto":         models.SegmentHatchback,
			"Swift":        models.SegmentHatchback,
			"WagonR":       models.SegmentHatchback,
			"Baleno":       models.SegmentHatchback,
			"Dzire":        models.SegmentSedan,
			"Ciaz":         models.SegmentSedan,
			"Brezza":       models.SegmentSUV,
			"Grand Vitara": models.SegmentSUV,
			"Ertiga":       models.SegmentMUV,
			"XL6":          models.SegmentMUV,
		},
	},
	{
		Name: "Hyundai",
		Models: map[string]models.Segment{
			"i10":     models.SegmentHatchback,
			"i20":     models.SegmentHatchback,
			"Aura":    models.SegmentSedan,
			"Verna":   models.SegmentSedan,
			"Venue":   models.SegmentSUV,
			"Creta":   models.SegmentSUV,
			"Alcazar": models.SegmentSUV,
		},
	},
	{
		Name: "Tata",
		Models: map[string]models.Segment{
			"Tiago":   models.SegmentHatchback,
			"Altroz":  models.SegmentHatchback,
			"Tigor":   models.SegmentSedan,
			"Nexon":   models.SegmentSUV,
			"Harrier": models.SegmentSUV,
			"Safari":  models.SegmentSUV,
		},
	},
	{
		Name: "Mahindra",
		Models: map[string]models.Segment{
			"XUV300":  models.SegmentSUV,
			"XUV700":  models.SegmentSUV,
			"Scorpio": models.SegmentSUV,
			"Thar":    models.SegmentSUV,
			"Bolero":  models.SegmentMUV,
			"Marazzo": models.SegmentMUV,
		},
	},
	{
		Name: "Toyota",
		Models: map[string]models.Segment{
			"Glanza":        models.SegmentHatchback,
			"Camry":         models.SegmentLuxury,
			"Innova Crysta": models.SegmentMUV,
			"Fortuner":      models.SegmentSUV,
		},
	},
	{
		Name: "Honda",
		Models: map[string]models.Segment{
			"Amaze":   models.SegmentSedan,
			"City":    models.SegmentSedan,
			"Elevate": models.SegmentSUV,
		},
	},
	{
		Name: "Kia",
		Models: map[string]models.Segment{
			"Sonet":  models.SegmentSUV,
			"Seltos": models.SegmentSUV,
			"Carens": models.SegmentMUV,
		},
	},
	{
		Name: "Mercedes-Benz",
		Models: map[string]models.Segment{
			"C-Class": models.SegmentLuxury,
			"E-Class": models.SegmentLuxury,
			"GLC":     models.SegmentLuxury,
		},
	},
	{
		Name: "BMW",
		Models: map[string]models.Segment{
			"3 Series": models.SegmentLuxury,
			"5 Series": models.SegmentLuxury,
			"X1":       models.SegmentLuxury,
		},
	},
}

// Brands returns the reference table for vehicle-picker endpoints.
func Brands() []Brand {
	return brands
}

// SegmentForModel scans the brand table for the first brand carrying the
// given model name and returns its segment. Matching is case-insensitive.
// Unknown models return ("", false); callers treat that as "segment unknown",
// which disables category-rule installation pricing.
func SegmentForModel(modelName string) (models.Segment, bool) {
	for _, brand := range brands {
		for name, segment := range brand.Models {
			if strings.EqualFold(name, modelName) {
				return segment, true
			}
		}
	}
	return "", false
}
