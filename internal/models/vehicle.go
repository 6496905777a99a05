package models

// Segment buckets vehicle models into the size/class tiers used to price
// doorstep installation labor.
type Segment string

const (
	SegmentHatchback Segment = "Hatchback"
	SegmentSedan     Segment = "Sedan"
	SegmentSUV       Segment = "SUV"
	SegmentMUV       Segment = "MUV"
	SegmentLuxury    Segment = "Luxury"
)

// ValidSegment reports whether s is one of the known vehicle segments.
func ValidSegment(s Segment) bool {
	switch s {
	case SegmentHatchback, SegmentSedan, SegmentSUV, SegmentMUV, SegmentLuxury:
		return true
	}
	return false
}

// Vehicle is the customer's vehicle snapshot attached to an order.
type Vehicle struct {
	Brand   string  `json:"brand,omitempty"`
	Model   string  `json:"model,omitempty"`
	Segment Segment `json:"segment,omitempty"`
}
