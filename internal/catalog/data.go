package catalog

// DefaultTree is the storefront's category hierarchy. Reference data only;
// admin edits ship as code changes.
func DefaultTree() []Category {
	return []Category{
		{
			Name: "Alloy Wheels", Slug: "alloy-wheels",
			Children: []Category{
				{Name: "14 Inch", Slug: "alloy-wheels-14-inch"},
				{Name: "15 Inch", Slug: "alloy-wheels-15-inch"},
				{Name: "16 Inch", Slug: "alloy-wheels-16-inch"},
				{Name: "17 Inch & Above", Slug: "alloy-wheels-17-inch-above"},
			},
		},
		{
			Name: "Seat Covers", Slug: "seat-covers",
			Children: []Category{
				{
					Name: "Leatherette", Slug: "seat-covers-leatherette",
					Children: []Category{
						{Name: "Bucket Fit", Slug: "seat-covers-leatherette-bucket-fit"},
						{Name: "Universal Fit", Slug: "seat-covers-leatherette-universal-fit"},
					},
				},
				{Name: "Fabric", Slug: "seat-covers-fabric"},
				{Name: "PU Leather", Slug: "seat-covers-pu-leather"},
			},
		},
		{
			Name: "Car Audio", Slug: "car-audio",
			Children: []Category{
				{
					Name: "Speakers", Slug: "car-audio-speakers",
					Children: []Category{
						{Name: "Coaxial", Slug: "car-audio-speakers-coaxial"},
						{Name: "Component", Slug: "car-audio-speakers-component"},
					},
				},
				{Name: "Subwoofers", Slug: "car-audio-subwoofers"},
				{Name: "Amplifiers", Slug: "car-audio-amplifiers"},
				{Name: "Android Stereos", Slug: "car-audio-android-stereos"},
			},
		},
		{
			Name: "Lighting", Slug: "lighting",
			Children: []Category{
				{Name: "LED Headlights", Slug: "lighting-led-headlights"},
				{Name: "Fog Lamps", Slug: "lighting-fog-lamps"},
				{Name: "Ambient Lighting", Slug: "lighting-ambient"},
			},
		},
		{
			Name: "Floor Mats", Slug: "floor-mats",
			Children: []Category{
				{Name: "7D Mats", Slug: "floor-mats-7d"},
				{Name: "3D Mats", Slug: "floor-mats-3d"},
				{Name: "PVC Mats", Slug: "floor-mats-pvc"},
			},
		},
		{
			Name: "Body Care", Slug: "body-care",
			Children: []Category{
				{Name: "Body Covers", Slug: "body-care-covers"},
				{Name: "Polishes & Waxes", Slug: "body-care-polishes"},
			},
		},
		{Name: "Horns", Slug: "horns"},
		{Name: "Dash Cameras", Slug: "dash-cameras"},
	}
}
