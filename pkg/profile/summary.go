package profile

// SizeCategory buckets business floor area for reports.
type SizeCategory string

const (
	SizeSmall  SizeCategory = "Small"
	SizeMedium SizeCategory = "Medium"
	SizeLarge  SizeCategory = "Large"
)

// CapacityCategory buckets business occupancy for reports.
type CapacityCategory string

const (
	CapacityLow    CapacityCategory = "Low"
	CapacityMedium CapacityCategory = "Medium"
	CapacityHigh   CapacityCategory = "High"
)

// Summary is a condensed view of a profile for reports and logging.
type Summary struct {
	SizeCategory     SizeCategory     `json:"size_category"`
	CapacityCategory CapacityCategory `json:"capacity_category"`
	FeatureCount     int              `json:"feature_count"`
	ComplexityScore  float64          `json:"complexity_score"`
}

// Summarize derives the summary buckets and complexity score from a
// profile. The complexity score combines size (up to 0.5), capacity
// (up to 0.3), and 0.05 per declared feature, capped at 1.0.
func Summarize(p *Profile) Summary {
	sizeCat := SizeLarge
	switch {
	case p.SizeSqm <= 100:
		sizeCat = SizeSmall
	case p.SizeSqm <= 300:
		sizeCat = SizeMedium
	}

	capCat := CapacityHigh
	switch {
	case p.CapacityPeople <= 50:
		capCat = CapacityLow
	case p.CapacityPeople <= 200:
		capCat = CapacityMedium
	}

	sizeComponent := minFloat(float64(p.SizeSqm)/1000, 0.5)
	capComponent := minFloat(float64(p.CapacityPeople)/500, 0.3)
	featureComponent := float64(p.FeatureCount()) * 0.05
	score := minFloat(sizeComponent+capComponent+featureComponent, 1.0)

	return Summary{
		SizeCategory:     sizeCat,
		CapacityCategory: capCat,
		FeatureCount:     p.FeatureCount(),
		ComplexityScore:  score,
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
