package catalog

// Default small-business (chapter 5) regime cutoffs. Used when the
// catalog document does not carry its own threshold configuration, so
// regulatory changes are a data edit rather than a code change.
const (
	DefaultChapter5MaxSqm    = 150
	DefaultChapter5MaxPeople = 50
)

// TriggerType says on which side of a threshold value a business must
// fall for the threshold to apply.
type TriggerType string

const (
	// TriggerMaximum applies to businesses at or below the threshold.
	TriggerMaximum TriggerType = "maximum"
	// TriggerMinimum applies to businesses at or above the threshold.
	TriggerMinimum TriggerType = "minimum"
)

// AreaThreshold is an extracted floor-area threshold with its source
// context.
type AreaThreshold struct {
	ThresholdSqm int         `json:"threshold_sqm" yaml:"threshold_sqm"`
	TriggerType  TriggerType `json:"trigger_type" yaml:"trigger_type"`
	Context      string      `json:"context,omitempty" yaml:"context,omitempty"`
	Section      string      `json:"section,omitempty" yaml:"section,omitempty"`
	Chapter      int         `json:"chapter,omitempty" yaml:"chapter,omitempty"`
}

// CapacityThreshold is an extracted occupancy threshold with its source
// context.
type CapacityThreshold struct {
	ThresholdPeople int         `json:"threshold_people" yaml:"threshold_people"`
	TriggerType     TriggerType `json:"trigger_type" yaml:"trigger_type"`
	Context         string      `json:"context,omitempty" yaml:"context,omitempty"`
	Section         string      `json:"section,omitempty" yaml:"section,omitempty"`
	Chapter         int         `json:"chapter,omitempty" yaml:"chapter,omitempty"`
}

// CombinedThreshold is an extracted threshold that requires both a
// minimum area and a minimum occupancy.
type CombinedThreshold struct {
	ThresholdSqm    int    `json:"threshold_sqm" yaml:"threshold_sqm"`
	ThresholdPeople int    `json:"threshold_people" yaml:"threshold_people"`
	Context         string `json:"context,omitempty" yaml:"context,omitempty"`
	Section         string `json:"section,omitempty" yaml:"section,omitempty"`
	Chapter         int    `json:"chapter,omitempty" yaml:"chapter,omitempty"`
}

// Thresholds carries the regulatory cutoffs loaded alongside the
// requirement list: the chapter-5 regime boundaries plus the auxiliary
// threshold metadata extracted from the corpus.
type Thresholds struct {
	Chapter5MaxSqm     int                 `json:"chapter5_max_sqm" yaml:"chapter5_max_sqm"`
	Chapter5MaxPeople  int                 `json:"chapter5_max_people" yaml:"chapter5_max_people"`
	AreaThresholds     []AreaThreshold     `json:"area_thresholds,omitempty" yaml:"area_thresholds,omitempty"`
	CapacityThresholds []CapacityThreshold `json:"capacity_thresholds,omitempty" yaml:"capacity_thresholds,omitempty"`
	CombinedThresholds []CombinedThreshold `json:"combined_thresholds,omitempty" yaml:"combined_thresholds,omitempty"`
}

// DefaultThresholds returns the chapter-5 cutoffs from the published
// fire-safety regulations.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Chapter5MaxSqm:    DefaultChapter5MaxSqm,
		Chapter5MaxPeople: DefaultChapter5MaxPeople,
	}
}

// applyDefaults fills unset chapter-5 cutoffs.
func (t *Thresholds) applyDefaults() {
	if t.Chapter5MaxSqm == 0 {
		t.Chapter5MaxSqm = DefaultChapter5MaxSqm
	}
	if t.Chapter5MaxPeople == 0 {
		t.Chapter5MaxPeople = DefaultChapter5MaxPeople
	}
}

// ApplicableThresholds is the subset of auxiliary thresholds triggered
// by a specific business.
type ApplicableThresholds struct {
	Area     []AreaThreshold     `json:"area_thresholds"`
	Capacity []CapacityThreshold `json:"capacity_thresholds"`
	Combined []CombinedThreshold `json:"combined_thresholds"`
}

// ApplicableThresholds filters the catalog's auxiliary thresholds for a
// business of the given size and capacity. Maximum triggers apply at or
// below the value, minimum triggers at or above it; combined thresholds
// require both minima.
func (c *Catalog) ApplicableThresholds(sizeSqm, capacityPeople int) ApplicableThresholds {
	result := ApplicableThresholds{
		Area:     make([]AreaThreshold, 0),
		Capacity: make([]CapacityThreshold, 0),
		Combined: make([]CombinedThreshold, 0),
	}
	if c == nil {
		return result
	}

	for _, t := range c.Thresholds.AreaThresholds {
		switch t.TriggerType {
		case TriggerMaximum:
			if sizeSqm <= t.ThresholdSqm {
				result.Area = append(result.Area, t)
			}
		case TriggerMinimum:
			if sizeSqm >= t.ThresholdSqm {
				result.Area = append(result.Area, t)
			}
		}
	}

	for _, t := range c.Thresholds.CapacityThresholds {
		switch t.TriggerType {
		case TriggerMaximum:
			if capacityPeople <= t.ThresholdPeople {
				result.Capacity = append(result.Capacity, t)
			}
		case TriggerMinimum:
			if capacityPeople >= t.ThresholdPeople {
				result.Capacity = append(result.Capacity, t)
			}
		}
	}

	for _, t := range c.Thresholds.CombinedThresholds {
		if sizeSqm >= t.ThresholdSqm && capacityPeople >= t.ThresholdPeople {
			result.Combined = append(result.Combined, t)
		}
	}

	return result
}
