package catalog

// Stats summarizes the loaded catalog for operators and the UI layer.
type Stats struct {
	TotalRequirements  int              `json:"total_requirements"`
	ByCategory         map[Category]int `json:"requirements_by_category"`
	ByChapter          map[int]int      `json:"requirements_by_chapter"`
	AreaThresholds     int              `json:"area_thresholds"`
	CapacityThresholds int              `json:"capacity_thresholds"`
	CombinedThresholds int              `json:"combined_thresholds"`
}

// Stats computes counts by category and chapter plus threshold totals.
func (c *Catalog) Stats() Stats {
	s := Stats{
		ByCategory: make(map[Category]int),
		ByChapter:  make(map[int]int),
	}
	if c == nil {
		return s
	}

	s.TotalRequirements = len(c.Requirements)
	for _, req := range c.Requirements {
		s.ByCategory[req.Category]++
		s.ByChapter[req.Chapter]++
	}

	s.AreaThresholds = len(c.Thresholds.AreaThresholds)
	s.CapacityThresholds = len(c.Thresholds.CapacityThresholds)
	s.CombinedThresholds = len(c.Thresholds.CombinedThresholds)

	return s
}
