// Package match evaluates catalog requirements against a business
// profile and produces the raw match list consumed by the rule
// processor.
package match

import (
	"github.com/coolbeans/firegate/pkg/catalog"
)

// Priority tiers. Lower is more critical.
const (
	PriorityCritical    = 1
	PriorityImportant   = 2
	PriorityRecommended = 3
)

// PriorityHebrew returns the Hebrew label for a priority tier.
func PriorityHebrew(priority int) string {
	switch priority {
	case PriorityCritical:
		return "קריטי"
	case PriorityImportant:
		return "חשוב"
	case PriorityRecommended:
		return "מומלץ"
	}
	return "לא ידוע"
}

// Match is a single applicable requirement with the justification for
// why it applies. Matches are request-scoped: created here, refined by
// the rule processor, consumed by the formatter, never persisted.
type Match struct {
	RequirementID string           `json:"requirement_id"`
	Chapter       int              `json:"chapter"`
	Section       string           `json:"section"`
	Category      catalog.Category `json:"category"`
	Title         string           `json:"title"`
	BodyText      string           `json:"body_text"`
	MatchReasons  []string         `json:"match_reasons"`
	Priority      int              `json:"priority"`
}

// Clone returns a deep copy of the match, so pipeline stages can
// rebuild match lists without sharing reason slices.
func (m Match) Clone() Match {
	reasons := make([]string, len(m.MatchReasons))
	copy(reasons, m.MatchReasons)
	m.MatchReasons = reasons
	return m
}
