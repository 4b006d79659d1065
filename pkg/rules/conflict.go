// Package rules post-processes raw requirement matches: boundary
// handling at the chapter-5 regime thresholds, chapter reconciliation,
// feature-combination escalation, deduplication, and completeness
// validation.
package rules

import (
	"github.com/coolbeans/firegate/pkg/catalog"
	"github.com/coolbeans/firegate/pkg/match"
)

// ConflictKind categorizes a detected requirement conflict.
type ConflictKind string

const (
	// ConflictChapterOverlap marks two requirements from different
	// chapters that cover the same ground and must not both apply.
	ConflictChapterOverlap ConflictKind = "chapter_overlap"
)

// Conflict records two requirements judged to conflict and which one
// was kept. Conflicts accumulate in the processor's per-session log.
type Conflict struct {
	RequirementID1 string       `json:"requirement1_id"`
	RequirementID2 string       `json:"requirement2_id"`
	Kind           ConflictKind `json:"conflict_type"`
	Resolution     string       `json:"resolution"`
	PreferredID    string       `json:"preferred_requirement_id"`
}

// overlapCategories are the categories whose same-category matches from
// different chapters are considered conflicting.
var overlapCategories = map[catalog.Category]bool{
	catalog.CategoryFireEquipment: true,
	catalog.CategoryElectrical:    true,
	catalog.CategorySignage:       true,
}

// matchesConflict reports whether two matches conflict: same category
// across different chapters for the overlap-prone categories, or
// identical title text across different chapters. Title equality
// applies even to untitled requirements.
func matchesConflict(a, b match.Match) bool {
	if a.Chapter == b.Chapter {
		return false
	}
	if a.Category == b.Category && overlapCategories[a.Category] {
		return true
	}
	return a.Title == b.Title
}
