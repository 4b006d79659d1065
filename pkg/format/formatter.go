// Package format assembles the final structured result from processed
// matches: category groupings, aggregate statistics, and the Hebrew
// renderings consumed by the report generator and UI layers. No
// business logic is introduced here.
package format

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/coolbeans/firegate/pkg/catalog"
	"github.com/coolbeans/firegate/pkg/match"
	"github.com/coolbeans/firegate/pkg/profile"
	"github.com/coolbeans/firegate/pkg/rules"
)

// Record is a single formatted requirement match with display labels.
type Record struct {
	RequirementID  string           `json:"requirement_id"`
	Chapter        int              `json:"chapter"`
	Section        string           `json:"section"`
	Category       catalog.Category `json:"category"`
	CategoryHebrew string           `json:"category_hebrew"`
	Title          string           `json:"title"`
	BodyText       string           `json:"body_text"`
	MatchReasons   []string         `json:"match_reasons"`
	Priority       int              `json:"priority"`
	PriorityHebrew string           `json:"priority_text"`
}

// CategoryGroup aggregates the matches of one category.
type CategoryGroup struct {
	Category       catalog.Category `json:"category_name"`
	CategoryHebrew string           `json:"category_hebrew"`
	Priority       int              `json:"priority"`
	Requirements   []Record         `json:"requirements"`
	CombinedText   string           `json:"combined_text"`
	Count          int              `json:"requirement_count"`
}

// PriorityCounts breaks the result down by priority tier.
type PriorityCounts struct {
	Critical    int `json:"critical"`
	Important   int `json:"important"`
	Recommended int `json:"recommended"`
}

// Stats summarizes the final match set.
type Stats struct {
	TotalRequirements  int                      `json:"total_requirements"`
	ByCategory         map[catalog.Category]int `json:"by_category"`
	ByPriority         PriorityCounts           `json:"by_priority"`
	ByChapter          map[int]int              `json:"by_chapter"`
	MostCommonCategory catalog.Category         `json:"most_common_category,omitempty"`
}

// Result is the complete structured output of the matching pipeline,
// consumed by the report generator (textual renderings) and the UI
// (structured records and statistics).
type Result struct {
	Profile *profile.Profile `json:"business_profile"`
	Summary profile.Summary  `json:"business_summary"`

	Requirements         []Record        `json:"applicable_requirements"`
	ByCategory           []CategoryGroup `json:"requirements_by_category"`
	PriorityRequirements []Record        `json:"priority_requirements"`

	FullText    string `json:"context_full"`
	SummaryText string `json:"context_summary"`
	ProfileText string `json:"business_context"`

	TotalRequirements int              `json:"total_requirements"`
	Timestamp         string           `json:"processing_timestamp"`
	Statistics        Stats            `json:"match_statistics"`
	ConflictsResolved []rules.Conflict `json:"conflicts_resolved"`
}

// Format assembles the result from processed matches. Pure over its
// inputs apart from the processing timestamp.
func Format(matches []match.Match, prof *profile.Profile, conflicts []rules.Conflict) *Result {
	records := make([]Record, 0, len(matches))
	for _, m := range matches {
		records = append(records, toRecord(m))
	}

	priority := make([]Record, 0)
	for _, r := range records {
		if r.Priority == match.PriorityCritical {
			priority = append(priority, r)
		}
	}

	if conflicts == nil {
		conflicts = make([]rules.Conflict, 0)
	}

	return &Result{
		Profile:              prof,
		Summary:              profile.Summarize(prof),
		Requirements:         records,
		ByCategory:           groupByCategory(matches),
		PriorityRequirements: priority,
		FullText:             renderFull(matches),
		SummaryText:          renderSummary(matches),
		ProfileText:          renderProfile(prof),
		TotalRequirements:    len(matches),
		Timestamp:            time.Now().Format(time.RFC3339),
		Statistics:           computeStats(matches),
		ConflictsResolved:    conflicts,
	}
}

// ToJSON serializes the result to indented JSON.
func (r *Result) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func toRecord(m match.Match) Record {
	reasons := make([]string, len(m.MatchReasons))
	copy(reasons, m.MatchReasons)
	return Record{
		RequirementID:  m.RequirementID,
		Chapter:        m.Chapter,
		Section:        m.Section,
		Category:       m.Category,
		CategoryHebrew: m.Category.Hebrew(),
		Title:          m.Title,
		BodyText:       m.BodyText,
		MatchReasons:   reasons,
		Priority:       m.Priority,
		PriorityHebrew: match.PriorityHebrew(m.Priority),
	}
}

// groupByCategory builds per-category groups ordered by (minimum
// priority, category name).
func groupByCategory(matches []match.Match) []CategoryGroup {
	grouped := make(map[catalog.Category][]match.Match)
	for _, m := range matches {
		grouped[m.Category] = append(grouped[m.Category], m)
	}

	groups := make([]CategoryGroup, 0, len(grouped))
	for cat, members := range grouped {
		minPriority := members[0].Priority
		records := make([]Record, 0, len(members))
		for _, m := range members {
			if m.Priority < minPriority {
				minPriority = m.Priority
			}
			records = append(records, toRecord(m))
		}

		groups = append(groups, CategoryGroup{
			Category:       cat,
			CategoryHebrew: cat.Hebrew(),
			Priority:       minPriority,
			Requirements:   records,
			CombinedText:   combineText(members),
			Count:          len(members),
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Priority != groups[j].Priority {
			return groups[i].Priority < groups[j].Priority
		}
		return groups[i].Category < groups[j].Category
	})
	return groups
}

// computeStats aggregates counts by category, priority tier, and
// chapter, and picks the most frequent category (ties broken by name
// for determinism).
func computeStats(matches []match.Match) Stats {
	s := Stats{
		ByCategory: make(map[catalog.Category]int),
		ByChapter:  make(map[int]int),
	}
	s.TotalRequirements = len(matches)

	for _, m := range matches {
		s.ByCategory[m.Category]++
		s.ByChapter[m.Chapter]++

		switch m.Priority {
		case match.PriorityCritical:
			s.ByPriority.Critical++
		case match.PriorityImportant:
			s.ByPriority.Important++
		case match.PriorityRecommended:
			s.ByPriority.Recommended++
		}
	}

	best := catalog.Category("")
	bestCount := 0
	for cat, count := range s.ByCategory {
		if count > bestCount || (count == bestCount && (best == "" || cat < best)) {
			best = cat
			bestCount = count
		}
	}
	s.MostCommonCategory = best

	return s
}
