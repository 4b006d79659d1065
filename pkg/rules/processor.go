package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/coolbeans/firegate/pkg/catalog"
	"github.com/coolbeans/firegate/pkg/match"
	"github.com/coolbeans/firegate/pkg/profile"
)

// Justification strings appended by the feature-combination rules.
const (
	reasonDelivery        = "נדרש עבור שירותי משלוחים"
	reasonComplexBusiness = "עסק מורכב עם מאפיינים מרובים"
)

// complexFeatureCount is the number of distinct features at which a
// business is treated as complex and all priorities escalate one tier.
const complexFeatureCount = 3

// Processor refines raw matches through the business-rule pipeline.
// The conflict log is the only mutable state: it accumulates across
// Process calls until Reset, so independent evaluations must either
// use separate processors or call Reset between them.
type Processor struct {
	thresholds catalog.Thresholds
	logger     *zap.Logger
	conflicts  []Conflict
}

// NewProcessor creates a processor using the catalog's regulatory
// thresholds. The logger may be nil.
func NewProcessor(thresholds catalog.Thresholds, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{thresholds: thresholds, logger: logger}
}

// Process runs the refinement pipeline over raw matches. Each stage
// consumes the previous stage's output and returns a rebuilt list;
// the input slice is never mutated.
func (p *Processor) Process(matches []match.Match, prof *profile.Profile) []match.Match {
	p.logger.Info("processing matches through business rules", zap.Int("raw", len(matches)))

	out := cloneMatches(matches)
	out = p.handleThresholdBoundaries(out, prof)
	out = p.reconcileChapters(out, prof)
	out = p.applyFeatureRules(out, prof)
	out = dedupeAndSort(out)
	p.validateResultSet(out, prof)

	p.logger.Info("rule processing complete", zap.Int("final", len(out)))
	return out
}

// Conflicts returns a copy of the conflicts recorded so far in this
// session.
func (p *Processor) Conflicts() []Conflict {
	out := make([]Conflict, len(p.conflicts))
	copy(out, p.conflicts)
	return out
}

// Reset clears the conflict log. Callers must invoke it between
// independent business evaluations to avoid cross-request leakage.
func (p *Processor) Reset() {
	p.conflicts = nil
}

// handleThresholdBoundaries treats chapter-5 requirements as
// authoritative when the profile sits exactly at either regime
// threshold. The trigger is deliberately asymmetric: size OR capacity
// at its threshold triggers the stage even when the other dimension is
// far from any boundary.
func (p *Processor) handleThresholdBoundaries(matches []match.Match, prof *profile.Profile) []match.Match {
	atBoundary := prof.SizeSqm == p.thresholds.Chapter5MaxSqm ||
		prof.CapacityPeople == p.thresholds.Chapter5MaxPeople
	if !atBoundary {
		return matches
	}

	chapter5, chapter6 := splitByChapter(matches)
	if len(chapter5) == 0 || len(chapter6) == 0 {
		return matches
	}

	p.logger.Info("profile at chapter-5 threshold boundary, preferring chapter 5",
		zap.Int("size_sqm", prof.SizeSqm), zap.Int("capacity", prof.CapacityPeople))

	kept := append([]match.Match{}, chapter5...)
	for _, m6 := range chapter6 {
		conflicting := firstConflict(m6, chapter5)
		if conflicting == nil {
			kept = append(kept, m6)
			continue
		}
		p.record(Conflict{
			RequirementID1: conflicting.RequirementID,
			RequirementID2: m6.RequirementID,
			Kind:           ConflictChapterOverlap,
			Resolution:     "העסק בגבול פרק 5 - נבחרה דרישת פרק 5",
			PreferredID:    conflicting.RequirementID,
		})
	}
	return kept
}

// reconcileChapters resolves overlap between chapter 5 and chapter 6
// when both are present. The primary chapter is 5 only when the profile
// is within both small-business thresholds; secondary-chapter matches
// survive only if they conflict with no primary match.
func (p *Processor) reconcileChapters(matches []match.Match, prof *profile.Profile) []match.Match {
	chapter5, chapter6 := splitByChapter(matches)
	if len(chapter5) == 0 || len(chapter6) == 0 {
		return matches
	}

	primary, secondary := chapter6, chapter5
	primaryChapter := 6
	if prof.SizeSqm <= p.thresholds.Chapter5MaxSqm &&
		prof.CapacityPeople <= p.thresholds.Chapter5MaxPeople {
		primary, secondary = chapter5, chapter6
		primaryChapter = 5
	}

	resolved := append([]match.Match{}, primary...)
	dropped := 0
	for _, sec := range secondary {
		conflicting := firstConflict(sec, primary)
		if conflicting == nil {
			resolved = append(resolved, sec)
			continue
		}
		dropped++
		p.record(Conflict{
			RequirementID1: conflicting.RequirementID,
			RequirementID2: sec.RequirementID,
			Kind:           ConflictChapterOverlap,
			Resolution:     fmt.Sprintf("נבחרה דרישת פרק %d", primaryChapter),
			PreferredID:    conflicting.RequirementID,
		})
	}

	if dropped > 0 {
		p.logger.Info("resolved chapter conflicts",
			zap.Int("primary_chapter", primaryChapter), zap.Int("dropped", dropped))
	}
	return resolved
}

// applyFeatureRules applies the feature-combination transformations.
// The rules are independent and order-insensitive.
func (p *Processor) applyFeatureRules(matches []match.Match, prof *profile.Profile) []match.Match {
	out := matches

	if prof.HasFeature(profile.FeatureGasUsage) {
		out = p.applyGasRules(out)
	}
	if prof.HasFeature(profile.FeatureDelivery) {
		out = p.applyDeliveryRules(out)
	}
	if prof.HasFeature(profile.FeatureAlcohol) {
		out = p.applyAlcoholRules(out)
	}
	if prof.FeatureCount() >= complexFeatureCount {
		out = p.applyComplexBusinessRules(out)
	}

	return out
}

// applyGasRules forces every gas-category match to the critical tier
// for gas-using businesses.
func (p *Processor) applyGasRules(matches []match.Match) []match.Match {
	out := make([]match.Match, 0, len(matches))
	elevated := 0
	for _, m := range matches {
		m = m.Clone()
		if m.Category == catalog.CategoryGas && m.Priority != match.PriorityCritical {
			m.Priority = match.PriorityCritical
			elevated++
		}
		out = append(out, m)
	}
	if elevated > 0 {
		p.logger.Info("elevated gas requirements to critical", zap.Int("count", elevated))
	}
	return out
}

// applyDeliveryRules adds a delivery-relevance justification to signage
// matches. Priorities are unchanged.
func (p *Processor) applyDeliveryRules(matches []match.Match) []match.Match {
	out := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		m = m.Clone()
		if m.Category == catalog.CategorySignage {
			m.MatchReasons = append(m.MatchReasons, reasonDelivery)
		}
		out = append(out, m)
	}
	return out
}

// applyAlcoholRules is a no-op: alcohol-specific requirements are
// already encoded in the base catalog via the feature gate. The hook
// stays so the feature dispatch remains exhaustive.
func (p *Processor) applyAlcoholRules(matches []match.Match) []match.Match {
	return matches
}

// applyComplexBusinessRules raises every match one priority tier
// (floor at critical) for businesses with three or more features.
func (p *Processor) applyComplexBusinessRules(matches []match.Match) []match.Match {
	p.logger.Info("complex business with multiple features, escalating priorities")

	out := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		m = m.Clone()
		if m.Priority > match.PriorityCritical {
			m.Priority--
			m.MatchReasons = append(m.MatchReasons, reasonComplexBusiness)
		}
		out = append(out, m)
	}
	return out
}

// dedupeAndSort removes duplicate requirement ids (first occurrence
// wins, retaining its adjusted state) and restores the canonical
// (priority, chapter, section) ordering.
func dedupeAndSort(matches []match.Match) []match.Match {
	seen := make(map[string]bool, len(matches))
	out := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if seen[m.RequirementID] {
			continue
		}
		seen[m.RequirementID] = true
		out = append(out, m)
	}
	match.SortMatches(out)
	return out
}

// validateResultSet surfaces catalog data-quality issues: mandatory
// categories entirely absent, or a gas-using business with no gas
// requirements. Diagnostic only; the result is never altered.
func (p *Processor) validateResultSet(matches []match.Match, prof *profile.Profile) {
	present := make(map[catalog.Category]bool)
	for _, m := range matches {
		present[m.Category] = true
	}

	for _, mandatory := range []catalog.Category{catalog.CategoryFireEquipment, catalog.CategoryCertifications} {
		if !present[mandatory] {
			p.logger.Warn("mandatory category missing from result set",
				zap.String("category", string(mandatory)))
		}
	}

	if prof.HasFeature(profile.FeatureGasUsage) && !present[catalog.CategoryGas] {
		p.logger.Warn("gas usage declared but no gas requirements matched")
	}
}

func (p *Processor) record(c Conflict) {
	p.conflicts = append(p.conflicts, c)
}

// splitByChapter partitions matches into chapter-5 and chapter-6
// groups, preserving order.
func splitByChapter(matches []match.Match) (chapter5, chapter6 []match.Match) {
	for _, m := range matches {
		switch m.Chapter {
		case 5:
			chapter5 = append(chapter5, m)
		case 6:
			chapter6 = append(chapter6, m)
		}
	}
	return chapter5, chapter6
}

// firstConflict returns the first match in candidates that conflicts
// with m, or nil.
func firstConflict(m match.Match, candidates []match.Match) *match.Match {
	for i := range candidates {
		if matchesConflict(candidates[i], m) {
			return &candidates[i]
		}
	}
	return nil
}

func cloneMatches(matches []match.Match) []match.Match {
	out := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Clone())
	}
	return out
}
