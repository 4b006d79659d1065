package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coolbeans/firegate/pkg/catalog"
	"github.com/coolbeans/firegate/pkg/match"
	"github.com/coolbeans/firegate/pkg/profile"
)

func ch5FireMatch() match.Match {
	return match.Match{
		RequirementID: "CH5-5.5.1",
		Chapter:       5,
		Section:       "5.5.1",
		Category:      catalog.CategoryFireEquipment,
		Title:         "מטפי כיבוי",
		Priority:      match.PriorityCritical,
	}
}

func ch6FireMatch() match.Match {
	return match.Match{
		RequirementID: "CH6-6.13.1",
		Chapter:       6,
		Section:       "6.13.1",
		Category:      catalog.CategoryFireEquipment,
		Title:         "גלגלון כיבוי",
		Priority:      match.PriorityCritical,
	}
}

func gasMatch(priority int) match.Match {
	return match.Match{
		RequirementID: "CH6-6.23.1",
		Chapter:       6,
		Section:       "6.23.1",
		Category:      catalog.CategoryGas,
		Title:         "מערכת גז",
		Priority:      priority,
	}
}

func signageMatch(priority int) match.Match {
	return match.Match{
		RequirementID: "CH6-6.30.1",
		Chapter:       6,
		Section:       "6.30.1",
		Category:      catalog.CategorySignage,
		Title:         "שילוט הכוונה",
		Priority:      priority,
	}
}

func newProcessor() *Processor {
	return NewProcessor(catalog.DefaultThresholds(), nil)
}

func ids(matches []match.Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.RequirementID)
	}
	return out
}

func TestExactThresholdPrefersChapter5(t *testing.T) {
	// Profile exactly at both chapter-5 thresholds with conflicting
	// fire_equipment matches from both chapters: only the chapter-5
	// match survives and a conflict is recorded.
	p := newProcessor()
	prof := profile.New(150, 50, profile.FeatureGasUsage)

	out := p.Process([]match.Match{ch5FireMatch(), ch6FireMatch()}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, "CH5-5.5.1", out[0].RequirementID)

	conflicts := p.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, ConflictChapterOverlap, conflicts[0].Kind)
	assert.Equal(t, "CH5-5.5.1", conflicts[0].PreferredID)
	assert.Equal(t, "CH6-6.13.1", conflicts[0].RequirementID2)
}

func TestSizeOnlyAtThresholdTriggersBoundary(t *testing.T) {
	// The boundary stage triggers on size OR capacity at threshold,
	// even when the other dimension is far from any boundary.
	p := newProcessor()
	prof := profile.New(150, 300)

	out := p.Process([]match.Match{ch5FireMatch(), ch6FireMatch()}, prof)

	// Boundary removal keeps chapter 5; reconciliation then selects
	// chapter 6 as primary (capacity above threshold) but no chapter-6
	// matches remain to conflict with.
	assert.Contains(t, ids(out), "CH5-5.5.1")
	assert.NotContains(t, ids(out), "CH6-6.13.1")
}

func TestOneAboveThresholdFlipsPrimaryToChapter6(t *testing.T) {
	p := newProcessor()
	prof := profile.New(151, 51)

	out := p.Process([]match.Match{ch5FireMatch(), ch6FireMatch()}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, "CH6-6.13.1", out[0].RequirementID)

	conflicts := p.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, "CH6-6.13.1", conflicts[0].PreferredID)
}

func TestNonConflictingSecondaryMatchesSurvive(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30)

	// A chapter-6 gas match does not conflict with a chapter-5
	// fire_equipment match, so both survive with chapter 5 primary.
	out := p.Process([]match.Match{ch5FireMatch(), gasMatch(match.PriorityImportant)}, prof)

	assert.ElementsMatch(t, []string{"CH5-5.5.1", "CH6-6.23.1"}, ids(out))
	assert.Empty(t, p.Conflicts())
}

func TestIdenticalTitleAcrossChaptersConflicts(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30)

	a := ch5FireMatch()
	b := gasMatch(match.PriorityImportant)
	b.Title = a.Title // same title, different chapter, categories differ

	out := p.Process([]match.Match{a, b}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, a.RequirementID, out[0].RequirementID)
	assert.Len(t, p.Conflicts(), 1)
}

func TestUntitledCrossChapterMatchesConflict(t *testing.T) {
	// Title equality also holds between two untitled requirements, so
	// untitled matches from different chapters resolve to the primary.
	p := newProcessor()
	prof := profile.New(80, 30)

	a := ch5FireMatch()
	a.Title = ""
	b := gasMatch(match.PriorityImportant)
	b.Title = ""

	out := p.Process([]match.Match{a, b}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, a.RequirementID, out[0].RequirementID)
	assert.Len(t, p.Conflicts(), 1)
}

func TestGasFeatureForcesGasPriorityCritical(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30, profile.FeatureGasUsage)

	out := p.Process([]match.Match{gasMatch(match.PriorityImportant)}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, match.PriorityCritical, out[0].Priority)
}

func TestGasPriorityUnchangedWithoutFeature(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30)

	out := p.Process([]match.Match{gasMatch(match.PriorityImportant)}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, match.PriorityImportant, out[0].Priority)
}

func TestDeliveryAddsSignageReason(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30, profile.FeatureDelivery)

	out := p.Process([]match.Match{signageMatch(match.PriorityImportant), ch5FireMatch()}, prof)

	for _, m := range out {
		switch m.Category {
		case catalog.CategorySignage:
			assert.Contains(t, m.MatchReasons, reasonDelivery)
			assert.Equal(t, match.PriorityImportant, m.Priority, "delivery must not change priority")
		default:
			assert.NotContains(t, m.MatchReasons, reasonDelivery)
		}
	}
}

func TestAlcoholAloneChangesNothing(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30, profile.FeatureAlcohol)

	in := []match.Match{signageMatch(match.PriorityImportant), ch5FireMatch()}
	out := p.Process(in, prof)

	require.Len(t, out, 2)
	for _, m := range out {
		assert.Empty(t, m.MatchReasons)
	}
}

func TestComplexBusinessEscalation(t *testing.T) {
	// Three features: a priority-3 signage match becomes priority 2
	// with the complex-business justification.
	p := newProcessor()
	prof := profile.New(80, 30,
		profile.FeatureGasUsage, profile.FeatureDelivery, profile.FeatureAlcohol)

	out := p.Process([]match.Match{signageMatch(match.PriorityRecommended)}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, match.PriorityImportant, out[0].Priority)
	assert.Contains(t, out[0].MatchReasons, reasonComplexBusiness)
}

func TestComplexBusinessLeavesNoUnescalatedMatch(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30,
		profile.FeatureGasUsage, profile.FeatureDelivery, profile.FeatureMeat)

	in := []match.Match{
		ch5FireMatch(),
		gasMatch(match.PriorityImportant),
		signageMatch(match.PriorityRecommended),
	}
	inPriorities := make(map[string]int)
	for _, m := range in {
		inPriorities[m.RequirementID] = m.Priority
	}

	out := p.Process(in, prof)
	for _, m := range out {
		if inPriorities[m.RequirementID] > match.PriorityCritical {
			assert.Less(t, m.Priority, inPriorities[m.RequirementID],
				"match %s must be escalated", m.RequirementID)
		} else {
			assert.Equal(t, match.PriorityCritical, m.Priority)
		}
	}
}

func TestTwoFeaturesDoNotEscalate(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30, profile.FeatureDelivery, profile.FeatureAlcohol)

	out := p.Process([]match.Match{signageMatch(match.PriorityRecommended)}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, match.PriorityRecommended, out[0].Priority)
	assert.NotContains(t, out[0].MatchReasons, reasonComplexBusiness)
}

func TestEscalationFloorsAtCritical(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30,
		profile.FeatureGasUsage, profile.FeatureDelivery, profile.FeatureAlcohol)

	out := p.Process([]match.Match{ch5FireMatch()}, prof)

	require.Len(t, out, 1)
	assert.Equal(t, match.PriorityCritical, out[0].Priority)
	assert.NotContains(t, out[0].MatchReasons, reasonComplexBusiness)
}

func TestDeduplicationFirstOccurrenceWins(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30, profile.FeatureGasUsage)

	first := gasMatch(match.PriorityImportant)
	dup := gasMatch(match.PriorityRecommended)

	out := p.Process([]match.Match{first, dup}, prof)

	require.Len(t, out, 1)
	// The surviving instance retains the gas elevation applied earlier
	// in the pipeline.
	assert.Equal(t, match.PriorityCritical, out[0].Priority)

	// Re-running the pipeline on its own output stays stable.
	p.Reset()
	again := p.Process(out, prof)
	assert.Equal(t, out, again)
}

func TestFinalOrdering(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30)

	out := p.Process([]match.Match{
		signageMatch(match.PriorityRecommended),
		gasMatch(match.PriorityImportant),
		ch5FireMatch(),
	}, prof)

	require.Len(t, out, 3)
	assert.Equal(t, []string{"CH5-5.5.1", "CH6-6.23.1", "CH6-6.30.1"}, ids(out))
}

func TestProcessDoesNotMutateInput(t *testing.T) {
	p := newProcessor()
	prof := profile.New(80, 30, profile.FeatureGasUsage)

	in := []match.Match{gasMatch(match.PriorityImportant)}
	p.Process(in, prof)

	assert.Equal(t, match.PriorityImportant, in[0].Priority, "input must stay untouched")
}

func TestConflictLogAccumulatesUntilReset(t *testing.T) {
	p := newProcessor()
	prof := profile.New(151, 51)

	p.Process([]match.Match{ch5FireMatch(), ch6FireMatch()}, prof)
	p.Process([]match.Match{ch5FireMatch(), ch6FireMatch()}, prof)
	assert.Len(t, p.Conflicts(), 2, "log accumulates across Process calls")

	p.Reset()
	assert.Empty(t, p.Conflicts())
}

func TestCustomThresholdsFromCatalog(t *testing.T) {
	// Regulatory threshold changes are data, not code: a catalog with
	// different cutoffs moves the boundary behavior with it.
	p := NewProcessor(catalog.Thresholds{Chapter5MaxSqm: 200, Chapter5MaxPeople: 80}, nil)
	prof := profile.New(200, 30)

	out := p.Process([]match.Match{ch5FireMatch(), ch6FireMatch()}, prof)
	require.Len(t, out, 1)
	assert.Equal(t, "CH5-5.5.1", out[0].RequirementID)
}

func TestCompletenessWarnings(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewProcessor(catalog.DefaultThresholds(), zap.New(core))
	prof := profile.New(80, 30, profile.FeatureGasUsage)

	// No fire_equipment, no certifications, no gas despite the gas
	// feature: three warnings, result untouched.
	out := p.Process([]match.Match{signageMatch(match.PriorityImportant)}, prof)

	require.Len(t, out, 1)
	entries := logs.All()
	require.Len(t, entries, 3)

	var messages []string
	for _, e := range entries {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "mandatory category missing from result set")
	assert.Contains(t, messages, "gas usage declared but no gas requirements matched")
}

func TestNoWarningsForCompleteResultSet(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewProcessor(catalog.DefaultThresholds(), zap.New(core))
	prof := profile.New(80, 30, profile.FeatureGasUsage)

	certMatch := match.Match{
		RequirementID: "CH5-5.9.1",
		Chapter:       5,
		Section:       "5.9.1",
		Category:      catalog.CategoryCertifications,
		Priority:      match.PriorityCritical,
	}
	p.Process([]match.Match{ch5FireMatch(), certMatch, gasMatch(match.PriorityCritical)}, prof)

	assert.Empty(t, logs.All())
}
