package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/firegate/pkg/catalog"
	"github.com/coolbeans/firegate/pkg/match"
	"github.com/coolbeans/firegate/pkg/profile"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	reqs := []catalog.Requirement{
		{
			ID: "CH5-5.5.1", Chapter: 5, Section: "5.5.1",
			Category:      catalog.CategoryFireEquipment,
			Title:         "מטפי כיבוי",
			BodyText:      "בעסק יוצבו מטפי כיבוי",
			SizeRange:     catalog.SizeRange{MinSqm: 0, MaxSqm: 150},
			CapacityRange: catalog.CapacityRange{MinPeople: 0, MaxPeople: 50},
		},
		{
			ID: "CH6-6.13.1", Chapter: 6, Section: "6.13.1",
			Category:      catalog.CategoryFireEquipment,
			Title:         "גלגלון כיבוי",
			BodyText:      "יותקן גלגלון כיבוי אש",
			SizeRange:     catalog.SizeRange{MinSqm: 120, MaxSqm: 300},
			CapacityRange: catalog.CapacityRange{MinPeople: 0, MaxPeople: 200},
		},
		{
			ID: "CH6-6.23.1", Chapter: 6, Section: "6.23.1",
			Category:         catalog.CategoryGas,
			Title:            "מערכת גז",
			BodyText:         "מערכת הגז תענה לנדרש בתקן",
			RequiredFeatures: []string{"gas_usage"},
		},
		{
			ID: "CH5-5.9.1", Chapter: 5, Section: "5.9.1",
			Category:      catalog.CategoryCertifications,
			Title:         "אישור גורם מוסמך",
			BodyText:      "יוצג אישור גורם מוסמך",
			SizeRange:     catalog.SizeRange{MinSqm: 0, MaxSqm: 150},
			CapacityRange: catalog.CapacityRange{MinPeople: 0, MaxPeople: 50},
		},
	}
	c, err := catalog.New(reqs, catalog.DefaultThresholds())
	require.NoError(t, err)
	return c
}

func TestEvaluateSmallBusiness(t *testing.T) {
	e := New(testCatalog(t), nil)

	result, err := e.Evaluate(profile.New(80, 30))
	require.NoError(t, err)

	var ids []string
	for _, r := range result.Requirements {
		ids = append(ids, r.RequirementID)
	}
	assert.ElementsMatch(t, []string{"CH5-5.5.1", "CH5-5.9.1"}, ids)
	assert.Equal(t, 2, result.Statistics.ByPriority.Critical)
}

func TestEvaluateRejectsInvalidProfile(t *testing.T) {
	e := New(testCatalog(t), nil)

	_, err := e.Evaluate(profile.New(0, 30))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid business profile")
}

func TestEvaluateEmptyCatalog(t *testing.T) {
	e := New(nil, nil)

	_, err := e.Evaluate(profile.New(80, 30))
	assert.ErrorIs(t, err, match.ErrCatalogUnavailable)
}

func TestEvaluateExactThresholdBoundary(t *testing.T) {
	// At exactly 150sqm/50ppl both fire_equipment requirements gate in,
	// but chapter 5 is authoritative at the boundary: the chapter-6
	// requirement is dropped and reported as a resolved conflict.
	e := New(testCatalog(t), nil)

	result, err := e.Evaluate(profile.New(150, 50, profile.FeatureGasUsage))
	require.NoError(t, err)

	var ids []string
	for _, r := range result.Requirements {
		ids = append(ids, r.RequirementID)
	}
	assert.Contains(t, ids, "CH5-5.5.1")
	assert.NotContains(t, ids, "CH6-6.13.1")
	require.Len(t, result.ConflictsResolved, 1)
	assert.Equal(t, "CH5-5.5.1", result.ConflictsResolved[0].PreferredID)

	// Gas feature keeps the gas requirement critical.
	for _, r := range result.Requirements {
		if r.Category == catalog.CategoryGas {
			assert.Equal(t, match.PriorityCritical, r.Priority)
		}
	}
}

func TestEvaluateConflictLogIsRequestScoped(t *testing.T) {
	// Each Evaluate builds a fresh processor: conflicts never leak
	// between independent evaluations.
	e := New(testCatalog(t), nil)

	first, err := e.Evaluate(profile.New(150, 50))
	require.NoError(t, err)
	require.Len(t, first.ConflictsResolved, 1)

	second, err := e.Evaluate(profile.New(80, 30))
	require.NoError(t, err)
	assert.Empty(t, second.ConflictsResolved)
}

func TestEvaluateConcurrent(t *testing.T) {
	e := New(testCatalog(t), nil)

	profiles := []*profile.Profile{
		profile.New(80, 30),
		profile.New(150, 50, profile.FeatureGasUsage),
		profile.New(200, 100, profile.FeatureGasUsage, profile.FeatureDelivery),
		profile.New(400, 250, profile.FeatureGasUsage, profile.FeatureDelivery, profile.FeatureAlcohol),
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		p := profiles[i%len(profiles)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := e.Evaluate(p)
			assert.NoError(t, err)
			assert.NotNil(t, result)
		}()
	}
	wg.Wait()
}

func TestEvaluateDeterministic(t *testing.T) {
	e := New(testCatalog(t), nil)
	p := profile.New(150, 50, profile.FeatureGasUsage, profile.FeatureDelivery, profile.FeatureAlcohol)

	first, err := e.Evaluate(p)
	require.NoError(t, err)
	second, err := e.Evaluate(p)
	require.NoError(t, err)

	assert.Equal(t, first.Requirements, second.Requirements)
	assert.Equal(t, first.Statistics, second.Statistics)
	assert.Equal(t, first.ConflictsResolved, second.ConflictsResolved)
}
