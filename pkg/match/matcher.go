package match

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/coolbeans/firegate/pkg/catalog"
	"github.com/coolbeans/firegate/pkg/profile"
)

// ErrCatalogUnavailable is returned when matching is attempted without
// a loaded catalog. Callers must distinguish this from a catalog that
// yields zero applicable requirements.
var ErrCatalogUnavailable = errors.New("no requirement catalog loaded")

// Size and capacity cutoffs above which signage and electrical
// requirements are elevated to the important tier.
const (
	largeSizeSqm       = 300
	largeCapacityCount = 200
)

// Matcher evaluates every catalog requirement against a business
// profile. The catalog is shared and read-only; a Matcher is safe for
// concurrent use.
type Matcher struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewMatcher creates a matcher over a loaded catalog. The logger may be
// nil.
func NewMatcher(c *catalog.Catalog, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{catalog: c, logger: logger}
}

// Match evaluates all catalog requirements against the profile and
// returns the applicable ones sorted by (priority, chapter, section).
// The profile must already be validated.
func (m *Matcher) Match(p *profile.Profile) ([]Match, error) {
	if m.catalog.Len() == 0 {
		return nil, ErrCatalogUnavailable
	}

	m.logger.Info("matching requirements", zap.String("profile", p.String()),
		zap.Int("catalog_size", m.catalog.Len()))

	matches := make([]Match, 0)
	for i := range m.catalog.Requirements {
		if match, ok := m.evaluate(&m.catalog.Requirements[i], p); ok {
			matches = append(matches, match)
		}
	}

	SortMatches(matches)

	m.logger.Info("matching complete", zap.Int("matches", len(matches)))
	return matches, nil
}

// evaluate runs the three applicability gates for one requirement. All
// gates must pass; justification strings are collected only for gates
// that pass non-trivially.
func (m *Matcher) evaluate(req *catalog.Requirement, p *profile.Profile) (Match, bool) {
	var reasons []string

	if !req.SizeRange.Contains(p.SizeSqm) {
		return Match{}, false
	}
	if reason := sizeReason(req.SizeRange, p.SizeSqm); reason != "" {
		reasons = append(reasons, reason)
	}

	if !req.CapacityRange.Contains(p.CapacityPeople) {
		return Match{}, false
	}
	if reason := capacityReason(req.CapacityRange, p.CapacityPeople); reason != "" {
		reasons = append(reasons, reason)
	}

	matched, ok := featureGate(req.RequiredFeatures, p)
	if !ok {
		return Match{}, false
	}
	if reason := featureReason(matched); reason != "" {
		reasons = append(reasons, reason)
	}

	return Match{
		RequirementID: req.ID,
		Chapter:       req.Chapter,
		Section:       req.Section,
		Category:      req.Category,
		Title:         req.Title,
		BodyText:      req.BodyText,
		MatchReasons:  reasons,
		Priority:      initialPriority(req.Category, p),
	}, true
}

// sizeReason renders the justification for a non-trivially satisfied
// size gate, naming the concrete bound that was met.
func sizeReason(r catalog.SizeRange, sizeSqm int) string {
	if !r.Bounded() {
		return ""
	}
	switch {
	case r.MinSqm > 0 && r.MaxSqm < catalog.UnboundedSqm:
		return fmt.Sprintf("גודל העסק (%d מ\"ר) בטווח %d-%d מ\"ר", sizeSqm, r.MinSqm, r.MaxSqm)
	case r.MinSqm > 0:
		return fmt.Sprintf("גודל העסק (%d מ\"ר) מעל %d מ\"ר", sizeSqm, r.MinSqm)
	default:
		return fmt.Sprintf("גודל העסק (%d מ\"ר) עד %d מ\"ר", sizeSqm, r.MaxSqm)
	}
}

// capacityReason renders the justification for a non-trivially
// satisfied capacity gate.
func capacityReason(r catalog.CapacityRange, people int) string {
	if !r.Bounded() {
		return ""
	}
	switch {
	case r.MinPeople > 0 && r.MaxPeople < catalog.UnboundedPeople:
		return fmt.Sprintf("תפוסת העסק (%d איש) בטווח %d-%d איש", people, r.MinPeople, r.MaxPeople)
	case r.MinPeople > 0:
		return fmt.Sprintf("תפוסת העסק (%d איש) מעל %d איש", people, r.MinPeople)
	default:
		return fmt.Sprintf("תפוסת העסק (%d איש) עד %d איש", people, r.MaxPeople)
	}
}

// featureGate checks the feature gate and returns which required
// features the profile declares, in requirement order. An empty
// required set is vacuously satisfied.
func featureGate(required []string, p *profile.Profile) ([]profile.Feature, bool) {
	if len(required) == 0 {
		return nil, true
	}

	var matched []profile.Feature
	for _, tag := range required {
		f := profile.Feature(tag)
		if p.HasFeature(f) {
			matched = append(matched, f)
		}
	}
	return matched, len(matched) > 0
}

// featureReason renders the justification naming the matched features.
func featureReason(matched []profile.Feature) string {
	if len(matched) == 0 {
		return ""
	}
	names := make([]string, 0, len(matched))
	for _, f := range matched {
		names = append(names, f.Hebrew())
	}
	return "מאפיינים מיוחדים: " + strings.Join(names, ", ")
}

// defaultPriorities is the fixed category to priority table used after
// the profile-driven elevations.
var defaultPriorities = map[catalog.Category]int{
	catalog.CategoryFireEquipment:  PriorityCritical,
	catalog.CategoryElectrical:     PriorityCritical,
	catalog.CategoryCertifications: PriorityCritical,
	catalog.CategoryGas:            PriorityImportant,
	catalog.CategorySignage:        PriorityImportant,
	catalog.CategoryGeneral:        PriorityRecommended,
}

// initialPriority assigns the pre-processing priority for a matched
// requirement.
func initialPriority(c catalog.Category, p *profile.Profile) int {
	switch c {
	case catalog.CategoryFireEquipment, catalog.CategoryElectrical, catalog.CategoryCertifications:
		return PriorityCritical
	}

	if c == catalog.CategoryGas && p.HasFeature(profile.FeatureGasUsage) {
		return PriorityCritical
	}

	if p.SizeSqm > largeSizeSqm || p.CapacityPeople > largeCapacityCount {
		if c == catalog.CategorySignage || c == catalog.CategoryElectrical {
			return PriorityImportant
		}
	}

	if priority, ok := defaultPriorities[c]; ok {
		return priority
	}
	return PriorityRecommended
}

// SortMatches orders matches ascending by (priority, chapter, section).
// Lower priority numbers sort first.
func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Priority != matches[j].Priority {
			return matches[i].Priority < matches[j].Priority
		}
		if matches[i].Chapter != matches[j].Chapter {
			return matches[i].Chapter < matches[j].Chapter
		}
		return matches[i].Section < matches[j].Section
	})
}
