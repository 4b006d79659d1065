// Package profile defines the business profile consumed by the
// requirement matching pipeline.
package profile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Domain ceilings for profile numeric fields. Values above these are
// rejected as structurally invalid rather than matched against the
// catalog.
const (
	MaxSizeSqm      = 10000
	MaxCapacity     = 5000
	DefaultBusiness = "restaurant"
)

// Feature represents a declared business characteristic that can gate
// or escalate requirement applicability.
type Feature string

const (
	// FeatureGasUsage indicates the business uses gas installations.
	FeatureGasUsage Feature = "gas_usage"
	// FeatureDelivery indicates the business offers delivery service.
	FeatureDelivery Feature = "delivery"
	// FeatureAlcohol indicates the business serves alcoholic beverages.
	FeatureAlcohol Feature = "alcohol"
	// FeatureMeat indicates the business serves meat.
	FeatureMeat Feature = "meat"
)

// AllFeatures lists every recognized feature tag.
var AllFeatures = []Feature{FeatureGasUsage, FeatureDelivery, FeatureAlcohol, FeatureMeat}

// featureHebrew maps feature tags to their Hebrew display names used in
// justification strings and renderings.
var featureHebrew = map[Feature]string{
	FeatureGasUsage: "שימוש בגז",
	FeatureDelivery: "משלוחים",
	FeatureAlcohol:  "משקאות משכרים",
	FeatureMeat:     "מגיש בשר",
}

// Valid reports whether the feature is a recognized tag.
func (f Feature) Valid() bool {
	switch f {
	case FeatureGasUsage, FeatureDelivery, FeatureAlcohol, FeatureMeat:
		return true
	}
	return false
}

// Hebrew returns the Hebrew display name for the feature. Unknown tags
// fall back to the raw tag text.
func (f Feature) Hebrew() string {
	if name, ok := featureHebrew[f]; ok {
		return name
	}
	return string(f)
}

// Profile describes a single business for requirement matching. It is
// request-scoped input: built once, validated, then treated as
// read-only by the pipeline.
type Profile struct {
	SizeSqm        int       `json:"size_sqm" yaml:"size_sqm"`
	CapacityPeople int       `json:"capacity_people" yaml:"capacity_people"`
	Features       []Feature `json:"special_features,omitempty" yaml:"special_features,omitempty"`
	BusinessType   string    `json:"business_type,omitempty" yaml:"business_type,omitempty"`
	BusinessName   string    `json:"business_name,omitempty" yaml:"business_name,omitempty"`
	Notes          string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// New creates a profile with the default business type.
func New(sizeSqm, capacityPeople int, features ...Feature) *Profile {
	return &Profile{
		SizeSqm:        sizeSqm,
		CapacityPeople: capacityPeople,
		Features:       features,
		BusinessType:   DefaultBusiness,
	}
}

// Validate checks the profile invariants: strictly positive numeric
// fields within domain ceilings, recognized feature tags, and no
// duplicate features. A profile that fails validation must not enter
// the matching pipeline.
func (p *Profile) Validate() error {
	if p.SizeSqm <= 0 {
		return fmt.Errorf("size_sqm must be positive, got %d", p.SizeSqm)
	}
	if p.SizeSqm > MaxSizeSqm {
		return fmt.Errorf("size_sqm %d exceeds maximum %d", p.SizeSqm, MaxSizeSqm)
	}
	if p.CapacityPeople <= 0 {
		return fmt.Errorf("capacity_people must be positive, got %d", p.CapacityPeople)
	}
	if p.CapacityPeople > MaxCapacity {
		return fmt.Errorf("capacity_people %d exceeds maximum %d", p.CapacityPeople, MaxCapacity)
	}

	seen := make(map[Feature]bool)
	for _, f := range p.Features {
		if !f.Valid() {
			return fmt.Errorf("unknown special feature %q", f)
		}
		if seen[f] {
			return fmt.Errorf("duplicate special feature %q", f)
		}
		seen[f] = true
	}

	return nil
}

// HasFeature reports whether the profile declares the given feature.
func (p *Profile) HasFeature(f Feature) bool {
	for _, pf := range p.Features {
		if pf == f {
			return true
		}
	}
	return false
}

// FeatureCount returns the number of distinct declared features.
func (p *Profile) FeatureCount() int {
	seen := make(map[Feature]bool)
	for _, f := range p.Features {
		seen[f] = true
	}
	return len(seen)
}

// Type returns the business type, defaulting when unset.
func (p *Profile) Type() string {
	if p.BusinessType == "" {
		return DefaultBusiness
	}
	return p.BusinessType
}

// FeaturesHebrew returns the Hebrew display names of declared features
// in declaration order.
func (p *Profile) FeaturesHebrew() []string {
	names := make([]string, 0, len(p.Features))
	for _, f := range p.Features {
		names = append(names, f.Hebrew())
	}
	return names
}

// String returns a compact single-line description for logging.
func (p *Profile) String() string {
	features := "none"
	if len(p.Features) > 0 {
		parts := make([]string, 0, len(p.Features))
		for _, f := range p.Features {
			parts = append(parts, string(f))
		}
		features = strings.Join(parts, ",")
	}
	return fmt.Sprintf("%dsqm/%dppl features=%s type=%s",
		p.SizeSqm, p.CapacityPeople, features, p.Type())
}

// ToJSON serializes the profile to indented JSON.
func (p *Profile) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// FromJSON parses a profile from JSON.
func FromJSON(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}
