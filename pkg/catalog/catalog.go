// Package catalog loads and holds the regulatory requirement catalog
// produced by the offline extraction step. The catalog is loaded once,
// validated eagerly, and treated as read-only for the lifetime of the
// process.
package catalog

import (
	"fmt"

	"github.com/coolbeans/firegate/pkg/profile"
)

// Unbounded sentinels for applicability ranges. The extraction step
// emits these for requirements with no stated size or capacity limit;
// missing maxima normalize to them at load time.
const (
	UnboundedSqm    = 9999
	UnboundedPeople = 9999
)

// Category classifies a requirement by regulatory concern.
type Category string

const (
	// CategoryFireEquipment covers extinguishers, hoses, sprinklers.
	CategoryFireEquipment Category = "fire_equipment"
	// CategoryElectrical covers electrical systems and shutoffs.
	CategoryElectrical Category = "electrical"
	// CategoryGas covers gas installations and LPG handling.
	CategoryGas Category = "gas"
	// CategorySignage covers exit and safety signage.
	CategorySignage Category = "signage"
	// CategoryCertifications covers required approvals and licenses.
	CategoryCertifications Category = "certifications"
	// CategoryGeneral covers requirements with no specific class.
	CategoryGeneral Category = "general"
)

// AllCategories lists every recognized requirement category.
var AllCategories = []Category{
	CategoryFireEquipment,
	CategoryElectrical,
	CategoryGas,
	CategorySignage,
	CategoryCertifications,
	CategoryGeneral,
}

var categoryHebrew = map[Category]string{
	CategoryFireEquipment:  "ציוד כיבוי",
	CategoryElectrical:     "מערכות חשמל",
	CategoryGas:            "מערכות גז",
	CategorySignage:        "שילוט",
	CategoryCertifications: "אישורים",
	CategoryGeneral:        "דרישות כלליות",
}

// Valid reports whether the category is a recognized value.
func (c Category) Valid() bool {
	switch c {
	case CategoryFireEquipment, CategoryElectrical, CategoryGas,
		CategorySignage, CategoryCertifications, CategoryGeneral:
		return true
	}
	return false
}

// Hebrew returns the Hebrew display name for the category. Unknown
// values fall back to the raw text.
func (c Category) Hebrew() string {
	if name, ok := categoryHebrew[c]; ok {
		return name
	}
	return string(c)
}

// SizeRange is an inclusive floor-area applicability window in square
// meters.
type SizeRange struct {
	MinSqm int `json:"min_sqm" yaml:"min_sqm"`
	MaxSqm int `json:"max_sqm" yaml:"max_sqm"`
}

// Contains reports whether the size falls inside the range, bounds
// inclusive.
func (r SizeRange) Contains(sizeSqm int) bool {
	return r.MinSqm <= sizeSqm && sizeSqm <= r.MaxSqm
}

// Bounded reports whether the range is narrower than the unbounded
// default on either end.
func (r SizeRange) Bounded() bool {
	return r.MinSqm > 0 || r.MaxSqm < UnboundedSqm
}

// CapacityRange is an inclusive occupancy applicability window in
// people.
type CapacityRange struct {
	MinPeople int `json:"min_people" yaml:"min_people"`
	MaxPeople int `json:"max_people" yaml:"max_people"`
}

// Contains reports whether the capacity falls inside the range, bounds
// inclusive.
func (r CapacityRange) Contains(people int) bool {
	return r.MinPeople <= people && people <= r.MaxPeople
}

// Bounded reports whether the range is narrower than the unbounded
// default on either end.
func (r CapacityRange) Bounded() bool {
	return r.MinPeople > 0 || r.MaxPeople < UnboundedPeople
}

// Requirement is a single extracted regulatory requirement. Standards
// and Certifications are opaque pass-through metadata; they play no
// part in matching.
type Requirement struct {
	ID               string        `json:"id" yaml:"id"`
	Chapter          int           `json:"chapter" yaml:"chapter"`
	Section          string        `json:"section" yaml:"section"`
	Category         Category      `json:"category" yaml:"category"`
	Title            string        `json:"title" yaml:"title"`
	BodyText         string        `json:"body_text" yaml:"body_text"`
	SizeRange        SizeRange     `json:"size_range" yaml:"size_range"`
	CapacityRange    CapacityRange `json:"capacity_range" yaml:"capacity_range"`
	RequiredFeatures []string      `json:"required_features,omitempty" yaml:"required_features,omitempty"`
	Standards        []string      `json:"standards,omitempty" yaml:"standards,omitempty"`
	Certifications   []string      `json:"certifications,omitempty" yaml:"certifications,omitempty"`
}

// validate checks a single requirement entry at load time. Malformed
// entries are rejected here, never tolerated mid-pipeline.
func (r *Requirement) validate() error {
	if r.ID == "" {
		return fmt.Errorf("requirement id is required")
	}
	if r.Chapter != 5 && r.Chapter != 6 {
		return fmt.Errorf("chapter must be 5 or 6, got %d", r.Chapter)
	}
	if r.Section == "" {
		return fmt.Errorf("section is required")
	}
	if !r.Category.Valid() {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if r.SizeRange.MinSqm < 0 || r.SizeRange.MinSqm > r.SizeRange.MaxSqm {
		return fmt.Errorf("invalid size range [%d,%d]", r.SizeRange.MinSqm, r.SizeRange.MaxSqm)
	}
	if r.CapacityRange.MinPeople < 0 || r.CapacityRange.MinPeople > r.CapacityRange.MaxPeople {
		return fmt.Errorf("invalid capacity range [%d,%d]", r.CapacityRange.MinPeople, r.CapacityRange.MaxPeople)
	}
	for _, tag := range r.RequiredFeatures {
		if !profile.Feature(tag).Valid() {
			return fmt.Errorf("unknown required feature %q", tag)
		}
	}
	return nil
}

// Metadata carries provenance information from the extraction step.
// Opaque to the engine.
type Metadata struct {
	SourceFile        string `json:"source_file,omitempty" yaml:"source_file,omitempty"`
	ExtractionDate    string `json:"extraction_date,omitempty" yaml:"extraction_date,omitempty"`
	ChaptersProcessed []int  `json:"chapters_processed,omitempty" yaml:"chapters_processed,omitempty"`
}

// Catalog is the validated, in-memory requirement catalog. Safe for
// concurrent readers; never mutated after load.
type Catalog struct {
	Metadata     Metadata
	Requirements []Requirement
	Thresholds   Thresholds

	byID map[string]*Requirement
}

// Len returns the number of requirements in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Requirements)
}

// Get returns the requirement with the given id.
func (c *Catalog) Get(id string) (*Requirement, bool) {
	if c == nil {
		return nil, false
	}
	req, ok := c.byID[id]
	return req, ok
}

// index builds the id lookup map. Called once at load.
func (c *Catalog) index() {
	c.byID = make(map[string]*Requirement, len(c.Requirements))
	for i := range c.Requirements {
		c.byID[c.Requirements[i].ID] = &c.Requirements[i]
	}
}
