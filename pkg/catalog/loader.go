package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the on-disk catalog layout shared by the JSON and YAML
// encodings.
type document struct {
	Metadata     Metadata      `json:"metadata" yaml:"metadata"`
	Thresholds   Thresholds    `json:"thresholds" yaml:"thresholds"`
	Requirements []Requirement `json:"requirements" yaml:"requirements"`
}

// Load reads a catalog file, choosing the decoder by extension
// (.yaml/.yml for YAML, anything else JSON).
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}
	return build(&doc)
}

// ParseYAML decodes and validates a YAML catalog document.
func ParseYAML(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	return build(&doc)
}

// New assembles a catalog from already-decoded requirements, applying
// the same validation and range normalization as the file loaders.
func New(requirements []Requirement, thresholds Thresholds) (*Catalog, error) {
	return build(&document{Requirements: requirements, Thresholds: thresholds})
}

// build validates the decoded document and assembles the catalog.
func build(doc *document) (*Catalog, error) {
	if len(doc.Requirements) == 0 {
		return nil, fmt.Errorf("catalog contains no requirements")
	}

	seen := make(map[string]bool, len(doc.Requirements))
	for i := range doc.Requirements {
		req := &doc.Requirements[i]
		normalizeRanges(req)

		if err := req.validate(); err != nil {
			return nil, fmt.Errorf("requirement %d (%s): %w", i, req.ID, err)
		}
		if seen[req.ID] {
			return nil, fmt.Errorf("duplicate requirement id %q", req.ID)
		}
		seen[req.ID] = true
	}

	doc.Thresholds.applyDefaults()

	c := &Catalog{
		Metadata:     doc.Metadata,
		Requirements: doc.Requirements,
		Thresholds:   doc.Thresholds,
	}
	c.index()
	return c, nil
}

// normalizeRanges fills unbounded sentinels for absent maxima so every
// range comparison is a plain inclusive check.
func normalizeRanges(req *Requirement) {
	if req.SizeRange.MaxSqm == 0 {
		req.SizeRange.MaxSqm = UnboundedSqm
	}
	if req.CapacityRange.MaxPeople == 0 {
		req.CapacityRange.MaxPeople = UnboundedPeople
	}
}
