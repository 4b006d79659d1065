// Package engine wires the full evaluation pipeline: match, rule
// processing, and formatting. It is the surface intended for service
// layers that should not assemble the stages themselves.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/coolbeans/firegate/pkg/catalog"
	"github.com/coolbeans/firegate/pkg/format"
	"github.com/coolbeans/firegate/pkg/match"
	"github.com/coolbeans/firegate/pkg/profile"
	"github.com/coolbeans/firegate/pkg/rules"
)

// Engine evaluates business profiles against a loaded catalog. The
// catalog is shared and read-only; each Evaluate call builds its own
// rule processor, so an Engine is safe for concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	matcher *match.Matcher
	logger  *zap.Logger
}

// New creates an engine over a loaded catalog. The logger may be nil.
func New(c *catalog.Catalog, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog: c,
		matcher: match.NewMatcher(c, logger),
		logger:  logger,
	}
}

// Evaluate runs the full pipeline for one business profile. The profile
// is validated first; a structurally invalid profile never reaches
// matching.
func (e *Engine) Evaluate(p *profile.Profile) (*format.Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid business profile: %w", err)
	}

	matches, err := e.matcher.Match(p)
	if err != nil {
		return nil, err
	}

	processor := rules.NewProcessor(e.catalog.Thresholds, e.logger)
	processed := processor.Process(matches, p)

	return format.Format(processed, p, processor.Conflicts()), nil
}
