package reconciler

import (
	"strings"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
)

// Patterns is the filename predicate set used by cluster expansion.
type Patterns struct {
	// Marker is the underscore-delimited token a principal portrait contains.
	Marker string `yaml:"marker" json:"marker"`

	// MaxDepth is the most segments allowed after the marker.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`

	// VariantSuffix marks thumbnail variants.
	VariantSuffix string `yaml:"variant_suffix" json:"variant_suffix"`

	// Denylist holds stem prefixes of categories never expanded.
	Denylist []string `yaml:"denylist" json:"denylist"`
}

// DefaultPatterns returns the stock portrait naming rules.
func DefaultPatterns() Patterns {
	return Patterns{
		Marker:        constants.PortraitMarker,
		MaxDepth:      constants.MaxSegmentsAfterMarker,
		VariantSuffix: constants.VariantSuffix,
		Denylist:      []string{constants.NullPortrait},
	}
}

// Validate checks that the patterns can match anything.
func (p Patterns) Validate() error {
	if p.Marker == "" {
		return errors.NewValidationError("marker", p.Marker, "cannot be empty")
	}
	if strings.Contains(p.Marker, "_") {
		return errors.NewValidationError("marker", p.Marker, "must be a single segment")
	}
	if p.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", p.MaxDepth, "cannot be negative")
	}
	return nil
}

// IsVariant reports whether stem is a thumbnail variant.
func (p Patterns) IsVariant(stem string) bool {
	return p.VariantSuffix != "" && strings.HasSuffix(stem, p.VariantSuffix)
}

// IsDenylisted reports whether stem belongs to a denylisted category.
func (p Patterns) IsDenylisted(stem string) bool {
	for _, prefix := range p.Denylist {
		if prefix != "" && strings.HasPrefix(stem, prefix) {
			return true
		}
	}
	return false
}

// IsPrincipalPortrait reports whether stem may seed a cluster: it contains
// the marker segment with at most MaxDepth segments after it, and is neither
// a variant nor denylisted.
func (p Patterns) IsPrincipalPortrait(stem string) bool {
	if p.IsVariant(stem) || p.IsDenylisted(stem) {
		return false
	}
	segments := strings.Split(stem, "_")
	for i, seg := range segments {
		if seg == p.Marker {
			return len(segments)-i-1 <= p.MaxDepth
		}
	}
	return false
}
