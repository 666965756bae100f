package reconciler

import (
	"fmt"

	"github.com/rs/zerolog"
)

// DiagnosticKind classifies a non-fatal reconciliation finding.
type DiagnosticKind string

// Diagnostic kinds.
const (
	// KindUnresolvedProfile: a profile found no unclaimed image.
	KindUnresolvedProfile DiagnosticKind = "unresolved-without-image"
	// KindInvalidName: a profile was skipped because no id could be derived.
	KindInvalidName DiagnosticKind = "invalid-name"
	// KindContested: a candidate image was already owned by an earlier profile.
	KindContested DiagnosticKind = "contested-image"
	// KindHeuristicExpansion: a sibling image was added by filename pattern.
	KindHeuristicExpansion DiagnosticKind = "heuristic-expansion"
	// KindDuplicateID: a later profile derived an id another entity owns.
	KindDuplicateID DiagnosticKind = "duplicate-id"
	// KindAlias: an orphaned name was recorded as an alias.
	KindAlias DiagnosticKind = "alias"
	// KindOrphanedName: an orphaned name produced a placeholder entity.
	KindOrphanedName DiagnosticKind = "orphaned-name"
	// KindAliasMerge: placeholder entities sharing their only alias were merged.
	KindAliasMerge DiagnosticKind = "alias-merge"
	// KindOrphanedImage: an image with no name became a singleton placeholder.
	KindOrphanedImage DiagnosticKind = "orphaned-image"
	// KindIDCollision: a placeholder id collided and was suffixed.
	KindIDCollision DiagnosticKind = "id-collision"
)

// Diagnostic is an observable note for human review.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Entity  string         `json:"entity,omitempty" yaml:"entity,omitempty"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Image   string         `json:"image,omitempty" yaml:"image,omitempty"`
	Message string         `json:"message" yaml:"message"`
}

// String implements fmt.Stringer.
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}

// level returns the log level a diagnostic is reported at.
func (d Diagnostic) level() zerolog.Level {
	switch d.Kind {
	case KindUnresolvedProfile, KindInvalidName, KindDuplicateID, KindIDCollision:
		return zerolog.WarnLevel
	case KindContested, KindAlias:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Diagnostics is an ordered list of findings.
type Diagnostics []Diagnostic

// Count returns the number of diagnostics of the given kind.
func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Of returns the diagnostics of the given kind.
func (ds Diagnostics) Of(kind DiagnosticKind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
