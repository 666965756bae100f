package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/rollcall/pkg/catalogs"
)

// Result represents the outcome of a reconciliation pass.
type Result struct {
	// Core data
	Catalog *catalogs.Catalog

	// Diagnostics for human follow-up, in the order they were found
	Diagnostics Diagnostics

	// Metadata
	Metadata ResultMetadata

	// Issues
	Warnings []string
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	// StartTime when reconciliation started
	StartTime time.Time

	// EndTime when reconciliation completed
	EndTime time.Time

	// Duration of the reconciliation
	Duration time.Duration

	// Patterns used for cluster expansion
	Patterns Patterns

	// Statistics about the reconciliation
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the reconciliation.
type ResultStatistics struct {
	ProfilesProcessed   int
	EntitiesProfiled    int
	EntitiesSynthetic   int
	ImagesClaimed       int
	HeuristicExpansions int
	Unresolved          int
	Skipped             int
	TotalTimeMs         int64
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Warnings: []string{},
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

// Placeholders returns the number of entities awaiting a manual identifier.
func (r *Result) Placeholders() int {
	if r.Catalog == nil {
		return 0
	}
	return r.Catalog.Placeholders()
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	st := r.Metadata.Stats
	return fmt.Sprintf("%d entities (%d profiled, %d placeholders), %d images, %d expansions, %d unresolved profiles",
		st.EntitiesProfiled+st.EntitiesSynthetic, st.EntitiesProfiled, r.Placeholders(),
		st.ImagesClaimed, st.HeuristicExpansions, st.Unresolved)
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}
