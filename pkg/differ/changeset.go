// Package differ compares catalog generations and reports which entity
// identifiers were added, removed or changed.
package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/rollcall/pkg/catalogs"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates an item was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"`                               // Field path (e.g., "names.family_name")
	OldValue string     `json:"old_value,omitempty" yaml:"old_value,omitempty"` // Previous value (string representation)
	NewValue string     `json:"new_value,omitempty" yaml:"new_value,omitempty"` // New value (string representation)
	Type     ChangeType `json:"type" yaml:"type"`                               // Type of change
}

// EntityUpdate represents an update to an existing entity.
type EntityUpdate struct {
	ID       string          `json:"id" yaml:"id"`
	Existing catalogs.Entity `json:"-" yaml:"-"`
	New      catalogs.Entity `json:"-" yaml:"-"`
	Changes  []FieldChange   `json:"changes" yaml:"changes"`
}

// Rename records an identifier that disappeared while its first image moved
// to a newly added identifier.
type Rename struct {
	From  string `json:"from" yaml:"from"`
	To    string `json:"to" yaml:"to"`
	Image string `json:"image" yaml:"image"`
}

// EntityChangeset represents changes to entities.
type EntityChangeset struct {
	Added   []catalogs.Entity `json:"added" yaml:"added"`
	Updated []EntityUpdate    `json:"updated" yaml:"updated"`
	Removed []catalogs.Entity `json:"removed" yaml:"removed"`
	Renamed []Rename          `json:"renamed" yaml:"renamed"`
}

// Changeset represents all changes between two catalogs.
type Changeset struct {
	Entities *EntityChangeset `json:"entities" yaml:"entities"`
	Summary  ChangesetSummary `json:"summary" yaml:"summary"`
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	EntitiesAdded   int `json:"entities_added" yaml:"entities_added"`
	EntitiesUpdated int `json:"entities_updated" yaml:"entities_updated"`
	EntitiesRemoved int `json:"entities_removed" yaml:"entities_removed"`
	EntitiesRenamed int `json:"entities_renamed" yaml:"entities_renamed"`
	TotalChanges    int `json:"total_changes" yaml:"total_changes"`
}

// calculateSummary computes the summary for a changeset.
func calculateSummary(entities *EntityChangeset) ChangesetSummary {
	added := len(entities.Added)
	updated := len(entities.Updated)
	removed := len(entities.Removed)

	return ChangesetSummary{
		EntitiesAdded:   added,
		EntitiesUpdated: updated,
		EntitiesRemoved: removed,
		EntitiesRenamed: len(entities.Renamed),
		TotalChanges:    added + updated + removed,
	}
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// BreaksIDs reports whether any previously published identifier is gone.
func (c *Changeset) BreaksIDs() bool {
	return c.Summary.EntitiesRemoved > 0
}

// HasChanges returns true if the entity changeset contains any changes.
func (e *EntityChangeset) HasChanges() bool {
	return len(e.Added) > 0 || len(e.Updated) > 0 || len(e.Removed) > 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	parts := []string{}
	if n := len(c.Entities.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(c.Entities.Updated); n > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", n))
	}
	if n := len(c.Entities.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}

	return fmt.Sprintf("Changeset: Entities: %s (Total: %d changes)", strings.Join(parts, ", "), c.Summary.TotalChanges)
}

// Print writes a detailed, human-readable view of the changeset.
func (c *Changeset) Print(w io.Writer) {
	fmt.Fprintln(w, c.String())
	fmt.Fprintln(w, strings.Repeat("─", 80))

	if c.Entities.HasChanges() {
		c.Entities.Print(w)
	}
}

// Print writes entity changes in a human-readable format.
func (e *EntityChangeset) Print(w io.Writer) {
	if len(e.Added) > 0 {
		fmt.Fprintf(w, "\n➕ Added Entities (%d):\n", len(e.Added))
		for _, entity := range e.Added {
			fmt.Fprintf(w, "  • %s", entity.ID)
			if entity.Placeholder {
				fmt.Fprint(w, " (placeholder)")
			}
			fmt.Fprintf(w, " - %d images\n", len(entity.Images))
		}
	}

	if len(e.Updated) > 0 {
		fmt.Fprintf(w, "\n🔄 Updated Entities (%d):\n", len(e.Updated))
		for _, update := range e.Updated {
			fmt.Fprintf(w, "  • %s:\n", update.ID)
			for _, change := range update.Changes {
				switch change.Type {
				case ChangeTypeAdd:
					fmt.Fprintf(w, "    + %s: %s\n", change.Path, change.NewValue)
				case ChangeTypeRemove:
					fmt.Fprintf(w, "    - %s: %s\n", change.Path, change.OldValue)
				default:
					fmt.Fprintf(w, "    ~ %s: %s → %s\n", change.Path, change.OldValue, change.NewValue)
				}
			}
		}
	}

	if len(e.Removed) > 0 {
		fmt.Fprintf(w, "\n⚠️  Removed Entities (%d):\n", len(e.Removed))
		for _, entity := range e.Removed {
			fmt.Fprintf(w, "  • %s", entity.ID)
			if to := e.RenamedTo(entity.ID); to != "" {
				fmt.Fprintf(w, " (now %s)", to)
			}
			fmt.Fprintln(w)
		}
	}
}

// RenamedTo returns the identifier that replaced id, if a rename was detected.
func (e *EntityChangeset) RenamedTo(id string) string {
	for _, r := range e.Renamed {
		if r.From == id {
			return r.To
		}
	}
	return ""
}

// ApplyStrategy represents which changes to keep.
type ApplyStrategy string

const (
	// ApplyAll keeps all changes including removals.
	ApplyAll ApplyStrategy = "all"

	// ApplyAdditive keeps additions and updates, never removes.
	ApplyAdditive ApplyStrategy = "additive"

	// ApplyRemovalsOnly keeps only removed identifiers.
	ApplyRemovalsOnly ApplyStrategy = "removals-only"
)

// Filter filters the changeset based on the apply strategy.
func (c *Changeset) Filter(strategy ApplyStrategy) *Changeset {
	filtered := &Changeset{
		Entities: &EntityChangeset{},
	}

	switch strategy {
	case ApplyAll:
		return c

	case ApplyAdditive:
		filtered.Entities.Added = c.Entities.Added
		filtered.Entities.Updated = c.Entities.Updated

	case ApplyRemovalsOnly:
		filtered.Entities.Removed = c.Entities.Removed
		filtered.Entities.Renamed = c.Entities.Renamed
	}

	filtered.Summary = calculateSummary(filtered.Entities)

	return filtered
}
