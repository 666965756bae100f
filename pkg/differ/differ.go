package differ

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/agentstation/rollcall/pkg/catalogs"
)

// Differ handles change detection between catalog generations.
type Differ interface {
	// Entities compares two sets of entities and returns changes
	Entities(existing, updated []catalogs.Entity) *EntityChangeset

	// Catalogs compares two complete catalogs
	Catalogs(existing, updated *catalogs.Catalog) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields   map[string]bool
	deepComparison bool
	renames        bool
}

// New creates a new Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields:   make(map[string]bool),
		deepComparison: true,
		renames:        true,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Entities compares two sets of entities and returns changes.
func (diff *differ) Entities(existing, updated []catalogs.Entity) *EntityChangeset {
	changeset := &EntityChangeset{
		Added:   []catalogs.Entity{},
		Updated: []EntityUpdate{},
		Removed: []catalogs.Entity{},
		Renamed: []Rename{},
	}

	// Create maps for efficient lookup
	existingMap := make(map[string]catalogs.Entity, len(existing))
	for _, e := range existing {
		existingMap[e.ID] = e
	}

	newMap := make(map[string]catalogs.Entity, len(updated))
	for _, e := range updated {
		newMap[e.ID] = e
	}

	// Find added and updated entities
	for _, newEntity := range updated {
		if existingEntity, exists := existingMap[newEntity.ID]; exists {
			if update := diff.entity(existingEntity, newEntity); update != nil {
				changeset.Updated = append(changeset.Updated, *update)
			}
		} else {
			changeset.Added = append(changeset.Added, newEntity)
		}
	}

	// Find removed entities
	for _, existingEntity := range existing {
		if _, exists := newMap[existingEntity.ID]; !exists {
			changeset.Removed = append(changeset.Removed, existingEntity)
		}
	}

	if diff.renames {
		changeset.Renamed = detectRenames(changeset.Removed, changeset.Added)
	}

	// Sort for consistent output
	sortEntityChangeset(changeset)

	return changeset
}

// Catalogs compares two complete catalogs.
func (diff *differ) Catalogs(existing, updated *catalogs.Catalog) *Changeset {
	changeset := &Changeset{
		Entities: diff.Entities(entitiesOf(existing), entitiesOf(updated)),
	}
	changeset.Summary = calculateSummary(changeset.Entities)
	return changeset
}

func entitiesOf(cat *catalogs.Catalog) []catalogs.Entity {
	if cat == nil {
		return nil
	}
	return cat.Entities()
}

// entity compares two entities and returns an update if they differ.
func (diff *differ) entity(existing, updated catalogs.Entity) *EntityUpdate {
	changes := []FieldChange{}

	if !diff.ignoreFields["images"] && !slices.Equal(existing.Images, updated.Images) {
		changes = append(changes, setChanges("images", existing.Images, updated.Images)...)
	}

	if !diff.ignoreFields["aliases"] && !slices.Equal(existing.Aliases, updated.Aliases) {
		changes = append(changes, setChanges("aliases", existing.Aliases, updated.Aliases)...)
	}

	if existing.Placeholder != updated.Placeholder && !diff.ignoreFields["placeholder"] {
		changes = append(changes, FieldChange{
			Path:     "placeholder",
			OldValue: fmt.Sprintf("%v", existing.Placeholder),
			NewValue: fmt.Sprintf("%v", updated.Placeholder),
			Type:     ChangeTypeUpdate,
		})
	}

	if existing.CharacterID != updated.CharacterID && !diff.ignoreFields["character_id"] {
		changes = append(changes, FieldChange{
			Path:     "character_id",
			OldValue: fmt.Sprintf("%d", existing.CharacterID),
			NewValue: fmt.Sprintf("%d", updated.CharacterID),
			Type:     ChangeTypeUpdate,
		})
	}

	// Compare names
	if diff.deepComparison && !diff.ignoreFields["names"] {
		changes = append(changes, diffNames(existing.Names, updated.Names)...)
	}

	// Compare localized names
	if diff.deepComparison && !diff.ignoreFields["localized"] {
		changes = append(changes, diffLocalized(existing.Localized, updated.Localized)...)
	}

	if len(changes) == 0 {
		return nil
	}

	return &EntityUpdate{
		ID:       existing.ID,
		Existing: existing,
		New:      updated,
		Changes:  changes,
	}
}

// setChanges reports the members of a list added and removed between two
// generations.
func setChanges(path string, existing, updated []string) []FieldChange {
	changes := []FieldChange{}
	for _, v := range updated {
		if !slices.Contains(existing, v) {
			changes = append(changes, FieldChange{Path: path, NewValue: v, Type: ChangeTypeAdd})
		}
	}
	for _, v := range existing {
		if !slices.Contains(updated, v) {
			changes = append(changes, FieldChange{Path: path, OldValue: v, Type: ChangeTypeRemove})
		}
	}
	if len(changes) == 0 {
		// Same members in another order.
		changes = append(changes, FieldChange{
			Path:     path,
			OldValue: strings.Join(existing, ", "),
			NewValue: strings.Join(updated, ", "),
			Type:     ChangeTypeUpdate,
		})
	}
	return changes
}

// diffNames compares profile name parts.
func diffNames(existing, updated catalogs.Names) []FieldChange {
	changes := []FieldChange{}
	fields := []struct {
		path     string
		old, new string
	}{
		{"names.family_name", existing.FamilyName, updated.FamilyName},
		{"names.personal_name", existing.PersonalName, updated.PersonalName},
		{"names.family_name_ruby", existing.FamilyNameRuby, updated.FamilyNameRuby},
	}
	for _, f := range fields {
		if f.old != f.new {
			changes = append(changes, FieldChange{
				Path:     f.path,
				OldValue: f.old,
				NewValue: f.new,
				Type:     ChangeTypeUpdate,
			})
		}
	}
	return changes
}

// diffLocalized compares localized display names by language.
func diffLocalized(existing, updated map[string]string) []FieldChange {
	changes := []FieldChange{}

	langs := make([]string, 0, len(existing)+len(updated))
	for lang := range existing {
		langs = append(langs, lang)
	}
	for lang := range updated {
		if _, ok := existing[lang]; !ok {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)

	for _, lang := range langs {
		oldValue, newValue := existing[lang], updated[lang]
		if oldValue == newValue {
			continue
		}
		changes = append(changes, FieldChange{
			Path:     "localized." + lang,
			OldValue: oldValue,
			NewValue: newValue,
			Type:     ChangeTypeUpdate,
		})
	}
	return changes
}

// detectRenames pairs each removed entity with the added entity that now
// owns its first image.
func detectRenames(removed, added []catalogs.Entity) []Rename {
	renames := []Rename{}
	owner := make(map[string]string)
	for _, e := range added {
		for _, ref := range e.Images {
			owner[ref] = e.ID
		}
	}
	for _, e := range removed {
		if len(e.Images) == 0 {
			continue
		}
		if to, ok := owner[e.Images[0]]; ok {
			renames = append(renames, Rename{From: e.ID, To: to, Image: e.Images[0]})
		}
	}
	return renames
}

// sortEntityChangeset sorts every list by catalog order.
func sortEntityChangeset(changeset *EntityChangeset) {
	sort.Slice(changeset.Added, func(i, j int) bool {
		return catalogs.Less(changeset.Added[i].ID, changeset.Added[j].ID)
	})
	sort.Slice(changeset.Updated, func(i, j int) bool {
		return catalogs.Less(changeset.Updated[i].ID, changeset.Updated[j].ID)
	})
	sort.Slice(changeset.Removed, func(i, j int) bool {
		return catalogs.Less(changeset.Removed[i].ID, changeset.Removed[j].ID)
	})
	sort.Slice(changeset.Renamed, func(i, j int) bool {
		return catalogs.Less(changeset.Renamed[i].From, changeset.Renamed[j].From)
	})
}
