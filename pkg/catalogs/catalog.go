// Package catalogs holds the reconciled entity catalog: ordering, invariant
// validation and YAML/JSON persistence.
//
// A catalog is split on save into the fully resolved main catalog and a review
// catalog of placeholder entities awaiting manual identifiers.
//
// Example usage:
//
//	cat := catalogs.New(entities...)
//	if err := cat.Validate(idx.Stems(), excluded); err != nil {
//	    return err
//	}
//	if err := cat.Save("out"); err != nil {
//	    return err
//	}
package catalogs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/errors"
)

// Catalog is an ordered set of entities.
type Catalog struct {
	entities []Entity
}

// New creates a sorted catalog from entities.
func New(entities ...Entity) *Catalog {
	cat := &Catalog{entities: make([]Entity, 0, len(entities))}
	for _, e := range entities {
		c := e.Clone()
		c.normalize()
		cat.entities = append(cat.entities, c)
	}
	cat.Sort()
	return cat
}

// Sort orders entities case-insensitively by id, ties broken by exact id.
func (cat *Catalog) Sort() {
	sort.SliceStable(cat.entities, func(i, j int) bool {
		return Less(cat.entities[i].ID, cat.entities[j].ID)
	})
}

// Less reports whether id a sorts before id b.
func Less(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// Entities returns a copy of the entities in catalog order.
func (cat *Catalog) Entities() []Entity {
	out := make([]Entity, len(cat.entities))
	for i, e := range cat.entities {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entities.
func (cat *Catalog) Len() int {
	return len(cat.entities)
}

// Get returns the entity with the given id.
func (cat *Catalog) Get(id string) (Entity, bool) {
	for _, e := range cat.entities {
		if e.ID == id {
			return e.Clone(), true
		}
	}
	return Entity{}, false
}

// Owner returns the entity that owns ref.
func (cat *Catalog) Owner(ref string) (Entity, bool) {
	for _, e := range cat.entities {
		if e.HasImage(ref) {
			return e.Clone(), true
		}
	}
	return Entity{}, false
}

// Placeholders returns the number of placeholder entities.
func (cat *Catalog) Placeholders() int {
	n := 0
	for _, e := range cat.entities {
		if e.Placeholder {
			n++
		}
	}
	return n
}

// Split separates fully resolved entities from placeholders.
func (cat *Catalog) Split() (resolved, review *Catalog) {
	resolved, review = &Catalog{}, &Catalog{}
	for _, e := range cat.entities {
		if e.Placeholder {
			review.entities = append(review.entities, e.Clone())
		} else {
			resolved.entities = append(resolved.entities, e.Clone())
		}
	}
	return resolved, review
}

// Validate checks identifier uniqueness, image exclusivity and, when stems
// is non-nil, that every inventory stem not in excluded is owned by exactly
// one entity. All violations are returned joined.
func (cat *Catalog) Validate(stems []string, excluded []string) error {
	var errs []error

	ids := make(map[string]bool, len(cat.entities))
	owner := make(map[string]string)
	for _, e := range cat.entities {
		if e.ID == "" {
			errs = append(errs, errors.NewValidationError("id", e.ID, "entity without id"))
		}
		if ids[e.ID] {
			errs = append(errs, errors.NewValidationError("id", e.ID, fmt.Sprintf("duplicate id %s", e.ID)))
		}
		ids[e.ID] = true

		for _, ref := range e.Images {
			stem := assets.Stem(ref)
			if prev, ok := owner[stem]; ok {
				errs = append(errs, errors.NewValidationError("images", ref,
					fmt.Sprintf("image %s owned by both %s and %s", ref, prev, e.ID)))
				continue
			}
			owner[stem] = e.ID
		}
	}

	if stems != nil {
		skip := make(map[string]bool, len(excluded))
		for _, s := range excluded {
			skip[s] = true
		}
		for _, stem := range stems {
			if skip[stem] {
				continue
			}
			if _, ok := owner[stem]; !ok {
				errs = append(errs, errors.NewValidationError("images", stem,
					fmt.Sprintf("inventory image %s has no owner", stem)))
			}
		}
	}

	return errors.Join(errs...)
}
