package catalogs

import (
	"slices"
	"sort"
)

// Names holds the display name parts of an entity. Synthetic entities have
// none.
type Names struct {
	FamilyName     string `json:"family_name,omitempty" yaml:"family_name,omitempty"`
	PersonalName   string `json:"personal_name,omitempty" yaml:"personal_name,omitempty"`
	FamilyNameRuby string `json:"family_name_ruby,omitempty" yaml:"family_name_ruby,omitempty"`
}

// IsZero reports whether no name part is set.
func (n Names) IsZero() bool {
	return n == Names{}
}

// Entity is one catalog entry. Images are exclusively owned: no reference
// appears under two entities of the same catalog.
type Entity struct {
	ID          string            `json:"id" yaml:"id"`
	CharacterID int               `json:"character_id,omitempty" yaml:"character_id,omitempty"`
	Names       Names             `json:"names,omitzero" yaml:"names,omitempty"`
	Localized   map[string]string `json:"localized,omitempty" yaml:"localized,omitempty"`
	Images      []string          `json:"images" yaml:"images"`
	Aliases     []string          `json:"aliases,omitempty" yaml:"aliases,omitempty"`

	// Placeholder marks a synthetic entity whose id is its image stem and
	// still needs a manually assigned identifier.
	Placeholder bool `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// HasImage reports whether the entity owns ref.
func (e *Entity) HasImage(ref string) bool {
	return slices.Contains(e.Images, ref)
}

// AddImages appends refs not already owned, preserving order. It returns
// the refs that were added.
func (e *Entity) AddImages(refs ...string) []string {
	var added []string
	for _, ref := range refs {
		if e.HasImage(ref) {
			continue
		}
		e.Images = append(e.Images, ref)
		added = append(added, ref)
	}
	return added
}

// AddAlias records an additional display name, keeping aliases sorted and
// unique.
func (e *Entity) AddAlias(alias string) bool {
	i, found := slices.BinarySearch(e.Aliases, alias)
	if found {
		return false
	}
	e.Aliases = slices.Insert(e.Aliases, i, alias)
	return true
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	c := e
	c.Images = slices.Clone(e.Images)
	c.Aliases = slices.Clone(e.Aliases)
	if e.Localized != nil {
		c.Localized = make(map[string]string, len(e.Localized))
		for k, v := range e.Localized {
			c.Localized[k] = v
		}
	}
	return c
}

// normalize sorts aliases and drops empty collections so encodings are
// stable.
func (e *Entity) normalize() {
	if e.Images == nil {
		e.Images = []string{}
	}
	sort.Strings(e.Aliases)
	e.Aliases = slices.Compact(e.Aliases)
	if len(e.Aliases) == 0 {
		e.Aliases = nil
	}
}
