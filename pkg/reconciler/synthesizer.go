package reconciler

import (
	"fmt"
	"strconv"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/catalogs"
)

// synthesize accounts for every index key no profile names and every
// inventory image still unclaimed after the profile loop.
func (s *session) synthesize(profiled map[string]bool) {
	s.orphanedNames(profiled)
	s.mergeSingleAliases()
	s.leftoverImages()
}

// orphanedNames visits index keys that match no profile's personal name.
// Claimed images make the key an alias of their owner. Unclaimed images
// each become a placeholder entity with the key as its only alias.
func (s *session) orphanedNames(profiled map[string]bool) {
	for _, key := range s.index.SortedKeys() {
		if profiled[key] {
			continue
		}
		for _, ref := range s.index.Images(key) {
			if s.used[ref] {
				owner := s.entities[s.owner[ref]]
				if owner.AddAlias(key) {
					s.report(Diagnostic{
						Kind:    KindAlias,
						Entity:  owner.ID,
						Name:    key,
						Image:   ref,
						Message: fmt.Sprintf("%s is an alias of %s", key, owner.ID),
					})
				}
				continue
			}

			e := s.newSynthetic(assets.Stem(ref))
			e.AddAlias(key)
			s.claim(e, []string{ref})
			s.report(Diagnostic{
				Kind:    KindOrphanedName,
				Entity:  e.ID,
				Name:    key,
				Image:   ref,
				Message: fmt.Sprintf("%s has no profile; created placeholder %s", key, e.ID),
			})
		}
	}
}

// mergeSingleAliases folds placeholder entities that share their only alias
// into the first one created.
func (s *session) mergeSingleAliases() {
	first := make(map[string]*entity)
	var merged []string

	for _, key := range s.synthetic {
		e := s.entities[key]
		if len(e.Aliases) != 1 {
			continue
		}
		alias := e.Aliases[0]
		target, ok := first[alias]
		if !ok {
			first[alias] = e
			continue
		}

		for _, ref := range e.Images {
			target.AddImages(ref)
			s.owner[ref] = target.key
		}
		merged = append(merged, key)
		s.report(Diagnostic{
			Kind:    KindAliasMerge,
			Entity:  target.ID,
			Name:    alias,
			Message: fmt.Sprintf("merged placeholder %s into %s (shared alias %s)", e.ID, target.ID, alias),
		})
	}

	for _, key := range merged {
		s.drop(key)
	}
}

// leftoverImages gives every still unclaimed inventory image its own
// placeholder entity.
func (s *session) leftoverImages() {
	for _, stem := range s.stems {
		ref, _ := s.index.RefForStem(stem)
		if s.used[ref] {
			continue
		}
		e := s.newSynthetic(stem)
		s.claim(e, []string{ref})
		s.report(Diagnostic{
			Kind:    KindOrphanedImage,
			Entity:  e.ID,
			Image:   ref,
			Message: fmt.Sprintf("%s has no name or profile; created placeholder %s", ref, e.ID),
		})
	}
}

// newSynthetic registers a placeholder entity whose id is stem, suffixed
// when another entity already holds that id.
func (s *session) newSynthetic(stem string) *entity {
	id := stem
	for n := 2; ; n++ {
		if _, taken := s.ids[id]; !taken {
			break
		}
		id = stem + "_" + strconv.Itoa(n)
	}
	if id != stem {
		s.report(Diagnostic{
			Kind:    KindIDCollision,
			Entity:  id,
			Message: fmt.Sprintf("placeholder id %s already taken; using %s", stem, id),
		})
	}

	e := &entity{
		Entity:    catalogs.Entity{ID: id, Placeholder: true},
		key:       "\x00" + id,
		synthetic: true,
	}
	s.register(e)
	return e
}
