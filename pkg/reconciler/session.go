package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/catalogs"
)

// entity is a catalog entity under construction.
type entity struct {
	catalogs.Entity
	key       string
	synthetic bool
	names     bool // backed by a profile with name parts
}

// session carries the mutable state of one reconciliation pass. Every
// sub-routine receives it by pointer; nothing outlives the pass.
type session struct {
	index    *assets.Index
	stems    []string // inventory stems, sorted
	patterns Patterns
	remap    map[string]string
	logger   *zerolog.Logger

	used      map[string]bool    // claimed refs
	owner     map[string]string  // ref -> lookup key
	entities  map[string]*entity // lookup key -> entity
	ids       map[string]string  // id -> lookup key
	order     []string           // profiled lookup keys in creation order
	synthetic []string           // synthetic lookup keys in creation order

	diagnostics Diagnostics
	stats       ResultStatistics
}

func newSession(idx *assets.Index, patterns Patterns, remap map[string]string, logger *zerolog.Logger) *session {
	return &session{
		index:    idx,
		stems:    idx.Stems(),
		patterns: patterns,
		remap:    remap,
		logger:   logger,
		used:     make(map[string]bool),
		owner:    make(map[string]string),
		entities: make(map[string]*entity),
		ids:      make(map[string]string),
	}
}

// claim assigns refs to the entity at key and returns the refs newly owned.
func (s *session) claim(e *entity, refs []string) []string {
	var added []string
	for _, ref := range refs {
		if s.used[ref] {
			continue
		}
		e.AddImages(ref)
		s.used[ref] = true
		s.owner[ref] = e.key
		added = append(added, ref)
	}
	return added
}

// register records a new entity under its lookup key and id.
func (s *session) register(e *entity) {
	s.entities[e.key] = e
	s.ids[e.ID] = e.key
	if e.synthetic {
		s.synthetic = append(s.synthetic, e.key)
	} else {
		s.order = append(s.order, e.key)
	}
}

// drop removes a synthetic entity. Its refs must already be re-owned.
func (s *session) drop(key string) {
	e, ok := s.entities[key]
	if !ok {
		return
	}
	delete(s.entities, key)
	if s.ids[e.ID] == key {
		delete(s.ids, e.ID)
	}
	for i, k := range s.synthetic {
		if k == key {
			s.synthetic = append(s.synthetic[:i], s.synthetic[i+1:]...)
			break
		}
	}
}

// report records a diagnostic and logs it.
func (s *session) report(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)

	ev := s.logger.WithLevel(d.level()).Str("kind", string(d.Kind))
	if d.Entity != "" {
		ev = ev.Str("entity", d.Entity)
	}
	if d.Name != "" {
		ev = ev.Str("name", d.Name)
	}
	if d.Image != "" {
		ev = ev.Str("image", d.Image)
	}
	ev.Msg(d.Message)
}

// entitiesInOrder returns profiled entities then synthetic ones, each in
// creation order.
func (s *session) entitiesInOrder() []*entity {
	out := make([]*entity, 0, len(s.order)+len(s.synthetic))
	for _, k := range s.order {
		out = append(out, s.entities[k])
	}
	for _, k := range s.synthetic {
		out = append(out, s.entities[k])
	}
	return out
}
