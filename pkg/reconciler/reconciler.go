// Package reconciler turns profile records and a labelled image index into one
// consistent entity catalog.
//
// Profiles are matched greedily in input order: an earlier profile keeps any
// image a later one also claims, and the later profile is reported rather
// than silently reassigned. Sibling images are recovered by filename pattern,
// and images no profile claims become placeholder entities for review.
package reconciler

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/names"
)

// Reconciler builds a catalog from reconciliation inputs.
type Reconciler interface {
	// Reconcile runs one complete pass. It fails only on structurally
	// inconsistent inputs; matching ambiguities become diagnostics.
	Reconcile(ctx context.Context, in Input) (*Result, error)
}

// Input holds everything one pass reads. It is not modified.
type Input struct {
	// Profiles in priority order.
	Profiles []Profile

	// Index of labelled images and the physical inventory.
	Index *assets.Index

	// Remap replaces derived identifiers, keyed by derived id.
	Remap map[string]string

	// Excluded stems are exempt from the completeness check.
	Excluded []string
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	patterns Patterns
	localize bool
	validate bool
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{
		patterns: options.patterns,
		localize: options.localize,
		validate: options.validate,
	}, nil
}

// Reconcile performs reconciliation with a clean step-by-step flow.
func (r *reconciler) Reconcile(ctx context.Context, in Input) (*Result, error) {
	// Step 1: Initialize the session
	s, err := r.initialize(ctx, in)
	if err != nil {
		return nil, err
	}
	result := NewResult()

	// Step 2: Match profiles in input order
	profiled := make(map[string]bool, len(in.Profiles))
	for _, p := range in.Profiles {
		profiled[p.PersonalName] = true
		r.matchProfile(s, p)
	}
	s.logger.Info().
		Int("profiles", len(in.Profiles)).
		Int("entities", len(s.order)).
		Int("images_claimed", len(s.used)).
		Msg("Matched profiles")

	// Step 3: Account for orphaned names and images
	s.synthesize(profiled)

	// Step 4: Freeze entities into a catalog
	cat := r.catalog(s)

	// Step 5: Check catalog invariants
	if r.validate {
		if err := cat.Validate(in.Index.Stems(), in.Excluded); err != nil {
			return nil, errors.WrapResource("validate", "catalog", "", err)
		}
	}

	// Step 6: Build the result
	result.Catalog = cat
	result.Diagnostics = s.diagnostics
	result.Warnings = append(result.Warnings, in.Index.Warnings()...)
	result.Metadata.Stats = s.stats
	result.Metadata.Stats.ProfilesProcessed = len(in.Profiles)
	result.Metadata.Stats.EntitiesProfiled = len(s.order)
	result.Metadata.Stats.EntitiesSynthetic = len(s.synthetic)
	result.Metadata.Stats.ImagesClaimed = len(s.used)
	result.Metadata.Patterns = r.patterns
	result.Finalize()

	s.logger.Info().
		Int("entities", cat.Len()).
		Int("placeholders", cat.Placeholders()).
		Int("diagnostics", len(s.diagnostics)).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation complete")

	return result, nil
}

// initialize validates inputs and sets up the session.
func (r *reconciler) initialize(ctx context.Context, in Input) (*session, error) {
	if in.Index == nil {
		return nil, &errors.ValidationError{
			Field:   "index",
			Message: "cannot be nil",
		}
	}
	logger := logging.FromContext(ctx).With().Str("component", "reconciler").Logger()

	remap := maps.Clone(in.Remap)
	if remap == nil {
		remap = map[string]string{}
	}
	return newSession(in.Index, r.patterns, remap, &logger), nil
}

// matchProfile runs the main loop body for one profile.
func (r *reconciler) matchProfile(s *session, p Profile) {
	// Step 1: lookup key; records without a personal name are skipped
	if p.PersonalName == "" {
		return
	}
	key := p.LookupKey()

	// Step 2: identifier
	derived, err := names.DeriveID(p.PersonalName)
	id := p.IDOverride
	if id == "" {
		if err != nil {
			s.stats.Skipped++
			s.report(Diagnostic{
				Kind:    KindInvalidName,
				Name:    p.PersonalName,
				Message: err.Error(),
			})
			return
		}
		id = derived
		if mapped, ok := s.remap[derived]; ok {
			id = mapped
		}
	}

	// Step 3: candidates from the name index and identifier-named images
	candidates := s.index.Images(p.PersonalName)
	for _, stem := range []string{id, derived} {
		if stem == "" {
			continue
		}
		if ref, ok := s.index.RefForStem(stem); ok && !slices.Contains(candidates, ref) {
			candidates = append(candidates, ref)
		}
	}

	// Step 4: earlier profiles keep their images
	available := candidates[:0:0]
	for _, ref := range candidates {
		if !s.used[ref] {
			available = append(available, ref)
			continue
		}
		if ownerKey := s.owner[ref]; ownerKey != key {
			s.report(Diagnostic{
				Kind:    KindContested,
				Entity:  id,
				Name:    p.PersonalName,
				Image:   ref,
				Message: fmt.Sprintf("%s already owned by %s", ref, s.entities[ownerKey].ID),
			})
		}
	}
	existing, exists := s.entities[key]
	if len(available) == 0 {
		if !exists {
			s.stats.Unresolved++
			s.report(Diagnostic{
				Kind:    KindUnresolvedProfile,
				Entity:  id,
				Name:    key,
				Message: fmt.Sprintf("profile %s (%s) has no unclaimed image", key, id),
			})
		}
		return
	}

	// A new entity may not reuse an id; its images become placeholders that
	// keep the personal name as their alias
	if !exists {
		if otherKey, taken := s.ids[id]; taken {
			s.stats.Unresolved++
			s.report(Diagnostic{
				Kind:    KindDuplicateID,
				Entity:  id,
				Name:    key,
				Message: fmt.Sprintf("id %s already used by %s; images of %s left for review", id, otherKey, key),
			})
			for _, ref := range available {
				e := s.newSynthetic(assets.Stem(ref))
				e.AddAlias(p.PersonalName)
				s.claim(e, []string{ref})
			}
			return
		}
	}

	// Step 5: recover siblings by filename pattern
	refs := s.expandCandidates(id, available)

	// Step 6: create or update the entity and claim its images
	if !exists {
		existing = &entity{
			Entity: catalogs.Entity{
				ID:          id,
				CharacterID: p.CharacterID,
				Names: catalogs.Names{
					FamilyName:     p.FamilyName,
					PersonalName:   p.PersonalName,
					FamilyNameRuby: p.FamilyNameRuby,
				},
			},
			key:   key,
			names: true,
		}
		s.register(existing)
	}
	added := s.claim(existing, refs)
	s.logger.Debug().
		Str("entity", existing.ID).
		Strs("images", added).
		Msg("Claimed images")
}

// catalog freezes the session's entities into a sorted catalog.
func (r *reconciler) catalog(s *session) *catalogs.Catalog {
	entities := make([]catalogs.Entity, 0, len(s.entities))
	for _, e := range s.entitiesInOrder() {
		out := e.Entity.Clone()
		if r.localize && e.names {
			out.Localized = names.Localize(out.ID, names.Parts{
				FamilyName:     out.Names.FamilyName,
				PersonalName:   out.Names.PersonalName,
				FamilyNameRuby: out.Names.FamilyNameRuby,
			})
		}
		entities = append(entities, out)
	}
	return catalogs.New(entities...)
}

var _ Reconciler = (*reconciler)(nil)
