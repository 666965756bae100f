package reconciler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentstation/rollcall/pkg/assets"
)

// expand returns the seed stems followed by the sibling stems discovered for
// every principal-portrait seed. A sibling is an inventory stem made of the
// seed, "_" and a suffix. Claimed stems, variants and stems already returned
// are skipped. Seeds keep their order and siblings are sorted.
//
// The second return value maps each sibling to the seed that found it.
func expand(seeds []string, stems []string, claimed func(string) bool, p Patterns) ([]string, map[string]string) {
	returned := make(map[string]bool, len(seeds))
	for _, seed := range seeds {
		returned[seed] = true
	}

	found := make(map[string]string)
	for _, seed := range seeds {
		if !p.IsPrincipalPortrait(seed) {
			continue
		}
		prefix := seed + "_"
		for _, stem := range stems {
			if !strings.HasPrefix(stem, prefix) || returned[stem] {
				continue
			}
			if p.IsVariant(stem) || claimed(stem) {
				continue
			}
			returned[stem] = true
			found[stem] = seed
		}
	}

	siblings := make([]string, 0, len(found))
	for stem := range found {
		siblings = append(siblings, stem)
	}
	sort.Strings(siblings)

	out := make([]string, 0, len(seeds)+len(siblings))
	out = append(out, seeds...)
	return append(out, siblings...), found
}

// expandCandidates runs cluster expansion over a profile's surviving
// candidate refs and reports every discovered sibling.
func (s *session) expandCandidates(id string, candidates []string) []string {
	seeds := make([]string, len(candidates))
	for i, ref := range candidates {
		seeds[i] = assets.Stem(ref)
	}
	claimed := func(stem string) bool {
		ref, ok := s.index.RefForStem(stem)
		return !ok || s.used[ref]
	}

	stems, found := expand(seeds, s.stems, claimed, s.patterns)

	refs := append([]string{}, candidates...)
	for _, stem := range stems[len(seeds):] {
		ref, _ := s.index.RefForStem(stem)
		refs = append(refs, ref)
		s.stats.HeuristicExpansions++
		s.report(Diagnostic{
			Kind:    KindHeuristicExpansion,
			Entity:  id,
			Image:   ref,
			Message: fmt.Sprintf("added %s to %s by filename pattern of %s", stem, id, found[stem]),
		})
	}
	return refs
}
