package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/logging"
)

func testSession(t *testing.T, labels []assets.Label, inventory []string) *session {
	t.Helper()
	idx, err := assets.Build(labels, inventory)
	require.NoError(t, err)
	return newSession(idx, DefaultPatterns(), map[string]string{}, logging.NewNopLogger())
}

func TestNewSyntheticCollision(t *testing.T) {
	s := testSession(t, nil, []string{"Rin.png"})
	s.register(&entity{Entity: catalogs.Entity{ID: "Rin"}, key: "Rin"})

	e := s.newSynthetic("Rin")
	assert.Equal(t, "Rin_2", e.ID)
	assert.True(t, e.Placeholder)

	again := s.newSynthetic("Rin")
	assert.Equal(t, "Rin_3", again.ID)
	assert.Equal(t, 2, s.diagnostics.Count(KindIDCollision))
}

func TestMergeSingleAliases(t *testing.T) {
	s := testSession(t, nil, []string{"A.png", "B.png", "C.png", "D.png"})

	a := s.newSynthetic("A")
	a.AddAlias("Mystery")
	s.claim(a, []string{"A.png"})

	b := s.newSynthetic("B")
	b.AddAlias("Mystery")
	s.claim(b, []string{"B.png"})

	// Two aliases: never merged.
	c := s.newSynthetic("C")
	c.AddAlias("Mystery")
	c.AddAlias("Other")
	s.claim(c, []string{"C.png"})

	d := s.newSynthetic("D")
	s.claim(d, []string{"D.png"})

	s.mergeSingleAliases()

	ids := make([]string, 0)
	for _, e := range s.entitiesInOrder() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"A", "C", "D"}, ids)
	assert.Equal(t, []string{"A.png", "B.png"}, a.Images)
	assert.Equal(t, a.key, s.owner["B.png"])
	_, taken := s.ids["B"]
	assert.False(t, taken)
}

func TestSynthesizeLeftovers(t *testing.T) {
	s := testSession(t,
		[]assets.Label{{Key: "Ghost", Ref: "Portrait_Ghost.png"}},
		[]string{"Portrait_Ghost.png", "Zeta.png", "Alpha.png"},
	)

	s.synthesize(map[string]bool{})

	ids := make([]string, 0)
	for _, e := range s.entitiesInOrder() {
		ids = append(ids, e.ID)
		assert.True(t, e.Placeholder)
	}
	assert.Equal(t, []string{"Portrait_Ghost", "Alpha", "Zeta"}, ids)
	assert.Equal(t, 1, s.diagnostics.Count(KindOrphanedName))
	assert.Equal(t, 2, s.diagnostics.Count(KindOrphanedImage))
	assert.Len(t, s.used, 3)
}
