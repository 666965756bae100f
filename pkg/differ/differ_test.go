package differ

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/pkg/catalogs"
)

func TestEntitiesAddedRemovedUpdated(t *testing.T) {
	existing := []catalogs.Entity{
		{ID: "Hana", Images: []string{"Portrait_Hana.png"}},
		{ID: "Yui", Images: []string{"Portrait_Yui.png"}},
		{ID: "Aoi", Images: []string{"Portrait_Aoi.png"}},
	}
	updated := []catalogs.Entity{
		{ID: "Hana", Images: []string{"Portrait_Hana.png", "Portrait_Hana_Alt.png"}, Aliases: []string{"はなちゃん"}},
		{ID: "Aoi", Images: []string{"Portrait_Aoi.png"}},
		{ID: "Rin", Images: []string{"Portrait_Rin.png"}, Placeholder: true},
	}

	cs := New().Entities(existing, updated)

	require.Len(t, cs.Added, 1)
	assert.Equal(t, "Rin", cs.Added[0].ID)
	require.Len(t, cs.Removed, 1)
	assert.Equal(t, "Yui", cs.Removed[0].ID)
	require.Len(t, cs.Updated, 1)
	assert.Equal(t, "Hana", cs.Updated[0].ID)
	assert.Equal(t, []FieldChange{
		{Path: "images", NewValue: "Portrait_Hana_Alt.png", Type: ChangeTypeAdd},
		{Path: "aliases", NewValue: "はなちゃん", Type: ChangeTypeAdd},
	}, cs.Updated[0].Changes)
	assert.Empty(t, cs.Renamed)
}

func TestEntitiesRenameDetection(t *testing.T) {
	existing := []catalogs.Entity{{ID: "Portrait_Kai", Images: []string{"Portrait_Kai.png"}, Placeholder: true}}
	updated := []catalogs.Entity{{ID: "Kai", Images: []string{"Portrait_Kai.png"}}}

	cs := New().Entities(existing, updated)
	require.Len(t, cs.Renamed, 1)
	assert.Equal(t, Rename{From: "Portrait_Kai", To: "Kai", Image: "Portrait_Kai.png"}, cs.Renamed[0])

	cs = New(WithRenameDetection(false)).Entities(existing, updated)
	assert.Empty(t, cs.Renamed)
}

func TestEntityFieldChanges(t *testing.T) {
	tests := []struct {
		name     string
		existing catalogs.Entity
		updated  catalogs.Entity
		opts     []Option
		want     []string
	}{
		{
			name:     "family name",
			existing: catalogs.Entity{ID: "Hana", Names: catalogs.Names{PersonalName: "Hana"}},
			updated:  catalogs.Entity{ID: "Hana", Names: catalogs.Names{PersonalName: "Hana", FamilyName: "Mori"}},
			want:     []string{"names.family_name"},
		},
		{
			name:     "localized",
			existing: catalogs.Entity{ID: "Hana", Localized: map[string]string{"en": "Hana"}},
			updated:  catalogs.Entity{ID: "Hana", Localized: map[string]string{"en": "Mori Hana", "ja": "森 Hana"}},
			want:     []string{"localized.en", "localized.ja"},
		},
		{
			name:     "shallow comparison skips names",
			existing: catalogs.Entity{ID: "Hana", Names: catalogs.Names{PersonalName: "Hana"}},
			updated:  catalogs.Entity{ID: "Hana", Names: catalogs.Names{PersonalName: "Hanako"}},
			opts:     []Option{WithDeepComparison(false)},
			want:     nil,
		},
		{
			name:     "image order",
			existing: catalogs.Entity{ID: "Hana", Images: []string{"a.png", "b.png"}},
			updated:  catalogs.Entity{ID: "Hana", Images: []string{"b.png", "a.png"}},
			want:     []string{"images"},
		},
		{
			name:     "ignored field",
			existing: catalogs.Entity{ID: "Hana", Placeholder: true},
			updated:  catalogs.Entity{ID: "Hana"},
			opts:     []Option{WithIgnoredFields("placeholder")},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.opts...).(*differ)
			update := d.entity(tt.existing, tt.updated)
			if tt.want == nil {
				assert.Nil(t, update)
				return
			}
			require.NotNil(t, update)
			var paths []string
			for _, c := range update.Changes {
				paths = append(paths, c.Path)
			}
			assert.Equal(t, tt.want, paths)
		})
	}
}

func TestCatalogs(t *testing.T) {
	existing := catalogs.New(catalogs.Entity{ID: "Yui", Images: []string{"Portrait_Yui.png"}})
	updated := catalogs.New(
		catalogs.Entity{ID: "Yui", Images: []string{"Portrait_Yui.png"}},
		catalogs.Entity{ID: "aoi", Images: []string{"Portrait_Aoi.png"}},
		catalogs.Entity{ID: "Bea", Images: []string{"Portrait_Bea.png"}},
	)

	cs := New().Catalogs(existing, updated)
	assert.True(t, cs.HasChanges())
	assert.False(t, cs.BreaksIDs())
	assert.Equal(t, 2, cs.Summary.EntitiesAdded)
	assert.Equal(t, "aoi", cs.Entities.Added[0].ID, "added entities follow catalog order")
	assert.Equal(t, "Changeset: Entities: 2 added (Total: 2 changes)", cs.String())

	cs = New().Catalogs(updated, existing)
	assert.True(t, cs.BreaksIDs())

	cs = New().Catalogs(nil, catalogs.New())
	assert.True(t, cs.IsEmpty())
	assert.Equal(t, "No changes detected", cs.String())
}

func TestChangesetPrintAndFilter(t *testing.T) {
	existing := catalogs.New(catalogs.Entity{ID: "Portrait_Kai", Images: []string{"Portrait_Kai.png"}, Placeholder: true})
	updated := catalogs.New(catalogs.Entity{ID: "Kai", Images: []string{"Portrait_Kai.png"}})

	cs := New().Catalogs(existing, updated)

	var buf bytes.Buffer
	cs.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "Added Entities (1)")
	assert.Contains(t, out, "Portrait_Kai (now Kai)")

	additive := cs.Filter(ApplyAdditive)
	assert.Equal(t, 1, additive.Summary.TotalChanges)
	assert.False(t, additive.BreaksIDs())

	removals := cs.Filter(ApplyRemovalsOnly)
	assert.Equal(t, 1, removals.Summary.EntitiesRemoved)
	assert.Equal(t, 1, removals.Summary.EntitiesRenamed)
}
