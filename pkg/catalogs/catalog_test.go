package catalogs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/errors"
)

func sample() []catalogs.Entity {
	return []catalogs.Entity{
		{
			ID:     "yui",
			Names:  catalogs.Names{PersonalName: "ゆい"},
			Images: []string{"Portrait_yui.png"},
		},
		{
			ID:        "Hana",
			Names:     catalogs.Names{FamilyName: "森", PersonalName: "ハナ", FamilyNameRuby: "もり"},
			Localized: map[string]string{"ja": "森 ハナ", "en": "Mori Hana"},
			Images:    []string{"Portrait_Hana.png", "Portrait_Hana_Alt.png"},
			Aliases:   []string{"はな", "ハナちゃん", "はな"},
		},
		{
			ID:          "Student_Portrait_Rin",
			Images:      []string{"Student_Portrait_Rin.png"},
			Placeholder: true,
		},
		{
			ID:     "Yui",
			Names:  catalogs.Names{PersonalName: "ユイ"},
			Images: []string{"Portrait_Yui.png"},
		},
	}
}

func ids(cat *catalogs.Catalog) []string {
	var out []string
	for _, e := range cat.Entities() {
		out = append(out, e.ID)
	}
	return out
}

func TestNewSortsCaseInsensitively(t *testing.T) {
	cat := catalogs.New(sample()...)
	assert.Equal(t, []string{"Hana", "Student_Portrait_Rin", "Yui", "yui"}, ids(cat))
}

func TestNewNormalizesAliases(t *testing.T) {
	cat := catalogs.New(sample()...)
	hana, ok := cat.Get("Hana")
	require.True(t, ok)
	assert.Equal(t, []string{"はな", "ハナちゃん"}, hana.Aliases)
}

func TestSplit(t *testing.T) {
	cat := catalogs.New(sample()...)
	resolved, review := cat.Split()

	assert.Equal(t, []string{"Hana", "Yui", "yui"}, ids(resolved))
	assert.Equal(t, []string{"Student_Portrait_Rin"}, ids(review))
	assert.Equal(t, 1, cat.Placeholders())
}

func TestEntityHelpers(t *testing.T) {
	e := catalogs.Entity{ID: "Hana"}
	assert.Equal(t, []string{"a.png", "b.png"}, e.AddImages("a.png", "b.png", "a.png"))
	assert.Empty(t, e.AddImages("b.png"))
	assert.True(t, e.AddAlias("ハナ"))
	assert.True(t, e.AddAlias("はな"))
	assert.False(t, e.AddAlias("ハナ"))
	assert.Equal(t, []string{"はな", "ハナ"}, e.Aliases)
}

func TestValidate(t *testing.T) {
	stems := []string{"Portrait_Hana", "Portrait_Hana_Alt", "Portrait_Yui", "Portrait_yui", "Student_Portrait_Rin"}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, catalogs.New(sample()...).Validate(stems, nil))
	})

	t.Run("duplicate id", func(t *testing.T) {
		entities := append(sample(), catalogs.Entity{ID: "Hana"})
		err := catalogs.New(entities...).Validate(nil, nil)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Contains(t, err.Error(), "duplicate id Hana")
	})

	t.Run("shared image", func(t *testing.T) {
		entities := append(sample(), catalogs.Entity{ID: "Other", Images: []string{"Portrait_Hana_Alt.png"}})
		err := catalogs.New(entities...).Validate(nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "owned by both")
	})

	t.Run("orphan stem", func(t *testing.T) {
		err := catalogs.New(sample()...).Validate(append(stems, "Portrait_Ghost"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Portrait_Ghost")
	})

	t.Run("excluded stem", func(t *testing.T) {
		err := catalogs.New(sample()...).Validate(append(stems, "Portrait_Ghost"), []string{"Portrait_Ghost"})
		assert.NoError(t, err)
	})
}

func TestEncodeDeterministic(t *testing.T) {
	shuffled := sample()
	shuffled[0], shuffled[3] = shuffled[3], shuffled[0]

	for _, format := range []catalogs.Format{catalogs.FormatYAML, catalogs.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			a, err := catalogs.New(sample()...).Encode(format)
			require.NoError(t, err)
			b, err := catalogs.New(shuffled...).Encode(format)
			require.NoError(t, err)
			assert.Equal(t, string(a), string(b))
		})
	}
}

func TestEncodeYAML(t *testing.T) {
	data, err := catalogs.New(catalogs.Entity{
		ID:          "Student_Portrait_Rin",
		Images:      []string{"Student_Portrait_Rin.png"},
		Placeholder: true,
	}).Encode(catalogs.FormatYAML)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "- id: Student_Portrait_Rin\n")
	assert.Contains(t, out, "- Student_Portrait_Rin.png\n")
	assert.Contains(t, out, "placeholder: true\n")
	assert.NotContains(t, out, "aliases")
	assert.NotContains(t, out, "character_id")
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cat := catalogs.New(sample()...)
	require.NoError(t, cat.Save(dir))

	main, err := catalogs.Load(filepath.Join(dir, "catalog.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hana", "Yui", "yui"}, ids(main))

	review, err := catalogs.Load(filepath.Join(dir, "review.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Student_Portrait_Rin"}, ids(review))

	all, err := catalogs.LoadDir(dir)
	require.NoError(t, err)
	if diff := cmp.Diff(cat.Entities(), all.Entities()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestLoadMissingAndInvalid(t *testing.T) {
	dir := t.TempDir()

	cat, err := catalogs.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = catalogs.Load(bad)
	require.Error(t, err)
	var perr *errors.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, bad, perr.File)
}
