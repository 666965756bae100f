package overrides_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/overrides"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

const sample = `base_path: chars
profiles:
  - name: ハナ
    family_name: 森
  - name: クロ
    id: Kuro
images:
  - key: ハナ
    refs: [Portrait_Hana_Swim.png]
ids:
  Yui: Yui_Sato
exclude:
  - Portrait_Test
  - Portrait_Test
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	set, err := overrides.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "chars", set.BasePath)
	assert.Len(t, set.Profiles, 2)
	assert.Equal(t, "Kuro", set.Profiles[1].ID)
	assert.Equal(t, map[string]string{"Yui": "Yui_Sato"}, set.Remap())
	assert.Equal(t, []string{"Portrait_Test"}, set.Excluded())
}

func TestLoadMissingFile(t *testing.T) {
	set, err := overrides.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, set.Profiles)
	assert.Empty(t, set.Remap())
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile:\n  - name: x\n"), 0o644))

	_, err := overrides.Load(path)
	require.Error(t, err)
	var parseErr *errors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, path, parseErr.File)
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty profile name", "profiles:\n  - name: \"\"\n    id: X\n"},
		{"image without refs", "images:\n  - key: ハナ\n"},
		{"empty remap target", "ids:\n  Yui: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := overrides.Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func testIndex(t *testing.T) *assets.Index {
	t.Helper()
	idx, err := assets.Build(
		[]assets.Label{
			{Key: "ハナ", Ref: "chars/Portrait_Hana.png"},
			{Key: "ハナコ", Ref: "chars/Portrait_Hana_Swim.png"},
		},
		[]string{
			"chars/Portrait_Hana.png",
			"chars/Portrait_Hana_Swim.png",
			"chars/Portrait_Kuro.png",
			"chars/Portrait_Test.png",
		},
	)
	require.NoError(t, err)
	return idx
}

func TestApply(t *testing.T) {
	set, err := overrides.Parse([]byte(sample))
	require.NoError(t, err)

	profiles := []reconciler.Profile{{PersonalName: "ハナ", FamilyNameRuby: "もり"}}
	idx := testIndex(t)

	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	gotProfiles, gotIndex, err := set.Apply(ctx, profiles, idx)
	require.NoError(t, err)

	// Upstream profile enriched, unknown name appended.
	require.Len(t, gotProfiles, 2)
	assert.Equal(t, reconciler.Profile{PersonalName: "ハナ", FamilyName: "森", FamilyNameRuby: "もり"}, gotProfiles[0])
	assert.Equal(t, reconciler.Profile{PersonalName: "クロ", IDOverride: "Kuro"}, gotProfiles[1])
	assert.Empty(t, profiles[0].FamilyName, "input profiles are not modified")

	// Injected image moved away from its upstream key.
	assert.Equal(t, []string{"chars/Portrait_Hana.png", "chars/Portrait_Hana_Swim.png"}, gotIndex.Images("ハナ"))
	assert.False(t, gotIndex.Has("ハナコ"))
	testLogger.AssertContains(t, "Moved injected image")

	// Excluded image gone from the result only.
	_, ok := gotIndex.RefForStem("Portrait_Test")
	assert.False(t, ok)
	_, ok = idx.RefForStem("Portrait_Test")
	assert.True(t, ok)
	assert.Equal(t, []string{"chars/Portrait_Hana.png"}, idx.Images("ハナ"))
}

func TestApplyMissingID(t *testing.T) {
	set := &overrides.Set{Profiles: []overrides.ProfileInjection{{Name: "シロ"}}}

	_, _, err := set.Apply(context.Background(), nil, testIndex(t))
	require.Error(t, err)
	assert.True(t, errors.IsMissingIDOverride(err))
	assert.True(t, errors.IsStructural(err))
}

func TestApplyUnknownImage(t *testing.T) {
	set := &overrides.Set{Images: []overrides.ImageInjection{{Key: "クロ", Refs: []string{"Portrait_Ghost.png"}}}}

	_, _, err := set.Apply(context.Background(), nil, testIndex(t))
	require.Error(t, err)
	assert.True(t, errors.IsImageNotFound(err))
}

func TestApplyOverrideFeedsReconciler(t *testing.T) {
	set := &overrides.Set{
		BasePath: "chars",
		Profiles: []overrides.ProfileInjection{{Name: "クロ", ID: "Kuro"}},
		Images:   []overrides.ImageInjection{{Key: "クロ", Refs: []string{"Portrait_Kuro"}}},
		Exclude:  []string{"Portrait_Test"},
	}

	profiles, idx, err := set.Apply(context.Background(), []reconciler.Profile{{PersonalName: "ハナ"}}, testIndex(t))
	require.NoError(t, err)

	r, err := reconciler.New()
	require.NoError(t, err)
	result, err := r.Reconcile(context.Background(), reconciler.Input{
		Profiles: profiles,
		Index:    idx,
		Remap:    set.Remap(),
		Excluded: set.Excluded(),
	})
	require.NoError(t, err)

	kuro, ok := result.Catalog.Get("Kuro")
	require.True(t, ok)
	assert.Equal(t, []string{"chars/Portrait_Kuro.png"}, kuro.Images)

	_, ok = result.Catalog.Owner("chars/Portrait_Test.png")
	assert.False(t, ok)
}
