package assets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/errors"
)

var inventory = []string{
	"Portrait/Portrait_Hana.png",
	"Portrait/Portrait_Hana_Alt.png",
	"Portrait/Portrait_Hana_Small.png",
	"Portrait/Student_Portrait_Rin.png",
	"Portrait/Portrait_Yui.png",
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"Portrait/Portrait_Hana.png": "Portrait_Hana",
		"Portrait_Hana.png":          "Portrait_Hana",
		"a/b/Portrait_Hana":          "Portrait_Hana",
		"x.y.png":                    "x.y",
	}
	for in, want := range tests {
		assert.Equal(t, want, assets.Stem(in), in)
	}
}

func TestBuild(t *testing.T) {
	labels := []assets.Label{
		{Key: "ハナ", Ref: "Portrait/Portrait_Hana"},
		{Key: "ハナ", Ref: "Portrait/Portrait_Hana"}, // repeated per scene
		{Key: "ユイ", Ref: "Portrait/Portrait_Yui.png"},
		{Key: "モブ", Ref: "UIs/NPC_Portrait_Null"},
		{Key: "", Ref: "Portrait/Portrait_Hana_Alt"},
	}

	idx, err := assets.Build(labels, inventory)
	require.NoError(t, err)

	assert.Equal(t, []string{"ハナ", "ユイ"}, idx.Keys())
	assert.Equal(t, []string{"Portrait/Portrait_Hana.png"}, idx.Images("ハナ"))
	assert.Equal(t, []string{"Portrait/Portrait_Yui.png"}, idx.Images("ユイ"))
	assert.False(t, idx.Has("モブ"))

	assert.Equal(t, []string{
		"Portrait_Hana",
		"Portrait_Hana_Alt",
		"Portrait_Yui",
		"Student_Portrait_Rin",
	}, idx.Stems(), "variants are left out of the inventory")
	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, []string{
		"Portrait/Portrait_Hana.png",
		"Portrait/Portrait_Hana_Alt.png",
		"Portrait/Portrait_Yui.png",
		"Portrait/Student_Portrait_Rin.png",
	}, idx.Inventory())

	ref, ok := idx.RefForStem("Student_Portrait_Rin")
	require.True(t, ok)
	assert.Equal(t, "Portrait/Student_Portrait_Rin.png", ref)
	assert.Empty(t, idx.Warnings())
}

func TestBuildErrors(t *testing.T) {
	t.Run("ref claimed by two keys", func(t *testing.T) {
		_, err := assets.Build([]assets.Label{
			{Key: "ハナ", Ref: "Portrait/Portrait_Hana"},
			{Key: "はな", Ref: "Portrait/Portrait_Hana.png"},
		}, inventory)
		require.Error(t, err)
		assert.True(t, errors.IsDuplicateAsset(err))
	})

	t.Run("stem collision in inventory", func(t *testing.T) {
		_, err := assets.Build(nil, []string{"a/Portrait_Hana.png", "b/Portrait_Hana.png"})
		require.Error(t, err)
		assert.True(t, errors.IsDuplicateAsset(err))
	})

	t.Run("dangling label", func(t *testing.T) {
		_, err := assets.Build([]assets.Label{{Key: "ゴースト", Ref: "Portrait/Portrait_Ghost"}}, inventory)
		require.Error(t, err)
		assert.True(t, errors.IsImageNotFound(err))
	})
}

func TestBuildSharedLabels(t *testing.T) {
	labels := []assets.Label{
		{Key: "ハナ", Ref: "Portrait/Portrait_Hana"},
		{Key: "はな", Ref: "Portrait/Portrait_Hana"},
	}

	idx, err := assets.Build(labels, inventory, assets.WithSharedLabels(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"Portrait/Portrait_Hana.png"}, idx.Images("ハナ"))
	assert.Equal(t, []string{"Portrait/Portrait_Hana.png"}, idx.Images("はな"))
	assert.Equal(t, []string{"ハナ", "はな"}, idx.Owners("Portrait/Portrait_Hana.png"))
	assert.Len(t, idx.Warnings(), 1)
}

func TestBuildOptions(t *testing.T) {
	idx, err := assets.Build(
		[]assets.Label{{Key: "モブ", Ref: "Portrait/Portrait_Yui"}},
		inventory,
		assets.WithNullMarker("Portrait_Yui"),
		assets.WithVariantSuffix(""),
	)
	require.NoError(t, err)
	assert.Empty(t, idx.Keys())
	assert.Contains(t, idx.Stems(), "Portrait_Hana_Small")
}

func TestInject(t *testing.T) {
	idx, err := assets.Build([]assets.Label{{Key: "ハナ", Ref: "Portrait/Portrait_Hana"}}, inventory)
	require.NoError(t, err)

	moved, err := idx.Inject("森ハナ", "Portrait/Portrait_Hana.png")
	require.NoError(t, err)
	assert.Equal(t, []string{"ハナ"}, moved)
	assert.False(t, idx.Has("ハナ"))
	assert.Equal(t, []string{"Portrait/Portrait_Hana.png"}, idx.Images("森ハナ"))

	moved, err = idx.Inject("森ハナ", "Portrait/Portrait_Hana")
	require.NoError(t, err)
	assert.Empty(t, moved)
	assert.Len(t, idx.Images("森ハナ"), 1)

	_, err = idx.Inject("森ハナ", "Portrait/Portrait_Missing.png")
	assert.True(t, errors.IsImageNotFound(err))
}

func TestExcludeAndClone(t *testing.T) {
	idx, err := assets.Build([]assets.Label{{Key: "ハナ", Ref: "Portrait/Portrait_Hana"}}, inventory)
	require.NoError(t, err)

	clone := idx.Clone()
	assert.True(t, clone.Exclude("Portrait_Hana"))
	assert.False(t, clone.Exclude("Portrait_Hana"))

	assert.False(t, clone.Has("ハナ"))
	assert.NotContains(t, clone.Stems(), "Portrait_Hana")
	_, ok := clone.Resolve("Portrait/Portrait_Hana")
	assert.False(t, ok)

	// the original is untouched
	assert.True(t, idx.Has("ハナ"))
	assert.Contains(t, idx.Stems(), "Portrait_Hana")
}
