package rollcall_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall"
	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

func fixture() *rollcall.StaticSource {
	return &rollcall.StaticSource{
		ProfileRecords: []reconciler.Profile{{FamilyName: "Mori", PersonalName: "Hana"}},
		LabelRecords:   []assets.Label{{Key: "Hana", Ref: "Portrait_Hana.png"}},
		Refs:           []string{"Portrait_Hana.png", "Portrait_Hana_Alt.png", "Student_Portrait_Rin.png"},
	}
}

func newClient(t *testing.T, opts ...rollcall.Option) rollcall.Client {
	t.Helper()
	logging.DisableLoggingForTest(t)
	rc, err := rollcall.New(opts...)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return rc
}

func TestNewRequiresInputs(t *testing.T) {
	_, err := rollcall.New()
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))

	_, err = rollcall.New(rollcall.WithAssetsDir(t.TempDir()))
	require.Error(t, err, "assets without tables should fail")
}

func TestNewRejectsInvalidPatterns(t *testing.T) {
	_, err := rollcall.New(
		rollcall.WithSource(fixture()),
		rollcall.WithPatterns(reconciler.Patterns{}),
	)
	require.Error(t, err)
}

func TestCatalogBeforeBuild(t *testing.T) {
	rc := newClient(t, rollcall.WithSource(fixture()))
	_, err := rc.Catalog()
	assert.True(t, errors.IsNotFound(err))
}

func TestBuild(t *testing.T) {
	rc := newClient(t, rollcall.WithSource(fixture()))

	build, err := rc.Build(context.Background())
	require.NoError(t, err)

	hana, ok := build.Catalog.Get("Hana")
	require.True(t, ok)
	assert.Equal(t, []string{"Portrait_Hana.png", "Portrait_Hana_Alt.png"}, hana.Images)

	rin, ok := build.Catalog.Get("Student_Portrait_Rin")
	require.True(t, ok)
	assert.True(t, rin.Placeholder)

	assert.Equal(t, []string{"Student_Portrait_Rin.png"}, build.Unused)
	assert.Nil(t, build.Previous)
	assert.Nil(t, build.Changes)

	cat, err := rc.Catalog()
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestBuildDuplicateAssetIsFatal(t *testing.T) {
	src := fixture()
	src.Refs = []string{"a/Portrait_Hana.png", "b/Portrait_Hana.png"}
	src.LabelRecords = nil
	rc := newClient(t, rollcall.WithSource(src))

	_, err := rc.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDuplicateAsset(err))

	_, err = rc.Catalog()
	assert.True(t, errors.IsNotFound(err), "a failed build publishes nothing")
}

func TestBuildWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), constants.OverridesFile)
	data := []byte("exclude:\n  - Student_Portrait_Rin\nids:\n  Hana: MoriHana\n")
	require.NoError(t, os.WriteFile(path, data, constants.FilePermissions))

	rc := newClient(t, rollcall.WithSource(fixture()), rollcall.WithOverrides(path))

	build, err := rc.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, build.Catalog.Len())
	_, ok := build.Catalog.Get("MoriHana")
	assert.True(t, ok)
	assert.Empty(t, build.Unused)
	assert.Equal(t, []string{"Student_Portrait_Rin"}, build.Overrides.Excluded())
}

func TestSave(t *testing.T) {
	assetsDir := t.TempDir()
	outDir := t.TempDir()
	unusedDir := filepath.Join(t.TempDir(), "unused")
	require.NoError(t, os.WriteFile(filepath.Join(assetsDir, "Student_Portrait_Rin.png"), []byte("png"), constants.FilePermissions))

	opts := []rollcall.Option{
		rollcall.WithSource(fixture()),
		rollcall.WithAssetsDir(assetsDir),
		rollcall.WithOutputDir(outDir),
		rollcall.WithUnusedCopyDir(unusedDir),
	}
	rc := newClient(t, opts...)

	build, err := rc.Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, rc.Save(context.Background(), build))

	for _, name := range []string{constants.CatalogFile, constants.ReviewFile, constants.ReportFile} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	copied, err := os.ReadFile(filepath.Join(unusedDir, "Student_Portrait_Rin.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(copied))

	resolved, err := catalogs.Load(filepath.Join(outDir, constants.CatalogFile))
	require.NoError(t, err)
	assert.Equal(t, 1, resolved.Len())
	review, err := catalogs.Load(filepath.Join(outDir, constants.ReviewFile))
	require.NoError(t, err)
	assert.Equal(t, 1, review.Len())

	t.Run("rebuild reports no changes", func(t *testing.T) {
		again, err := newClient(t, opts...).Build(context.Background())
		require.NoError(t, err)
		require.NotNil(t, again.Previous)
		require.NotNil(t, again.Changes)
		assert.False(t, again.Changes.HasChanges(), again.Changes.String())
	})
}

func TestSaveKeepsExistingReviewCopies(t *testing.T) {
	assetsDir := t.TempDir()
	unusedDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assetsDir, "Student_Portrait_Rin.png"), []byte("png"), constants.FilePermissions))
	require.NoError(t, os.WriteFile(filepath.Join(unusedDir, "Student_Portrait_Rin.png"), []byte("edited"), constants.FilePermissions))

	rc := newClient(t,
		rollcall.WithSource(fixture()),
		rollcall.WithAssetsDir(assetsDir),
		rollcall.WithOutputDir(t.TempDir()),
		rollcall.WithUnusedCopyDir(unusedDir),
	)
	build, err := rc.Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, rc.Save(context.Background(), build))

	kept, err := os.ReadFile(filepath.Join(unusedDir, "Student_Portrait_Rin.png"))
	require.NoError(t, err)
	assert.Equal(t, "edited", string(kept))
}

func TestBuildUnusedInInventoryOrder(t *testing.T) {
	src := fixture()
	src.Refs = append(src.Refs, "Event_Portrait_Aoi.png")
	rc := newClient(t, rollcall.WithSource(src))

	build, err := rc.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Event_Portrait_Aoi.png", "Student_Portrait_Rin.png"}, build.Unused)
}

func TestSaveRequiresOutputDir(t *testing.T) {
	rc := newClient(t, rollcall.WithSource(fixture()))
	build, err := rc.Build(context.Background())
	require.NoError(t, err)

	err = rc.Save(context.Background(), build)
	var cfgErr *errors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))

	assert.True(t, errors.IsValidationError(rc.Save(context.Background(), nil)))
}

func TestHooks(t *testing.T) {
	src := fixture()
	rc := newClient(t, rollcall.WithSource(src))

	var added, removed []string
	var updated int
	rc.OnEntityAdded(func(e catalogs.Entity) { added = append(added, e.ID) })
	rc.OnEntityUpdated(func(_, _ catalogs.Entity) { updated++ })
	rc.OnEntityRemoved(func(e catalogs.Entity) { removed = append(removed, e.ID) })

	_, err := rc.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Hana", "Student_Portrait_Rin"}, added)

	src.Refs = []string{"Portrait_Hana.png"}
	_, err = rc.Build(context.Background())
	require.NoError(t, err)

	assert.Len(t, added, 2)
	assert.Equal(t, []string{"Student_Portrait_Rin"}, removed)
	assert.Equal(t, 1, updated, "Hana lost its sibling image")
}
