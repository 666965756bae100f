package rollcall

import (
	"context"
	"os"
	"path/filepath"

	"github.com/agentstation/rollcall/internal/inventory"
	"github.com/agentstation/rollcall/internal/upstream"
	"github.com/agentstation/rollcall/pkg/assets"
	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/differ"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/overrides"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// Compile-time interface check to ensure proper implementation.
var _ Builder = (*client)(nil)

// Builder runs reconciliation passes.
type Builder interface {
	// Build gathers inputs and reconciles them without writing anything.
	Build(ctx context.Context) (*BuildResult, error)
}

// Source supplies the raw inputs of a build.
type Source interface {
	Profiles(ctx context.Context) ([]reconciler.Profile, error)
	Labels(ctx context.Context) ([]assets.Label, error)
	Inventory(ctx context.Context) ([]string, error)
}

// tableSource reads the upstream tables and scans the assets directory.
type tableSource struct {
	*upstream.Client
	root   string
	subdir string
}

// Inventory scans the assets directory.
func (s *tableSource) Inventory(ctx context.Context) ([]string, error) {
	return inventory.Scan(ctx, s.root, inventory.WithSubdir(s.subdir))
}

// StaticSource serves inputs held in memory.
type StaticSource struct {
	ProfileRecords []reconciler.Profile
	LabelRecords   []assets.Label
	Refs           []string
}

// Profiles implements Source.
func (s StaticSource) Profiles(context.Context) ([]reconciler.Profile, error) {
	return s.ProfileRecords, nil
}

// Labels implements Source.
func (s StaticSource) Labels(context.Context) ([]assets.Label, error) {
	return s.LabelRecords, nil
}

// Inventory implements Source.
func (s StaticSource) Inventory(context.Context) ([]string, error) {
	return s.Refs, nil
}

// BuildResult is the outcome of one build.
type BuildResult struct {
	*reconciler.Result

	// Overrides that were applied.
	Overrides *overrides.Set

	// Previous is the catalog found in the output directory, if any.
	Previous *catalogs.Catalog

	// Changes against Previous. Nil when there was no previous catalog.
	Changes *differ.Changeset

	// Unused lists leftover images that no name or profile explains.
	Unused []string
}

// Build performs a build with a clean step-by-step flow.
func (c *client) Build(ctx context.Context) (*BuildResult, error) {
	ctx = logging.WithOperation(ctx, "build")
	logger := logging.FromContext(ctx)

	// Step 1: Gather inputs
	if inv, ok := c.options.source.(interface{ Invalidate() }); ok {
		inv.Invalidate()
	}
	profiles, labels, refs, err := c.inputs(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Int("profiles", len(profiles)).
		Int("labels", len(labels)).
		Int("images", len(refs)).
		Msg("Gathered inputs")

	// Step 2: Index images by label
	idx, err := assets.Build(labels, refs,
		assets.WithSharedLabels(c.options.sharedLabels),
		assets.WithVariantSuffix(c.options.patterns.VariantSuffix),
	)
	if err != nil {
		return nil, errors.WrapResource("build", "index", "", err)
	}

	// Step 3: Apply manual overrides
	set := &overrides.Set{}
	if c.options.overrides != "" {
		if set, err = overrides.Load(c.options.overrides); err != nil {
			return nil, errors.WrapResource("load", "overrides", c.options.overrides, err)
		}
	}
	profiles, idx, err = set.Apply(ctx, profiles, idx)
	if err != nil {
		return nil, errors.WrapResource("apply", "overrides", c.options.overrides, err)
	}

	// Step 4: Reconcile
	result, err := c.reconciler.Reconcile(ctx, reconciler.Input{
		Profiles: profiles,
		Index:    idx,
		Remap:    set.Remap(),
		Excluded: set.Excluded(),
	})
	if err != nil {
		return nil, err
	}

	build := &BuildResult{
		Result:    result,
		Overrides: set,
		Unused:    unused(result, idx),
	}

	// Step 5: Compare with the published catalog
	if build.Previous, err = c.previous(); err != nil {
		return nil, err
	}
	if build.Previous != nil {
		build.Changes = differ.New().Catalogs(build.Previous, result.Catalog)
		for _, e := range build.Changes.Entities.Removed {
			logger.Warn().
				Str("entity", e.ID).
				Str("renamed_to", build.Changes.Entities.RenamedTo(e.ID)).
				Msg("Identifier removed since last build")
		}
	}

	// Step 6: Publish in memory and notify hooks
	c.mu.Lock()
	base := c.catalog
	c.catalog = result.Catalog
	c.mu.Unlock()
	if base == nil {
		base = build.Previous
	}
	c.hooks.triggerCatalogUpdate(base, result.Catalog)

	logger.Info().
		Int("entities", result.Catalog.Len()).
		Int("placeholders", result.Placeholders()).
		Int("diagnostics", len(result.Diagnostics)).
		Msg(result.Summary())

	return build, nil
}

func (c *client) inputs(ctx context.Context) ([]reconciler.Profile, []assets.Label, []string, error) {
	src := c.options.source
	profiles, err := src.Profiles(ctx)
	if err != nil {
		return nil, nil, nil, errors.WrapResource("fetch", "table", "profiles", err)
	}
	labels, err := src.Labels(ctx)
	if err != nil {
		return nil, nil, nil, errors.WrapResource("fetch", "table", "labels", err)
	}
	refs, err := src.Inventory(ctx)
	if err != nil {
		return nil, nil, nil, errors.WrapResource("scan", "inventory", "", err)
	}
	return profiles, labels, refs, nil
}

// previous loads the catalog published in the output directory. A directory
// without one yields nil.
func (c *client) previous() (*catalogs.Catalog, error) {
	if c.options.outputDir == "" {
		return nil, nil
	}
	path := filepath.Join(c.options.outputDir, constants.CatalogFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	cat, err := catalogs.LoadDir(c.options.outputDir)
	if err != nil {
		return nil, errors.WrapResource("load", "catalog", c.options.outputDir, err)
	}
	return cat, nil
}

// unused returns the images that became singleton placeholders, in
// inventory order.
func unused(result *reconciler.Result, idx *assets.Index) []string {
	orphaned := make(map[string]bool)
	for _, d := range result.Diagnostics.Of(reconciler.KindOrphanedImage) {
		orphaned[d.Image] = true
	}
	var refs []string
	for _, ref := range idx.Inventory() {
		if orphaned[ref] {
			refs = append(refs, ref)
		}
	}
	return refs
}
