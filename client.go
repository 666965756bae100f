// Package rollcall provides the main entry point for building a character
// catalog from upstream profile tables, labelled portrait images and manual
// overrides.
//
// A build gathers every input, runs one reconciliation pass and compares the
// result with the previously published catalog. Nothing is written until Save
// is called, so a failed pass never leaves a half-written catalog behind.
//
// Example usage:
//
//	rc, err := rollcall.New(
//	    rollcall.WithUpstream("https://example.com/tables", "./data"),
//	    rollcall.WithAssetsDir("./assets"),
//	    rollcall.WithOverrides("./overrides.yaml"),
//	    rollcall.WithOutputDir("./dist"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rc.OnEntityRemoved(func(e catalogs.Entity) {
//	    log.Printf("identifier %s disappeared", e.ID)
//	})
//
//	build, err := rc.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(build.Summary())
//
//	if err := rc.Save(ctx, build); err != nil {
//	    log.Fatal(err)
//	}
package rollcall

import (
	"sync"

	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// Compile-time interface check to ensure proper implementation.
var _ Catalog = (*client)(nil)

// Catalog provides copy-on-read access to the most recently built catalog.
type Catalog interface {
	Catalog() (*catalogs.Catalog, error)
}

// Catalog returns a copy of the catalog produced by the last successful build.
func (c *client) Catalog() (*catalogs.Catalog, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.catalog == nil {
		return nil, errors.NewNotFoundError("catalog", "latest build")
	}
	return catalogs.New(c.catalog.Entities()...), nil
}

// Client builds, publishes and watches a catalog.
type Client interface {

	// Catalog provides copy-on-read access to the catalog
	Catalog

	// Builder runs reconciliation passes
	Builder

	// Persistence publishes build outputs
	Persistence

	// Hooks provides access to event callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	// reconciler is created once so invalid patterns fail in New
	reconciler reconciler.Reconciler

	// catalog is the result of the last successful build
	mu      sync.RWMutex
	catalog *catalogs.Catalog

	hooks *hooks // Event hooks for catalog changes
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o := defaults().apply(opts...)
	if err := o.validate(); err != nil {
		return nil, err
	}

	r, err := reconciler.New(
		reconciler.WithPatterns(o.patterns),
		reconciler.WithLocalizedNames(o.localize),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "reconciler", "", err)
	}

	return &client{
		options:    o,
		reconciler: r,
		hooks:      newHooks(),
	}, nil
}
