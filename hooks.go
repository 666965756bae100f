package rollcall

import (
	"sync"

	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/differ"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hooks provides event callback registration.
type Hooks interface {
	// OnEntityAdded registers a callback for when entities are added
	OnEntityAdded(EntityAddedHook)

	// OnEntityUpdated registers a callback for when entities are updated
	OnEntityUpdated(EntityUpdatedHook)

	// OnEntityRemoved registers a callback for when entities are removed
	OnEntityRemoved(EntityRemovedHook)
}

// Hook function types for entity events
type (
	// EntityAddedHook is called when an entity is added to the catalog
	EntityAddedHook func(entity catalogs.Entity)

	// EntityUpdatedHook is called when an entity is updated in the catalog
	EntityUpdatedHook func(old, new catalogs.Entity)

	// EntityRemovedHook is called when an entity is removed from the catalog
	EntityRemovedHook func(entity catalogs.Entity)
)

// OnEntityAdded registers a callback for when entities are added.
func (c *client) OnEntityAdded(fn EntityAddedHook) { c.hooks.OnEntityAdded(fn) }

// OnEntityUpdated registers a callback for when entities are updated.
func (c *client) OnEntityUpdated(fn EntityUpdatedHook) { c.hooks.OnEntityUpdated(fn) }

// OnEntityRemoved registers a callback for when entities are removed.
func (c *client) OnEntityRemoved(fn EntityRemovedHook) { c.hooks.OnEntityRemoved(fn) }

// hooks manages event callbacks for catalog changes
type hooks struct {
	mu              sync.RWMutex
	onEntityAdded   []EntityAddedHook
	onEntityUpdated []EntityUpdatedHook
	onEntityRemoved []EntityRemovedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnEntityAdded registers a callback for when entities are added
func (h *hooks) OnEntityAdded(fn EntityAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntityAdded = append(h.onEntityAdded, fn)
}

// OnEntityUpdated registers a callback for when entities are updated
func (h *hooks) OnEntityUpdated(fn EntityUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntityUpdated = append(h.onEntityUpdated, fn)
}

// OnEntityRemoved registers a callback for when entities are removed
func (h *hooks) OnEntityRemoved(fn EntityRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEntityRemoved = append(h.onEntityRemoved, fn)
}

// triggerCatalogUpdate compares old and new catalogs and triggers appropriate hooks.
// A nil old catalog reports every entity as added.
func (h *hooks) triggerCatalogUpdate(oldCatalog, newCatalog *catalogs.Catalog) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.onEntityAdded)+len(h.onEntityUpdated)+len(h.onEntityRemoved) == 0 {
		return
	}

	changes := differ.New(differ.WithRenameDetection(false)).Catalogs(oldCatalog, newCatalog).Entities

	for _, entity := range changes.Added {
		for _, hook := range h.onEntityAdded {
			hook(entity)
		}
	}

	for _, update := range changes.Updated {
		for _, hook := range h.onEntityUpdated {
			hook(update.Existing, update.New)
		}
	}

	for _, entity := range changes.Removed {
		for _, hook := range h.onEntityRemoved {
			hook(entity)
		}
	}
}
