// Package assets groups image references by the display name that labels them
// and records the full physical inventory for orphan detection.
package assets

import (
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/agentstation/rollcall/pkg/errors"
)

// Label associates a display-name key with an image reference.
type Label struct {
	Key string `json:"key" yaml:"key"`
	Ref string `json:"ref" yaml:"ref"`
}

// Stem returns the file name of ref without directory or extension.
func Stem(ref string) string {
	base := path.Base(ref)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Index maps display-name keys to image references. Every indexed reference
// is a member of the inventory.
type Index struct {
	keys     []string            // first-seen order
	images   map[string][]string // key -> refs, first-seen order
	owners   map[string][]string // ref -> keys
	refs     map[string]bool     // inventory refs
	byStem   map[string]string   // stem -> inventory ref
	byBare   map[string]string   // ref without extension -> inventory ref
	variants map[string]bool     // refs and bare refs of thumbnail variants
	warnings []string
}

func newIndex() *Index {
	return &Index{
		images:   make(map[string][]string),
		owners:   make(map[string][]string),
		refs:     make(map[string]bool),
		byStem:   make(map[string]string),
		byBare:   make(map[string]string),
		variants: make(map[string]bool),
	}
}

// Build indexes labels against the physical inventory.
//
// Inventory refs whose stems collide, or a ref claimed by two different keys,
// fail with a DuplicateAssetError. A label whose ref is not in the inventory
// fails with an ImageNotFoundError.
func Build(labels []Label, inventory []string, opts ...Option) (*Index, error) {
	o := defaultOptions().apply(opts...)
	idx := newIndex()

	for _, ref := range inventory {
		if o.variantSuffix != "" && strings.HasSuffix(Stem(ref), o.variantSuffix) {
			idx.variants[ref] = true
			idx.variants[bare(ref)] = true
			continue
		}
		if err := idx.addInventory(ref); err != nil {
			return nil, err
		}
	}

	for _, l := range labels {
		if l.Key == "" || l.Ref == "" {
			continue
		}
		if o.nullMarker != "" && strings.HasSuffix(bare(l.Ref), o.nullMarker) {
			continue
		}
		if idx.variants[l.Ref] {
			continue
		}
		ref, ok := idx.Resolve(l.Ref)
		if !ok {
			return nil, errors.NewImageNotFoundError(l.Ref, "label "+l.Key)
		}

		owners := idx.owners[ref]
		if slices.Contains(owners, l.Key) {
			continue
		}
		if len(owners) > 0 {
			if !o.sharedLabels {
				return nil, errors.NewDuplicateAssetError(ref, owners[0], l.Key)
			}
			idx.warnings = append(idx.warnings,
				fmt.Sprintf("image %s shared by %s and %s", ref, strings.Join(owners, ", "), l.Key))
		}
		idx.add(l.Key, ref)
	}

	return idx, nil
}

func (idx *Index) addInventory(ref string) error {
	if idx.refs[ref] {
		return nil
	}
	stem := Stem(ref)
	if prev, ok := idx.byStem[stem]; ok {
		return errors.NewDuplicateAssetError(stem, prev, ref)
	}
	idx.refs[ref] = true
	idx.byStem[stem] = ref
	idx.byBare[bare(ref)] = ref
	return nil
}

func (idx *Index) add(key, ref string) {
	if _, ok := idx.images[key]; !ok {
		idx.keys = append(idx.keys, key)
	}
	idx.images[key] = append(idx.images[key], ref)
	idx.owners[ref] = append(idx.owners[ref], key)
}

// Resolve maps a label reference onto its inventory reference. The label
// may omit the file extension.
func (idx *Index) Resolve(ref string) (string, bool) {
	if idx.refs[ref] {
		return ref, true
	}
	if r, ok := idx.byBare[ref]; ok {
		return r, true
	}
	if r, ok := idx.byBare[bare(ref)]; ok {
		return r, true
	}
	return "", false
}

// Keys returns the display-name keys in first-seen order.
func (idx *Index) Keys() []string {
	return slices.Clone(idx.keys)
}

// SortedKeys returns the display-name keys in lexical order.
func (idx *Index) SortedKeys() []string {
	keys := slices.Clone(idx.keys)
	sort.Strings(keys)
	return keys
}

// Images returns the refs indexed under key.
func (idx *Index) Images(key string) []string {
	return slices.Clone(idx.images[key])
}

// Has reports whether key labels any image.
func (idx *Index) Has(key string) bool {
	return len(idx.images[key]) > 0
}

// Owners returns the keys that label ref.
func (idx *Index) Owners(ref string) []string {
	return slices.Clone(idx.owners[ref])
}

// Stems returns every inventory stem, sorted.
func (idx *Index) Stems() []string {
	stems := make([]string, 0, len(idx.byStem))
	for s := range idx.byStem {
		stems = append(stems, s)
	}
	sort.Strings(stems)
	return stems
}

// RefForStem returns the inventory ref with the given stem.
func (idx *Index) RefForStem(stem string) (string, bool) {
	ref, ok := idx.byStem[stem]
	return ref, ok
}

// Inventory returns every inventory ref sorted by stem.
func (idx *Index) Inventory() []string {
	stems := idx.Stems()
	refs := make([]string, len(stems))
	for i, s := range stems {
		refs[i] = idx.byStem[s]
	}
	return refs
}

// Len returns the number of inventory images.
func (idx *Index) Len() int {
	return len(idx.byStem)
}

// Warnings returns the non-fatal problems found while building.
func (idx *Index) Warnings() []string {
	return slices.Clone(idx.warnings)
}

// Inject labels ref with key, removing it from any other key first.
// It returns the keys ref was moved away from.
func (idx *Index) Inject(key, ref string) ([]string, error) {
	resolved, ok := idx.Resolve(ref)
	if !ok {
		return nil, errors.NewImageNotFoundError(ref, "image injection "+key)
	}

	owners := idx.owners[resolved]
	var moved []string
	for _, owner := range owners {
		if owner == key {
			continue
		}
		idx.removeFromKey(owner, resolved)
		moved = append(moved, owner)
	}
	if slices.Contains(owners, key) {
		idx.owners[resolved] = []string{key}
	} else {
		idx.owners[resolved] = nil
		idx.add(key, resolved)
	}
	return moved, nil
}

// Exclude removes the image with the given stem from the inventory and from
// every key. It reports whether the stem was present.
func (idx *Index) Exclude(stem string) bool {
	ref, ok := idx.byStem[stem]
	if !ok {
		return false
	}
	for _, owner := range idx.owners[ref] {
		idx.removeFromKey(owner, ref)
	}
	delete(idx.owners, ref)
	delete(idx.refs, ref)
	delete(idx.byStem, stem)
	delete(idx.byBare, bare(ref))
	return true
}

func (idx *Index) removeFromKey(key, ref string) {
	idx.images[key] = slices.DeleteFunc(idx.images[key], func(r string) bool { return r == ref })
	if len(idx.images[key]) == 0 {
		delete(idx.images, key)
		idx.keys = slices.DeleteFunc(idx.keys, func(k string) bool { return k == key })
	}
}

// Clone returns a deep copy of the index.
func (idx *Index) Clone() *Index {
	c := newIndex()
	c.keys = slices.Clone(idx.keys)
	for k, v := range idx.images {
		c.images[k] = slices.Clone(v)
	}
	for k, v := range idx.owners {
		c.owners[k] = slices.Clone(v)
	}
	for k, v := range idx.refs {
		c.refs[k] = v
	}
	for k, v := range idx.byStem {
		c.byStem[k] = v
	}
	for k, v := range idx.byBare {
		c.byBare[k] = v
	}
	for k, v := range idx.variants {
		c.variants[k] = v
	}
	c.warnings = slices.Clone(idx.warnings)
	return c
}

func bare(ref string) string {
	return strings.TrimSuffix(ref, path.Ext(path.Base(ref)))
}
