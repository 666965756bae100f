// Package inventory lists the image files physically present under an asset
// root.
package inventory

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

type options struct {
	ext    string
	subdir string
}

// Option configures Scan.
type Option func(*options)

// WithExtension sets the image file extension to collect.
func WithExtension(ext string) Option {
	return func(o *options) {
		o.ext = ext
	}
}

// WithSubdir restricts the walk to a directory below the root. Refs stay
// relative to the root.
func WithSubdir(dir string) Option {
	return func(o *options) {
		o.subdir = dir
	}
}

// Scan returns slash-separated refs, relative to root, of every image file
// below root, sorted. Hidden directories are skipped.
func Scan(ctx context.Context, root string, opts ...Option) ([]string, error) {
	o := &options{ext: constants.ImageExt}
	for _, opt := range opts {
		opt(o)
	}

	start := root
	if o.subdir != "" {
		start = filepath.Join(root, filepath.FromSlash(o.subdir))
	}

	var refs []string
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != start && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), o.ext) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		refs = append(refs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO("walk", start, err)
	}

	sort.Strings(refs)
	logging.FromContext(ctx).Debug().
		Str("root", root).
		Int("images", len(refs)).
		Msg("Scanned inventory")
	return refs, nil
}
