package rollcall

import (
	"time"

	"github.com/agentstation/rollcall/internal/upstream"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// options holds the configuration of a client.
type options struct {
	// inputs
	source      Source
	upstreamURL string
	dataDir     string
	cacheTTL    time.Duration
	assetsDir   string
	imageSubdir string
	overrides   string

	// reconciliation
	sharedLabels bool
	patterns     reconciler.Patterns
	localize     bool

	// outputs
	outputDir     string
	unusedDir     string
	thumbnailSize int
	concurrency   int
}

// Option is a function that configures a Client.
type Option func(*options)

func defaults() *options {
	return &options{
		cacheTTL:      constants.CacheTTL,
		patterns:      reconciler.DefaultPatterns(),
		localize:      true,
		thumbnailSize: constants.DefaultThumbnailSize,
		concurrency:   constants.DefaultConcurrency,
	}
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// validate checks the options and fills in the default input source.
func (o *options) validate() error {
	if o.source != nil {
		return nil
	}
	if o.assetsDir == "" {
		return errors.NewConfigError("rollcall", "an assets directory or a source is required", nil)
	}
	if o.upstreamURL == "" && o.dataDir == "" {
		return errors.NewConfigError("rollcall", "an upstream url or a data directory is required", nil)
	}
	tables := upstream.NewClient(o.upstreamURL, o.dataDir)
	tables.TTL = o.cacheTTL
	o.source = &tableSource{
		Client: tables,
		root:   o.assetsDir,
		subdir: o.imageSubdir,
	}
	return nil
}

// WithSource replaces the upstream tables and inventory scan with src.
func WithSource(src Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithUpstream configures where the upstream tables are downloaded from and
// cached. An empty url reads previously fetched tables from dataDir only.
func WithUpstream(url, dataDir string) Option {
	return func(o *options) {
		o.upstreamURL = url
		o.dataDir = dataDir
	}
}

// WithCacheTTL configures how long downloaded tables stay fresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// WithAssetsDir configures the root that image references are relative to.
func WithAssetsDir(dir string) Option {
	return func(o *options) {
		o.assetsDir = dir
	}
}

// WithImageSubdir restricts the inventory scan to a directory below the
// assets root.
func WithImageSubdir(dir string) Option {
	return func(o *options) {
		o.imageSubdir = dir
	}
}

// WithOverrides configures the manual override file.
func WithOverrides(path string) Option {
	return func(o *options) {
		o.overrides = path
	}
}

// WithOutputDir configures where catalogs and the review report are written.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		o.outputDir = dir
	}
}

// WithSharedLabels allows one image to carry several display names.
func WithSharedLabels(enabled bool) Option {
	return func(o *options) {
		o.sharedLabels = enabled
	}
}

// WithPatterns configures the filename rules used for sibling expansion.
func WithPatterns(patterns reconciler.Patterns) Option {
	return func(o *options) {
		o.patterns = patterns
	}
}

// WithLocalizedNames controls default localized display names.
func WithLocalizedNames(enabled bool) Option {
	return func(o *options) {
		o.localize = enabled
	}
}

// WithUnusedCopyDir copies leftover images into dir on Save when there are
// fewer than constants.MaxUnusedCopies of them.
func WithUnusedCopyDir(dir string) Option {
	return func(o *options) {
		o.unusedDir = dir
	}
}

// WithThumbnailSize configures the side length of generated thumbnails.
func WithThumbnailSize(size int) Option {
	return func(o *options) {
		o.thumbnailSize = size
	}
}

// WithConcurrency bounds the thumbnail workers.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
