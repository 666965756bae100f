package assets

import "github.com/agentstation/rollcall/pkg/constants"

// Option configures Build.
type Option func(*options)

type options struct {
	sharedLabels  bool
	nullMarker    string
	variantSuffix string
}

func defaultOptions() *options {
	return &options{
		nullMarker:    constants.NullPortrait,
		variantSuffix: constants.VariantSuffix,
	}
}

func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSharedLabels allows one image to be labelled by several display names.
// Shared refs are kept under every key and reported as warnings instead of
// failing with a DuplicateAssetError.
func WithSharedLabels(enabled bool) Option {
	return func(o *options) {
		o.sharedLabels = enabled
	}
}

// WithNullMarker sets the ref suffix of upstream placeholder portraits.
// Labels pointing at it are skipped. An empty marker disables the check.
func WithNullMarker(marker string) Option {
	return func(o *options) {
		o.nullMarker = marker
	}
}

// WithVariantSuffix sets the stem suffix of thumbnail variants, which are
// left out of the inventory.
func WithVariantSuffix(suffix string) Option {
	return func(o *options) {
		o.variantSuffix = suffix
	}
}
