package reconciler

// options configures a reconciler.
type options struct {
	patterns Patterns
	localize bool
	validate bool
}

func defaultOptions() *options {
	return &options{
		patterns: DefaultPatterns(),
		localize: true,
		validate: true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithPatterns sets the filename predicates used by cluster expansion.
func WithPatterns(patterns Patterns) Option {
	return func(o *options) error {
		if err := patterns.Validate(); err != nil {
			return err
		}
		o.patterns = patterns
		return nil
	}
}

// WithLocalizedNames controls whether profiled entities get default
// localized display names.
func WithLocalizedNames(enabled bool) Option {
	return func(o *options) error {
		o.localize = enabled
		return nil
	}
}

// WithValidation controls the final invariant check of the catalog.
func WithValidation(enabled bool) Option {
	return func(o *options) error {
		o.validate = enabled
		return nil
	}
}
