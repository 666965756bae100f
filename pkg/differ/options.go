package differ

// Option is a functional option for configuring Differ.
type Option func(*differ)

// WithIgnoredFields sets fields to ignore during comparison.
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithDeepComparison enables/disables comparison of names and localized
// names. Images and aliases are always compared.
func WithDeepComparison(enabled bool) Option {
	return func(d *differ) {
		d.deepComparison = enabled
	}
}

// WithRenameDetection enables pairing a removed id with the added id that
// now owns its first image.
func WithRenameDetection(enabled bool) Option {
	return func(d *differ) {
		d.renames = enabled
	}
}
