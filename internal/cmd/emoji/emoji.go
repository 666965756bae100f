// Package emoji provides symbol constants for CLI output.
package emoji

// Symbol constants give commands a consistent visual language.
const (
	// Success marks a completed step: catalog written, validation passed.
	Success = "✓"

	// Error marks a failed step.
	Error = "✗"

	// Warning marks something that needs review, such as a placeholder
	// entity or a removed identifier.
	Warning = "!"

	// Info marks informational lines.
	Info = "i"

	// Watching marks watch mode status lines.
	Watching = "…"
)
