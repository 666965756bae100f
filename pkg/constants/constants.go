// Package constants provides shared constants used throughout the rollcall codebase.
// This includes timeouts, file permissions, naming patterns and default locations
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for upstream table downloads
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// WatchDebounce is how long the watcher waits for a burst of file events to settle
	WatchDebounce = 500 * time.Millisecond
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Cache constants
const (
	// CacheTTL is how long a downloaded upstream table is considered fresh
	CacheTTL = 24 * time.Hour

	// CacheCleanupInterval is how often to clean expired in-memory cache entries
	CacheCleanupInterval = 10 * time.Minute
)

// Image naming patterns
const (
	// PortraitMarker is the token principal portrait stems contain
	PortraitMarker = "Portrait"

	// MaxSegmentsAfterMarker is how deep a principal portrait may sit in a variant chain
	MaxSegmentsAfterMarker = 2

	// VariantSuffix marks thumbnail variants of a portrait
	VariantSuffix = "_Small"

	// NullPortrait is the upstream placeholder portrait reference
	NullPortrait = "NPC_Portrait_Null"

	// ImageExt is the extension of inventory images
	ImageExt = ".png"
)

// Limit constants
const (
	// DefaultThumbnailSize is the side length of distribution thumbnails
	DefaultThumbnailSize = 128

	// DefaultConcurrency bounds the thumbnail worker fan-out
	DefaultConcurrency = 4

	// MaxUnusedCopies is the unused image count below which orphans are copied for review
	MaxUnusedCopies = 50
)

// Default file names
const (
	// CatalogFile holds fully resolved entities
	CatalogFile = "catalog.yaml"

	// ReviewFile holds placeholder entities awaiting manual ids
	ReviewFile = "review.yaml"

	// ReportFile is the Markdown review report
	ReportFile = "REVIEW.md"

	// OverridesFile is the default manual override file
	OverridesFile = "overrides.yaml"

	// ProfileTable is the upstream character profile table
	ProfileTable = "LocalizeCharProfileExcelTable.json"

	// LabelTable is the upstream scenario character name table
	LabelTable = "ScenarioCharacterNameExcelTable.json"
)

// Path constants
const (
	// DefaultConfigPath is the default path for configuration files
	DefaultConfigPath = "~/.rollcall.yaml"

	// DefaultCachePath is the default path for downloaded upstream tables
	DefaultCachePath = "~/.rollcall/cache"
)
