// Package application provides the application interface for rollcall commands.
//
// The Application interface defines the contract between the application layer and
// command implementations, enabling dependency injection and testability.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            rc, err := app.Rollcall()
//	            if err != nil {
//	                return err
//	            }
//	            build, err := rc.Build(cmd.Context())
//	            // ... use build
//	            return err
//	        },
//	    }
//	}
package application

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/rollcall"
	"github.com/agentstation/rollcall/internal/upstream"
)

// Application provides the application interface that commands need.
// The App struct from cmd/rollcall/app implements this interface.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Rollcall returns a client configured from the application settings.
	// Extra options are applied after the configured ones.
	Rollcall(opts ...rollcall.Option) (rollcall.Client, error)

	// Upstream returns a client for the upstream tables.
	Upstream() *upstream.Client

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, etc).
	OutputFormat() string

	// OutputDir returns where catalogs are published.
	OutputDir() string

	// ThumbnailDir returns where distribution thumbnails are written.
	ThumbnailDir() string

	// WatchPaths returns the inputs watch mode reacts to.
	WatchPaths() []string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
