// Package app provides the application context and dependency management
// for the rollcall CLI. Configuration, logging and client construction are
// centralized here and handed to commands through application.Application.
package app

import (
	"context"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agentstation/rollcall"
	"github.com/agentstation/rollcall/cmd/application"
	"github.com/agentstation/rollcall/internal/upstream"
	"github.com/agentstation/rollcall/pkg/errors"
)

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// App represents the rollcall application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Command output, stdout when nil
	out io.Writer
}

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment that can be
// customized using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// OutputDir returns where catalogs are published.
func (a *App) OutputDir() string {
	return a.config.OutputDir
}

// ThumbnailDir returns where thumbnails are written.
func (a *App) ThumbnailDir() string {
	return a.config.ThumbnailDir
}

// WatchPaths returns the offline data directory, the image subdirectory and
// the overrides file, when configured.
func (a *App) WatchPaths() []string {
	var paths []string
	if a.config.UpstreamURL == "" && a.config.DataDir != "" {
		paths = append(paths, a.config.DataDir)
	}
	if a.config.ImageSubdir != "" {
		paths = append(paths, filepath.Join(a.config.AssetsDir, a.config.ImageSubdir))
	}
	if a.config.OverridesFile != "" {
		paths = append(paths, a.config.OverridesFile)
	}
	return paths
}

// Upstream returns a client for the upstream tables.
func (a *App) Upstream() *upstream.Client {
	client := upstream.NewClient(a.config.UpstreamURL, a.config.DataDir)
	if a.config.CacheTTL > 0 {
		client.TTL = a.config.CacheTTL
	}
	return client
}

// Rollcall returns a new client built from the configuration.
func (a *App) Rollcall(opts ...rollcall.Option) (rollcall.Client, error) {
	rc, err := rollcall.New(append(a.rollcallOptions(), opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "rollcall", "", err)
	}
	return rc, nil
}

// rollcallOptions constructs client options from the app configuration.
func (a *App) rollcallOptions() []rollcall.Option {
	c := a.config
	opts := []rollcall.Option{
		rollcall.WithUpstream(c.UpstreamURL, c.DataDir),
		rollcall.WithAssetsDir(c.AssetsDir),
		rollcall.WithImageSubdir(c.ImageSubdir),
		rollcall.WithOverrides(c.OverridesFile),
		rollcall.WithOutputDir(c.OutputDir),
		rollcall.WithSharedLabels(c.SharedLabels),
		rollcall.WithPatterns(c.Patterns),
		rollcall.WithThumbnailSize(c.ThumbnailSize),
		rollcall.WithConcurrency(c.Concurrency),
	}
	if c.CacheTTL > 0 {
		opts = append(opts, rollcall.WithCacheTTL(c.CacheTTL))
	}
	if c.UnusedDir != "" {
		opts = append(opts, rollcall.WithUnusedCopyDir(c.UnusedDir))
	}
	return opts
}

// ContextWithSignals creates a context that is cancelled when the application
// receives an interrupt or termination signal.
func ContextWithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.out = w
		return nil
	}
}
