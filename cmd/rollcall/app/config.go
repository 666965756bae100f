package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// EnvPrefix is the prefix of every environment variable the CLI reads.
const EnvPrefix = "ROLLCALL"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Inputs
	UpstreamURL   string
	DataDir       string
	CacheTTL      time.Duration
	AssetsDir     string
	ImageSubdir   string
	OverridesFile string

	// Outputs
	OutputDir     string
	ThumbnailDir  string
	UnusedDir     string
	ThumbnailSize int
	Concurrency   int

	// Reconciliation
	SharedLabels bool
	Patterns     reconciler.Patterns

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (ROLLCALL_*)
// 3. .env files
// 4. Config file (./rollcall.yaml or ~/.rollcall.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read config file if it exists
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName("rollcall")
		v.AddConfigPath(".")
		if _, err := os.Stat("rollcall.yaml"); err != nil {
			if home, err := os.UserHomeDir(); err == nil {
				v.SetConfigName(".rollcall")
				v.AddConfigPath(home)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	config := &Config{
		// Global flags (may be overridden by cobra flags later)
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		// Config file
		ConfigFile: v.ConfigFileUsed(),

		// Inputs
		UpstreamURL:   v.GetString("upstream_url"),
		DataDir:       expandHome(v.GetString("data_dir")),
		CacheTTL:      v.GetDuration("cache_ttl"),
		AssetsDir:     expandHome(v.GetString("assets_dir")),
		ImageSubdir:   v.GetString("image_subdir"),
		OverridesFile: expandHome(v.GetString("overrides")),

		// Outputs
		OutputDir:     expandHome(v.GetString("output_dir")),
		ThumbnailDir:  expandHome(v.GetString("thumbnail_dir")),
		UnusedDir:     expandHome(v.GetString("unused_dir")),
		ThumbnailSize: v.GetInt("thumbnail_size"),
		Concurrency:   v.GetInt("concurrency"),

		// Reconciliation
		SharedLabels: v.GetBool("shared_labels"),
		Patterns: reconciler.Patterns{
			Marker:        v.GetString("patterns.marker"),
			MaxDepth:      v.GetInt("patterns.max_depth"),
			VariantSuffix: v.GetString("patterns.variant_suffix"),
			Denylist:      v.GetStringSlice("patterns.denylist"),
		},

		// Logging configuration
		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	return config, nil
}

// setDefaults registers the default value of every key.
func setDefaults(v *viper.Viper) {
	patterns := reconciler.DefaultPatterns()

	v.SetDefault("data_dir", constants.DefaultCachePath)
	v.SetDefault("cache_ttl", constants.CacheTTL)
	v.SetDefault("assets_dir", ".")
	v.SetDefault("overrides", constants.OverridesFile)
	v.SetDefault("output_dir", "dist")
	v.SetDefault("thumbnail_dir", filepath.Join("dist", "thumbs"))
	v.SetDefault("thumbnail_size", constants.DefaultThumbnailSize)
	v.SetDefault("concurrency", constants.DefaultConcurrency)
	v.SetDefault("patterns.marker", patterns.Marker)
	v.SetDefault("patterns.max_depth", patterns.MaxDepth)
	v.SetDefault("patterns.variant_suffix", patterns.VariantSuffix)
	v.SetDefault("patterns.denylist", patterns.Denylist)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
