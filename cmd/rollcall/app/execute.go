package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/agentstation/rollcall/internal/cmd/output"
)

// Execute runs the rollcall CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "rollcall",
		Short:   "Character catalog builder",
		Version: a.version,
		Long: `Rollcall reconciles character profile tables with labelled portrait
images and publishes one catalog with a stable identifier per character.

Images nobody could be matched to become placeholder entries in review.yaml
and are summarised in REVIEW.md. Manual corrections go into the overrides
file and are applied on the next build.

Configuration is read from ./rollcall.yaml or ~/.rollcall.yaml (or the file
named by ROLLCALL_CONFIG), ROLLCALL_* environment variables and .env files.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	a.addGlobalFlags(rootCmd.PersistentFlags())
	a.addLocationFlags(rootCmd.PersistentFlags())

	rootCmd.SetVersionTemplate("rollcall {{.Version}}\n")
	if a.out != nil {
		rootCmd.SetOut(a.out)
	}

	a.registerCommands(rootCmd)

	return rootCmd
}

// addGlobalFlags registers output and logging flags.
func (a *App) addGlobalFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml, wide")
	flags.StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")
}

// addLocationFlags registers input and output locations, defaulting to the
// loaded configuration.
func (a *App) addLocationFlags(flags *pflag.FlagSet) {
	flags.StringVar(&a.config.UpstreamURL, "upstream-url", a.config.UpstreamURL, "base url of the upstream tables (empty reads --data-dir only)")
	flags.StringVar(&a.config.DataDir, "data-dir", a.config.DataDir, "directory holding downloaded upstream tables")
	flags.DurationVar(&a.config.CacheTTL, "cache-ttl", a.config.CacheTTL, "age after which downloaded tables are fetched again")
	flags.StringVar(&a.config.AssetsDir, "assets", a.config.AssetsDir, "root directory image references are relative to")
	flags.StringVar(&a.config.ImageSubdir, "images", a.config.ImageSubdir, "directory below --assets to scan for images")
	flags.StringVar(&a.config.OverridesFile, "overrides", a.config.OverridesFile, "manual override file")
	flags.StringVar(&a.config.OutputDir, "out", a.config.OutputDir, "directory catalogs and the review report are written to")
	flags.BoolVar(&a.config.SharedLabels, "shared-labels", a.config.SharedLabels, "allow one image to carry several display names")
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	if _, err := output.ParseFormat(format); err != nil {
		return err
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
