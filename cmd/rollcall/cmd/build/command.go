// Package build implements the build command.
package build

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall"
	"github.com/agentstation/rollcall/cmd/application"
	"github.com/agentstation/rollcall/internal/cmd/emoji"
	"github.com/agentstation/rollcall/internal/cmd/output"
	"github.com/agentstation/rollcall/pkg/differ"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// NewCommand creates the build command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		copyUnused string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Reconcile inputs and publish the catalog",
		Long: `Build reads the upstream tables, scans the image inventory, applies the
overrides file and reconciles everything into one catalog.

Resolved entities are written to catalog.yaml, placeholders awaiting a manual
identifier to review.yaml, and a summary to REVIEW.md. Identifiers that
disappeared since the previous build are reported as warnings.`,
		Example: `  rollcall build
  rollcall build --dry-run -o json
  rollcall build --copy-unused ./unused`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())

			var opts []rollcall.Option
			if copyUnused != "" {
				opts = append(opts, rollcall.WithUnusedCopyDir(copyUnused))
			}
			rc, err := app.Rollcall(opts...)
			if err != nil {
				return err
			}

			result, err := rc.Build(ctx)
			if err != nil {
				return err
			}
			if !dryRun {
				if err := rc.Save(ctx, result); err != nil {
					return err
				}
			}

			return Print(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), result)
		},
	}

	cmd.Flags().StringVar(&copyUnused, "copy-unused", "", "copy leftover images into this directory for review")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "reconcile without writing anything")

	return cmd
}

// Summary is the machine-readable outcome of a build.
type Summary struct {
	Entities     int                         `json:"entities" yaml:"entities"`
	Placeholders int                         `json:"placeholders" yaml:"placeholders"`
	Stats        reconciler.ResultStatistics `json:"stats" yaml:"stats"`
	Diagnostics  reconciler.Diagnostics      `json:"diagnostics" yaml:"diagnostics"`
	Warnings     []string                    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Changes      *differ.ChangesetSummary    `json:"changes,omitempty" yaml:"changes,omitempty"`
	Unused       []string                    `json:"unused,omitempty" yaml:"unused,omitempty"`
}

// NewSummary condenses a build result.
func NewSummary(result *rollcall.BuildResult) Summary {
	s := Summary{
		Entities:     result.Catalog.Len(),
		Placeholders: result.Placeholders(),
		Stats:        result.Metadata.Stats,
		Diagnostics:  result.Diagnostics,
		Warnings:     result.Warnings,
		Unused:       result.Unused,
	}
	if result.Changes != nil {
		s.Changes = &result.Changes.Summary
	}
	return s
}

// Print writes the outcome of a build in the given format.
func Print(w io.Writer, format output.Format, result *rollcall.BuildResult) error {
	switch format {
	case output.FormatJSON, output.FormatYAML:
		return output.FormatAny(w, NewSummary(result), format)
	}

	fmt.Fprintf(w, "%s %s\n", emoji.Success, result.Summary())
	if n := result.Placeholders(); n > 0 {
		fmt.Fprintf(w, "%s %d placeholder entities need an identifier (see review.yaml)\n", emoji.Warning, n)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "%s %s\n", emoji.Warning, warning)
	}
	if result.Changes != nil && result.Changes.BreaksIDs() {
		fmt.Fprintf(w, "%s %d identifiers removed since the last build\n",
			emoji.Warning, result.Changes.Summary.EntitiesRemoved)
	}

	if format == output.FormatWide && len(result.Diagnostics) > 0 {
		fmt.Fprintln(w)
		return output.FormatDiagnostics(w, result.Diagnostics, format)
	}
	return nil
}
