// Package thumbs implements the thumbs command.
package thumbs

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/cmd/application"
	"github.com/agentstation/rollcall/internal/cmd/emoji"
	"github.com/agentstation/rollcall/internal/cmd/output"
	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

// NewCommand creates the thumbs command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "thumbs",
		GroupID: "management",
		Short:   "Render distribution thumbnails for the published catalog",
		Long: `Thumbs scales every image of the published catalog so that its shorter side
matches the thumbnail size and crops it to a centered square. Thumbnails that
already exist are left alone, so the command is cheap to rerun.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())

			cat, err := catalogs.LoadDir(app.OutputDir())
			if err != nil {
				return err
			}
			if cat.Len() == 0 {
				return errors.NewNotFoundError("catalog", app.OutputDir())
			}

			rc, err := app.Rollcall()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = app.ThumbnailDir()
			}
			stats, err := rc.Thumbnails(ctx, cat, dir)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			if format == output.FormatJSON || format == output.FormatYAML {
				return output.FormatAny(cmd.OutOrStdout(), stats, format)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d thumbnails rendered into %s\n",
				emoji.Success, stats.Processed, stats.Total, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default from configuration)")

	return cmd
}
