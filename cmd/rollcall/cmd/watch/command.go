// Package watch implements the watch command.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall"
	"github.com/agentstation/rollcall/cmd/application"
	"github.com/agentstation/rollcall/cmd/rollcall/cmd/build"
	"github.com/agentstation/rollcall/internal/cmd/emoji"
	"github.com/agentstation/rollcall/internal/cmd/output"
	fswatch "github.com/agentstation/rollcall/internal/watch"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

// NewCommand creates the watch command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: "core",
		Short:   "Rebuild whenever the overrides or the offline tables change",
		Long: `Watch builds once and then rebuilds and saves the catalog every time the
overrides file, the data directory (when no upstream url is set) or the image
directory changes. Bursts of changes are coalesced into a single build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			w := cmd.OutOrStdout()
			format := output.DetectFormat(app.OutputFormat())

			rc, err := app.Rollcall()
			if err != nil {
				return err
			}
			run := func(ctx context.Context, _ []string) error {
				return buildAndSave(ctx, rc, w, format)
			}

			if err := run(ctx, nil); err != nil {
				app.Logger().Error().Err(err).Msg("Initial build failed")
			}

			paths := existing(app.WatchPaths())
			if len(paths) == 0 {
				return errors.NewConfigError("watch", "nothing to watch: configure an overrides file, a data directory or an image directory", nil)
			}
			watcher, err := fswatch.New(run, paths)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintf(w, "%s watching %s\n", emoji.Watching, p)
			}
			return watcher.Run(ctx)
		},
	}

	return cmd
}

func buildAndSave(ctx context.Context, rc rollcall.Client, w io.Writer, format output.Format) error {
	result, err := rc.Build(ctx)
	if err != nil {
		return err
	}
	if err := rc.Save(ctx, result); err != nil {
		return err
	}
	return build.Print(w, format, result)
}

func existing(paths []string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}
