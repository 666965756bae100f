// Package fetch implements the fetch command.
package fetch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/cmd/application"
	"github.com/agentstation/rollcall/internal/cmd/emoji"
	"github.com/agentstation/rollcall/internal/upstream"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

// NewCommand creates the fetch command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "fetch",
		GroupID: "management",
		Short:   "Download the upstream tables into the data directory",
		Long: `Fetch downloads the character profile table and the scenario name table
into the data directory. Tables younger than the cache TTL are kept unless
--force is given. Later builds can then run offline with an empty upstream url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())

			client := app.Upstream()
			if client.BaseURL == "" {
				return errors.NewConfigError("fetch", "no upstream url configured (--upstream-url or ROLLCALL_UPSTREAM_URL)", nil)
			}
			if force {
				client.TTL = 0
			}

			if err := client.FetchAll(ctx); err != nil {
				return err
			}
			for _, table := range upstream.Tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", emoji.Success, client.Path(table))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "download even when the cached tables are fresh")

	return cmd
}
