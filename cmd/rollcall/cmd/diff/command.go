// Package diff implements the diff command.
package diff

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/cmd/application"
	"github.com/agentstation/rollcall/internal/cmd/emoji"
	"github.com/agentstation/rollcall/internal/cmd/output"
	"github.com/agentstation/rollcall/pkg/differ"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

// NewCommand creates the diff command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		strategy      string
		failOnRemoved bool
	)

	cmd := &cobra.Command{
		Use:     "diff",
		GroupID: "core",
		Short:   "Compare a fresh build with the published catalog",
		Long: `Diff runs a build without writing anything and compares it with the
catalog published in the output directory.

Published identifiers are referenced by downstream data, so removed and
renamed identifiers are listed first.`,
		Example: `  rollcall diff
  rollcall diff --strategy removals-only --fail-on-removed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			w := cmd.OutOrStdout()

			apply, err := parseStrategy(strategy)
			if err != nil {
				return err
			}

			rc, err := app.Rollcall()
			if err != nil {
				return err
			}
			result, err := rc.Build(ctx)
			if err != nil {
				return err
			}
			if result.Changes == nil {
				fmt.Fprintf(w, "%s No published catalog in %s\n", emoji.Info, app.OutputDir())
				return nil
			}

			changes := result.Changes.Filter(apply)
			format := output.DetectFormat(app.OutputFormat())
			if format == output.FormatTable {
				changes.Print(w)
			} else if err := output.FormatChangeset(w, changes, format); err != nil {
				return err
			}

			if failOnRemoved && result.Changes.BreaksIDs() {
				return errors.NewValidationError("catalog", result.Changes.Summary.EntitiesRemoved,
					"published identifiers would be removed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(differ.ApplyAll), "changes to show: all, additive, removals-only")
	cmd.Flags().BoolVar(&failOnRemoved, "fail-on-removed", false, "exit non-zero when published identifiers would be removed")

	return cmd
}

func parseStrategy(s string) (differ.ApplyStrategy, error) {
	switch strategy := differ.ApplyStrategy(s); strategy {
	case differ.ApplyAll, differ.ApplyAdditive, differ.ApplyRemovalsOnly:
		return strategy, nil
	default:
		return "", errors.NewValidationError("strategy", s, "must be one of: all, additive, removals-only")
	}
}
