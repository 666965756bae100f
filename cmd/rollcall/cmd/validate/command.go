// Package validate implements the validate command.
package validate

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/cmd/application"
	"github.com/agentstation/rollcall/internal/cmd/emoji"
	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "management",
		Short:   "Check inputs, overrides and the published catalog",
		Long: `Validate runs a build without writing anything and checks the published
catalog for duplicate identifiers and images owned twice.

With --strict, unresolved profiles and placeholder entities also fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			w := cmd.OutOrStdout()

			// Step 1: A dry build surfaces structural input errors
			rc, err := app.Rollcall()
			if err != nil {
				return err
			}
			result, err := rc.Build(ctx)
			if err != nil {
				return err
			}
			pass(w, "inputs reconcile: %s", result.Summary())

			// Step 2: The published catalog must be internally consistent
			published, err := catalogs.LoadDir(app.OutputDir())
			if err != nil {
				return err
			}
			if err := published.Validate(nil, nil); err != nil {
				return errors.WrapResource("validate", "catalog", app.OutputDir(), err)
			}
			pass(w, "published catalog has %d consistent entities", published.Len())

			// Step 3: Optional review gate
			if strict {
				unresolved := result.Diagnostics.Count(reconciler.KindUnresolvedProfile)
				if unresolved > 0 || result.Placeholders() > 0 {
					return errors.NewValidationError("catalog", result.Placeholders(),
						fmt.Sprintf("%d placeholders and %d unresolved profiles need review", result.Placeholders(), unresolved))
				}
				pass(w, "nothing awaits review")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail when placeholders or unresolved profiles remain")

	return cmd
}

func pass(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", emoji.Success, fmt.Sprintf(format, args...))
}
