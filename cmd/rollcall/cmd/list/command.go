// Package list implements the list command.
package list

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/cmd/application"
	"github.com/agentstation/rollcall/internal/cmd/output"
	"github.com/agentstation/rollcall/pkg/catalogs"
)

// NewCommand creates the list command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		placeholders bool
		search       string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List entities of the published catalog",
		Example: `  rollcall list
  rollcall list --placeholders
  rollcall list --search hana -o wide`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalogs.LoadDir(app.OutputDir())
			if err != nil {
				return err
			}
			entities := filter(cat.Entities(), placeholders, search)
			return output.FormatEntities(cmd.OutOrStdout(), entities, output.DetectFormat(app.OutputFormat()))
		},
	}

	cmd.Flags().BoolVar(&placeholders, "placeholders", false, "only entities awaiting review")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive match on id, names and aliases")

	return cmd
}

func filter(entities []catalogs.Entity, placeholders bool, search string) []catalogs.Entity {
	search = strings.ToLower(search)
	out := entities[:0:0]
	for _, e := range entities {
		if placeholders && !e.Placeholder {
			continue
		}
		if search != "" && !matches(e, search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matches(e catalogs.Entity, search string) bool {
	fields := append([]string{e.ID, e.Names.FamilyName, e.Names.PersonalName}, e.Aliases...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}
