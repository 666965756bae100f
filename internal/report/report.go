// Package report renders the Markdown review report that accompanies a
// catalog build.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/rollcall/pkg/differ"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// Report collects what a reviewer needs after a build.
type Report struct {
	Result  *reconciler.Result
	Changes *differ.Changeset // optional
	Unused  []string          // leftover images copied for review
}

// Write renders the report as Markdown.
func (r Report) Write(w io.Writer) error {
	if r.Result == nil || r.Result.Catalog == nil {
		return errors.NewValidationError("result", nil, "cannot be nil")
	}
	builder := md.NewMarkdown(w)
	stats := r.Result.Metadata.Stats

	builder.H1("Catalog Review").LF()
	builder.PlainText(r.Result.Summary()).LF()

	builder.H2("Summary").LF()
	builder.Table(md.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Entities", fmt.Sprintf("%d", r.Result.Catalog.Len())},
			{"Profiled", fmt.Sprintf("%d", stats.EntitiesProfiled)},
			{"Placeholders", fmt.Sprintf("%d", r.Result.Placeholders())},
			{"Images claimed by profiles", fmt.Sprintf("%d", stats.ImagesClaimed)},
			{"Heuristic expansions", fmt.Sprintf("%d", stats.HeuristicExpansions)},
			{"Unresolved profiles", fmt.Sprintf("%d", stats.Unresolved)},
			{"Skipped profiles", fmt.Sprintf("%d", stats.Skipped)},
		},
	}).LF()

	r.placeholders(builder)
	r.diagnostics(builder)
	r.changes(builder)

	if len(r.Unused) > 0 {
		builder.H2("Unused Images").LF()
		items := make([]string, len(r.Unused))
		for i, u := range r.Unused {
			items[i] = md.Code(u)
		}
		builder.BulletList(items...).LF()
	}

	return builder.Build()
}

func (r Report) placeholders(builder *md.Markdown) {
	_, review := r.Result.Catalog.Split()
	if review.Len() == 0 {
		return
	}

	builder.H2("Placeholders").LF()
	builder.PlainText("These entities need a manual identifier in the override file.").LF()

	rows := make([][]string, 0, review.Len())
	for _, e := range review.Entities() {
		aliases := "—"
		if len(e.Aliases) > 0 {
			aliases = strings.Join(e.Aliases, ", ")
		}
		rows = append(rows, []string{md.Code(e.ID), aliases, strings.Join(e.Images, "<br>")})
	}
	builder.Table(md.TableSet{
		Header: []string{"ID", "Aliases", "Images"},
		Rows:   rows,
	}).LF()
}

func (r Report) diagnostics(builder *md.Markdown) {
	if len(r.Result.Diagnostics) == 0 {
		return
	}

	byKind := make(map[reconciler.DiagnosticKind][]string)
	for _, d := range r.Result.Diagnostics {
		byKind[d.Kind] = append(byKind[d.Kind], d.Message)
	}
	kinds := make([]string, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	builder.H2("Diagnostics").LF()
	for _, kind := range kinds {
		messages := byKind[reconciler.DiagnosticKind(kind)]
		builder.H3(fmt.Sprintf("%s (%d)", kind, len(messages))).LF()
		builder.BulletList(messages...).LF()
	}

	if len(r.Result.Warnings) > 0 {
		builder.H2("Warnings").LF()
		builder.BulletList(r.Result.Warnings...).LF()
	}
}

func (r Report) changes(builder *md.Markdown) {
	if r.Changes == nil || r.Changes.IsEmpty() {
		return
	}
	cs := r.Changes.Entities

	builder.H2("Changes Since Last Build").LF()
	builder.PlainText(r.Changes.String()).LF()

	if len(cs.Removed) > 0 {
		builder.H3("Removed Identifiers").LF()
		builder.PlainText(md.Bold("Published identifiers must stay stable.")).LF()
		items := make([]string, 0, len(cs.Removed))
		for _, e := range cs.Removed {
			item := md.Code(e.ID)
			for _, rn := range cs.Renamed {
				if rn.From == e.ID {
					item += " → " + md.Code(rn.To)
				}
			}
			items = append(items, item)
		}
		builder.BulletList(items...).LF()
	}

	if len(cs.Added) > 0 {
		builder.H3("Added Identifiers").LF()
		items := make([]string, 0, len(cs.Added))
		for _, e := range cs.Added {
			items = append(items, md.Code(e.ID))
		}
		builder.BulletList(items...).LF()
	}
}
