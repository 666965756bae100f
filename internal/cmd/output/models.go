package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/rollcall/pkg/catalogs"
	"github.com/agentstation/rollcall/pkg/differ"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// EntitiesToTableData converts catalog entities to table rows.
func EntitiesToTableData(entities []catalogs.Entity, wide bool) Data {
	headers := []string{"ID", "Name", "Images", "Aliases"}
	align := []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft}
	if wide {
		headers = append(headers, "Character", "Placeholder")
		align = append(align, AlignRight, AlignCenter)
	}

	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		name := strings.TrimSpace(e.Names.FamilyName + " " + e.Names.PersonalName)
		if name == "" {
			name = "—"
		}
		row := []string{e.ID, name, fmt.Sprintf("%d", len(e.Images)), strings.Join(e.Aliases, ", ")}
		if wide {
			character := ""
			if e.CharacterID != 0 {
				character = fmt.Sprintf("%d", e.CharacterID)
			}
			placeholder := ""
			if e.Placeholder {
				placeholder = "yes"
			}
			row = append(row, character, placeholder)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// DiagnosticsToTableData converts diagnostics to table rows.
func DiagnosticsToTableData(diagnostics reconciler.Diagnostics) Data {
	rows := make([][]string, 0, len(diagnostics))
	for _, d := range diagnostics {
		rows = append(rows, []string{string(d.Kind), d.Entity, d.Message})
	}
	return Data{Headers: []string{"Kind", "Entity", "Message"}, Rows: rows}
}

// ChangesetToTableData converts a changeset to one row per changed entity.
func ChangesetToTableData(cs *differ.Changeset) Data {
	var rows [][]string
	for _, e := range cs.Entities.Added {
		rows = append(rows, []string{"added", e.ID, strings.Join(e.Images, ", ")})
	}
	for _, u := range cs.Entities.Updated {
		paths := make([]string, 0, len(u.Changes))
		for _, c := range u.Changes {
			paths = append(paths, c.Path)
		}
		rows = append(rows, []string{"updated", u.ID, strings.Join(paths, ", ")})
	}
	for _, e := range cs.Entities.Removed {
		detail := ""
		for _, r := range cs.Entities.Renamed {
			if r.From == e.ID {
				detail = "now " + r.To
			}
		}
		rows = append(rows, []string{"removed", e.ID, detail})
	}
	return Data{Headers: []string{"Change", "ID", "Detail"}, Rows: rows}
}

// FormatEntities writes entities in the given format.
func FormatEntities(w io.Writer, entities []catalogs.Entity, format Format) error {
	var data any = entities
	switch format {
	case FormatTable, FormatWide, "":
		data = EntitiesToTableData(entities, format == FormatWide)
	}
	return NewFormatter(format).Format(w, data)
}

// FormatDiagnostics writes diagnostics in the given format.
func FormatDiagnostics(w io.Writer, diagnostics reconciler.Diagnostics, format Format) error {
	var data any = diagnostics
	switch format {
	case FormatTable, FormatWide, "":
		data = DiagnosticsToTableData(diagnostics)
	}
	return NewFormatter(format).Format(w, data)
}

// FormatChangeset writes a changeset in the given format.
func FormatChangeset(w io.Writer, cs *differ.Changeset, format Format) error {
	switch format {
	case FormatTable, FormatWide, "":
		return NewFormatter(format).Format(w, ChangesetToTableData(cs))
	default:
		return NewFormatter(format).Format(w, cs)
	}
}

// FormatAny writes any data in the given format.
func FormatAny(w io.Writer, data any, format Format) error {
	return NewFormatter(format).Format(w, data)
}
