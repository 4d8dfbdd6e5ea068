// Package export writes flattened event and fight rows to tabular sinks.
package export

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fightstats/internal/model"
)

// Format is an output file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat reads a format name. "json" and "ndjson" mean JSON lines.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "jsonl", "json", "ndjson":
		return FormatJSONL, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", eris.Errorf("export: unknown format %q", s)
	}
}

// Table is a set of flat rows sharing one header. Header is the union of
// every row's field names in first-seen order.
type Table struct {
	Name   string
	Header []string
	Rows   [][]model.Field
}

// NewTable builds a Table from flat rows.
func NewTable(name string, rows [][]model.Field) *Table {
	t := &Table{Name: name, Rows: rows}
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, f := range row {
			if !seen[f.Name] {
				seen[f.Name] = true
				t.Header = append(t.Header, f.Name)
			}
		}
	}
	return t
}

// Values returns row i aligned to the header; missing fields are empty.
// A name repeated within a row keeps its first value.
func (t *Table) Values(i int) []string {
	byName := make(map[string]string, len(t.Rows[i]))
	for _, f := range t.Rows[i] {
		if _, dup := byName[f.Name]; !dup {
			byName[f.Name] = f.Value
		}
	}
	out := make([]string, len(t.Header))
	for j, h := range t.Header {
		out[j] = byName[h]
	}
	return out
}

// Events flattens event summaries into a table.
func Events(events []model.EventSummary) *Table {
	rows := make([][]model.Field, 0, len(events))
	for _, e := range events {
		rows = append(rows, e.Flatten())
	}
	return NewTable("events", rows)
}

// Fights flattens fight records into a table.
func Fights(records []*model.FightRecord) *Table {
	rows := make([][]model.Field, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Flatten())
	}
	return NewTable("fights", rows)
}
