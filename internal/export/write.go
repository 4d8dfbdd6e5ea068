package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Write renders t to w in format f.
func Write(w io.Writer, f Format, t *Table) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatJSONL:
		return writeJSONL(w, t)
	case FormatXLSX:
		return writeXLSX(w, t)
	default:
		return eris.Errorf("export: unknown format %q", f)
	}
}

// WriteFile renders t into path, creating parent directories.
func WriteFile(path string, f Format, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "export: create dir")
	}
	out, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	if err := Write(out, f, t); err != nil {
		_ = out.Close()
		return err
	}
	return eris.Wrap(out.Close(), "export: close file")
}

// FileName names an export file for a run, e.g. fights-<run>.csv.
func FileName(dir, table, runID string, f Format) string {
	return filepath.Join(dir, table+"-"+runID+"."+string(f))
}

func writeCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for i := range t.Rows {
		if err := cw.Write(t.Values(i)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// writeJSONL emits one object per row with keys in header order. Absent
// fields are omitted rather than written empty.
func writeJSONL(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	for _, row := range t.Rows {
		var buf bytes.Buffer
		buf.WriteByte('{')
		seen := make(map[string]bool, len(row))
		for _, f := range row {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			if len(seen) > 1 {
				buf.WriteByte(',')
			}
			k, _ := json.Marshal(f.Name)
			v, _ := json.Marshal(f.Value)
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteString("}\n")
		if _, err := bw.Write(buf.Bytes()); err != nil {
			return eris.Wrap(err, "export: write jsonl row")
		}
	}
	return eris.Wrap(bw.Flush(), "export: flush jsonl")
}

func writeXLSX(w io.Writer, t *Table) error {
	file := xlsx.NewFile()
	name := t.Name
	if name == "" {
		name = "Sheet1"
	}
	sheet, err := file.AddSheet(name)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addRow(sheet, t.Header)
	for i := range t.Rows {
		addRow(sheet, t.Values(i))
	}

	return eris.Wrap(file.Write(w), "export: write xlsx")
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
