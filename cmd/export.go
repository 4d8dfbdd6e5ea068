package main

import (
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fightstats/internal/export"
)

// writeTable exports t. out "-" writes to w; an empty out names a file in
// export.dir after the run.
func writeTable(w io.Writer, t *export.Table, out, format, runID string) error {
	if format == "" {
		format = cfg.Export.Format
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}

	if out == "-" {
		return eris.Wrap(export.Write(w, f, t), "export: write")
	}
	if out == "" {
		out = export.FileName(cfg.Export.Dir, t.Name, runID, f)
	}
	if err := export.WriteFile(out, f, t); err != nil {
		return err
	}
	zap.L().Info("export written",
		zap.String("table", t.Name),
		zap.String("path", out),
		zap.Int("rows", len(t.Rows)),
	)
	return nil
}
