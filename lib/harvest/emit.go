package harvest

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
)

// WriteTable serializes records under a frozen schema: UTF-8, comma
// separated, header row first, missing fields as empty strings. Values
// containing a separator, quote or line break come out quoted with
// embedded quotes doubled.
func WriteTable(w io.Writer, schema []string, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema); err != nil {
		return err
	}

	row := make([]string, len(schema))
	for _, r := range records {
		for i, field := range schema {
			row[i] = r.Field(field)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// OutputGuard guarantees a minimal artifact on every exit path. "Ran
// empty" and "crashed" both leave a header-only file behind; only the
// process exit signal tells them apart.
type OutputGuard struct {
	path      string
	fallback  []string
	committed bool
}

func NewOutputGuard(path string, fallback []string) *OutputGuard {
	return &OutputGuard{path: path, fallback: fallback}
}

func (g *OutputGuard) Commit(schema []string, records []Record) error {
	f, err := os.Create(g.path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteTable(f, schema, records); err != nil {
		return err
	}
	g.committed = true
	return nil
}

// Ensure writes the header-only fallback artifact unless a full table
// was already committed. Safe to defer; failures are logged, not
// propagated, since Ensure runs on paths that already carry an error.
func (g *OutputGuard) Ensure() {
	if g.committed {
		return
	}
	f, err := os.Create(g.path)
	if err != nil {
		slog.Error("failed to create fallback artifact", "path", g.path, "err", err)
		return
	}
	defer f.Close()

	if err := WriteTable(f, g.fallback, nil); err != nil {
		slog.Error("failed to write fallback artifact", "path", g.path, "err", err)
		return
	}
	g.committed = true
}
