package csvio

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
)

// Table is an in-memory CSV file: a header plus rows in file order.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of name in Columns, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// ReadTable loads a CSV file whose first row is the header. Rows may be
// ragged; callers index defensively via ColumnIndex.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csvio: open %s", path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "csvio: read %s", path)
	}
	if len(all) == 0 {
		return &Table{}, nil
	}
	return &Table{Columns: all[0], Rows: all[1:]}, nil
}

// WriteTable writes the header and all rows to path, replacing any
// existing file.
func WriteTable(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "csvio: create %s", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "csvio: write header")
	}
	if err := w.WriteAll(t.Rows); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "csvio: write rows")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "csvio: flush")
	}
	return eris.Wrapf(f.Close(), "csvio: close %s", path)
}
