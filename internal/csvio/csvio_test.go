package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/mugline/roster-cli/internal/model"
)

func TestTable_ReadWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	in := &Table{
		Columns: []string{"A", "B"},
		Rows:    [][]string{{"1", "x, y"}, {"2", `quote "inside"`}},
	}
	require.NoError(t, WriteTable(path, in))

	out, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, in.Columns, out.Columns)
	assert.Equal(t, in.Rows, out.Rows)
}

func TestTable_ColumnIndex(t *testing.T) {
	tb := &Table{Columns: []string{"A", "B"}}
	assert.Equal(t, 1, tb.ColumnIndex("B"))
	assert.Equal(t, -1, tb.ColumnIndex("Z"))
}

func TestReadTable_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	out, err := ReadTable(path)
	require.NoError(t, err)
	assert.Empty(t, out.Columns)
	assert.Empty(t, out.Rows)
}

func TestRawRow_FlattensCharges(t *testing.T) {
	rec := model.RawRecord{
		BookingID: "542500123",
		Name:      "DOE, JOHN",
		Charges: []model.ChargeEntry{
			{Statute: "784.03", Description: "BATTERY", BondAmount: "500"},
			{Statute: "843.02", Description: "RESIST OFFICER"},
		},
	}

	row := RawRow(rec)
	require.Len(t, row, len(RawHeader))
	assert.Equal(t, "784.03 | 843.02", row[11])  // Statute
	assert.Equal(t, "500 | ", row[15])           // Bond Amount keeps empty slot
}

func TestReadRawRecords_RebuildsCharges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	rec := model.RawRecord{
		BookingID: "1",
		Name:      "DOE, JOHN",
		Charges: []model.ChargeEntry{
			{Statute: "784.03", Description: "BATTERY"},
			{Statute: "810.02", Description: "BURGLARY", BondAmount: "1000"},
		},
	}
	require.NoError(t, WriteTable(path, &Table{Columns: RawHeader, Rows: [][]string{RawRow(rec)}}))

	records, err := ReadRawRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].Charges, 2)
	assert.Equal(t, "BATTERY", records[0].Charges[0].Description)
	assert.Equal(t, "", records[0].Charges[0].BondAmount)
	assert.Equal(t, "1000", records[0].Charges[1].BondAmount)
}

func TestWriteReadEnriched_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enriched.csv")
	records := []model.EnrichedRecord{
		{
			RawRecord: model.RawRecord{BookingID: "1", Name: "DOE, JOHN",
				Charges: []model.ChargeEntry{{Description: "BATTERY"}}},
			Summary:  "Simple Battery",
			Severity: model.SeverityMedium,
		},
		{
			RawRecord: model.RawRecord{BookingID: "2", Name: "ROE, JANE"},
			Summary:   model.ErrorMarker("rate_limited"),
			Severity:  model.SeverityError,
		},
	}
	require.NoError(t, WriteEnriched(path, records))

	out, err := ReadEnriched(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Simple Battery", out[0].Summary)
	assert.Equal(t, model.SeverityMedium, out[0].Severity)
	assert.True(t, model.IsErrorMarked(out[1].Summary))
}

func TestAppendWriter_HeaderOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.csv")

	w, err := NewAppendWriter(path, []string{"A", "B"})
	require.NoError(t, err)
	require.NoError(t, w.Append([]string{"1", "x"}))
	require.NoError(t, w.Close())

	// Reopen and append more; the header must not repeat.
	w, err = NewAppendWriter(path, []string{"A", "B"})
	require.NoError(t, err)
	require.NoError(t, w.Append([]string{"2", "y"}))
	require.NoError(t, w.Close())

	out, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, out.Columns)
	assert.Equal(t, [][]string{{"1", "x"}, {"2", "y"}}, out.Rows)
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	table := &Table{
		Columns: []string{"BookingID", "Name"},
		Rows:    [][]string{{"0123", "DOE, JOHN"}},
	}
	require.NoError(t, ExportXLSX(path, "Records", table))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, "Records", sheet.Name)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "BookingID", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "0123", sheet.Rows[1].Cells[0].String())
}
