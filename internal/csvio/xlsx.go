package csvio

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ExportXLSX writes a table to an XLSX workbook with a single sheet,
// header row first. Everything is written as strings so booking numbers
// and statute references keep their leading zeros.
func ExportXLSX(path, sheetName string, t *Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "csvio: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range t.Columns {
		header.AddCell().SetString(col)
	}
	for _, row := range t.Rows {
		out := sheet.AddRow()
		for _, v := range row {
			out.AddCell().SetString(v)
		}
	}

	return eris.Wrapf(f.Save(path), "csvio: save %s", path)
}
