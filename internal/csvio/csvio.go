// Package csvio reads and writes the pipeline's tabular artifacts. Every
// artifact has a fixed header; repeated sub-entries arrive pre-flattened
// into delimited scalar columns.
package csvio

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/mugline/roster-cli/internal/model"
)

// RawHeader is the scraped-artifact column order for the sheriff source.
var RawHeader = []string{
	"BookingID", "Name", "PhotoURL", "Race", "Sex", "DOB", "Height",
	"Weight", "Hair", "Eyes", "Location",
	"Statute", "Charge Comments", "Case Number", "Description",
	"Bond Amount", "Bond Type",
}

// DocHeader is the scraped-artifact column order for the corrections
// source.
var DocHeader = []string{
	"DCNumber", "Name", "PhotoURL", "Race", "Sex", "BirthDate",
	"InitialReceiptDate", "CurrentFacility", "CurrentCustody",
	"CurrentReleaseDate", "Aliases", "CurrentPrisonSentenceHistory",
	"Detainers",
}

// EnrichedHeader extends RawHeader with the derived columns.
var EnrichedHeader = append(append([]string{}, RawHeader...), "Summary", "Severity")

// RawRow flattens a RawRecord into RawHeader order.
func RawRow(r model.RawRecord) []string {
	flat := r.FlattenCharges()
	return []string{
		r.BookingID, r.Name, r.PhotoURL, r.Race, r.Sex, r.DOB, r.Height,
		r.Weight, r.Hair, r.Eyes, r.Location,
		flat["Statute"], flat["Charge Comments"], flat["Case Number"],
		flat["Description"], flat["Bond Amount"], flat["Bond Type"],
	}
}

// DocRow flattens a DocRecord into DocHeader order.
func DocRow(r model.DocRecord) []string {
	return []string{
		r.DCNumber, r.Name, r.PhotoURL, r.Race, r.Sex, r.BirthDate,
		r.InitialReceiptDate, r.CurrentFacility, r.CurrentCustody,
		r.CurrentReleaseDate, r.Aliases, r.SentenceHistory, r.Detainers,
	}
}

// EnrichedRow flattens an EnrichedRecord into EnrichedHeader order.
func EnrichedRow(r model.EnrichedRecord) []string {
	return append(RawRow(r.RawRecord), r.Summary, r.Severity)
}

// ReadRawRecords loads a scraped sheriff artifact, rebuilding the charge
// list from the flattened columns.
func ReadRawRecords(path string) ([]model.RawRecord, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	records := make([]model.RawRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		get := func(col string) string {
			if i := table.ColumnIndex(col); i >= 0 && i < len(row) {
				return row[i]
			}
			return ""
		}
		rec := model.RawRecord{
			BookingID: get("BookingID"),
			Name:      get("Name"),
			PhotoURL:  get("PhotoURL"),
			Race:      get("Race"),
			Sex:       get("Sex"),
			DOB:       get("DOB"),
			Height:    get("Height"),
			Weight:    get("Weight"),
			Hair:      get("Hair"),
			Eyes:      get("Eyes"),
			Location:  get("Location"),
		}
		charges := map[string]string{}
		for _, col := range model.ChargeColumns {
			charges[col] = get(col)
		}
		rec.Charges = model.UnflattenCharges(charges)
		records = append(records, rec)
	}
	return records, nil
}

// WriteEnriched writes the enriched artifact with its stable header.
func WriteEnriched(path string, records []model.EnrichedRecord) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = EnrichedRow(r)
	}
	return WriteTable(path, &Table{Columns: EnrichedHeader, Rows: rows})
}

// ReadEnriched loads an enriched artifact back into records, for resume.
func ReadEnriched(path string) ([]model.EnrichedRecord, error) {
	raw, err := ReadRawRecords(path)
	if err != nil {
		return nil, err
	}
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	records := make([]model.EnrichedRecord, len(raw))
	sumIdx := table.ColumnIndex("Summary")
	sevIdx := table.ColumnIndex("Severity")
	for i := range raw {
		records[i].RawRecord = raw[i]
		if sumIdx >= 0 && sumIdx < len(table.Rows[i]) {
			records[i].Summary = table.Rows[i][sumIdx]
		}
		if sevIdx >= 0 && sevIdx < len(table.Rows[i]) {
			records[i].Severity = table.Rows[i][sevIdx]
		}
	}
	return records, nil
}

// AppendWriter streams rows to a CSV file. The header is written only
// when the file is new or empty; every row is flushed immediately so a
// crash loses at most the row in flight.
type AppendWriter struct {
	f *os.File
	w *csv.Writer
}

// NewAppendWriter opens (or creates) path for appending rows with the
// given header.
func NewAppendWriter(path string, header []string) (*AppendWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrap(err, "csvio: open append")
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, eris.Wrap(err, "csvio: stat")
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			_ = f.Close()
			return nil, eris.Wrap(err, "csvio: write header")
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = f.Close()
			return nil, eris.Wrap(err, "csvio: flush header")
		}
	}
	return &AppendWriter{f: f, w: w}, nil
}

// Append writes one row and flushes it to disk.
func (a *AppendWriter) Append(row []string) error {
	if err := a.w.Write(row); err != nil {
		return eris.Wrap(err, "csvio: write row")
	}
	a.w.Flush()
	return eris.Wrap(a.w.Error(), "csvio: flush row")
}

// Close flushes and closes the underlying file.
func (a *AppendWriter) Close() error {
	a.w.Flush()
	if err := a.w.Error(); err != nil {
		_ = a.f.Close()
		return eris.Wrap(err, "csvio: flush")
	}
	return eris.Wrap(a.f.Close(), "csvio: close")
}
