package model

import "strings"

// ChargeDelimiter joins the per-charge segments of a flattened column.
const ChargeDelimiter = " | "

// ChargeEntry is one charge block from a booking detail page. Counts vary
// per record; ordering follows page order.
type ChargeEntry struct {
	Statute     string
	Description string
	Comments    string
	CaseNumber  string
	BondAmount  string
	BondType    string
}

// ChargeColumns is the canonical column order for flattened charge data.
var ChargeColumns = []string{
	"Statute",
	"Charge Comments",
	"Case Number",
	"Description",
	"Bond Amount",
	"Bond Type",
}

// Field returns the charge value for a flattened column name.
func (c ChargeEntry) Field(column string) string {
	switch column {
	case "Statute":
		return c.Statute
	case "Charge Comments":
		return c.Comments
	case "Case Number":
		return c.CaseNumber
	case "Description":
		return c.Description
	case "Bond Amount":
		return c.BondAmount
	case "Bond Type":
		return c.BondType
	}
	return ""
}

func (c *ChargeEntry) setField(column, value string) {
	switch column {
	case "Statute":
		c.Statute = value
	case "Charge Comments":
		c.Comments = value
	case "Case Number":
		c.CaseNumber = value
	case "Description":
		c.Description = value
	case "Bond Amount":
		c.BondAmount = value
	case "Bond Type":
		c.BondType = value
	}
}

// Empty reports whether every charge field is blank.
func (c ChargeEntry) Empty() bool {
	return c.Statute == "" && c.Description == "" && c.Comments == "" &&
		c.CaseNumber == "" && c.BondAmount == "" && c.BondType == ""
}

// RawRecord is one subject's scraped attributes from a single source.
// BookingID is the natural key within that source. Records are immutable
// once written to the raw store; the store is append-only.
type RawRecord struct {
	BookingID string
	Name      string
	PhotoURL  string
	Race      string
	Sex       string
	DOB       string
	Height    string
	Weight    string
	Hair      string
	Eyes      string
	Location  string
	Charges   []ChargeEntry
}

// FlattenCharges collapses the charge list into one scalar value per charge
// column, joining entries with ChargeDelimiter in page order. A field blank
// on one entry contributes an empty segment, so parallel columns stay
// positionally aligned.
func (r RawRecord) FlattenCharges() map[string]string {
	out := make(map[string]string, len(ChargeColumns))
	for _, col := range ChargeColumns {
		segments := make([]string, len(r.Charges))
		for i, c := range r.Charges {
			segments[i] = c.Field(col)
		}
		out[col] = strings.Join(segments, ChargeDelimiter)
	}
	return out
}

// UnflattenCharges rebuilds the charge list from flattened columns. The
// entry count is the longest segment list across columns; shorter columns
// contribute empty values for trailing entries rather than truncating.
func UnflattenCharges(columns map[string]string) []ChargeEntry {
	split := make(map[string][]string, len(ChargeColumns))
	count := 0
	for _, col := range ChargeColumns {
		if columns[col] == "" {
			continue
		}
		segs := strings.Split(columns[col], "|")
		for i := range segs {
			segs[i] = strings.TrimSpace(segs[i])
		}
		split[col] = segs
		if len(segs) > count {
			count = len(segs)
		}
	}

	entries := make([]ChargeEntry, count)
	for col, segs := range split {
		for i := 0; i < count && i < len(segs); i++ {
			entries[i].setField(col, segs[i])
		}
	}

	// An all-empty trailing entry carries no information.
	for len(entries) > 0 && entries[len(entries)-1].Empty() {
		entries = entries[:len(entries)-1]
	}
	return entries
}
