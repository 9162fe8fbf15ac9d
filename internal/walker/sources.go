package walker

import (
	"github.com/mugline/roster-cli/internal/csvio"
	"github.com/mugline/roster-cli/internal/extract"
)

// SheriffSource adapts the sheriff page extractor to the walker.
type SheriffSource struct {
	Extractor extract.Sheriff
}

func (s SheriffSource) Header() []string { return csvio.RawHeader }

func (s SheriffSource) Extract(doc *extract.Node, id string) ([]string, bool) {
	if !s.Extractor.Valid(doc) {
		return nil, false
	}
	return csvio.RawRow(s.Extractor.Extract(doc, id)), true
}

// CorrectionsSource adapts the corrections page extractor to the walker.
type CorrectionsSource struct {
	Extractor extract.Corrections
}

func (s CorrectionsSource) Header() []string { return csvio.DocHeader }

func (s CorrectionsSource) Extract(doc *extract.Node, id string) ([]string, bool) {
	if !s.Extractor.Valid(doc) {
		return nil, false
	}
	return csvio.DocRow(s.Extractor.Extract(doc, id)), true
}
