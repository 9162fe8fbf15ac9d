package model

// DocRecord is one subject's attributes from the corrections-department
// source. DCNumber is the natural key within that source. History tables
// are pre-serialized to delimited text by the extractor.
type DocRecord struct {
	DCNumber           string
	Name               string
	PhotoURL           string
	Race               string
	Sex                string
	BirthDate          string
	InitialReceiptDate string
	CurrentFacility    string
	CurrentCustody     string
	CurrentReleaseDate string
	Aliases            string
	SentenceHistory    string
	Detainers          string
}
