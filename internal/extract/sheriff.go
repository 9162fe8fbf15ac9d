package extract

import (
	"strings"

	"github.com/mugline/roster-cli/internal/model"
)

// sheriffMarker is the heading that distinguishes a populated booking
// detail page from the empty shell the site serves for unused IDs.
const sheriffMarker = "Inmate Information"

// sheriffRules anchor each descriptor field to its label. The values sit
// in a span following the label, sometimes wrapped in an inner span.
var sheriffRules = map[string]Rule{
	"Race":     {AnchorTag: "label", Label: "Race", Locator: NestedSpan},
	"Sex":      {AnchorTag: "label", Label: "Sex", Locator: NestedSpan},
	"DOB":      {AnchorTag: "label", Label: "DOB", Locator: NestedSpan},
	"Height":   {AnchorTag: "label", Label: "Height", Locator: NestedSpan},
	"Weight":   {AnchorTag: "label", Label: "Weight", Locator: NestedSpan},
	"Hair":     {AnchorTag: "label", Label: "Hair", Locator: NestedSpan},
	"Eyes":     {AnchorTag: "label", Label: "Eyes", Locator: NestedSpan},
	"Location": {AnchorTag: "label", Label: "Location", Locator: NestedSpan},
}

// chargeLabelFields maps on-page charge labels to ChargeEntry columns.
// Labels outside this set are ignored.
var chargeLabelFields = map[string]string{
	"Statute":         "Statute",
	"Charge Comments": "Charge Comments",
	"Case Number":     "Case Number",
	"Description":     "Description",
	"Bond Amount":     "Bond Amount",
	"Bond Type":       "Bond Type",
}

// Sheriff extracts booking records from the sheriff's arrest-search
// detail pages. Pure transformation over the parsed document.
type Sheriff struct {
	// PhotoBase is prepended to relative mugshot paths.
	PhotoBase string
}

// Valid reports whether the page holds a booking record. Absence of the
// marker panel is a normal outcome for unused IDs, not an error.
func (s Sheriff) Valid(doc *Node) bool {
	return doc.Find(func(n *Node) bool {
		return n.Tag == "div" && n.HasClass("panel-heading") &&
			strings.EqualFold(n.InnerText(), sheriffMarker)
	}) != nil
}

// Extract reads one booking record. Every field is independently
// fault-tolerant: a missing anchor or value leaves that field empty.
func (s Sheriff) Extract(doc *Node, bookingID string) model.RawRecord {
	rec := model.RawRecord{BookingID: bookingID}

	if h3 := doc.Find(ByTag("h3")); h3 != nil {
		rec.Name = h3.InnerText()
	}

	if img := doc.Find(func(n *Node) bool {
		return n.Tag == "img" && strings.HasPrefix(n.Attr("src"), "/thumbs/")
	}); img != nil {
		rec.PhotoURL = s.PhotoBase + img.Attr("src")
	}

	rec.Race = sheriffRules["Race"].Apply(doc)
	rec.Sex = sheriffRules["Sex"].Apply(doc)
	rec.DOB = sheriffRules["DOB"].Apply(doc)
	rec.Height = sheriffRules["Height"].Apply(doc)
	rec.Weight = sheriffRules["Weight"].Apply(doc)
	rec.Hair = sheriffRules["Hair"].Apply(doc)
	rec.Eyes = sheriffRules["Eyes"].Apply(doc)
	rec.Location = sheriffRules["Location"].Apply(doc)
	rec.Charges = extractCharges(doc)

	return rec
}

// extractCharges collects every charge panel into an ordered entry list.
// Within a row, label and value nodes are paired by index; when the lists
// disagree in length, the unmatched labels get empty values rather than
// dropping entries.
func extractCharges(doc *Node) []model.ChargeEntry {
	var entries []model.ChargeEntry

	panels := doc.FindAll(func(n *Node) bool {
		return n.Tag == "div" && n.HasClass("panel") && n.HasClass("panel-warning")
	})
	for _, panel := range panels {
		heading := panel.Find(ByTagClass("div", "panel-heading"))
		if heading == nil || !strings.EqualFold(heading.InnerText(), "Charge") {
			continue
		}

		var entry model.ChargeEntry
		found := false
		for _, row := range panel.FindAll(ByTagClass("div", "row")) {
			labels := row.FindAll(ByTag("label"))
			values := row.FindAll(ByTagClass("span", "inputWarning"))
			for i, label := range labels {
				field, ok := chargeLabelFields[label.InnerText()]
				if !ok {
					continue
				}
				value := ""
				if i < len(values) {
					value = values[i].InnerText()
				}
				setChargeField(&entry, field, value)
				found = true
			}
		}
		if found {
			entries = append(entries, entry)
		}
	}
	return entries
}

func setChargeField(e *model.ChargeEntry, field, value string) {
	switch field {
	case "Statute":
		e.Statute = value
	case "Charge Comments":
		e.Comments = value
	case "Case Number":
		e.CaseNumber = value
	case "Description":
		e.Description = value
	case "Bond Amount":
		e.BondAmount = value
	case "Bond Type":
		e.BondType = value
	}
}
