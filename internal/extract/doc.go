package extract

import (
	"regexp"
	"strings"

	"github.com/mugline/roster-cli/internal/model"
)

// docMarker distinguishes a populated corrections detail page.
const docMarker = "Inmate Population Information Detail"

var dateRe = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// Corrections extracts records from the state corrections-department
// offender detail pages: a th/td detail table under an h2 heading, plus
// h3-anchored history tables.
type Corrections struct {
	// PhotoBase is prepended to relative photo paths.
	PhotoBase string
}

// Valid reports whether the page holds an offender record.
func (c Corrections) Valid(doc *Node) bool {
	return doc.Find(ByTagText("h2", docMarker)) != nil
}

// Extract reads one offender record. Fields are independently
// fault-tolerant; dates are cleaned to MM/DD/YYYY when recognizable.
func (c Corrections) Extract(doc *Node, dcNumber string) model.DocRecord {
	rec := model.DocRecord{DCNumber: dcNumber}

	rec.PhotoURL = c.photoURL(doc)

	if table := c.detailTable(doc); table != nil {
		for label, value := range detailPairs(table) {
			switch label {
			case "Name":
				rec.Name = value
			case "Race":
				rec.Race = value
			case "Sex":
				rec.Sex = value
			case "BirthDate":
				rec.BirthDate = cleanDate(value)
			case "InitialReceiptDate":
				rec.InitialReceiptDate = cleanDate(value)
			case "CurrentFacility":
				rec.CurrentFacility = value
			case "CurrentCustody":
				rec.CurrentCustody = value
			case "CurrentReleaseDate":
				rec.CurrentReleaseDate = cleanDate(value)
			}
		}
	}

	rec.Aliases = c.aliases(doc)
	rec.SentenceHistory = Rule{
		AnchorTag: "h3", Label: "Current Prison Sentence History:",
		Prefix: true, Locator: FollowingTable,
	}.Apply(doc)
	rec.Detainers = Rule{
		AnchorTag: "h3", Label: "Detainers:",
		Prefix: true, Locator: FollowingTable,
	}.Apply(doc)

	return rec
}

// detailTable finds the first table after the marker heading that carries
// a "DC Number:" cell. The page holds several layout tables before it.
func (c Corrections) detailTable(doc *Node) *Node {
	h2 := doc.Find(ByTagText("h2", docMarker))
	if h2 == nil {
		return nil
	}
	for _, table := range doc.FindAll(ByTag("table")) {
		hasDC := table.Find(func(n *Node) bool {
			return (n.Tag == "td" || n.Tag == "th") &&
				strings.Contains(n.InnerText(), "DC Number:")
		})
		if hasDC != nil {
			return table
		}
	}
	return nil
}

// detailPairs reads th/td (or td/td) label-value rows into a map, with
// labels stripped of colons, spaces, and slashes for stable keys.
func detailPairs(table *Node) map[string]string {
	out := map[string]string{}
	for _, tr := range table.FindAll(ByTag("tr")) {
		ths := tr.FindAll(ByTag("th"))
		tds := tr.FindAll(ByTag("td"))

		var label, value *Node
		switch {
		case len(ths) == 1 && len(tds) == 1:
			label, value = ths[0], tds[0]
		case len(tds) == 2:
			label, value = tds[0], tds[1]
		default:
			continue
		}

		key := strings.NewReplacer(":", "", " ", "", "/", "").Replace(label.InnerText())
		if key != "" {
			out[key] = value.InnerText()
		}
	}
	return out
}

func (c Corrections) photoURL(doc *Node) string {
	label := doc.Find(func(n *Node) bool {
		return n.Tag == "td" && strings.Contains(n.InnerText(), "Offender Picture")
	})
	if label == nil {
		return ""
	}
	img := label.Find(ByTag("img"))
	if img == nil {
		return ""
	}
	src := img.Attr("src")
	if src == "" {
		return ""
	}
	if !strings.HasPrefix(src, "http") {
		src = c.PhotoBase + src
	}
	return src
}

// aliases joins the text between the "Aliases:" heading and the next h3.
func (c Corrections) aliases(doc *Node) string {
	h3 := doc.Find(ByTagText("h3", "Aliases:"))
	if h3 == nil || h3.Parent == nil {
		return ""
	}

	var parts []string
	seen := false
	for _, sibling := range h3.Parent.Children {
		if sibling == h3 {
			seen = true
			continue
		}
		if !seen {
			continue
		}
		if sibling.Tag == "h3" {
			break
		}
		var text string
		if sibling.Tag == "" {
			text = strings.Join(strings.Fields(sibling.Text), " ")
		} else {
			text = sibling.InnerText()
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, ", ")
}

// cleanDate extracts the first MM/DD/YYYY token, dropping footnote text
// the site appends to date cells. Unrecognized values pass through.
func cleanDate(value string) string {
	if m := dateRe.FindString(value); m != "" {
		return m
	}
	return value
}
