package extract

import (
	"strconv"
	"strings"
)

// Locator names the structural position of a field value relative to its
// label anchor.
type Locator int

const (
	// SiblingSpan reads the next sibling span's text.
	SiblingSpan Locator = iota
	// NestedSpan prefers a span nested inside the sibling span, falling
	// back to the sibling's own text.
	NestedSpan
	// FollowingTable serializes the next sibling table.
	FollowingTable
)

// Rule locates one field on a page: find a label or heading node matching
// the expected text, then read the value from a structurally adjacent
// node. Each rule fails independently — a missing anchor or value yields
// an empty string, never an error.
type Rule struct {
	AnchorTag string
	Label     string
	Prefix    bool // prefix match instead of exact
	Locator   Locator
}

// Apply evaluates the rule against a parsed page.
func (r Rule) Apply(doc *Node) string {
	anchor := doc.Find(func(n *Node) bool {
		if n.Tag != r.AnchorTag {
			return false
		}
		text := n.InnerText()
		if r.Prefix {
			return len(text) >= len(r.Label) && strings.EqualFold(text[:len(r.Label)], r.Label)
		}
		return strings.EqualFold(text, r.Label)
	})
	if anchor == nil {
		return ""
	}

	switch r.Locator {
	case SiblingSpan:
		span := anchor.NextSiblingTag("span")
		if span == nil {
			return ""
		}
		return span.InnerText()

	case NestedSpan:
		span := anchor.NextSiblingTag("span")
		if span == nil {
			return ""
		}
		if inner := span.Find(ByTag("span")); inner != nil {
			return inner.InnerText()
		}
		return span.InnerText()

	case FollowingTable:
		table := anchor.NextSiblingTag("table")
		if table == nil {
			return ""
		}
		return serializeTable(table)
	}
	return ""
}

// serializeTable flattens a data table into one delimited string: each
// body row becomes "Header: value" pairs joined with ", ", and rows are
// joined with " | ". Cells beyond the header list get positional names.
func serializeTable(table *Node) string {
	headers := make([]string, 0, 8)
	for _, th := range table.FindAll(ByTag("th")) {
		headers = append(headers, th.InnerText())
	}

	var rows []string
	for _, tr := range table.FindAll(ByTag("tr")) {
		cells := tr.FindAll(ByTag("td"))
		if len(cells) == 0 {
			continue
		}
		pairs := make([]string, 0, len(cells))
		for i, td := range cells {
			name := "Column_" + strconv.Itoa(i+1)
			if i < len(headers) {
				name = headers[i]
			}
			pairs = append(pairs, name+": "+td.InnerText())
		}
		rows = append(rows, strings.Join(pairs, ", "))
	}
	return strings.Join(rows, " | ")
}
