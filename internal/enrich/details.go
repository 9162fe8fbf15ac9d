// Package enrich drives the text-transformation passes over scraped
// records: a charge summary and a severity label per record, produced in
// input order with checkpointing between batches.
package enrich

import (
	"strings"

	"github.com/mugline/roster-cli/internal/model"
)

// chargeDetails renders one prompt line per charge that has a
// description. Statute and comment fragments are attached only when they
// add information the description doesn't already carry.
func chargeDetails(rec model.RawRecord) []string {
	var details []string
	for _, c := range rec.Charges {
		desc := strings.TrimSpace(c.Description)
		if desc == "" {
			continue
		}

		parts := []string{"Charge: " + desc}
		if s := strings.TrimSpace(c.Statute); nonTrivialStatute(s, desc) {
			parts = append(parts, "Statute Ref: "+s)
		}
		if cm := strings.TrimSpace(c.Comments); nonTrivialComment(cm, desc) {
			parts = append(parts, "Details/Comments: "+cm)
		}
		details = append(details, strings.Join(parts, ", "))
	}
	return details
}

func nonTrivialStatute(statute, desc string) bool {
	if statute == "" || isDigits(statute) {
		return false
	}
	if strings.EqualFold(statute, desc) || strings.Contains(desc, statute) {
		return false
	}
	return true
}

func nonTrivialComment(comment, desc string) bool {
	if comment == "" {
		return false
	}
	if strings.EqualFold(comment, desc) || strings.Contains(desc, comment) {
		return false
	}
	return true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
