// Package linkage merges two roster artifacts by identity: an exact pass
// on normalized names, then a fuzzy pass over whatever the exact pass
// left behind.
package linkage

import (
	"regexp"
	"strings"
)

var (
	suffixRe     = regexp.MustCompile(`\s+(JR\.?|SR\.?|III|II|IV)$`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeName standardizes a person name for matching by:
//  1. Trimming whitespace and converting to uppercase
//  2. Collapsing multiple spaces into single spaces
//  3. Removing generational suffixes (JR, SR, II, III, IV)
//  4. Dropping middle names from "LAST, FIRST MIDDLE" forms
//
// The result of normalizing a normalized name is the name itself.
func NormalizeName(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = suffixRe.ReplaceAllString(name, "")

	if last, first, ok := strings.Cut(name, ", "); ok {
		if firstParts := strings.Fields(first); len(firstParts) > 0 {
			name = last + ", " + firstParts[0]
		}
	}

	return strings.TrimSpace(name)
}

// NameVariants returns the forms a name is compared under: the raw
// uppercased name, the normalized name, and for "LAST, FIRST" forms the
// reordered "FIRST LAST". Duplicates are dropped, order is stable.
func NameVariants(name string) []string {
	raw := strings.ToUpper(strings.TrimSpace(name))
	if raw == "" {
		return nil
	}
	raw = multiSpaceRe.ReplaceAllString(raw, " ")

	variants := []string{raw}
	add := func(v string) {
		for _, existing := range variants {
			if existing == v {
				return
			}
		}
		variants = append(variants, v)
	}

	if n := NormalizeName(name); n != "" {
		add(n)
	}
	if last, first, ok := strings.Cut(raw, ", "); ok {
		add(strings.TrimSpace(first + " " + last))
	}
	return variants
}
