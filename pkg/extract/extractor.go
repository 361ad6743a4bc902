// Package extract derives case metadata from decision text with fixed, ordered rules.
// Every function is pure: identical input always yields identical output.
package extract

import (
	"path"
	"slices"
	"strings"
	"unicode"
)

// Sentinel values substituted when a field cannot be matched
const (
	VolumeNotAvailable = "Volume information not available"
	TitleNotFound      = "Title not found"
	GeneralCategory    = "General"
)

const (
	MaxCategories = 6
	MaxKeywords   = 20
	minKeywordLen = 3
)

// CaseNumber returns the first docket label in text, falling back to the
// last path segment of sourceURL without its ".html" suffix
func CaseNumber(text, sourceURL string) string {
	if m, _, ok := CaseNumberRules.FirstMatch(text); ok {
		return m
	}
	return strings.ReplaceAll(path.Base(sourceURL), ".html", "")
}

// GRNumber strips the G.R. label from a case number
func GRNumber(caseNumber string) string {
	s := strings.ReplaceAll(caseNumber, "G.R. No. ", "")
	return strings.ReplaceAll(s, "G.R. ", "")
}

// DecisionDate returns the first date in text, or "" when none matches
func DecisionDate(text string) string {
	m, _, _ := DateRules.FirstMatch(text)
	return m
}

// VolumePage returns the first reporter citation in text, or VolumeNotAvailable
func VolumePage(text string) string {
	if m, _, ok := VolumeRules.FirstMatch(text); ok {
		return m
	}
	return VolumeNotAvailable
}

// Division returns the deciding panel, or nil when the text names none
func Division(text string) *string {
	lower := strings.ToLower(text)
	for _, r := range divisionRules {
		if strings.Contains(lower, r.needle) {
			label := r.label
			return &label
		}
	}
	return nil
}

// Categorize tags text with every category whose keywords occur in it.
// The result is never empty.
func Categorize(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, c := range Categories {
		if slices.ContainsFunc(c.Keywords, func(k string) bool { return strings.Contains(lower, k) }) {
			out = append(out, c.Name)
			if len(out) == MaxCategories {
				break
			}
		}
	}
	if len(out) == 0 {
		return []string{GeneralCategory}
	}
	return out
}

// Keywords returns up to MaxKeywords of the most frequent content words in
// title and content, ties kept in order of first appearance
func Keywords(content, title string) []string {
	text := strings.ToLower(title + " " + content)

	counts := make(map[string]int)
	var order []string
	for _, w := range words(text) {
		if StopWords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	slices.SortStableFunc(order, func(a, b string) int {
		return counts[b] - counts[a]
	})
	if len(order) > MaxKeywords {
		order = order[:MaxKeywords]
	}
	if order == nil {
		return []string{}
	}
	return order
}

// words returns the runs of word characters that consist solely of a-z and
// are at least minKeywordLen long. A run that mixes in digits, underscores,
// or accented letters is not a word on its own, and neither is any part of it.
func words(text string) []string {
	var out []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		w := text[start:end]
		start = -1
		if len(w) < minKeywordLen {
			return
		}
		for i := 0; i < len(w); i++ {
			if w[i] < 'a' || w[i] > 'z' {
				return
			}
		}
		out = append(out, w)
	}
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(text))
	return out
}
