package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minTitleLen    = 20
	titleScanBold  = 3
	titleScanLines = 20
	summaryLen     = 100
	decisionMarker = "D E C I S I O N"
)

// Title picks the case title from the emphasized spans, then from the
// opening lines of the page text, else returns TitleNotFound
func Title(emphasized []string, text string) string {
	for i, span := range emphasized {
		if i == titleScanBold {
			break
		}
		if utf8.RuneCountInString(span) > minTitleLen && strings.Contains(strings.ToLower(span), "vs") {
			return span
		}
	}

	lines := strings.Split(text, "\n")
	if len(lines) > titleScanLines {
		lines = lines[:titleScanLines]
	}
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, " vs ") || strings.Contains(lower, " v. ") {
			return strings.TrimSpace(line)
		}
	}

	return TitleNotFound
}

// Summary truncates a title to 100 characters, marking the cut with "..."
func Summary(title string) string {
	if utf8.RuneCountInString(title) <= summaryLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:summaryLen]) + "..."
}

// repairPattern captures the text between the bracketed docket header and the decision marker
var repairPattern = regexp.MustCompile(`(?s)\[\s*G\.R\. No\.\s*.*?\]\s*\n\n(.*?)\n\n` + decisionMarker)

// RepairTitle recovers a title from formatted case content. The span between
// the "[ G.R. No. ... ]" header and "D E C I S I O N" is flattened to one line,
// and a title rendered twice in a row is reduced to a single copy.
// ok is false when the content has no such span.
func RepairTitle(formatted string) (title string, ok bool) {
	m := repairPattern.FindStringSubmatch(formatted)
	if m == nil {
		return "", false
	}

	span := strings.TrimSpace(m[1])
	if before, _, found := strings.Cut(span, decisionMarker); found {
		span = strings.TrimSpace(before)
	}
	title = DedupTitle(strings.Join(strings.Fields(span), " "))
	return title, title != ""
}

// DedupTitle returns the first half of a title whose two halves are identical
func DedupTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= minTitleLen {
		return title
	}
	mid := len(runes) / 2
	first := strings.TrimSpace(string(runes[:mid]))
	second := strings.TrimSpace(string(runes[mid:]))
	if first == second {
		return first
	}
	return title
}
