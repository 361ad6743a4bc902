package parse

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"case-scraper/pkg/utils"
)

// Page is the text view of a fetched decision page
type Page struct {
	Text       string   // Every text node concatenated with no separator
	Formatted  string   // Non-empty trimmed lines joined by a blank line
	Emphasized []string // Text of each <b>/<strong> element, in document order
}

// skipText lists elements whose character data is not page text
var skipText = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

// ParsePage tokenizes raw HTML and derives the text views the extractor works on
func ParsePage(rawHTML string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: HTML: %w", utils.ErrParsing, err)
	}

	var chunks []string
	for _, n := range doc.Nodes {
		collectText(n, &chunks)
	}

	page := &Page{
		Text:      strings.Join(chunks, ""),
		Formatted: formatLines(chunks),
	}

	doc.Find("b, strong").Each(func(_ int, s *goquery.Selection) {
		var parts []string
		for _, n := range s.Nodes {
			collectText(n, &parts)
		}
		var b strings.Builder
		for _, p := range parts {
			b.WriteString(strings.TrimSpace(p))
		}
		page.Emphasized = append(page.Emphasized, b.String())
	})

	return page, nil
}

// collectText appends the data of every text node below n in document order
func collectText(n *html.Node, out *[]string) {
	switch n.Type {
	case html.TextNode:
		*out = append(*out, n.Data)
		return
	case html.ElementNode:
		if skipText[n.Data] {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}

// formatLines joins the text nodes with newlines, trims every line, drops blank ones,
// and separates the survivors with an empty line
func formatLines(chunks []string) string {
	joined := strings.Join(chunks, "\n")
	var lines []string
	for _, line := range strings.Split(joined, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n\n")
}
