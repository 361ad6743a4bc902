package parse

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"case-scraper/pkg/utils"
)

// ExtractCaseLinks returns the absolute URLs of the relative ".html" links on a
// month listing page, in document order, without duplicates.
// Absolute hrefs point off-site (or back to archive navigation) and are ignored.
func ExtractCaseLinks(rawHTML string, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid listing URL '%s': %w", utils.ErrParsing, pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("%w: HTML: %w", utils.ErrParsing, err)
	}

	var links []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, element *goquery.Selection) {
		href, _ := element.Attr("href")
		if !strings.HasSuffix(href, ".html") || strings.HasPrefix(href, "http") {
			return
		}

		linkURL, err := base.Parse(href)
		if err != nil {
			return
		}
		key := linkKey(linkURL)
		if seen[key] {
			return
		}
		seen[key] = true
		links = append(links, linkURL.String())
	})

	return links, nil
}

// linkKey lowercases scheme and host and drops the fragment so that
// "#top" variants of the same page collapse to one entry
func linkKey(u *url.URL) string {
	normalized := *u
	normalized.Scheme = strings.ToLower(normalized.Scheme)
	normalized.Host = strings.ToLower(normalized.Host)
	normalized.Fragment = ""
	normalized.RawFragment = ""
	return normalized.String()
}
