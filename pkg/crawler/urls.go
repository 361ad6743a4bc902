package crawler

import (
	"fmt"
	"strings"
)

// MonthURL returns the listing page for one month of the archive:
// {base}juri{year}/{mon}{year}/{mon}{year}.html, where mon is the first three letters of the month
func MonthURL(baseURL string, year int, month string) string {
	mon := strings.ToLower(month)
	if len(mon) > 3 {
		mon = mon[:3]
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return fmt.Sprintf("%sjuri%d/%s%d/%s%d.html", baseURL, year, mon, year, mon, year)
}
