package models

import (
	"slices"
	"strings"
)

// ExtractionVersion tags records produced by the current extraction pipeline
const ExtractionVersion = "2.0_enhanced_full_content"

// TimestampLayout is the local ISO-8601 form stamped on records and progress state
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Months lists the crawl months in calendar order; listings are keyed by these lowercase names
var Months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// MonthIndex returns the position of month in Months, or -1 if it is not a month name
func MonthIndex(month string) int {
	return slices.Index(Months, strings.ToLower(strings.TrimSpace(month)))
}

// IsMonth reports whether month is one of the lowercase full month names
func IsMonth(month string) bool {
	return MonthIndex(month) >= 0
}

// CaseRecord is the normalized form of one scraped decision, persisted as
// {output_root}/{year}/{month}/{safe_case_number}.json
type CaseRecord struct {
	FilePath               string   `json:"file_path"`       // Source locator (detail page URL)
	Filename               string   `json:"filename"`        // Safe case number + ".html"
	Year                   int      `json:"year"`            // 1900..2100
	Month                  string   `json:"month"`           // Lowercase full month name
	CaseNumber             string   `json:"case_number"`     // Raw matched label+number, e.g. "G.R. No. 123"
	GRNumber               string   `json:"gr_number"`       // Case number with the G.R. label stripped
	VolumePage             string   `json:"volume_page"`     // e.g. "1 Phil. 1"
	DecisionDate           string   `json:"decision_date"`   // Free-form matched date or "Date not specified, {year}"
	Title                  string   `json:"title"`           // "Title not found" when unmatched
	Division               *string  `json:"division"`        // nil when undetermined
	Categories             []string `json:"categories"`      // 1..6 tags
	Keywords               []string `json:"keywords"`        // Up to 20 most frequent content words
	TitleSummary           string   `json:"title_summary"`   // Title truncated to 100 characters + "..."
	FormattedCaseContent   string   `json:"formatted_case_content"`
	ContentLength          int      `json:"content_length"` // Character count of FormattedCaseContent
	MetadataExtractionDate string   `json:"metadata_extraction_date"`
	ExtractionVersion      string   `json:"extraction_version"`
}

// IndexEntry is the read-only projection of a CaseRecord stored in the case index
type IndexEntry struct {
	CaseID        string   `json:"case_id"`
	CaseNumber    string   `json:"case_number"`
	GRNumber      string   `json:"gr_number"`
	Year          int      `json:"year"`
	Month         string   `json:"month"`
	DecisionDate  string   `json:"decision_date"`
	Title         string   `json:"title"`
	TitleSummary  string   `json:"title_summary"`
	VolumePage    string   `json:"volume_page"`
	Division      *string  `json:"division"`
	Categories    []string `json:"categories"`
	FilePath      string   `json:"file_path"` // Relative to the indexed directory
	ContentLength int      `json:"content_length"`
}

// NewIndexEntry projects a record into an index entry
func NewIndexEntry(caseID, relPath string, rec *CaseRecord) IndexEntry {
	categories := rec.Categories
	if categories == nil {
		categories = []string{}
	}
	return IndexEntry{
		CaseID:        caseID,
		CaseNumber:    rec.CaseNumber,
		GRNumber:      rec.GRNumber,
		Year:          rec.Year,
		Month:         rec.Month,
		DecisionDate:  rec.DecisionDate,
		Title:         rec.Title,
		TitleSummary:  rec.TitleSummary,
		VolumePage:    rec.VolumePage,
		Division:      rec.Division,
		Categories:    categories,
		FilePath:      relPath,
		ContentLength: rec.ContentLength,
	}
}

// ProgressState is the crawl checkpoint persisted after every transition
type ProgressState struct {
	CompletedYears    []int    `json:"completed_years"`  // Ascending
	CurrentYear       *int     `json:"current_year"`     // Year in progress, nil when none
	CompletedMonths   []string `json:"completed_months"` // Months done within CurrentYear only
	LastUpdated       *string  `json:"last_updated"`     // ISO-8601 local timestamp
	TotalCasesScraped int      `json:"total_cases_scraped"`
}

// NewProgressState returns the empty checkpoint
func NewProgressState() ProgressState {
	return ProgressState{
		CompletedYears:  []int{},
		CompletedMonths: []string{},
	}
}

// Clone returns a deep copy so callers never share slices with the tracker
func (s ProgressState) Clone() ProgressState {
	out := s
	out.CompletedYears = append([]int{}, s.CompletedYears...)
	out.CompletedMonths = append([]string{}, s.CompletedMonths...)
	if s.CurrentYear != nil {
		y := *s.CurrentYear
		out.CurrentYear = &y
	}
	if s.LastUpdated != nil {
		ts := *s.LastUpdated
		out.LastUpdated = &ts
	}
	return out
}
