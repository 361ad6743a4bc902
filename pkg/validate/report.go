package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"case-scraper/pkg/utils"
)

// YearCounts tallies one year's results
type YearCounts struct {
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
}

// FileIssues lists what is wrong with one record file
type FileIssues struct {
	File   string   `json:"file"`
	Issues []string `json:"issues"`
}

// Report is the outcome of a directory validation, written as the JSON report
type Report struct {
	TotalCases   int                 `json:"total_cases"`
	ValidCases   int                 `json:"valid_cases"`
	InvalidCases int                 `json:"invalid_cases"`
	CasesByYear  map[int]*YearCounts `json:"cases_by_year"`
	Errors       []FileIssues        `json:"errors"`
}

// NewReport returns an empty report
func NewReport() *Report {
	return &Report{CasesByYear: make(map[int]*YearCounts), Errors: []FileIssues{}}
}

// Add records one file's result; year 0 is left out of the per-year tally
func (r *Report) Add(file string, year int, issues []string) {
	r.TotalCases++

	var yc *YearCounts
	if year != 0 {
		yc = r.CasesByYear[year]
		if yc == nil {
			yc = &YearCounts{}
			r.CasesByYear[year] = yc
		}
	}

	if len(issues) == 0 {
		r.ValidCases++
		if yc != nil {
			yc.Valid++
		}
		return
	}
	r.InvalidCases++
	if yc != nil {
		yc.Invalid++
	}
	r.Errors = append(r.Errors, FileIssues{File: file, Issues: issues})
}

// AllValid reports whether no invalid record was found
func (r *Report) AllValid() bool {
	return r.InvalidCases == 0
}

// ValidPercent returns the share of valid records, 0 for an empty report
func (r *Report) ValidPercent() float64 {
	if r.TotalCases == 0 {
		return 0
	}
	return float64(r.ValidCases) / float64(r.TotalCases) * 100
}

// WriteFile saves the report as indented JSON
func (r *Report) WriteFile(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("%w: encoding report: %w", utils.ErrParsing, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: writing report %s: %w", utils.ErrFilesystem, path, err)
	}
	return nil
}
