// Package validate checks persisted case records for completeness and consistency.
package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"case-scraper/pkg/models"
	"case-scraper/pkg/record"
	"case-scraper/pkg/utils"
)

// RequiredFields must be present in every record
var RequiredFields = []string{
	"file_path",
	"filename",
	"year",
	"month",
	"case_number",
	"gr_number",
	"volume_page",
	"decision_date",
	"title",
	"categories",
	"keywords",
	"title_summary",
	"formatted_case_content",
	"content_length",
	"metadata_extraction_date",
	"extraction_version",
}

// NullableFields may hold JSON null
var NullableFields = []string{"division", "decision_date"}

var arrayFields = []string{"categories", "keywords"}

// Files whose names contain these are reports, not records
var skipNames = []string{"index", "report", "progress"}

const progressEvery = 100

// CheckRecord returns the issues found in one record file's contents; path is
// matched against the record's year and month. An empty result means valid.
func CheckRecord(path string, data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return []string{fmt.Sprintf("Invalid JSON: %v", err)}
	}
	if doc == nil {
		return []string{"Invalid JSON: top-level value is not an object"}
	}

	var issues []string
	for _, f := range RequiredFields {
		if _, ok := doc[f]; !ok {
			issues = append(issues, "Missing required field: "+f)
		}
	}

	for _, f := range RequiredFields {
		v, ok := doc[f]
		if !ok {
			continue
		}
		nullable := slices.Contains(NullableFields, f)
		if v == nil {
			if !nullable {
				issues = append(issues, fmt.Sprintf("Field '%s' is null but should have a value", f))
			}
			continue
		}
		if nullable || slices.Contains(arrayFields, f) {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			issues = append(issues, fmt.Sprintf("Field '%s' is empty", f))
		}
	}

	for _, f := range arrayFields {
		v, ok := doc[f]
		if !ok {
			continue
		}
		arr, isArr := v.([]any)
		switch {
		case !isArr:
			issues = append(issues, fmt.Sprintf("Field '%s' must be an array", f))
		case len(arr) == 0:
			issues = append(issues, fmt.Sprintf("Field '%s' is empty", f))
		}
	}

	if v, ok := doc["year"]; ok {
		year, isInt := intValue(v)
		switch {
		case !isInt:
			issues = append(issues, "Field 'year' must be an integer, got "+typeName(v))
		case year < 1900 || year > 2100:
			issues = append(issues, fmt.Sprintf("Field 'year' has invalid value: %d", year))
		}
	}

	if v, ok := doc["month"]; ok {
		if !validMonth(strings.ToLower(render(v))) {
			issues = append(issues, "Invalid month: "+render(v))
		}
	}

	declared, hasDeclared := doc["content_length"]
	content, hasContent := doc["formatted_case_content"]
	if hasDeclared && hasContent {
		if text, isStr := content.(string); isStr {
			actual := utf8.RuneCountInString(text)
			if n, isInt := intValue(declared); !isInt || n != int64(actual) {
				issues = append(issues, fmt.Sprintf("content_length mismatch: declared %s, actual %d", render(declared), actual))
			}
		}
	}

	year, hasYear := doc["year"]
	month, hasMonth := doc["month"]
	if hasYear && hasMonth {
		expected := render(year) + "/" + render(month)
		if !strings.Contains(filepath.ToSlash(path), expected) {
			issues = append(issues, fmt.Sprintf("File location doesn't match year/month: expected %s in path", expected))
		}
	}

	return issues
}

// CheckFile reads and checks one record file
func CheckFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Cannot read file: %v", err)}
	}
	return CheckRecord(path, data)
}

func validMonth(m string) bool {
	if models.IsMonth(m) {
		return true
	}
	// "01".."12" and "1".."9"
	for i := 1; i <= 12; i++ {
		if m == fmt.Sprintf("%02d", i) || (i < 10 && m == fmt.Sprint(i)) {
			return true
		}
	}
	return false
}

func intValue(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	return i, err == nil
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case []any:
		return "array"
	default:
		return "object"
	}
}

// render prints a decoded JSON value the way it appears in issue messages
func render(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Validator runs CheckFile over a corpus directory
type Validator struct {
	workers int
	log     *logrus.Entry
}

// New creates a Validator
func New(log *logrus.Entry) *Validator {
	return &Validator{workers: runtime.NumCPU(), log: log}
}

// ValidateDirectory checks every record under dir. Files under a four-digit
// year directory outside [startYear, endYear] are skipped; zero bounds are open.
func (v *Validator) ValidateDirectory(ctx context.Context, dir string, startYear, endYear int) (*Report, error) {
	all, err := record.ScanFiles(dir, skipNames...)
	if err != nil {
		return nil, err
	}
	var files []record.CaseFile
	for _, f := range all {
		if f.Year == 0 || f.InYear(startYear, endYear) {
			files = append(files, f)
		}
	}
	v.log.WithFields(logrus.Fields{"directory": dir, "files": len(files)}).Info("Validating case files")

	results := make([][]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = CheckFile(f.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrInterrupted, err)
	}

	report := NewReport()
	for i, f := range files {
		report.Add(f.Rel, f.Year, results[i])
		if len(results[i]) > 0 {
			v.log.WithFields(logrus.Fields{"file": f.Rel, "issues": results[i]}).Warn("Invalid case file")
		}
		if report.TotalCases%progressEvery == 0 {
			v.log.WithFields(logrus.Fields{
				"validated": report.TotalCases,
				"valid":     report.ValidCases,
				"invalid":   report.InvalidCases,
			}).Info("Validation progress")
		}
	}
	return report, nil
}
