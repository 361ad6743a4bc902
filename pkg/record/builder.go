// Package record composes fetched pages into CaseRecords and persists them.
package record

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"case-scraper/pkg/extract"
	"case-scraper/pkg/models"
	"case-scraper/pkg/parse"
	"case-scraper/pkg/utils"
)

// Clock abstracts time.Now for deterministic records in tests
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock
var SystemClock Clock = systemClock{}

// Builder turns a decision page into a CaseRecord
type Builder struct {
	version string
	clock   Clock
}

// NewBuilder creates a Builder stamping records with version. A nil clock uses the wall clock.
func NewBuilder(version string, clock Clock) *Builder {
	if version == "" {
		version = models.ExtractionVersion
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Builder{version: version, clock: clock}
}

// Build extracts every field of a CaseRecord from rawHTML.
// Parse misses fall back to sentinel values; only an untokenizable page is an error.
func (b *Builder) Build(rawHTML string, year int, month, sourceURL string) (*models.CaseRecord, error) {
	page, err := parse.ParsePage(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("building record for %s: %w", sourceURL, err)
	}

	caseNumber := extract.CaseNumber(page.Text, sourceURL)
	title := extract.Title(page.Emphasized, page.Text)

	decisionDate := extract.DecisionDate(page.Text)
	if decisionDate == "" {
		decisionDate = fmt.Sprintf("Date not specified, %d", year)
	}

	safe := utils.SafeCaseFilename(caseNumber)

	return &models.CaseRecord{
		FilePath:               sourceURL,
		Filename:               safe + ".html",
		Year:                   year,
		Month:                  strings.ToLower(month),
		CaseNumber:             caseNumber,
		GRNumber:               extract.GRNumber(caseNumber),
		VolumePage:             extract.VolumePage(page.Text),
		DecisionDate:           decisionDate,
		Title:                  title,
		Division:               extract.Division(page.Text),
		Categories:             extract.Categorize(page.Text),
		Keywords:               extract.Keywords(page.Text, title),
		TitleSummary:           extract.Summary(title),
		FormattedCaseContent:   page.Formatted,
		ContentLength:          utf8.RuneCountInString(page.Formatted),
		MetadataExtractionDate: b.clock.Now().Format(models.TimestampLayout),
		ExtractionVersion:      b.version,
	}, nil
}
