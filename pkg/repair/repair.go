// Package repair backfills missing titles in persisted case records.
package repair

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"case-scraper/pkg/extract"
	"case-scraper/pkg/models"
	"case-scraper/pkg/record"
	"case-scraper/pkg/utils"
)

// Outcome of repairing one file
type Outcome int

const (
	Untouched  Outcome = iota // Title already present
	Fixed                     // Title and summary rewritten
	Unfixable                 // Title missing but no header/decision span in the content
	SkippedBad                // Empty or invalid JSON
)

// Result tallies a repair pass
type Result struct {
	Scanned   int
	Fixed     int
	Unfixable int
	Skipped   int
}

// Repairer fills empty titles from the formatted content of each record
type Repairer struct {
	includeSentinel bool
	log             *logrus.Entry
}

// New creates a Repairer. With includeSentinel, records titled "Title not
// found" are repaired as well as empty ones.
func New(includeSentinel bool, log *logrus.Entry) *Repairer {
	return &Repairer{includeSentinel: includeSentinel, log: log}
}

func (r *Repairer) needsTitle(title string) bool {
	return title == "" || (r.includeSentinel && title == extract.TitleNotFound)
}

// RepairFile repairs one record in place
func (r *Repairer) RepairFile(path string) (Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SkippedBad, fmt.Errorf("%w: reading %s: %w", utils.ErrFilesystem, path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		r.log.WithField("file", path).Warn("Skipping empty file")
		return SkippedBad, nil
	}

	var rec models.CaseRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		r.log.WithField("file", path).WithError(err).Warn("Skipping invalid JSON file")
		return SkippedBad, nil
	}
	if !r.needsTitle(rec.Title) {
		return Untouched, nil
	}

	title, ok := extract.RepairTitle(rec.FormattedCaseContent)
	if !ok {
		return Unfixable, nil
	}
	rec.Title = title
	rec.TitleSummary = extract.Summary(title)

	out, err := record.Marshal(&rec)
	if err != nil {
		return SkippedBad, err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return SkippedBad, fmt.Errorf("%w: writing %s: %w", utils.ErrFilesystem, path, err)
	}
	r.log.WithFields(logrus.Fields{"file": path, "title": title}).Debug("Title repaired")
	return Fixed, nil
}

// RepairYears runs RepairFile over every record under root in [startYear, endYear]
func (r *Repairer) RepairYears(ctx context.Context, root string, startYear, endYear int) (*Result, error) {
	files, err := record.ScanFiles(root, "index", "report", "progress")
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, f := range files {
		if f.Year == 0 || !f.InYear(startYear, endYear) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%w: %w", utils.ErrInterrupted, err)
		}

		res.Scanned++
		outcome, err := r.RepairFile(f.Path)
		if err != nil {
			return res, err
		}
		switch outcome {
		case Fixed:
			res.Fixed++
		case Unfixable:
			res.Unfixable++
		case SkippedBad:
			res.Skipped++
		}
	}

	r.log.WithFields(logrus.Fields{
		"scanned":   res.Scanned,
		"fixed":     res.Fixed,
		"unfixable": res.Unfixable,
		"skipped":   res.Skipped,
	}).Info("Title repair finished")
	return res, nil
}
