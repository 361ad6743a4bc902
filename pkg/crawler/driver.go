// Package crawler walks the archive one (year, month) unit at a time and drives the batch across a year range.
package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"case-scraper/pkg/fetch"
	"case-scraper/pkg/metrics"
	"case-scraper/pkg/models"
	"case-scraper/pkg/parse"
	"case-scraper/pkg/record"
	"case-scraper/pkg/storage"
	"case-scraper/pkg/utils"
)

// MonthResult summarises one CrawlMonth call
type MonthResult struct {
	Year          int
	Month         string
	ListingURL    string
	ListingFailed bool // Listing could not be fetched or parsed; the month must not be marked complete
	Candidates    int  // Case links found on the listing
	Saved         int  // Records written during this call
	Skipped       int  // Candidates whose fetch or build failed
	OnDisk        int  // Record files present for the month after processing
}

// DriverOptions holds the optional collaborators of a Driver
type DriverOptions struct {
	Ledger  storage.Ledger   // nil disables the attempt ledger
	Metrics *metrics.Metrics // nil disables metrics
}

// Driver crawls a single month: one listing fetch, then one fetch per case link
type Driver struct {
	baseURL string
	fetcher fetch.PageFetcher
	builder *record.Builder
	store   *record.Store
	ledger  storage.Ledger
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// NewDriver creates a Driver
func NewDriver(baseURL string, fetcher fetch.PageFetcher, builder *record.Builder, store *record.Store, log *logrus.Entry, opts *DriverOptions) *Driver {
	d := &Driver{
		baseURL: baseURL,
		fetcher: fetcher,
		builder: builder,
		store:   store,
		log:     log.WithField("component", "driver"),
	}
	if opts != nil {
		d.ledger = opts.Ledger
		d.metrics = opts.Metrics
	}
	return d
}

// interrupted wraps a context error so callers can tell a user stop from a failure
func interrupted(ctx context.Context) error {
	return fmt.Errorf("%w: %w", utils.ErrInterrupted, context.Cause(ctx))
}

// CrawlMonth processes one (year, month) unit. Failed fetches skip the case (or, for the
// listing, the whole month) and are not errors. The returned error is either a persistence
// failure or utils.ErrInterrupted when ctx is cancelled between fetches.
func (d *Driver) CrawlMonth(ctx context.Context, year int, month string) (MonthResult, error) {
	listURL := MonthURL(d.baseURL, year, month)
	res := MonthResult{Year: year, Month: month, ListingURL: listURL}
	monthLog := d.log.WithFields(logrus.Fields{"year": year, "month": month})

	if ctx.Err() != nil {
		return res, interrupted(ctx)
	}

	monthLog.WithField("url", listURL).Info("Fetching month listing")
	listing, err := d.fetcher.Fetch(ctx, listURL)
	if err != nil {
		if ctx.Err() != nil {
			return res, interrupted(ctx)
		}
		d.listingFailed(monthLog, &res, err)
		return res, nil
	}

	links, err := parse.ExtractCaseLinks(listing, listURL)
	if err != nil {
		d.listingFailed(monthLog, &res, err)
		return res, nil
	}
	d.metrics.ObserveFetch(string(models.PageKindListing), true)
	d.recordAttempt(listURL, models.LedgerEntry{Status: models.PageStatusSuccess, Kind: models.PageKindListing, Year: year, Month: month})

	res.Candidates = len(links)
	monthLog.WithField("candidates", len(links)).Info("Found case links")

	for i, caseURL := range links {
		if ctx.Err() != nil {
			monthLog.WithField("processed", i).Warn("Interrupted between cases")
			return res, interrupted(ctx)
		}

		caseLog := monthLog.WithField("url", caseURL)
		saved, err := d.crawlCase(ctx, caseLog, year, month, caseURL)
		if err != nil {
			return res, err
		}
		if saved {
			res.Saved++
		} else {
			res.Skipped++
		}
	}

	onDisk, err := d.store.CountMonth(year, month)
	if err != nil {
		return res, err
	}
	res.OnDisk = onDisk

	monthLog.WithFields(logrus.Fields{
		"saved": res.Saved, "skipped": res.Skipped, "on_disk": res.OnDisk,
	}).Info("Month processed")
	return res, nil
}

// crawlCase fetches, builds, and persists one decision. It returns saved=false for a
// recoverable failure and a non-nil error only for persistence failures and interruption.
func (d *Driver) crawlCase(ctx context.Context, caseLog *logrus.Entry, year int, month, caseURL string) (bool, error) {
	entry := models.LedgerEntry{Kind: models.PageKindDetail, Year: year, Month: month}

	page, err := d.fetcher.Fetch(ctx, caseURL)
	if err != nil {
		if ctx.Err() != nil {
			return false, interrupted(ctx)
		}
		d.caseSkipped(caseLog, caseURL, entry, err)
		return false, nil
	}
	d.metrics.ObserveFetch(string(models.PageKindDetail), true)

	rec, err := d.builder.Build(page, year, month, caseURL)
	if err != nil {
		d.caseSkipped(caseLog, caseURL, entry, err)
		return false, nil
	}

	path, err := d.store.Save(rec)
	if err != nil {
		caseLog.WithField("case_number", rec.CaseNumber).Errorf("Failed to persist record: %v", err)
		return false, err
	}

	caseLog.WithFields(logrus.Fields{"case_number": rec.CaseNumber, "path": path}).Info("Case saved")
	d.metrics.ObserveCaseSaved(year)
	entry.Status = models.PageStatusSuccess
	entry.RecordPath = path
	d.recordAttempt(caseURL, entry)
	return true, nil
}

func (d *Driver) listingFailed(monthLog *logrus.Entry, res *MonthResult, err error) {
	errType := utils.CategorizeError(err)
	monthLog.WithField("error_type", errType).Warnf("Month listing unavailable, skipping month: %v", err)
	res.ListingFailed = true
	d.metrics.ObserveFetch(string(models.PageKindListing), false)
	d.recordAttempt(res.ListingURL, models.LedgerEntry{
		Status: models.PageStatusFailure, Kind: models.PageKindListing,
		Year: res.Year, Month: res.Month, ErrorType: errType,
	})
}

func (d *Driver) caseSkipped(caseLog *logrus.Entry, caseURL string, entry models.LedgerEntry, err error) {
	errType := utils.CategorizeError(err)
	caseLog.WithField("error_type", errType).Warnf("Skipping case: %v", err)
	d.metrics.ObserveFetch(string(models.PageKindDetail), false)
	d.metrics.ObserveCaseSkipped(errType)
	entry.Status = models.PageStatusFailure
	entry.ErrorType = errType
	d.recordAttempt(caseURL, entry)
}

// recordAttempt writes to the ledger when one is configured; ledger errors are logged only
func (d *Driver) recordAttempt(pageURL string, entry models.LedgerEntry) {
	if d.ledger == nil {
		return
	}
	entry.LastAttempt = time.Now()
	if err := d.ledger.Record(pageURL, entry); err != nil {
		d.log.WithField("url", pageURL).Warnf("Ledger write failed: %v", err)
	}
}
