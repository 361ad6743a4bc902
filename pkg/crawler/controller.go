package crawler

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"case-scraper/pkg/metrics"
	"case-scraper/pkg/models"
	"case-scraper/pkg/progress"
	"case-scraper/pkg/utils"
)

// MonthCrawler processes one (year, month) unit
type MonthCrawler interface {
	CrawlMonth(ctx context.Context, year int, month string) (MonthResult, error)
}

// MonthCounter reports how many records are already persisted for a month
type MonthCounter interface {
	CountMonth(year int, month string) (int, error)
}

// RunOptions bounds one batch run
type RunOptions struct {
	StartYear  int
	EndYear    int
	StartMonth string // First month of StartYear; empty means January. Later years always start in January.
}

// YearSummary reports the outcome of one processed year
type YearSummary struct {
	Year         int
	Cases        int      // Records on disk for the months visited this run
	FailedMonths []string // Months whose listing could not be fetched
}

// Summary reports a whole run
type Summary struct {
	Years        []YearSummary
	SkippedYears []int // Already complete before the run
	TotalCases   int   // Cumulative count from the progress state at the end of the run
}

// Controller runs the crawl across a year range, consulting and updating the progress tracker around every unit
type Controller struct {
	tracker *progress.Tracker
	crawler MonthCrawler
	counter MonthCounter
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// NewController creates a Controller. m may be nil.
func NewController(tracker *progress.Tracker, crawler MonthCrawler, counter MonthCounter, m *metrics.Metrics, log *logrus.Entry) *Controller {
	return &Controller{
		tracker: tracker,
		crawler: crawler,
		counter: counter,
		metrics: m,
		log:     log.WithField("component", "controller"),
	}
}

// Run crawls years StartYear..EndYear in order. Completed years are skipped; within a year,
// months already marked complete are skipped but their on-disk counts still add to the year total.
// It returns an error wrapping utils.ErrInterrupted when ctx is cancelled, or a fatal
// persistence error; progress flushed before either remains valid for resuming.
func (c *Controller) Run(ctx context.Context, opts RunOptions) (Summary, error) {
	var summary Summary

	if opts.EndYear < opts.StartYear {
		return summary, fmt.Errorf("%w: end year %d is before start year %d", utils.ErrConfigValidation, opts.EndYear, opts.StartYear)
	}
	firstMonth := 0
	if opts.StartMonth != "" {
		firstMonth = models.MonthIndex(opts.StartMonth)
		if firstMonth < 0 {
			return summary, fmt.Errorf("%w: unknown start month '%s'", utils.ErrConfigValidation, opts.StartMonth)
		}
	}

	for year := opts.StartYear; year <= opts.EndYear; year++ {
		if ctx.Err() != nil {
			return c.finish(summary), interrupted(ctx)
		}

		yearLog := c.log.WithField("year", year)
		if c.tracker.IsYearComplete(year) {
			yearLog.Info("Skipping year (already completed)")
			summary.SkippedYears = append(summary.SkippedYears, year)
			continue
		}

		startIdx := 0
		if year == opts.StartYear {
			startIdx = firstMonth
		}

		yearLog.WithField("start_month", models.Months[startIdx]).Info("Processing year")
		c.metrics.ObserveYearStarted(year)

		ys, err := c.runYear(ctx, yearLog, year, models.Months[startIdx:])
		if err != nil {
			summary.Years = append(summary.Years, ys)
			return c.finish(summary), err
		}

		if err := c.tracker.MarkYearComplete(year); err != nil {
			return c.finish(summary), err
		}
		c.metrics.ObserveYearCompleted()
		summary.Years = append(summary.Years, ys)

		fields := logrus.Fields{"total_cases": ys.Cases}
		if len(ys.FailedMonths) > 0 {
			fields["failed_months"] = ys.FailedMonths
		}
		yearLog.WithFields(fields).Info("Year completed")
	}

	return c.finish(summary), nil
}

// runYear processes the given months of one year
func (c *Controller) runYear(ctx context.Context, yearLog *logrus.Entry, year int, months []string) (YearSummary, error) {
	ys := YearSummary{Year: year}

	for _, month := range months {
		monthLog := yearLog.WithField("month", month)

		if c.tracker.IsMonthComplete(year, month) {
			existing, err := c.counter.CountMonth(year, month)
			if err != nil {
				return ys, err
			}
			monthLog.WithField("cases", existing).Info("Skipping month (already completed)")
			ys.Cases += existing
			c.metrics.ObserveMonth("skipped")
			continue
		}

		res, err := c.crawler.CrawlMonth(ctx, year, month)
		if err != nil {
			return ys, err
		}
		if res.ListingFailed {
			ys.FailedMonths = append(ys.FailedMonths, month)
			c.metrics.ObserveMonth("listing_failed")
			continue
		}

		if err := c.tracker.RecordMonth(year, month, res.OnDisk); err != nil {
			monthLog.Errorf("Failed to save progress: %v", err)
			return ys, err
		}
		ys.Cases += res.OnDisk
		c.metrics.ObserveMonth("completed")
		monthLog.WithField("cases", res.OnDisk).Info("Month completed")
	}

	return ys, nil
}

func (c *Controller) finish(summary Summary) Summary {
	summary.TotalCases = c.tracker.State().TotalCasesScraped
	return summary
}
