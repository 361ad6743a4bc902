package crawler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"case-scraper/pkg/models"
	"case-scraper/pkg/record"
	"case-scraper/pkg/storage"
	"case-scraper/pkg/utils"
)

const testBase = "https://lawphil.net/judjuris/"

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local) }

// fakeFetcher serves canned pages; unknown URLs are 404s
type fakeFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	errs    map[string]error
	calls   []string
	onFetch func(url string)
}

func (f *fakeFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageURL)
	hook := f.onFetch
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if hook != nil {
		hook(pageURL)
	}
	if err, ok := f.errs[pageURL]; ok {
		return "", err
	}
	if page, ok := f.pages[pageURL]; ok {
		return page, nil
	}
	return "", fmt.Errorf("%w: status 404 Not Found", utils.ErrHTTPStatus)
}

// memLedger is an in-memory storage.Ledger
type memLedger struct {
	entries map[string]models.LedgerEntry
}

func (l *memLedger) Record(pageURL string, entry models.LedgerEntry) error {
	if l.entries == nil {
		l.entries = make(map[string]models.LedgerEntry)
	}
	l.entries[pageURL] = entry
	return nil
}

func (l *memLedger) Get(pageURL string) (models.PageStatus, *models.LedgerEntry, error) {
	e, ok := l.entries[pageURL]
	if !ok {
		return models.PageStatusNotFound, nil, nil
	}
	return e.Status, &e, nil
}

func (l *memLedger) Failures() ([]storage.FailedPage, error) { return nil, nil }
func (l *memLedger) Close() error                            { return nil }

func detailHTML(n int, extra string) string {
	return fmt.Sprintf(`<html><body>
<p>[ G.R. No. %d, August 15, 1901 ]</p>
<p>SMITH vs. JONES</p>
%s
<p>D E C I S I O N</p>
<p>The court finds for the plaintiff.</p>
</body></html>`, n, extra)
}

func listingHTML(hrefs ...string) string {
	out := "<html><body>"
	for _, h := range hrefs {
		out += fmt.Sprintf(`<a href="%s">%s</a>`, h, h)
	}
	return out + "</body></html>"
}

func newTestDriver(t *testing.T, f *fakeFetcher, ledger storage.Ledger) (*Driver, *record.Store) {
	t.Helper()
	store := record.NewStore(t.TempDir(), testLogger())
	d := NewDriver(testBase, f, record.NewBuilder("", fixedClock{}), store, testLogger(), &DriverOptions{Ledger: ledger})
	return d, store
}

func TestMonthURL(t *testing.T) {
	assert.Equal(t, "https://lawphil.net/judjuris/juri1901/aug1901/aug1901.html", MonthURL(testBase, 1901, "august"))
	assert.Equal(t, "https://lawphil.net/judjuris/juri1995/dec1995/dec1995.html", MonthURL("https://lawphil.net/judjuris", 1995, "December"))
	assert.Equal(t, "https://lawphil.net/judjuris/juri1950/may1950/may1950.html", MonthURL(testBase, 1950, "may"))
}

func TestCrawlMonth_EndToEnd(t *testing.T) {
	listURL := MonthURL(testBase, 1901, "august")
	f := &fakeFetcher{pages: map[string]string{
		listURL: listingHTML("gr_1_1901.html"),
		testBase + "juri1901/aug1901/gr_1_1901.html": detailHTML(1, ""),
	}}
	ledger := &memLedger{}
	d, store := newTestDriver(t, f, ledger)

	res, err := d.CrawlMonth(context.Background(), 1901, "august")
	require.NoError(t, err)
	assert.False(t, res.ListingFailed)
	assert.Equal(t, 1, res.Candidates)
	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 1, res.OnDisk)

	path := filepath.Join(store.Root(), "1901", "august", "G_R__No__1.json")
	rec, err := record.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "G.R. No. 1", rec.CaseNumber)
	assert.Equal(t, "August 15, 1901", rec.DecisionDate)
	assert.Nil(t, rec.Division)
	assert.Equal(t, len([]rune(rec.FormattedCaseContent)), rec.ContentLength)

	status, entry, err := ledger.Get(testBase + "juri1901/aug1901/gr_1_1901.html")
	require.NoError(t, err)
	assert.Equal(t, models.PageStatusSuccess, status)
	assert.Equal(t, path, entry.RecordPath)
	assert.Equal(t, models.PageStatusSuccess, ledger.entries[listURL].Status)
}

func TestCrawlMonth_FailedCaseDoesNotAbortMonth(t *testing.T) {
	listURL := MonthURL(testBase, 1901, "august")
	dir := testBase + "juri1901/aug1901/"
	f := &fakeFetcher{
		pages: map[string]string{
			listURL:        listingHTML("a.html", "b.html", "c.html"),
			dir + "a.html": detailHTML(1, ""),
			dir + "c.html": detailHTML(3, ""),
		},
		errs: map[string]error{
			dir + "b.html": fmt.Errorf("%w: dial tcp: connection refused", utils.ErrFetch),
		},
	}
	ledger := &memLedger{}
	d, _ := newTestDriver(t, f, ledger)

	res, err := d.CrawlMonth(context.Background(), 1901, "august")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Candidates)
	assert.Equal(t, 2, res.Saved)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.OnDisk)

	assert.Equal(t, models.PageStatusFailure, ledger.entries[dir+"b.html"].Status)
	assert.Equal(t, "Network_ConnectionRefused", ledger.entries[dir+"b.html"].ErrorType)
}

func TestCrawlMonth_OnDiskCountReconcilesEarlierRuns(t *testing.T) {
	listURL := MonthURL(testBase, 1901, "august")
	dir := testBase + "juri1901/aug1901/"
	f := &fakeFetcher{pages: map[string]string{
		listURL:        listingHTML("a.html", "b.html"),
		dir + "a.html": detailHTML(1, ""),
	}}
	d, store := newTestDriver(t, f, nil)

	// A record left by an earlier, interrupted run
	_, err := store.Save(&models.CaseRecord{Filename: "G_R__No__2.html", Year: 1901, Month: "august"})
	require.NoError(t, err)

	res, err := d.CrawlMonth(context.Background(), 1901, "august")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.OnDisk)
}

func TestCrawlMonth_ListingFailure(t *testing.T) {
	ledger := &memLedger{}
	d, _ := newTestDriver(t, &fakeFetcher{}, ledger)

	res, err := d.CrawlMonth(context.Background(), 1901, "march")
	require.NoError(t, err)
	assert.True(t, res.ListingFailed)
	assert.Equal(t, 0, res.Candidates)

	entry := ledger.entries[MonthURL(testBase, 1901, "march")]
	assert.Equal(t, models.PageStatusFailure, entry.Status)
	assert.Equal(t, models.PageKindListing, entry.Kind)
	assert.Equal(t, "HTTP_404", entry.ErrorType)
}

func TestCrawlMonth_InterruptedBetweenCases(t *testing.T) {
	listURL := MonthURL(testBase, 1901, "august")
	dir := testBase + "juri1901/aug1901/"
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{pages: map[string]string{
		listURL:        listingHTML("a.html", "b.html"),
		dir + "a.html": detailHTML(1, ""),
		dir + "b.html": detailHTML(2, ""),
	}}
	// The interrupt arrives while the first case is in flight
	f.onFetch = func(url string) {
		if url == dir+"a.html" {
			cancel()
		}
	}
	d, store := newTestDriver(t, f, nil)

	res, err := d.CrawlMonth(ctx, 1901, "august")
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrInterrupted)
	assert.Equal(t, 1, res.Saved, "the in-flight case completes")
	assert.NotContains(t, f.calls, dir+"b.html", "no new fetch starts after the interrupt")

	_, statErr := os.Stat(filepath.Join(store.Root(), "1901", "august", "G_R__No__1.json"))
	assert.NoError(t, statErr)
}

func TestCrawlMonth_PersistenceFailureIsFatal(t *testing.T) {
	listURL := MonthURL(testBase, 1901, "august")
	f := &fakeFetcher{pages: map[string]string{
		listURL: listingHTML("a.html"),
		testBase + "juri1901/aug1901/a.html": detailHTML(1, ""),
	}}
	d, store := newTestDriver(t, f, nil)
	require.NoError(t, os.WriteFile(filepath.Join(store.Root(), "1901"), []byte("blocker"), 0o644))

	_, err := d.CrawlMonth(context.Background(), 1901, "august")
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrFilesystem)
}

func TestCrawlMonth_DivisionDetected(t *testing.T) {
	listURL := MonthURL(testBase, 1950, "june")
	f := &fakeFetcher{pages: map[string]string{
		listURL: listingHTML("x.html"),
		testBase + "juri1950/jun1950/x.html": detailHTML(77, "<p>EN BANC</p>"),
	}}
	d, store := newTestDriver(t, f, nil)

	_, err := d.CrawlMonth(context.Background(), 1950, "june")
	require.NoError(t, err)

	rec, err := record.Load(filepath.Join(store.Root(), "1950", "june", "G_R__No__77.json"))
	require.NoError(t, err)
	require.NotNil(t, rec.Division)
	assert.Equal(t, "En Banc", *rec.Division)
}
