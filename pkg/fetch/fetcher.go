package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"

	"case-scraper/pkg/utils"
)

// PageFetcher retrieves the decoded text of a page.
// Failures are returned as errors wrapping a utils sentinel; implementations never panic on transport errors.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher is the network PageFetcher: one attempt per call, preceded by the pacer delay
type HTTPFetcher struct {
	client    *http.Client
	pacer     *Pacer
	robots    *RobotsGate // nil disables robots.txt checks
	userAgent string
	log       *logrus.Entry
}

// NewHTTPFetcher creates an HTTPFetcher. robots may be nil.
func NewHTTPFetcher(client *http.Client, pacer *Pacer, robots *RobotsGate, userAgent string, log *logrus.Entry) *HTTPFetcher {
	return &HTTPFetcher{
		client:    client,
		pacer:     pacer,
		robots:    robots,
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch waits for the politeness delay, then performs a single GET.
// Cancellation of ctx is honoured during the delay only: a request that has started runs to completion.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	reqLog := f.log.WithField("url", pageURL)

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL '%s': %w", utils.ErrParsing, pageURL, err)
	}

	if err := f.pacer.Wait(ctx); err != nil {
		return "", err
	}

	if f.robots != nil && !f.robots.Allowed(ctx, parsedURL) {
		reqLog.Warn("Disallowed by robots.txt")
		return "", utils.WrapErrorf(utils.ErrRobotsDisallowed, "%s", pageURL)
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", utils.ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		reqLog.Debugf("Network error: %v", err)
		return "", fmt.Errorf("%w: %w", utils.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d %s", utils.ErrHTTPStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	// Archive pages predate UTF-8; decode using the declared or sniffed charset
	contentType := resp.Header.Get("Content-Type")
	bodyReader, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		reqLog.Debugf("Charset detection failed, reading raw body: %v", err)
		bodyReader = resp.Body
	}

	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return "", fmt.Errorf("%w: %w", utils.ErrResponseBodyRead, err)
	}

	reqLog.WithField("bytes", len(body)).Debug("Fetched")
	return string(body), nil
}
