package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// RobotsGate fetches, caches, and checks robots.txt rules per host
type RobotsGate struct {
	client      *http.Client
	pacer       *Pacer
	userAgent   string
	robotsCache map[string]*robotstxt.RobotsData // hostname -> parsed data (or nil)
	cacheMu     sync.Mutex
	log         *logrus.Entry
}

// NewRobotsGate creates a RobotsGate; robots.txt requests go through the same pacer as page requests
func NewRobotsGate(client *http.Client, pacer *Pacer, userAgent string, log *logrus.Entry) *RobotsGate {
	return &RobotsGate{
		client:      client,
		pacer:       pacer,
		userAgent:   userAgent,
		robotsCache: make(map[string]*robotstxt.RobotsData),
		log:         log,
	}
}

// Allowed reports whether the user agent may fetch targetURL.
// Missing or unreadable robots.txt allows everything.
func (g *RobotsGate) Allowed(ctx context.Context, targetURL *url.URL) bool {
	data := g.robotsData(ctx, targetURL)
	if data == nil {
		return true
	}
	return data.TestAgent(targetURL.RequestURI(), g.userAgent)
}

// robotsData returns cached data for the host, fetching it on first use
func (g *RobotsGate) robotsData(ctx context.Context, targetURL *url.URL) *robotstxt.RobotsData {
	host := targetURL.Host

	g.cacheMu.Lock()
	data, found := g.robotsCache[host]
	g.cacheMu.Unlock()
	if found {
		return data
	}

	data = g.fetch(ctx, targetURL)

	g.cacheMu.Lock()
	g.robotsCache[host] = data
	g.cacheMu.Unlock()
	return data
}

func (g *RobotsGate) fetch(ctx context.Context, targetURL *url.URL) *robotstxt.RobotsData {
	scheme := targetURL.Scheme
	if scheme != "http" && scheme != "https" {
		scheme = "https"
	}
	robotsURL := (&url.URL{Scheme: scheme, Host: targetURL.Host, Path: "/robots.txt"}).String()
	robotsLog := g.log.WithField("robots_url", robotsURL)

	if err := g.pacer.Wait(ctx); err != nil {
		return nil
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodGet, robotsURL, nil)
	if err != nil {
		robotsLog.Errorf("Error creating request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		robotsLog.Warnf("Fetching robots.txt failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		robotsLog.Warnf("Error reading body: %v", err)
		return nil
	}

	// FromStatusAndBytes treats 4xx as allow-all and 5xx as disallow-all
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, bodyBytes)
	if err != nil {
		robotsLog.Warnf("Error parsing content: %v", err)
		return nil
	}
	robotsLog.WithField("status_code", resp.StatusCode).Info("Loaded robots.txt")
	return data
}
