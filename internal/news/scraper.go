// ABOUTME: HTML headline scraper built on goquery
// ABOUTME: Fetches a source page and extracts the first N non-empty headline texts

package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnexpectedStatus indicates the source answered with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// maxPageSize bounds how much of a source page is parsed (4MB).
const maxPageSize = 4 << 20

// Fetch outcomes reported to a FetchObserver.
const (
	OutcomeOK     = "ok"
	OutcomeEmpty  = "empty"
	OutcomeError  = "error"
	OutcomeCached = "cached"
)

// HeadlineFetcher returns up to a bounded number of headlines for a source.
// Implementations never fail: any internal fault yields an empty slice.
type HeadlineFetcher interface {
	FetchHeadlines(ctx context.Context, src Source) []string
}

// FetchObserver receives one observation per fetch attempt.
type FetchObserver interface {
	ObserveFetch(source, outcome string, elapsed time.Duration)
}

// ScraperConfig holds configuration for a Scraper.
type ScraperConfig struct {
	Client       *http.Client // defaults to a client with Timeout
	Timeout      time.Duration
	UserAgent    string
	MaxHeadlines int
	Logger       *slog.Logger
	Observer     FetchObserver
}

// Scraper fetches source pages over HTTP and extracts headline text.
type Scraper struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	limit     int
	logger    *slog.Logger
	observer  FetchObserver
}

// NewScraper creates a Scraper from cfg.
func NewScraper(cfg ScraperConfig) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.MaxHeadlines
	if limit <= 0 {
		limit = 5
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Scraper{
		client:    client,
		timeout:   cfg.Timeout,
		userAgent: cfg.UserAgent,
		limit:     limit,
		logger:    logger.With("component", "scraper"),
		observer:  cfg.Observer,
	}
}

// FetchHeadlines returns up to the configured number of headlines for src.
// Errors are logged and degrade to an empty slice.
func (s *Scraper) FetchHeadlines(ctx context.Context, src Source) []string {
	start := time.Now()
	headlines, err := s.scrape(ctx, src)
	elapsed := time.Since(start)

	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
		s.logger.Warn("headline fetch failed",
			"source", src.Name,
			"url", src.URL,
			"error", err,
		)
		headlines = []string{}
	case len(headlines) == 0:
		outcome = OutcomeEmpty
		s.logger.Debug("no headlines matched", "source", src.Name, "selector", src.Selector)
	default:
		s.logger.Debug("fetched headlines", "source", src.Name, "count", len(headlines), "elapsed", elapsed)
	}

	if s.observer != nil {
		s.observer.ObserveFetch(src.Name, outcome, elapsed)
	}
	return headlines
}

// scrape performs the HTTP fetch and extraction for one source.
func (s *Scraper) scrape(ctx context.Context, src Source) ([]string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}

	return extractHeadlines(doc, src.Selector, s.limit), nil
}

// extractHeadlines collects the trimmed text of the first limit non-empty
// elements matching selector. Internal whitespace runs collapse to one space.
func extractHeadlines(doc *goquery.Document, selector string, limit int) []string {
	headlines := make([]string, 0, limit)
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			headlines = append(headlines, text)
		}
		return len(headlines) < limit
	})
	return headlines
}
