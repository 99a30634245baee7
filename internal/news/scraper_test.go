// ABOUTME: Tests for the goquery-based headline scraper.
// ABOUTME: Serves HTML fixtures from httptest servers to cover extraction, limits and failures.

package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontPage = `<!DOCTYPE html>
<html><body>
  <h3>  Markets   rally on
     rate news </h3>
  <h3></h3>
  <h3>Storm hits coast</h3>
  <div class="newsHdng"><a href="/a">Local election results</a></div>
  <h3>Team wins final</h3>
  <h3>Scientists map deep sea</h3>
  <h3>New bridge opens</h3>
  <h3>Festival draws crowds</h3>
</body></html>`

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (o *recordingObserver) ObserveFetch(source, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = make(map[string][]string)
	}
	o.outcomes[source] = append(o.outcomes[source], outcome)
}

func (o *recordingObserver) get(source string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.outcomes[source]
}

func htmlServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScraper_ExtractsFirstFiveHeadlines(t *testing.T) {
	srv := htmlServer(t, http.StatusOK, frontPage)
	s := NewScraper(ScraperConfig{Timeout: 2 * time.Second, MaxHeadlines: 5})

	got := s.FetchHeadlines(context.Background(), Source{Name: "Test", URL: srv.URL, Selector: "h3"})

	assert.Equal(t, []string{
		"Markets rally on rate news",
		"Storm hits coast",
		"Team wins final",
		"Scientists map deep sea",
		"New bridge opens",
	}, got)
}

func TestScraper_NestedSelector(t *testing.T) {
	srv := htmlServer(t, http.StatusOK, frontPage)
	s := NewScraper(ScraperConfig{Timeout: 2 * time.Second})

	got := s.FetchHeadlines(context.Background(), Source{Name: "NDTV", URL: srv.URL, Selector: ".newsHdng a"})

	assert.Equal(t, []string{"Local election results"}, got)
}

func TestScraper_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(frontPage))
	}))
	defer srv.Close()

	s := NewScraper(ScraperConfig{Timeout: 2 * time.Second, UserAgent: "news-mcp-test/1.0"})
	s.FetchHeadlines(context.Background(), Source{Name: "Test", URL: srv.URL, Selector: "h3"})

	assert.Equal(t, "news-mcp-test/1.0", gotUA)
}

func TestScraper_NonSuccessStatusYieldsEmpty(t *testing.T) {
	srv := htmlServer(t, http.StatusServiceUnavailable, frontPage)
	obs := &recordingObserver{}
	s := NewScraper(ScraperConfig{Timeout: 2 * time.Second, Observer: obs})

	got := s.FetchHeadlines(context.Background(), Source{Name: "Down", URL: srv.URL, Selector: "h3"})

	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, []string{OutcomeError}, obs.get("Down"))
}

func TestScraper_UnreachableYieldsEmpty(t *testing.T) {
	srv := htmlServer(t, http.StatusOK, frontPage)
	url := srv.URL
	srv.Close()

	s := NewScraper(ScraperConfig{Timeout: time.Second})
	got := s.FetchHeadlines(context.Background(), Source{Name: "Gone", URL: url, Selector: "h3"})

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScraper_TimeoutYieldsEmpty(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	s := NewScraper(ScraperConfig{Timeout: 50 * time.Millisecond})
	start := time.Now()
	got := s.FetchHeadlines(context.Background(), Source{Name: "Slow", URL: srv.URL, Selector: "h3"})

	assert.Empty(t, got)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestScraper_NoMatchesReportsEmpty(t *testing.T) {
	srv := htmlServer(t, http.StatusOK, frontPage)
	obs := &recordingObserver{}
	s := NewScraper(ScraperConfig{Timeout: 2 * time.Second, Observer: obs})

	got := s.FetchHeadlines(context.Background(), Source{Name: "None", URL: srv.URL, Selector: "article h1"})

	assert.Empty(t, got)
	assert.Equal(t, []string{OutcomeEmpty}, obs.get("None"))
}

func TestScraper_InvalidURLYieldsEmpty(t *testing.T) {
	s := NewScraper(ScraperConfig{Timeout: time.Second})
	got := s.FetchHeadlines(context.Background(), Source{Name: "Bad", URL: "://nope", Selector: "h3"})
	assert.Empty(t, got)
}
