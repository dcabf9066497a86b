// Package feed performs the single outbound read against the news feed
// endpoint and maps the result into digest items.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/rss"

	"ainews/internal/digest"
	"ainews/internal/logger"
)

const (
	// DefaultEndpoint is the Google News RSS search endpoint; %s receives
	// the URL-encoded query.
	DefaultEndpoint = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"
	DefaultQuery    = "AI OR artificial intelligence when:1d"
	DefaultLimit    = 10
	DefaultTimeout  = 12 * time.Second

	snippetMaxRunes = 240
)

// Kind classifies a fetch failure. The dispatcher treats every kind the same
// way (fallback digest), but the distinction keeps logs useful and stops
// unrelated errors from sliding into the fallback path.
type Kind int

const (
	KindNetwork Kind = iota
	KindTimeout
	KindStatus
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	}
	return "unknown"
}

// FetchError is the only error type Fetch returns.
type FetchError struct {
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("feed fetch (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher reads the feed. Safe for concurrent use; it holds no per-request
// state.
type Fetcher struct {
	client   *http.Client
	endpoint string
	query    string
	limit    int
}

func NewFetcher(endpoint, query string, limit int, timeout time.Duration) *Fetcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if query == "" {
		query = DefaultQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		query:    query,
		limit:    limit,
	}
}

// Fetch performs one GET against the feed endpoint and returns up to the
// configured limit of items in document order. No retries: any failure comes
// back as *FetchError and the caller decides what to serve instead.
func (f *Fetcher) Fetch(ctx context.Context) ([]digest.NewsItem, error) {
	feedURL := fmt.Sprintf(f.endpoint, url.QueryEscape(f.query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Kind: KindStatus, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	// The low-level rss parser keeps <source> and the raw pubDate string.
	// A document without a <channel> parses into zero items, which is a
	// valid empty feed here, not a failure.
	parsed, err := (&rss.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindParse, Err: err}
	}

	items := make([]digest.NewsItem, 0, f.limit)
	for _, it := range parsed.Items {
		if len(items) >= f.limit {
			break
		}
		items = append(items, mapItem(it))
	}

	logger.Debug("feed fetched", "items", len(items))
	return items, nil
}

func mapItem(it *rss.Item) digest.NewsItem {
	source := "Unknown source"
	if it.Source != nil && strings.TrimSpace(it.Source.Title) != "" {
		source = strings.TrimSpace(it.Source.Title)
	}
	return digest.NewsItem{
		Title:       strings.TrimSpace(it.Title),
		URL:         strings.TrimSpace(it.Link),
		Source:      source,
		PublishedAt: normalizePubDate(strings.TrimSpace(it.PubDate), it.PubDateParsed),
		Snippet:     Snippet(it.Description),
	}
}

// normalizePubDate converts a parsed feed date to ISO-8601 UTC ('Z' suffix).
// When the date never parsed, the raw string is kept verbatim; this is a
// silent degrade by contract, not an error.
func normalizePubDate(raw string, parsed *time.Time) string {
	if parsed == nil {
		return raw
	}
	return parsed.UTC().Format(time.RFC3339)
}

// Snippet reduces description HTML to collapsed plain text, capped at a
// card-friendly length.
func Snippet(descHTML string) string {
	if strings.TrimSpace(descHTML) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(descHTML))
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	if runes := []rune(text); len(runes) > snippetMaxRunes {
		text = strings.TrimSpace(string(runes[:snippetMaxRunes])) + "…"
	}
	return text
}

func classify(err error) *FetchError {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &FetchError{Kind: KindTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, Err: err}
	}
	return &FetchError{Kind: KindNetwork, Err: err}
}
