package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test feed</title>
<item>
  <title>First story</title>
  <link>https://example.com/1</link>
  <source url="https://example.com">Example Wire</source>
  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
  <description>&lt;a href="https://example.com/1"&gt;First story&lt;/a&gt; with extra context</description>
</item>
<item>
  <title>  Second story  </title>
  <link>https://example.com/2</link>
  <pubDate>not a real date</pubDate>
</item>
<item>
  <title>Third story</title>
  <link>https://example.com/3</link>
  <source>Example Wire</source>
  <pubDate>Tue, 03 Jan 2006 08:00:00 +0200</pubDate>
</item>
</channel>
</rss>`

func serveXML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestFetch_MapsItemsInDocumentOrder(t *testing.T) {
	ts := serveXML(t, sampleFeed)
	f := NewFetcher(ts.URL+"?q=%s", "ai", 10, 2*time.Second)

	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "First story", items[0].Title)
	require.Equal(t, "https://example.com/1", items[0].URL)
	require.Equal(t, "Example Wire", items[0].Source)
	require.Equal(t, "2006-01-02T15:04:05Z", items[0].PublishedAt)
	require.Equal(t, "First story with extra context", items[0].Snippet)

	// Missing <source> falls back, unparseable pubDate stays verbatim.
	require.Equal(t, "Second story", items[1].Title)
	require.Equal(t, "Unknown source", items[1].Source)
	require.Equal(t, "not a real date", items[1].PublishedAt)
	require.Empty(t, items[1].Snippet)

	// Offset zone is normalized to UTC.
	require.Equal(t, "2006-01-03T06:00:00Z", items[2].PublishedAt)
}

func TestFetch_HonorsItemLimit(t *testing.T) {
	ts := serveXML(t, sampleFeed)
	f := NewFetcher(ts.URL+"?q=%s", "ai", 2, 2*time.Second)

	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "First story", items[0].Title)
	require.Equal(t, "Second story", items[1].Title)
}

func TestFetch_EmptyChannel(t *testing.T) {
	ts := serveXML(t, `<rss version="2.0"><channel><title>empty</title></channel></rss>`)
	f := NewFetcher(ts.URL+"?q=%s", "ai", 10, 2*time.Second)

	items, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestFetch_Non2xxStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	f := NewFetcher(ts.URL+"?q=%s", "ai", 10, 2*time.Second)
	_, err := f.Fetch(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, KindStatus, fe.Kind)
}

func TestFetch_MalformedBody(t *testing.T) {
	ts := serveXML(t, `<html><body>not a feed</body></html>`)
	f := NewFetcher(ts.URL+"?q=%s", "ai", 10, 2*time.Second)

	_, err := f.Fetch(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, KindParse, fe.Kind)
}

func TestFetch_UnreachableEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	f := NewFetcher(url+"?q=%s", "ai", 10, 2*time.Second)
	_, err := f.Fetch(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, KindNetwork, fe.Kind)
}

func TestFetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(ts.Close)

	f := NewFetcher(ts.URL+"?q=%s", "ai", 10, 50*time.Millisecond)
	_, err := f.Fetch(context.Background())

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, KindTimeout, fe.Kind)
}

func TestSnippet(t *testing.T) {
	require.Equal(t, "Hello & world", Snippet(`<p><a href="#">Hello</a> &amp; world</p>`))
	require.Empty(t, Snippet("   "))
	require.Empty(t, Snippet(""))
}

func TestFetchErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	fe := &FetchError{Kind: KindNetwork, Err: base}
	require.ErrorIs(t, fe, base)
	require.Contains(t, fe.Error(), "network")
}
