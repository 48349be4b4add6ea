// Package extract downloads web pages and PDF documents and reduces them
// to plain text suitable for summarization.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jurisol/jurisol/internal/domain"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultCacheTTL = 24 * time.Hour
	maxAttempts     = 3
	retryDelay      = 500 * time.Millisecond
	maxBodyBytes    = 10 << 20
	maxTextChars    = 12000

	userAgent = "Mozilla/5.0 (compatible; Jurisol/1.0)"
)

// Content is the extracted text of one document.
type Content struct {
	URL         string
	Text        string
	ContentType string // "HTML" or "PDF"
}

type cacheEntry struct {
	content Content
	stored  time.Time
}

// Fetcher downloads URLs with retries and a per-URL TTL cache.
type Fetcher struct {
	client   *http.Client
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry

	now func() time.Time
}

type FetcherOption func(*Fetcher)

func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.client.Timeout = d }
}

func WithCacheTTL(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.cacheTTL = d }
}

func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{Timeout: defaultTimeout},
		cacheTTL: defaultCacheTTL,
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url and returns its extracted text. Cached results are
// reused within the cache TTL. Transient failures are retried with a
// short backoff before giving up.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Content, error) {
	f.mu.Lock()
	if entry, ok := f.cache[url]; ok && f.now().Sub(entry.stored) < f.cacheTTL {
		f.mu.Unlock()
		return entry.content, nil
	}
	f.mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := f.fetchOnce(ctx, url)
		if err == nil {
			f.mu.Lock()
			f.cache[url] = cacheEntry{content: content, stored: f.now()}
			f.mu.Unlock()
			return content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return Content{}, &domain.ExtractionError{URL: url, Err: ctx.Err()}
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}
	}
	return Content{}, &domain.ExtractionError{URL: url, Err: lastErr}
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Content{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/pdf,application/xhtml+xml,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return Content{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Content{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Content{}, fmt.Errorf("read body: %w", err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	kind := classify(contentType, url, body)

	var text string
	switch kind {
	case "PDF":
		text, err = extractPDF(body)
	case "HTML":
		text, err = extractHTML(body)
	default:
		return Content{}, fmt.Errorf("unsupported content type %q", contentType)
	}
	if err != nil {
		return Content{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Content{}, fmt.Errorf("no extractable text")
	}
	if len(text) > maxTextChars {
		text = text[:maxTextChars]
	}
	return Content{URL: url, Text: text, ContentType: kind}, nil
}

// classify decides whether a response body is PDF or HTML. The header
// wins; the URL extension and magic bytes break ties for servers that
// send generic content types.
func classify(contentType, url string, body []byte) string {
	switch {
	case strings.Contains(contentType, "application/pdf"):
		return "PDF"
	case strings.Contains(contentType, "text/html"), strings.Contains(contentType, "application/xhtml"):
		return "HTML"
	}
	if strings.HasSuffix(strings.ToLower(strings.SplitN(url, "?", 2)[0]), ".pdf") {
		return "PDF"
	}
	if len(body) >= 5 && string(body[:5]) == "%PDF-" {
		return "PDF"
	}
	if strings.Contains(contentType, "text/plain") || contentType == "" {
		return "HTML"
	}
	return ""
}
