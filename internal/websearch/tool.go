// Package websearch finds and fetches authoritative online sources when
// the vector store has nothing useful. Results are restricted to hosts the
// policy engine admits.
package websearch

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jurisol/jurisol/internal/domain"
	"github.com/jurisol/jurisol/internal/extract"
	"github.com/jurisol/jurisol/internal/policy"
)

const (
	maxSearchResults = 3
	defaultCacheTTL  = time.Hour
	attemptTimeout   = 30 * time.Second
)

// SearchClient returns candidate URLs for a query.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int, includeDomains []string) ([]string, error)
}

type cachedResults struct {
	results []domain.SearchResult
	stored  time.Time
}

// Tool runs the full online search pipeline: query the search API with
// progressively relaxed queries, drop URLs the policy denies, fetch what
// remains and cache the outcome.
type Tool struct {
	client         SearchClient
	fetcher        *extract.Fetcher
	engine         *policy.Engine
	allowedDomains []string
	attemptTimeout time.Duration
	cacheTTL       time.Duration

	mu    sync.Mutex
	cache map[string]cachedResults

	now func() time.Time
}

type ToolOption func(*Tool)

func WithAttemptTimeout(d time.Duration) ToolOption {
	return func(t *Tool) { t.attemptTimeout = d }
}

func WithQueryCacheTTL(d time.Duration) ToolOption {
	return func(t *Tool) { t.cacheTTL = d }
}

func NewTool(client SearchClient, fetcher *extract.Fetcher, engine *policy.Engine, allowedDomains []string, opts ...ToolOption) *Tool {
	if len(allowedDomains) == 0 {
		allowedDomains = []string{"gov.in", "nic.in"}
	}
	t := &Tool{
		client:         client,
		fetcher:        fetcher,
		engine:         engine,
		allowedDomains: allowedDomains,
		attemptTimeout: attemptTimeout,
		cacheTTL:       defaultCacheTTL,
		cache:          make(map[string]cachedResults),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Search runs the pipeline for query. It always returns at least one
// entry: when every attempt fails, a single synthetic entry carries the
// error so that callers can report what went wrong. Only successful
// outcomes are cached.
func (t *Tool) Search(ctx context.Context, query string) []domain.SearchResult {
	key := cacheKey(query)
	t.mu.Lock()
	if entry, ok := t.cache[key]; ok && t.now().Sub(entry.stored) < t.cacheTTL {
		t.mu.Unlock()
		return entry.results
	}
	t.mu.Unlock()

	var lastErr string
	strategies := relaxationStrategies(query)
	for _, attempt := range strategies {
		results := t.searchAttempt(ctx, attempt)
		if len(results) == 0 {
			continue
		}
		if ok, errMsg := anyUsable(results); !ok {
			lastErr = errMsg
			continue
		}
		t.mu.Lock()
		t.cache[key] = cachedResults{results: results, stored: t.now()}
		t.mu.Unlock()
		return results
	}

	if lastErr == "" {
		lastErr = "no results found on permitted government sources"
	}
	err := &domain.SearchError{Query: query, Attempts: len(strategies), Err: errors.New(lastErr)}
	log.Printf("WARN: %v", err)
	return []domain.SearchResult{{Error: lastErr}}
}

func (t *Tool) searchAttempt(ctx context.Context, query string) []domain.SearchResult {
	attemptCtx, cancel := context.WithTimeout(ctx, t.attemptTimeout)
	defer cancel()

	urls, err := t.client.Search(attemptCtx, query, maxSearchResults, t.allowedDomains)
	if err != nil {
		log.Printf("WARN: search attempt %q failed: %v", query, err)
		return nil
	}

	seen := make(map[string]bool)
	var results []domain.SearchResult
	for _, u := range urls {
		if len(results) >= maxSearchResults {
			break
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		if !t.engine.AllowURL(attemptCtx, u) {
			log.Printf("INFO: policy denied search result %s", u)
			continue
		}
		content, err := t.fetcher.Fetch(attemptCtx, u)
		if err != nil {
			results = append(results, domain.SearchResult{URL: u, Error: err.Error()})
			continue
		}
		results = append(results, domain.SearchResult{URL: u, Content: content.Text})
	}
	return results
}

// anyUsable reports whether at least one result carries content, and the
// first error message otherwise.
func anyUsable(results []domain.SearchResult) (bool, string) {
	var firstErr string
	for _, r := range results {
		if r.OK() {
			return true, ""
		}
		if firstErr == "" && r.Error != "" {
			firstErr = r.Error
		}
	}
	return false, firstErr
}

// relaxationStrategies yields up to three query variants in the order
// they should be tried: the query as typed, the query pinned to
// government sites, then just its leading keywords.
func relaxationStrategies(query string) []string {
	strategies := []string{
		query,
		"site:gov.in OR site:nic.in " + query,
	}
	words := strings.Fields(query)
	if len(words) > 3 {
		words = words[:3]
	}
	strategies = append(strategies, strings.Join(words, " ")+" site:gov.in")
	return strategies
}

func cacheKey(query string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}
