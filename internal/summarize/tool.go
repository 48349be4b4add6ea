// Package summarize condenses fetched documents into short summaries and
// extracted context passages for the synthesis prompt.
package summarize

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jurisol/jurisol/internal/adapter/llm"
	"github.com/jurisol/jurisol/internal/domain"
	"github.com/jurisol/jurisol/internal/extract"
)

const (
	defaultWorkers  = 4
	maxContextChars = 3000
)

// Tool summarizes documents with the LLM.
type Tool struct {
	llm     llm.Client
	fetcher *extract.Fetcher
	workers int
}

func NewTool(client llm.Client, fetcher *extract.Fetcher, workers int) *Tool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Tool{llm: client, fetcher: fetcher, workers: workers}
}

// SummarizeText produces a plain-language summary of raw text.
func (t *Tool) SummarizeText(ctx context.Context, text string) (string, error) {
	resp, err := t.llm.Generate(ctx, []domain.Message{
		{Role: domain.RoleUser, Content: fmt.Sprintf(textSummaryPrompt, text)},
	})
	if err != nil {
		return "", fmt.Errorf("summarize text: %w", err)
	}
	return resp.Content, nil
}

// SummarizeURL fetches one URL and produces both a summary and the
// extracted context passages. Two LLM calls per document: one for the
// reader-facing summary, one for the context block.
func (t *Tool) SummarizeURL(ctx context.Context, url string) (domain.SummaryResult, error) {
	content, err := t.fetcher.Fetch(ctx, url)
	if err != nil {
		return domain.SummaryResult{URL: url, Error: err.Error()}, err
	}
	return t.summarizeContent(ctx, content)
}

func (t *Tool) summarizeContent(ctx context.Context, content extract.Content) (domain.SummaryResult, error) {
	result := domain.SummaryResult{URL: content.URL, ContentType: content.ContentType}

	summary, err := t.llm.Generate(ctx, []domain.Message{
		{Role: domain.RoleUser, Content: fmt.Sprintf(summaryPrompt, content.Text)},
	})
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("summarize %s: %w", content.URL, err)
	}
	result.Summary = summary.Content

	extracted, err := t.llm.Generate(ctx, []domain.Message{
		{Role: domain.RoleUser, Content: fmt.Sprintf(contextPrompt, content.Text)},
	})
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("extract context %s: %w", content.URL, err)
	}
	contextText := extracted.Content
	if len(contextText) > maxContextChars {
		contextText = contextText[:maxContextChars]
	}
	result.Context = contextText
	return result, nil
}

// SummarizeURLs processes urls concurrently and returns one result per
// URL in the input order. A failing URL yields a result with its Error
// set; it never aborts the batch.
func (t *Tool) SummarizeURLs(ctx context.Context, urls []string) []domain.SummaryResult {
	results := make([]domain.SummaryResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			res, err := t.SummarizeURL(gctx, url)
			if err != nil && res.Error == "" {
				res = domain.SummaryResult{URL: url, Error: err.Error()}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
