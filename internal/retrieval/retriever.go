// Package retrieval turns a user query into ranked documents from the
// vector store and renders them as LLM-ready context.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jurisol/jurisol/internal/adapter/embedding"
	"github.com/jurisol/jurisol/internal/domain"
	"github.com/jurisol/jurisol/internal/vectorstore"
)

const (
	defaultMaxResults = 5
	maxResultsCap     = 10
	docContextChars   = 1000
)

// Retriever embeds queries and searches the vector store.
type Retriever struct {
	embedder embedding.Embedder
	store    vectorstore.Store
}

func New(embedder embedding.Embedder, store vectorstore.Store) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Search retrieves up to maxResults documents for query, most similar
// first, keeping only those scoring at or above threshold. Out-of-range
// parameters fall back to defaults: maxResults outside (0, 10] becomes 5
// and a threshold outside [0, 1] becomes 0. Filter expressions embedded in
// the query ("section: 420") are parsed out before embedding.
func (r *Retriever) Search(ctx context.Context, query string, maxResults int, threshold float64) ([]domain.RetrievedDocument, error) {
	if maxResults <= 0 || maxResults > maxResultsCap {
		maxResults = defaultMaxResults
	}
	if threshold < 0 || threshold > 1 {
		threshold = 0
	}

	cleaned, filters := ParseFilters(query)
	if cleaned == "" {
		cleaned = query
	}

	vector, err := r.embedder.Embed(ctx, cleaned)
	if err != nil {
		return nil, &domain.RetrievalError{Query: query, Err: fmt.Errorf("embed query: %w", err)}
	}

	docs, err := r.store.Search(ctx, vector, maxResults, filters)
	if err != nil {
		return nil, &domain.RetrievalError{Query: query, Err: err}
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if threshold > 0 {
		kept := docs[:0]
		for _, d := range docs {
			if d.Score >= threshold {
				kept = append(kept, d)
			}
		}
		docs = kept
	}
	return docs, nil
}

// FormatContext renders retrieved documents as a numbered block for the
// LLM prompt. Each document shows its score, metadata and content
// truncated to a per-document cap.
func FormatContext(docs []domain.RetrievedDocument) string {
	if len(docs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&b, "Document %d (relevance %.4f):\n", i+1, d.Score)
		keys := make([]string, 0, len(d.Metadata))
		for k := range d.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", titleCase(k), d.Metadata[k])
		}
		content := d.Content
		if len(content) > docContextChars {
			content = content[:docContextChars] + "..."
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// titleCase turns a metadata key like "law_name" into "Law Name".
func titleCase(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
