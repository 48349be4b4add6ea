package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage rejects blank chat input. Surfaced to the caller as a
// validation failure, never retried.
var ErrEmptyMessage = errors.New("message must not be empty")

// RetrievalError wraps a vector-backend failure. Callers treat it as an
// empty result for fallback purposes but log it distinctly from a genuine
// zero-hit search.
type RetrievalError struct {
	Query string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for %q: %v", e.Query, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// SearchError is a total online-search failure after all relaxation
// attempts were exhausted.
type SearchError struct {
	Query    string
	Attempts int
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("online search failed after %d attempts for %q: %v", e.Attempts, e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// ExtractionError is a per-document fetch or parse failure. It is isolated
// to the one document and never aborts a batch.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SynthesisError is an LLM invocation failure or timeout.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
