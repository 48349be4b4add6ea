package domain

import "time"

// Message is a single entry in a conversation. Messages are never mutated
// after creation; history ordering is chronological.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is a logical conversation thread with its own bounded history.
type Session struct {
	ID           string    `json:"session_id"`
	History      []Message `json:"history"`
	LastActivity time.Time `json:"last_activity"`
}

// SessionInfo is the listing view of an active session.
type SessionInfo struct {
	ID           string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	LastActivity time.Time `json:"last_activity"`
}

// RetrievedDocument is a single vector-store hit. Metadata and score are
// preserved for citation display downstream.
type RetrievedDocument struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Score    float64           `json:"score"`
}

// SearchResult is one entry produced by the online search adapter. An entry
// is usable iff Error is empty; callers never branch on shape.
type SearchResult struct {
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the entry carries usable content.
func (r SearchResult) OK() bool { return r.Error == "" }

// SummaryResult is the outcome of summarizing one URL or text block.
type SummaryResult struct {
	URL         string `json:"url,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Context     string `json:"context,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// OK reports whether the summary succeeded.
func (r SummaryResult) OK() bool { return r.Error == "" }

// RequestStatus tracks the lifecycle of the single outstanding request for a
// session. A new request overwrites the previous status.
type RequestStatus struct {
	State     RequestState `json:"status"`
	Timestamp float64      `json:"timestamp"`
	Response  string       `json:"response,omitempty"`
	Error     string       `json:"error,omitempty"`
}
