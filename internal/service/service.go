// Package service orchestrates the full answer pipeline: intent
// classification, vector retrieval, online-search fallback, summarization
// and LLM synthesis, with per-session history and async status tracking.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jurisol/jurisol/internal/adapter/llm"
	"github.com/jurisol/jurisol/internal/domain"
	"github.com/jurisol/jurisol/internal/intent"
	"github.com/jurisol/jurisol/internal/retrieval"
	"github.com/jurisol/jurisol/internal/session"
)

// Retriever searches the vector store.
type Retriever interface {
	Search(ctx context.Context, query string, maxResults int, threshold float64) ([]domain.RetrievedDocument, error)
}

// OnlineSearcher runs the web-search fallback pipeline.
type OnlineSearcher interface {
	Search(ctx context.Context, query string) []domain.SearchResult
}

// Summarizer condenses text and documents.
type Summarizer interface {
	SummarizeText(ctx context.Context, text string) (string, error)
	SummarizeURLs(ctx context.Context, urls []string) []domain.SummaryResult
}

// Options tune the orchestration without threading the whole config
// through.
type Options struct {
	ProcessTimeout      time.Duration
	SyncWait            time.Duration
	StatusRetain        time.Duration
	SessionMaxAge       time.Duration
	HistoryTokenBudget  int
	MinContentLength    int
	RetrievalMaxResults int
	ConfidenceThreshold float64
	MaxWorkers          int
}

func (o *Options) fill() {
	if o.ProcessTimeout <= 0 {
		o.ProcessTimeout = 3 * time.Minute
	}
	if o.SyncWait <= 0 {
		o.SyncWait = o.ProcessTimeout
	}
	if o.SessionMaxAge <= 0 {
		o.SessionMaxAge = 24 * time.Hour
	}
	if o.HistoryTokenBudget <= 0 {
		o.HistoryTokenBudget = 100000
	}
	if o.MinContentLength <= 0 {
		o.MinContentLength = 50
	}
	if o.RetrievalMaxResults <= 0 {
		o.RetrievalMaxResults = 5
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = 4
	}
}

// Service is the assistant core.
type Service struct {
	llm        llm.Client
	retriever  Retriever
	searcher   OnlineSearcher
	summarizer Summarizer
	sessions   session.Store
	status     *StatusTracker
	opts       Options

	workers *semaphore.Weighted
}

func New(client llm.Client, retriever Retriever, searcher OnlineSearcher, summarizer Summarizer, sessions session.Store, opts Options) *Service {
	opts.fill()
	return &Service{
		llm:        client,
		retriever:  retriever,
		searcher:   searcher,
		summarizer: summarizer,
		sessions:   sessions,
		status:     NewStatusTracker(opts.StatusRetain),
		opts:       opts,
		workers:    semaphore.NewWeighted(int64(opts.MaxWorkers)),
	}
}

// ChatRequest is one incoming user message.
type ChatRequest struct {
	Message   string
	SessionID string
	History   []domain.Message
	Role      domain.AdvocacyRole
}

// ChatResult is the outcome of a chat call. Pending means the answer was
// still being computed when the sync wait expired; the caller should poll
// the status endpoint.
type ChatResult struct {
	SessionID string
	Response  string
	Pending   bool
	Timestamp float64
}

const pendingMessage = "Your request is being processed. Poll the status endpoint for the result."

// Chat accepts a message, dispatches background processing and waits up to
// the sync window for the result. Processing continues after the caller
// gives up; the status tracker carries the late result.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (ChatResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatResult{}, domain.ErrEmptyMessage
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	// Background work outlives the HTTP request context on purpose.
	procCtx, handle := s.status.Begin(context.Background(), req.SessionID)
	go s.process(procCtx, handle, req)

	select {
	case <-handle.Done():
		status := s.status.Get(req.SessionID)
		switch status.State {
		case domain.RequestFailed:
			return ChatResult{
				SessionID: req.SessionID,
				Response:  apologeticFailure,
				Timestamp: status.Timestamp,
			}, nil
		case domain.RequestCompleted:
			return ChatResult{
				SessionID: req.SessionID,
				Response:  status.Response,
				Timestamp: status.Timestamp,
			}, nil
		}
		// Superseded by a newer request; fall through to the pending ack.
	case <-time.After(s.opts.SyncWait):
	case <-ctx.Done():
	}

	return ChatResult{
		SessionID: req.SessionID,
		Response:  pendingMessage,
		Pending:   true,
		Timestamp: unix(time.Now()),
	}, nil
}

// process runs the pipeline for one request and records the outcome. The
// session history is updated even on failure so the user sees the exchange.
func (s *Service) process(ctx context.Context, handle *Handle, req ChatRequest) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ProcessTimeout)
	defer cancel()

	if err := s.workers.Acquire(ctx, 1); err != nil {
		log.Printf("ERROR: session %s: worker acquire: %v", req.SessionID, err)
		s.status.Fail(handle, err.Error())
		return
	}
	defer s.workers.Release(1)

	history := s.loadHistory(ctx, req)

	response, err := s.answer(ctx, req, history)
	if err != nil {
		log.Printf("ERROR: session %s: %v", req.SessionID, err)
		s.appendExchange(req.SessionID, history, req.Message, apologeticFailure)
		s.status.Fail(handle, err.Error())
		return
	}

	s.appendExchange(req.SessionID, history, req.Message, response)
	s.status.Complete(handle, response)
}

// loadHistory prefers the stored history; a client-supplied history seeds
// a session the store does not know yet.
func (s *Service) loadHistory(ctx context.Context, req ChatRequest) []domain.Message {
	stored, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		log.Printf("WARN: session %s: load history: %v", req.SessionID, err)
		return req.History
	}
	if stored == nil {
		return req.History
	}
	return stored
}

func (s *Service) appendExchange(sessionID string, history []domain.Message, userMsg, assistantMsg string) {
	updated := append(history,
		domain.Message{Role: domain.RoleUser, Content: userMsg},
		domain.Message{Role: domain.RoleAssistant, Content: assistantMsg},
	)
	updated = TrimHistory(updated, s.opts.HistoryTokenBudget)
	// Persist with a fresh context: the request context may already be
	// cancelled and the exchange must not be lost.
	persistCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.sessions.Update(persistCtx, sessionID, updated); err != nil {
		log.Printf("ERROR: session %s: persist history: %v", sessionID, err)
	}
}

// answer picks the processing path for the message and produces the final
// response text.
func (s *Service) answer(ctx context.Context, req ChatRequest, history []domain.Message) (string, error) {
	msgIntent := intent.Classify(req.Message)
	log.Printf("INFO: session %s: intent=%s", req.SessionID, msgIntent)

	switch {
	case msgIntent == domain.IntentCasual:
		return s.synthesize(ctx, req, history, "")

	case msgIntent == domain.IntentSummarize:
		text := summarizeTarget(req.Message)
		summary, err := s.summarizer.SummarizeText(ctx, text)
		if err != nil {
			return "", err
		}
		return summary, nil

	case msgIntent.NeedsRetrieval():
		material, err := s.gatherMaterial(ctx, req, msgIntent)
		if err != nil {
			return "", err
		}
		if material == "" {
			return rephrasePrompt, nil
		}
		return s.synthesize(ctx, req, history, material)
	}

	return s.synthesize(ctx, req, history, "")
}

// gatherMaterial collects reference material: vector retrieval first, the
// online-search fallback exactly once when retrieval is unusable.
func (s *Service) gatherMaterial(ctx context.Context, req ChatRequest, msgIntent domain.Intent) (string, error) {
	docs, err := s.retriever.Search(ctx, req.Message, s.opts.RetrievalMaxResults, s.opts.ConfidenceThreshold)
	if err != nil {
		// A backend failure falls through to online search like an
		// empty result does.
		log.Printf("WARN: session %s: %v", req.SessionID, err)
		docs = nil
	}

	if s.usable(docs) {
		material := retrieval.FormatContext(docs)
		if msgIntent == domain.IntentSummarizeCase {
			summary, err := s.summarizer.SummarizeText(ctx, docs[0].Content)
			if err == nil && summary != "" {
				material = "Case summary:\n" + summary + "\n\n" + material
			}
		}
		return material, nil
	}

	log.Printf("INFO: session %s: retrieval unusable, falling back to online search", req.SessionID)
	results := s.searcher.Search(ctx, req.Message)

	if msgIntent == domain.IntentSummarizeCase {
		if material := s.summarizeSearchResults(ctx, results); material != "" {
			return material, nil
		}
	}

	var parts []string
	for _, r := range results {
		if !r.OK() {
			continue
		}
		parts = append(parts, fmt.Sprintf("Source: %s\n%s", r.URL, r.Content))
	}
	return strings.Join(parts, "\n\n"), nil
}

// usable reports whether retrieval produced something worth answering
// from: at least one document with non-trivial content.
func (s *Service) usable(docs []domain.RetrievedDocument) bool {
	return len(docs) > 0 && len(docs[0].Content) >= s.opts.MinContentLength
}

func (s *Service) summarizeSearchResults(ctx context.Context, results []domain.SearchResult) string {
	var urls []string
	for _, r := range results {
		if r.OK() && r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	if len(urls) == 0 {
		return ""
	}
	var parts []string
	for _, sum := range s.summarizer.SummarizeURLs(ctx, urls) {
		if !sum.OK() {
			continue
		}
		part := fmt.Sprintf("Source: %s\nSummary: %s", sum.URL, sum.Summary)
		if sum.Context != "" {
			part += "\nKey passages: " + sum.Context
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n\n")
}

// synthesize runs the final LLM call. A canned refusal is retried once
// with a corrective reminder; a second refusal yields a fixed fallback.
func (s *Service) synthesize(ctx context.Context, req ChatRequest, history []domain.Message, material string) (string, error) {
	messages := make([]domain.Message, 0, len(history)+2)
	messages = append(messages, systemMessage(req.Role))
	messages = append(messages, TrimHistory(history, s.opts.HistoryTokenBudget)...)
	messages = append(messages, domain.Message{
		Role:    domain.RoleUser,
		Content: analysisPrompt(material, req.Message),
	})

	resp, err := s.llm.Generate(ctx, messages)
	if err != nil {
		return "", &domain.SynthesisError{Err: err}
	}
	if !isRefusal(resp.Content) {
		return resp.Content, nil
	}

	log.Printf("WARN: session %s: refusal detected, retrying with reminder", req.SessionID)
	retry := make([]domain.Message, 0, len(messages)+1)
	retry = append(retry, messages[0])
	retry = append(retry, domain.Message{Role: domain.RoleSystem, Content: selfCheckReminder})
	retry = append(retry, messages[1:]...)

	resp, err = s.llm.Generate(ctx, retry)
	if err != nil {
		return "", &domain.SynthesisError{Err: err}
	}
	if isRefusal(resp.Content) {
		return refusalFallback, nil
	}
	return resp.Content, nil
}

// Status reports the state of the session's outstanding request.
func (s *Service) Status(sessionID string) domain.RequestStatus {
	return s.status.Get(sessionID)
}

// History returns the stored conversation for a session, nil when unknown.
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Sessions lists sessions active within the configured horizon.
func (s *Service) Sessions(ctx context.Context) ([]domain.SessionInfo, error) {
	return s.sessions.ListActive(ctx, s.opts.SessionMaxAge)
}

// ClearSession removes a session's history. Clearing an unknown session is
// a no-op.
func (s *Service) ClearSession(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.Clear(ctx, sessionID)
}

// summarizeTarget strips the summarization request phrasing off a message,
// leaving the text to summarize. Without a marker the whole message is the
// target.
func summarizeTarget(message string) string {
	lower := strings.ToLower(message)
	for _, marker := range []string{"summarize this paragraph:", "summarise this paragraph:", "summarize:", "summarise:"} {
		if idx := strings.Index(lower, marker); idx >= 0 {
			if target := strings.TrimSpace(message[idx+len(marker):]); target != "" {
				return target
			}
		}
	}
	return message
}
