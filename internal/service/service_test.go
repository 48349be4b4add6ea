package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jurisol/jurisol/internal/adapter/llm"
	"github.com/jurisol/jurisol/internal/domain"
	"github.com/jurisol/jurisol/internal/session"
)

type fakeLLM struct {
	calls     int32
	responses []string
	err       error
	delay     time.Duration
	seen      [][]domain.Message
}

func (f *fakeLLM) Generate(ctx context.Context, messages []domain.Message) (llm.Response, error) {
	n := atomic.AddInt32(&f.calls, 1)
	f.seen = append(f.seen, messages)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return llm.Response{}, ctx.Err()
		}
	}
	if f.err != nil {
		return llm.Response{}, f.err
	}
	idx := int(n) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	if idx < 0 {
		return llm.Response{Content: "default answer"}, nil
	}
	return llm.Response{Content: f.responses[idx]}, nil
}

type fakeRetriever struct {
	calls int32
	docs  []domain.RetrievedDocument
	err   error
}

func (f *fakeRetriever) Search(context.Context, string, int, float64) ([]domain.RetrievedDocument, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.docs, f.err
}

type fakeSearcher struct {
	calls   int32
	results []domain.SearchResult
}

func (f *fakeSearcher) Search(context.Context, string) []domain.SearchResult {
	atomic.AddInt32(&f.calls, 1)
	return f.results
}

type fakeSummarizer struct {
	textCalls int32
	lastText  string
	summary   string
	urlCalls  int32
}

func (f *fakeSummarizer) SummarizeText(_ context.Context, text string) (string, error) {
	atomic.AddInt32(&f.textCalls, 1)
	f.lastText = text
	return f.summary, nil
}

func (f *fakeSummarizer) SummarizeURLs(_ context.Context, urls []string) []domain.SummaryResult {
	atomic.AddInt32(&f.urlCalls, 1)
	results := make([]domain.SummaryResult, len(urls))
	for i, u := range urls {
		results[i] = domain.SummaryResult{URL: u, Summary: "summary of " + u}
	}
	return results
}

type testEnv struct {
	svc        *Service
	llm        *fakeLLM
	retriever  *fakeRetriever
	searcher   *fakeSearcher
	summarizer *fakeSummarizer
	store      session.Store
}

func newTestEnv(t *testing.T, mutate func(*testEnv)) *testEnv {
	t.Helper()
	env := &testEnv{
		llm:        &fakeLLM{responses: []string{"final answer"}},
		retriever:  &fakeRetriever{},
		searcher:   &fakeSearcher{},
		summarizer: &fakeSummarizer{summary: "short summary"},
		store:      session.NewMemoryStore(0),
	}
	if mutate != nil {
		mutate(env)
	}
	env.svc = New(env.llm, env.retriever, env.searcher, env.summarizer, env.store, Options{
		SyncWait:       5 * time.Second,
		ProcessTimeout: 5 * time.Second,
	})
	return env
}

func longDoc(section string) domain.RetrievedDocument {
	return domain.RetrievedDocument{
		Content:  "Section " + section + " of the Indian Penal Code provides detailed rules about the offence and its punishment, including fine and imprisonment.",
		Metadata: map[string]string{"section": section},
		Score:    0.9,
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.svc.Chat(context.Background(), ChatRequest{Message: "   "})
	if !errors.Is(err, domain.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestChatAssignsSessionID(t *testing.T) {
	env := newTestEnv(t, nil)
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "hello"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.SessionID == "" {
		t.Error("expected generated session id")
	}
}

func TestCasualMessageSkipsRetrieval(t *testing.T) {
	env := newTestEnv(t, nil)
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "hello there", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "final answer" {
		t.Errorf("response = %q", result.Response)
	}
	if atomic.LoadInt32(&env.retriever.calls) != 0 {
		t.Error("casual message should not hit the retriever")
	}
	if atomic.LoadInt32(&env.searcher.calls) != 0 {
		t.Error("casual message should not hit online search")
	}
}

func TestLegalQueryUsesRetrievalWithoutSearch(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv) {
		e.retriever.docs = []domain.RetrievedDocument{longDoc("420")}
	})
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "What is Section 420 IPC?", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "final answer" {
		t.Errorf("response = %q", result.Response)
	}
	if atomic.LoadInt32(&env.retriever.calls) != 1 {
		t.Errorf("retriever calls = %d, want 1", env.retriever.calls)
	}
	if atomic.LoadInt32(&env.searcher.calls) != 0 {
		t.Error("usable retrieval must not trigger online search")
	}

	// The synthesis prompt must carry the retrieved material.
	last := env.llm.seen[len(env.llm.seen)-1]
	prompt := last[len(last)-1].Content
	if !strings.Contains(prompt, "Section 420") {
		t.Errorf("retrieved content missing from prompt: %q", prompt)
	}
}

func TestUnusableRetrievalFallsBackToSearchOnce(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv) {
		e.retriever.docs = []domain.RetrievedDocument{{Content: "stub", Score: 0.1}}
		e.searcher.results = []domain.SearchResult{
			{URL: "https://indiacode.nic.in/420", Content: "Section 420 full text from the official source."},
		}
	})
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "find the case about dowry harassment", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "final answer" {
		t.Errorf("response = %q", result.Response)
	}
	if atomic.LoadInt32(&env.searcher.calls) != 1 {
		t.Errorf("searcher calls = %d, want exactly 1", env.searcher.calls)
	}
}

func TestRetrievalErrorFallsBackToSearch(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv) {
		e.retriever.err = &domain.RetrievalError{Query: "q", Err: errors.New("backend down")}
		e.searcher.results = []domain.SearchResult{
			{URL: "https://legislative.gov.in/a", Content: "statutory text from the fallback source"},
		}
	})
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "find the judgment on property partition", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "final answer" {
		t.Errorf("response = %q", result.Response)
	}
	if atomic.LoadInt32(&env.searcher.calls) != 1 {
		t.Errorf("searcher calls = %d, want 1", env.searcher.calls)
	}
}

func TestNoMaterialAsksToRephrase(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv) {
		e.searcher.results = []domain.SearchResult{{Error: "no results"}}
	})
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "find the case about obscure dispute", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != rephrasePrompt {
		t.Errorf("response = %q, want rephrase prompt", result.Response)
	}
	if atomic.LoadInt32(&env.llm.calls) != 0 {
		t.Error("no synthesis call expected without material")
	}
}

func TestSummarizeIntentUsesMarkerText(t *testing.T) {
	env := newTestEnv(t, nil)
	msg := "Summarize this paragraph: The Limitation Act prescribes time limits for suits."
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: msg, SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "short summary" {
		t.Errorf("response = %q", result.Response)
	}
	if env.summarizer.lastText != "The Limitation Act prescribes time limits for suits." {
		t.Errorf("marker text not extracted: %q", env.summarizer.lastText)
	}
}

func TestRefusalRetriedOnceThenFallback(t *testing.T) {
	refusal := "I am unable to perform online searches, sorry."
	env := newTestEnv(t, func(e *testEnv) {
		e.llm.responses = []string{refusal, refusal}
	})
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "hello", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != refusalFallback {
		t.Errorf("response = %q, want fallback", result.Response)
	}
	if atomic.LoadInt32(&env.llm.calls) != 2 {
		t.Errorf("llm calls = %d, want 2", env.llm.calls)
	}
	// The retry carries the corrective reminder right after the system
	// prompt.
	retry := env.llm.seen[1]
	if len(retry) < 2 || retry[1].Content != selfCheckReminder {
		t.Errorf("reminder missing from retry: %+v", retry[:2])
	}
}

func TestRefusalRecoveredOnRetry(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv) {
		e.llm.responses = []string{"Based on the data I've been trained on, no.", "proper answer"}
	})
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "hello", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != "proper answer" {
		t.Errorf("response = %q", result.Response)
	}
}

func TestFailureRecordsApologyInHistory(t *testing.T) {
	env := newTestEnv(t, func(e *testEnv) {
		e.llm.err = errors.New("provider exploded")
	})
	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "hello", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if result.Response != apologeticFailure {
		t.Errorf("response = %q, want apology", result.Response)
	}

	status := env.svc.Status("s1")
	if status.State != domain.RequestFailed {
		t.Errorf("status = %s, want failed", status.State)
	}

	history, err := env.store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get history: %v", err)
	}
	if len(history) != 2 || history[1].Content != apologeticFailure {
		t.Errorf("history should record the failed exchange: %+v", history)
	}
}

func TestHistoryPersistsAcrossTurns(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	if _, err := env.svc.Chat(ctx, ChatRequest{Message: "hello", SessionID: "s1"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := env.svc.Chat(ctx, ChatRequest{Message: "thanks", SessionID: "s1"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	history, err := env.svc.History(ctx, "s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(history))
	}
	if history[2].Content != "thanks" {
		t.Errorf("second turn missing: %+v", history)
	}

	// The second synthesis call must have seen the first exchange.
	last := env.llm.seen[len(env.llm.seen)-1]
	var sawFirst bool
	for _, m := range last {
		if m.Content == "hello" {
			sawFirst = true
		}
	}
	if !sawFirst {
		t.Error("prior exchange not included in synthesis messages")
	}
}

func TestClientHistorySeedsUnknownSession(t *testing.T) {
	env := newTestEnv(t, nil)
	seed := []domain.Message{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
	}
	if _, err := env.svc.Chat(context.Background(), ChatRequest{Message: "hello", SessionID: "seeded", History: seed}); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	history, err := env.svc.History(context.Background(), "seeded")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 4 || history[0].Content != "earlier question" {
		t.Errorf("seed history not applied: %+v", history)
	}
}

func TestSlowProcessingReturnsPendingAck(t *testing.T) {
	env := &testEnv{
		llm:        &fakeLLM{responses: []string{"late answer"}, delay: 300 * time.Millisecond},
		retriever:  &fakeRetriever{},
		searcher:   &fakeSearcher{},
		summarizer: &fakeSummarizer{},
		store:      session.NewMemoryStore(0),
	}
	env.svc = New(env.llm, env.retriever, env.searcher, env.summarizer, env.store, Options{
		SyncWait:       20 * time.Millisecond,
		ProcessTimeout: 5 * time.Second,
	})

	result, err := env.svc.Chat(context.Background(), ChatRequest{Message: "hello", SessionID: "slow"})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !result.Pending {
		t.Fatal("expected pending ack")
	}

	if status := env.svc.Status("slow"); status.State != domain.RequestProcessing {
		t.Errorf("status during processing = %s", status.State)
	}

	// The late result must still arrive for pollers.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if status := env.svc.Status("slow"); status.State == domain.RequestCompleted {
			if status.Response != "late answer" {
				t.Errorf("late response = %q", status.Response)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("late result never arrived")
}

func TestStatusUnknownSession(t *testing.T) {
	env := newTestEnv(t, nil)
	status := env.svc.Status("never-seen")
	if status.State != domain.RequestNotFound {
		t.Errorf("status = %s, want not_found", status.State)
	}
}

func TestClearSession(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	if _, err := env.svc.Chat(ctx, ChatRequest{Message: "hello", SessionID: "s1"}); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	existed, err := env.svc.ClearSession(ctx, "s1")
	if err != nil || !existed {
		t.Fatalf("ClearSession = %v, %v", existed, err)
	}
	existed, err = env.svc.ClearSession(ctx, "s1")
	if err != nil || existed {
		t.Fatalf("second ClearSession = %v, %v", existed, err)
	}
}
