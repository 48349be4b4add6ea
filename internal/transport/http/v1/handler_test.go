package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jurisol/jurisol/internal/adapter/llm"
	"github.com/jurisol/jurisol/internal/domain"
	"github.com/jurisol/jurisol/internal/service"
	"github.com/jurisol/jurisol/internal/session"
)

type stubRetriever struct{}

func (stubRetriever) Search(context.Context, string, int, float64) ([]domain.RetrievedDocument, error) {
	return []domain.RetrievedDocument{{
		Content: "Section 420 of the Indian Penal Code punishes cheating with imprisonment of up to seven years.",
		Score:   0.9,
	}}, nil
}

type stubSearcher struct{}

func (stubSearcher) Search(context.Context, string) []domain.SearchResult {
	return []domain.SearchResult{{Error: "unused"}}
}

type stubSummarizer struct{}

func (stubSummarizer) SummarizeText(context.Context, string) (string, error) {
	return "summary", nil
}

func (stubSummarizer) SummarizeURLs(_ context.Context, urls []string) []domain.SummaryResult {
	return nil
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	svc := service.New(
		llm.NewMockClient(),
		stubRetriever{},
		stubSearcher{},
		stubSummarizer{},
		session.NewMemoryStore(0),
		service.Options{
			SyncWait:       5 * time.Second,
			ProcessTimeout: 5 * time.Second,
		},
	)
	return NewHandler(svc)
}

func TestHealth(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Health(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Status    string  `json:"status"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.Timestamp == 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestChatReturnsAnswer(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	body := `{"message": "What is Section 420 IPC?", "session_id": "s1"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Response  string  `json:"response"`
		SessionID string  `json:"session_id"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID != "s1" || resp.Response == "" || resp.Timestamp == 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": ""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatGeneratesSessionID(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "hello"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Chat(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected generated session id")
	}
}

func TestStatusUnknownSessionIsNotFoundBody(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/status/unknown", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("unknown")

	if err := h.Status(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(domain.RequestNotFound) {
		t.Fatalf("status = %q, want not_found", resp.Status)
	}
}

func TestStatusAfterChatIsCompleted(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	body := `{"message": "hello", "session_id": "s2"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Chat(e.NewContext(req, rec)); err != nil {
		t.Fatalf("chat error: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/status/s2", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("s2")

	if err := h.Status(c); err != nil {
		t.Fatalf("status error: %v", err)
	}

	var resp struct {
		Status   string `json:"status"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != string(domain.RequestCompleted) || resp.Response == "" {
		t.Fatalf("unexpected status: %+v", resp)
	}
}

func TestSessionLifecycle(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	// Create a session through chat.
	body := `{"message": "hello", "session_id": "life"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if err := h.Chat(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("chat error: %v", err)
	}

	// It shows up in the listing.
	req = httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	if err := h.ListSessions(e.NewContext(req, rec)); err != nil {
		t.Fatalf("list error: %v", err)
	}
	var listing struct {
		Sessions []domain.SessionInfo `json:"sessions"`
		Count    int                  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Count != 1 || listing.Sessions[0].ID != "life" {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	// History is readable.
	req = httptest.NewRequest(http.MethodGet, "/sessions/life/history", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("life")
	if err := h.GetHistory(c); err != nil {
		t.Fatalf("history error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// Delete it.
	req = httptest.NewRequest(http.MethodDelete, "/sessions/life", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("life")
	if err := h.DeleteSession(c); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	var deleted struct {
		Cleared bool `json:"cleared"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &deleted); err != nil {
		t.Fatalf("decode delete: %v", err)
	}
	if !deleted.Cleared {
		t.Fatal("expected cleared=true")
	}

	// History now reads as empty.
	req = httptest.NewRequest(http.MethodGet, "/sessions/life/history", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("life")
	if err := h.GetHistory(c); err != nil {
		t.Fatalf("history error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after delete, got %d", rec.Code)
	}
	var hist struct {
		History []domain.Message `json:"history"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.History) != 0 {
		t.Fatalf("expected empty history after delete, got %+v", hist.History)
	}
}

func TestDeleteUnknownSessionIsNoOp(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("session_id")
	c.SetParamValues("ghost")

	if err := h.DeleteSession(c); err != nil {
		t.Fatalf("delete error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Cleared bool `json:"cleared"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Cleared {
		t.Fatal("unknown session should report cleared=false")
	}
}
