package service

import (
	"context"
	"sync"
	"time"

	"github.com/jurisol/jurisol/internal/domain"
)

const (
	defaultStatusRetain = 5 * time.Minute
	defaultStaleAfter   = 30 * time.Minute
)

// Handle tracks one in-flight request. Done is closed when processing
// reaches a terminal state or the request is superseded; Cancel aborts the
// background work.
type Handle struct {
	sessionID string
	done      chan struct{}
	cancel    context.CancelFunc
	once      sync.Once
}

// Done is closed once the request reaches a terminal state or is replaced
// by a newer request for the same session.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Cancel aborts the background work if it is still running.
func (h *Handle) Cancel() {
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Handle) finish() {
	h.once.Do(func() { close(h.done) })
}

type statusEntry struct {
	status   domain.RequestStatus
	handle   *Handle
	finished time.Time
	began    time.Time
}

// StatusTracker holds the single outstanding request status per session.
// Terminal statuses are retained briefly so that a caller who timed out can
// still poll the result, then garbage-collected lazily on the next access.
type StatusTracker struct {
	retain     time.Duration
	staleAfter time.Duration

	mu      sync.Mutex
	entries map[string]*statusEntry

	now func() time.Time
}

func NewStatusTracker(retain time.Duration) *StatusTracker {
	if retain <= 0 {
		retain = defaultStatusRetain
	}
	return &StatusTracker{
		retain:     retain,
		staleAfter: defaultStaleAfter,
		entries:    make(map[string]*statusEntry),
		now:        time.Now,
	}
}

// Begin registers a new in-flight request for the session, replacing and
// cancelling any previous one. The returned context carries the handle's
// cancellation.
func (t *StatusTracker) Begin(ctx context.Context, sessionID string) (context.Context, *Handle) {
	reqCtx, cancel := context.WithCancel(ctx)
	handle := &Handle{sessionID: sessionID, done: make(chan struct{}), cancel: cancel}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.collect()

	if prev, ok := t.entries[sessionID]; ok && prev.handle != nil {
		prev.handle.Cancel()
		prev.handle.finish()
	}
	now := t.now()
	t.entries[sessionID] = &statusEntry{
		status: domain.RequestStatus{
			State:     domain.RequestProcessing,
			Timestamp: unix(now),
		},
		handle: handle,
		began:  now,
	}
	return reqCtx, handle
}

// Complete marks the handle's request finished with a response.
func (t *StatusTracker) Complete(h *Handle, response string) {
	t.finishWith(h, domain.RequestStatus{
		State:    domain.RequestCompleted,
		Response: response,
	})
}

// Fail marks the handle's request failed with an error message.
func (t *StatusTracker) Fail(h *Handle, errMsg string) {
	t.finishWith(h, domain.RequestStatus{
		State: domain.RequestFailed,
		Error: errMsg,
	})
}

// finishWith records a terminal status for the handle's request. A result
// arriving after the request was superseded by a newer one is dropped; the
// newer request owns the session's status slot.
func (t *StatusTracker) finishWith(h *Handle, status domain.RequestStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer h.finish()

	entry, ok := t.entries[h.sessionID]
	if !ok || entry.handle != h {
		return
	}
	now := t.now()
	status.Timestamp = unix(now)
	entry.status = status
	entry.finished = now
}

// Get returns the current status for a session. Unknown or collected
// sessions yield a not_found status.
func (t *StatusTracker) Get(sessionID string) domain.RequestStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.collect()

	entry, ok := t.entries[sessionID]
	if !ok {
		return domain.RequestStatus{
			State:     domain.RequestNotFound,
			Timestamp: unix(t.now()),
		}
	}
	return entry.status
}

// collect drops terminal entries past the retention window and processing
// entries stuck beyond any plausible run time. Caller holds the lock.
func (t *StatusTracker) collect() {
	now := t.now()
	for id, entry := range t.entries {
		switch {
		case entry.status.State.Terminal():
			if now.Sub(entry.finished) > t.retain {
				delete(t.entries, id)
			}
		case entry.status.State == domain.RequestProcessing:
			if now.Sub(entry.began) > t.staleAfter {
				if entry.handle != nil {
					entry.handle.Cancel()
					entry.handle.finish()
				}
				delete(t.entries, id)
			}
		}
	}
}

func unix(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
