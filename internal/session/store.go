// Package session defines the conversation history storage interface and
// implementations.
package session

import (
	"context"
	"time"

	"github.com/jurisol/jurisol/internal/domain"
)

// Store persists per-session conversation history.
type Store interface {
	// Get returns the history for a session, or (nil, nil) when the
	// session is unknown.
	Get(ctx context.Context, sessionID string) ([]domain.Message, error)
	// Update replaces the full history of a session, creating it if
	// needed, and refreshes its last-activity time.
	Update(ctx context.Context, sessionID string, history []domain.Message) error
	// Clear removes a session. It reports whether the session existed.
	Clear(ctx context.Context, sessionID string) (bool, error)
	// ListActive returns sessions touched within maxAge, most recent
	// first.
	ListActive(ctx context.Context, maxAge time.Duration) ([]domain.SessionInfo, error)

	Close() error
}
