package ports

import (
	"context"
	"time"

	"github.com/lorrc/user-directory/internal/core/domain"
)

// DirectoryService defines the page-level operations over a session's directory.
type DirectoryService interface {
	// Load fetches a fresh batch of users into the session. On failure the
	// session's previous records are left untouched.
	Load(ctx context.Context, sessionID string) ([]domain.UserRecord, error)
	// Search filters the session's stored records. It never fetches.
	Search(ctx context.Context, sessionID, query string) ([]domain.UserRecord, error)
	// LoadedAt reports when the session's records were last replaced. ok is
	// false if no fetch has succeeded for the session.
	LoadedAt(ctx context.Context, sessionID string) (at time.Time, ok bool)
}

// FetchObserver is notified about every fetch attempt.
type FetchObserver interface {
	ObserveFetch(outcome string, count int)
}
