package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lorrc/user-directory/internal/core/domain"
	apperrors "github.com/lorrc/user-directory/internal/core/errors"
	"github.com/lorrc/user-directory/internal/core/ports"
)

// Fetch outcomes reported to the FetchObserver.
const (
	FetchOutcomeSuccess = "success"
	FetchOutcomeFailure = "failure"
)

// DirectoryService implements the page operations over per-session directories
type DirectoryService struct {
	source   ports.UserSource
	sessions ports.SessionStore
	observer ports.FetchObserver
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.DirectoryService = (*DirectoryService)(nil)

// NewDirectoryService creates a new directory service. observer may be nil.
func NewDirectoryService(
	source ports.UserSource,
	sessions ports.SessionStore,
	observer ports.FetchObserver,
	logger *slog.Logger,
) *DirectoryService {
	return &DirectoryService{
		source:   source,
		sessions: sessions,
		observer: observer,
		logger:   logger.With("service", "directory"),
		now:      time.Now,
	}
}

// Load fetches a new batch and replaces the session's records with it.
func (s *DirectoryService) Load(ctx context.Context, sessionID string) ([]domain.UserRecord, error) {
	if sessionID == "" {
		return nil, apperrors.ErrSessionRequired
	}

	users, err := s.source.FetchUsers(ctx)
	if err != nil {
		s.observe(FetchOutcomeFailure, 0)
		s.logger.ErrorContext(ctx, "error fetching users", "error", err)
		return nil, fmt.Errorf("load directory: %w", err)
	}

	dir := s.sessions.GetOrCreate(sessionID)
	dir.Replace(users, s.now())
	s.observe(FetchOutcomeSuccess, len(users))

	s.logger.DebugContext(ctx, "directory loaded", "count", len(users))

	return dir.Users(), nil
}

// Search filters the session's stored records. A session that never loaded
// behaves like an empty directory.
func (s *DirectoryService) Search(ctx context.Context, sessionID, query string) ([]domain.UserRecord, error) {
	if sessionID == "" {
		return []domain.UserRecord{}, nil
	}

	dir, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return []domain.UserRecord{}, nil
		}
		return nil, fmt.Errorf("search directory: %w", err)
	}

	return dir.Search(query), nil
}

// LoadedAt returns the time of the session's last successful Load.
func (s *DirectoryService) LoadedAt(_ context.Context, sessionID string) (time.Time, bool) {
	if sessionID == "" {
		return time.Time{}, false
	}
	dir, err := s.sessions.Get(sessionID)
	if err != nil || !dir.Loaded() {
		return time.Time{}, false
	}
	return dir.LoadedAt(), true
}

func (s *DirectoryService) observe(outcome string, count int) {
	if s.observer != nil {
		s.observer.ObserveFetch(outcome, count)
	}
}
