package memory

import (
	"sync"
	"time"

	"github.com/lorrc/user-directory/internal/core/domain"
	apperrors "github.com/lorrc/user-directory/internal/core/errors"
	"github.com/lorrc/user-directory/internal/core/ports"
)

// SessionStore keeps one directory per browser session in memory
type SessionStore struct {
	sessions map[string]*session
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
}

type session struct {
	directory *domain.Directory
	lastSeen  time.Time
}

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStoreConfig holds session store configuration
type SessionStoreConfig struct {
	TTL             time.Duration // How long to keep inactive sessions
	CleanupInterval time.Duration // How often to evict inactive sessions
}

// NewSessionStore creates a session store and starts its eviction loop.
// A non-positive CleanupInterval disables the loop.
func NewSessionStore(cfg SessionStoreConfig) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*session),
		ttl:      cfg.TTL,
		now:      time.Now,
	}

	if cfg.CleanupInterval > 0 {
		go s.cleanupSessions(cfg.CleanupInterval)
	}

	return s
}

// Get returns the directory of an existing session
func (s *SessionStore) Get(id string) (*domain.Directory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	return sess.directory, nil
}

// GetOrCreate returns the session's directory, creating an empty one if necessary
func (s *SessionStore) GetOrCreate(id string) *domain.Directory {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{directory: domain.NewDirectory()}
		s.sessions[id] = sess
	}
	sess.lastSeen = s.now()
	return sess.directory
}

// Len returns the number of live sessions
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict removes sessions not seen within the TTL and returns how many were removed
func (s *SessionStore) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) cleanupSessions(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		s.Evict()
	}
}
