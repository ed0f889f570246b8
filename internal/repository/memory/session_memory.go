package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tinyavocado/avocado-server/internal/models"
	"github.com/tinyavocado/avocado-server/internal/repository"
)

// MemorySessionRepository implements SessionRepository in memory (NOT FOR PRODUCTION).
type MemorySessionRepository struct {
	sessions      map[string]models.Session
	mutex         sync.RWMutex
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

// NewMemorySessionRepository creates a new in-memory session repository.
// cleanupInterval defines how often expired sessions are automatically removed.
func NewMemorySessionRepository(cleanupInterval time.Duration) *MemorySessionRepository {
	r := &MemorySessionRepository{
		sessions:      make(map[string]models.Session),
		cleanupTicker: time.NewTicker(cleanupInterval),
		stopCleanup:   make(chan struct{}),
	}
	go r.startCleanup()
	return r
}

var _ repository.SessionRepository = (*MemorySessionRepository)(nil)

// startCleanup runs the periodic cleanup in a background goroutine.
func (r *MemorySessionRepository) startCleanup() {
	for {
		select {
		case <-r.cleanupTicker.C:
			r.cleanupExpiredSessions()
		case <-r.stopCleanup:
			r.cleanupTicker.Stop()
			return
		}
	}
}

// cleanupExpiredSessions removes all expired sessions.
func (r *MemorySessionRepository) cleanupExpiredSessions() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	for sessionID, session := range r.sessions {
		if now.After(session.Expiry) {
			delete(r.sessions, sessionID)
		}
	}
}

// StopCleanup stops the background cleanup task. Safe to call more than once.
func (r *MemorySessionRepository) StopCleanup() {
	r.stopOnce.Do(func() { close(r.stopCleanup) })
}

// StoreSession saves or updates a session.
func (r *MemorySessionRepository) StoreSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.SessionID == "" || session.Username == "" {
		return errors.New("invalid session data: SessionID and Username must be set")
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sessions[session.SessionID] = *session
	return nil
}

// GetSession retrieves a session by its ID.
func (r *MemorySessionRepository) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, exists := r.sessions[sessionID]
	if !exists || session.IsExpired() {
		return nil, repository.ErrSessionNotFound
	}
	return &session, nil
}

// DeleteSession removes a session.
func (r *MemorySessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// Count reports the number of live sessions.
func (r *MemorySessionRepository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	n := 0
	for _, session := range r.sessions {
		if !session.IsExpired() {
			n++
		}
	}
	return n
}
