package session

import (
	"context"
	"time"

	"econote-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// evictFlushTimeout bounds the page flush of a session that expired.
const evictFlushTimeout = 10 * time.Second

// Manager keeps live sessions with a sliding TTL. An expired session flushes its current page.
type Manager struct {
	sessions *cache.Cache
	logger   logger.ILogger
}

func NewManager(ttl, cleanupInterval time.Duration, log logger.ILogger) *Manager {
	m := &Manager{
		sessions: cache.New(ttl, cleanupInterval),
		logger:   log,
	}
	m.sessions.OnEvicted(m.onEvicted)
	return m
}

func (m *Manager) Add(s *Session) {
	m.sessions.SetDefault(s.Id().String(), s)
}

// Get returns the session owned by userId and renews its TTL.
func (m *Manager) Get(id, userId uuid.UUID) (*Session, error) {
	x, found := m.sessions.Get(id.String())
	if !found {
		return nil, ErrSessionNotFound
	}
	s := x.(*Session)
	if s.UserId() != userId {
		return nil, ErrSessionNotFound
	}
	m.sessions.SetDefault(id.String(), s)
	return s, nil
}

// Touch renews the TTL of a session the caller owns; pen frames arrive without REST calls.
func (m *Manager) Touch(id, userId uuid.UUID) error {
	_, err := m.Get(id, userId)
	return err
}

// Remove flushes and closes the session, then forgets it. A session that could not
// close (flush error) is kept.
func (m *Manager) Remove(ctx context.Context, id, userId uuid.UUID) error {
	s, err := m.Get(id, userId)
	if err != nil {
		return err
	}
	err = s.Close(ctx)
	if s.Closed() {
		m.sessions.Delete(id.String())
	}
	return err
}

func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}

// CloseAll flushes every session; used on shutdown.
func (m *Manager) CloseAll(ctx context.Context) {
	for key, item := range m.sessions.Items() {
		s := item.Object.(*Session)
		if err := s.Close(ctx); err != nil {
			m.logger.Error("SessionManager", "Failed to flush session on shutdown", map[string]interface{}{
				"session_id": key,
				"error":      err.Error(),
			})
		}
	}
	m.sessions.Flush()
}

func (m *Manager) onEvicted(key string, x interface{}) {
	s, ok := x.(*Session)
	if !ok || s.Closed() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), evictFlushTimeout)
	defer cancel()

	if err := s.Close(ctx); err != nil {
		m.logger.Error("SessionManager", "Failed to flush expired session", map[string]interface{}{
			"session_id": key,
			"user_id":    s.UserId().String(),
			"error":      err.Error(),
		})
		return
	}
	m.logger.Info("SessionManager", "Session closed", map[string]interface{}{
		"session_id": key,
	})
}
