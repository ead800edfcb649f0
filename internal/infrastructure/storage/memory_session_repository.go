package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"plastic-detect/internal/domain/entity"
	"plastic-detect/internal/domain/port"
)

var errEmptySessionID = errors.New("session id is empty")

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entity.Session),
	}
}

// Get возвращает сессию по ID, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, sessionID string) (*entity.Session, error) {
	if sessionID == "" {
		return nil, errEmptySessionID
	}

	r.mu.RLock()
	session, exists := r.sessions[sessionID]
	r.mu.RUnlock()

	if exists {
		return session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Сессию могли создать, пока мы ждали блокировку
	if session, exists := r.sessions[sessionID]; exists {
		return session, nil
	}

	session = entity.NewSession(sessionID)
	r.sessions[sessionID] = session

	return session, nil
}

// Find возвращает сессию по ID, не создавая новую
func (r *MemorySessionRepository) Find(ctx context.Context, sessionID string) (*entity.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[sessionID]
	return session, exists
}

// Delete удаляет сессию
func (r *MemorySessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	return nil
}

// DeleteIdle удаляет сессии без активности с cutoff; сессии в Loading остаются
func (r *MemorySessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []string
	for id, session := range r.sessions {
		if session.IdleSince(cutoff) {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// Count возвращает количество сессий
func (r *MemorySessionRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
