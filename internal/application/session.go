package app

import (
	"context"
	"time"

	"plastic-detect/internal/domain/entity"
	"plastic-detect/internal/domain/port"
)

type SessionService struct {
	repo port.SessionRepository
}

func NewSessionService(repo port.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// Get возвращает сессию, создавая её при первом обращении
func (s *SessionService) Get(ctx context.Context, sessionID string) (*entity.Session, error) {
	return s.repo.Get(ctx, sessionID)
}

func (s *SessionService) Find(ctx context.Context, sessionID string) (*entity.Session, bool) {
	return s.repo.Find(ctx, sessionID)
}

// Snapshot возвращает снимок сессии. Для неизвестной сессии это Idle без файла,
// и сама сессия при этом не сохраняется.
func (s *SessionService) Snapshot(ctx context.Context, sessionID string) (entity.Snapshot, error) {
	session, ok := s.repo.Find(ctx, sessionID)
	if !ok {
		return entity.NewSession(sessionID).Snapshot(), nil
	}
	return session.Snapshot(), nil
}

func (s *SessionService) Forget(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

func (s *SessionService) Active(ctx context.Context) int {
	return s.repo.Count(ctx)
}

// Sweep удаляет сессии, простаивающие дольше ttl. Сессии в Loading не трогает.
func (s *SessionService) Sweep(ctx context.Context, ttl time.Duration) []string {
	return s.repo.DeleteIdle(ctx, time.Now().Add(-ttl))
}

// RunSweeper вызывает Sweep каждые interval до отмены контекста.
// evicted получает ID каждой удалённой сессии, может быть nil.
func (s *SessionService) RunSweeper(ctx context.Context, interval, ttl time.Duration, evicted func(sessionID string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, id := range s.Sweep(ctx, ttl) {
				if evicted != nil {
					evicted(id)
				}
			}
		}
	}
}
