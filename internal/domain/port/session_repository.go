package port

import (
	"context"
	"time"

	"plastic-detect/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий
type SessionRepository interface {
	// Get возвращает сессию по ID, создаёт новую если не найдена
	Get(ctx context.Context, sessionID string) (*entity.Session, error)

	// Find возвращает сессию по ID без создания
	Find(ctx context.Context, sessionID string) (*entity.Session, bool)

	// Delete удаляет сессию
	Delete(ctx context.Context, sessionID string) error

	// DeleteIdle удаляет сессии, не менявшиеся с cutoff, кроме ждущих ответа детекции.
	// Возвращает ID удалённых сессий.
	DeleteIdle(ctx context.Context, cutoff time.Time) []string

	// Count возвращает количество активных сессий
	Count(ctx context.Context) int
}
