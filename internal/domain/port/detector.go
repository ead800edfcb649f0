package port

import (
	"context"

	"plastic-detect/internal/domain/entity"
)

// Detector интерфейс сервиса детекции
type Detector interface {
	// Detect отправляет изображение на детекцию и возвращает результат
	Detect(ctx context.Context, file *entity.SelectedFile) (*entity.DetectionResult, error)

	// Health проверяет доступность сервиса
	Health(ctx context.Context) error
}
