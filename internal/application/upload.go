package app

import (
	"context"
	"errors"
	"fmt"

	"plastic-detect/internal/domain/entity"
	"plastic-detect/internal/domain/port"
	"plastic-detect/internal/logger"
)

// UploadController управляет выбором файла и запросом детекции для сессий.
type UploadController struct {
	sessions  *SessionService
	detector  port.Detector
	publisher port.SnapshotPublisher
	logger    *logger.Logger
}

// NewUploadController создаёт контроллер. publisher может быть nil.
func NewUploadController(sessions *SessionService, detector port.Detector, publisher port.SnapshotPublisher, log *logger.Logger) *UploadController {
	if log == nil {
		log = logger.Discard()
	}
	return &UploadController{
		sessions:  sessions,
		detector:  detector,
		publisher: publisher,
		logger:    log,
	}
}

// SelectFile заменяет выбранный файл сессии. Состояние запроса не меняется.
// Сессия создаётся только когда выбран файл.
func (c *UploadController) SelectFile(ctx context.Context, sessionID string, file *entity.SelectedFile) (entity.Snapshot, error) {
	if file == nil {
		if _, ok := c.sessions.Find(ctx, sessionID); !ok {
			return c.sessions.Snapshot(ctx, sessionID)
		}
	}

	session, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return entity.Snapshot{}, err
	}

	snap := session.SelectFile(file)
	c.publish(snap)
	return snap, nil
}

// Snapshot возвращает текущее состояние сессии
func (c *UploadController) Snapshot(ctx context.Context, sessionID string) (entity.Snapshot, error) {
	return c.sessions.Snapshot(ctx, sessionID)
}

// Submit запускает запрос детекции для выбранного файла и сразу возвращается.
// Без файла или во время выполняющегося запроса ничего не происходит:
// возвращается entity.ErrNoFileSelected или entity.ErrRequestInFlight.
// Канал получает итоговый снимок ровно один раз и закрывается.
func (c *UploadController) Submit(ctx context.Context, sessionID string) (<-chan entity.Snapshot, error) {
	if c.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	// У неизвестной сессии файла быть не может
	session, ok := c.sessions.Find(ctx, sessionID)
	if !ok {
		return nil, entity.ErrNoFileSelected
	}

	file, snap, err := session.BeginSubmit()
	if err != nil {
		return nil, err
	}
	c.publish(snap)
	c.logger.Info("Session %s: detection started for %q (%d bytes)", sessionID, file.Name, len(file.Data))

	done := make(chan entity.Snapshot, 1)
	// Запрос не отменяется вместе с вызывающим (например, HTTP-запросом формы)
	go c.detect(context.WithoutCancel(ctx), session, file, done)

	return done, nil
}

// detect выполняет запрос и переводит сессию из Loading ровно один раз на любом пути.
func (c *UploadController) detect(ctx context.Context, session *entity.Session, file *entity.SelectedFile, done chan<- entity.Snapshot) {
	var outcome entity.RequestState = entity.Failed{Message: "detection did not complete"}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Session %s: detection panicked: %v", session.ID, r)
			outcome = entity.Failed{Message: fmt.Sprint(r)}
		}

		snap, ok := session.Settle(outcome)
		if !ok {
			c.logger.Error("Session %s: settle rejected in state %s", session.ID, snap.State.Kind())
		}
		c.publish(snap)
		done <- snap
		close(done)
	}()

	result, err := c.detector.Detect(ctx, file)
	if err != nil {
		c.logger.Warning("Session %s: detection failed: %v", session.ID, err)
		outcome = entity.Failed{Message: err.Error()}
		return
	}
	if result == nil {
		empty := entity.NewDetectionResult(nil, 0, "")
		result = &empty
	}

	c.logger.Info("Session %s: detection finished, plastic count %d", session.ID, result.PlasticCount)
	outcome = entity.Succeeded{Result: *result}
}

func (c *UploadController) publish(snap entity.Snapshot) {
	if c.publisher != nil {
		c.publisher.Publish(snap)
	}
}
