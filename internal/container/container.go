package container

import (
	app "plastic-detect/internal/application"
	"plastic-detect/internal/domain/port"
	"plastic-detect/internal/logger"
)

type Container struct {
	SessionService   *app.SessionService
	UploadController *app.UploadController
	Detector         port.Detector
}

func New(sessionRepo port.SessionRepository, detector port.Detector, publisher port.SnapshotPublisher, log *logger.Logger) *Container {
	sessionService := app.NewSessionService(sessionRepo)
	uploadController := app.NewUploadController(sessionService, detector, publisher, log)

	return &Container{
		SessionService:   sessionService,
		UploadController: uploadController,
		Detector:         detector,
	}
}
