package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"plastic-detect/config"
	"plastic-detect/internal/api/telegram"
	"plastic-detect/internal/api/web"
	"plastic-detect/internal/container"
	"plastic-detect/internal/infrastructure/predict"
	"plastic-detect/internal/infrastructure/realtime"
	"plastic-detect/internal/infrastructure/storage"
	"plastic-detect/internal/infrastructure/vision"
	"plastic-detect/internal/logger"
)

const (
	healthTimeout   = 5 * time.Second
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище сессий, клиент сервиса детекции и рассылка снимков
	sessionRepo := storage.NewMemorySessionRepository()
	detector := predict.NewClient(cfg.APIBase, nil)
	hub := realtime.NewHub(appLogger, realtime.DefaultPingPeriod)

	appContainer := container.New(sessionRepo, detector, hub, appLogger)
	previewer := vision.NewPreviewer()

	healthCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	if err := appContainer.Detector.Health(healthCtx); err != nil {
		appLogger.Warning("Detection service not available at %s: %v", cfg.APIBase, err)
	}
	cancel()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           web.NewServer(appContainer.UploadController, hub, previewer, appLogger, web.DefaultPongWait).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		hub.Run(groupCtx)
		return nil
	})

	// Простаивающие сессии удаляются вместе с выбранными файлами
	group.Go(func() error {
		interval := min(sweepInterval, cfg.SessionTTL)
		appContainer.SessionService.RunSweeper(groupCtx, interval, cfg.SessionTTL, func(sessionID string) {
			appLogger.Info("Session %s expired after %s of inactivity", sessionID, cfg.SessionTTL)
		})
		return nil
	})

	group.Go(func() error {
		appLogger.Info("Web page on http://localhost%s, detection service %s", cfg.Addr(), cfg.APIBase)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer.UploadController, previewer, appLogger)
		if err != nil {
			appLogger.Error("Telegram bot disabled: %v", err)
		} else {
			group.Go(func() error {
				appLogger.Info("Bot is running...")
				return bot.Run(groupCtx)
			})
		}
	}

	err = group.Wait()
	appLogger.Info("Stopped, %d sessions were active", appContainer.SessionService.Active(context.Background()))
	if err != nil {
		appLogger.Error("Server error: %v", err)
		appLogger.Close()
		os.Exit(1)
	}
}
