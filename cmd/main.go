package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"interview-capture-service/internal/app"
	"interview-capture-service/internal/config"
	"interview-capture-service/internal/events"
	ihttp "interview-capture-service/internal/http"
	"interview-capture-service/internal/models"
	"interview-capture-service/internal/observability"
	"interview-capture-service/internal/observability/logging"
	"interview-capture-service/internal/service/backend"
	"interview-capture-service/internal/service/capture"
	"interview-capture-service/internal/service/capture/sim"
	"interview-capture-service/internal/service/questions"
	"interview-capture-service/internal/service/session"
	"interview-capture-service/internal/service/upload"
)

func main() {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	application := app.New(cfg)
	if err := application.Start(); err != nil {
		application.Logger.Fatal().Err(err).Msg("Application startup failed")
	}
	logger := application.Logger

	// Kafka publisher with separate topics for completed sessions and
	// upload failures
	publisher := events.New(&events.Config{
		Enabled:        cfg.Kafka.Enabled,
		Brokers:        cfg.Kafka.Brokers,
		TopicCompleted: cfg.Kafka.TopicCompleted,
		TopicFailure:   cfg.Kafka.TopicUploadFailure,
		Principal:      cfg.Kafka.Principal,
	})
	defer publisher.Close()

	obs := observability.NewServer(cfg.Service.MetricsAddr)
	obs.Start()

	questionList, err := loadQuestions(cfg)
	if err != nil {
		switch {
		case errors.Is(err, questions.ErrAlreadyCompleted):
			logger.Warn().Msg("Interview already completed, nothing to do")
			return
		case errors.Is(err, questions.ErrNotAssigned):
			logger.Warn().Msg("No interview assigned to this user")
			return
		case errors.Is(err, questions.ErrUnauthorized):
			logger.Fatal().Err(err).Msg("Question service rejected credentials")
		default:
			logger.Fatal().Err(err).Msg("Failed to load questions")
		}
	}
	if len(questionList) == 0 {
		logger.Warn().Msg("Empty question list, nothing to do")
		return
	}

	device := buildDevice(cfg)
	manager := capture.NewManager(device, cfg.Capture.SampleRateHz, cfg.Capture.Channels, logging.WithComponent("capture"))

	sessionID := uuid.NewString()
	controller := session.NewController(session.Config{
		SessionID:        sessionID,
		UserID:           cfg.Interview.UserID,
		DefaultTimeLimit: cfg.Interview.DefaultTimeLimit,
		TickInterval:     cfg.Interview.TickInterval,
		SnapshotTimeout:  cfg.Interview.SnapshotTimeout,
	}, questionList, manager, buildFinalizer(cfg, publisher), publisher, logging.WithSession(sessionID, cfg.Interview.UserID))

	statusServer := &http.Server{
		Addr:    ":" + cfg.Service.HTTPPort,
		Handler: ihttp.NewRouter(controller),
	}
	go func() {
		logger.Info().Str("port", cfg.Service.HTTPPort).Msg("Status HTTP server started")
		if err := statusServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Status HTTP server error")
		}
	}()

	if err := controller.Start(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Session start failed")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-controller.Done():
		logger.Info().Msg("Session completed")
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("Shutdown requested, finalizing session")
		finishCtx, cancel := context.WithTimeout(context.Background(), cfg.Storage.RequestTimeout)
		if err := controller.Finish(finishCtx, session.AdvanceShutdown); err != nil {
			logger.Error().Err(err).Msg("Forced finish failed")
		}
		cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := statusServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Status HTTP server shutdown error")
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Observability server shutdown error")
	}
	application.Shutdown()
}

// loadQuestions fetches the question list from the configured source, or the
// built-in sample set when no endpoint is configured.
func loadQuestions(cfg *config.Configuration) ([]models.Question, error) {
	var source questions.Source
	if cfg.Questions.Endpoint == "" {
		qlog := logging.WithComponent("questions")
		qlog.Info().Msg("No question endpoint configured, using built-in sample questions")
		source = questions.NewSampleSource()
	} else {
		source = questions.NewClient(cfg.Questions.Endpoint, cfg.Questions.Timeout, cfg.Questions.RetryCount, logging.WithComponent("questions"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Questions.Timeout*time.Duration(cfg.Questions.RetryCount+1)+10*time.Second)
	defer cancel()
	return source.Load(ctx, cfg.Interview.UserID)
}

// buildDevice selects the capture provider. "sim" is the only built-in
// provider; unknown values fall back to it.
func buildDevice(cfg *config.Configuration) capture.Device {
	if cfg.Capture.Provider != "sim" {
		clog := logging.WithComponent("capture")
		clog.Warn().
			Str("provider", cfg.Capture.Provider).
			Msg("Unknown capture provider, falling back to sim")
	}
	return sim.New(sim.Config{
		ChunkInterval:      cfg.Capture.AudioChunkInterval,
		VideoChunkInterval: cfg.Capture.VideoChunkInterval,
	})
}

// buildFinalizer selects the finalize pipeline: object storage when enabled,
// the legacy backend record when configured, log-only otherwise.
func buildFinalizer(cfg *config.Configuration, failures *events.Publisher) session.Finalizer {
	if cfg.Storage.Enabled {
		tokens := upload.NewTokenClient(cfg.Storage.TokenURL, cfg.Storage.RequestTimeout, logging.WithComponent("upload"))
		storage := upload.NewClient(cfg.Storage.BaseURL, cfg.Storage.RequestTimeout, logging.WithComponent("upload"))
		return upload.NewOrchestrator(tokens, storage, failures, cfg.Storage.RootFolder, logging.WithComponent("upload"))
	}
	if cfg.Backend.URL != "" {
		return backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logging.WithComponent("backend"))
	}
	return upload.NewLogFinalizer(logging.WithComponent("upload"))
}
