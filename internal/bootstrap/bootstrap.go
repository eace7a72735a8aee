package bootstrap

import (
	"context"
	"fmt"

	"github.com/medassist-app/medassist/internal/config"
	"github.com/medassist-app/medassist/internal/core/ports"
	"github.com/medassist-app/medassist/internal/core/usecase"
	"github.com/medassist-app/medassist/internal/infrastructure/extractor/pdftext"
	"github.com/medassist-app/medassist/internal/infrastructure/geocode/nominatim"
	"github.com/medassist-app/medassist/internal/infrastructure/imaging"
	"github.com/medassist-app/medassist/internal/infrastructure/llm/openrouter"
	"github.com/medassist-app/medassist/internal/infrastructure/repository/memory"
	"github.com/medassist-app/medassist/internal/infrastructure/repository/postgres"
	"github.com/medassist-app/medassist/internal/infrastructure/resilience"
	"github.com/medassist-app/medassist/internal/infrastructure/storage/localfs"
	"github.com/medassist-app/medassist/internal/infrastructure/translate/googletrans"
)

type App struct {
	Config config.Config

	Sessions ports.SessionStore
	Storage  ports.ObjectStorage

	ChatUC      ports.ChatAssistant
	ExtractUC   ports.ReportExtractor
	TranslateUC ports.ReportTranslator
	AnalyzeUC   ports.ImageAnalyzer
	LocateUC    ports.HospitalLocator

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	sessions, closeFn, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// One client per credential slot; the capabilities are billed and
	// rate-limited independently upstream.
	chatClient := openrouter.New(cfg.OpenRouterBaseURL, cfg.ChatAPIKey)
	visionClient := openrouter.New(cfg.OpenRouterBaseURL, cfg.VisionAPIKey)
	simplifyClient := openrouter.New(cfg.OpenRouterBaseURL, cfg.ReportAPIKey)

	translatorExecutor := resilience.NewExecutor(func() resilience.Config {
		c := resilience.DefaultConfig()
		c.BreakerEnabled = true
		return c
	}())
	translator := googletrans.NewWithExecutor(cfg.TranslateBaseURL, translatorExecutor)

	geocoder := nominatim.New(cfg.NominatimBaseURL, cfg.NominatimUserAgent)
	pdfReader := pdftext.NewReader(storage)
	transcoder := imaging.NewTranscoder()

	extractUC := usecase.NewExtractReportUseCase(
		storage,
		pdfReader,
		transcoder,
		visionClient,
		usecase.CompletionConfig{
			Model:       cfg.VisionModel,
			Temperature: cfg.ExtractTemperature,
			MaxTokens:   cfg.ExtractMaxTokens,
		},
		usecase.RetryPolicy{
			MaxAttempts:    cfg.ExtractRetryAttempts,
			InitialBackoff: cfg.ExtractRetryBackoff,
		},
	)
	translateUC := usecase.NewTranslateReportUseCase(
		simplifyClient,
		usecase.CompletionConfig{
			Model:       cfg.SimplifyModel,
			Temperature: cfg.SimplifyTemperature,
			MaxTokens:   cfg.SimplifyMaxTokens,
		},
		translator,
	)
	analyzeUC := usecase.NewAnalyzeImageUseCase(
		chatClient,
		usecase.CompletionConfig{
			Model:       cfg.ChatModel,
			Temperature: cfg.AnalyzeTemperature,
			MaxTokens:   cfg.AnalyzeMaxTokens,
		},
		translateUC,
	)
	chatUC := usecase.NewChatUseCase(
		sessions,
		chatClient,
		usecase.CompletionConfig{
			Model:       cfg.ChatModel,
			Temperature: cfg.ChatTemperature,
			MaxTokens:   cfg.ChatMaxTokens,
		},
		translateUC,
	)
	locateUC := usecase.NewLocateHospitalsUseCase(geocoder)

	return &App{
		Config: cfg,

		Sessions: sessions,
		Storage:  storage,

		ChatUC:      chatUC,
		ExtractUC:   extractUC,
		TranslateUC: translateUC,
		AnalyzeUC:   analyzeUC,
		LocateUC:    locateUC,

		closeFn: closeFn,
	}, nil
}

// newSessionStore picks the durable postgres store when a DSN is configured
// and falls back to the in-process store otherwise.
func newSessionStore(ctx context.Context, cfg config.Config) (ports.SessionStore, func(), error) {
	if cfg.PostgresDSN == "" {
		return memory.NewSessionStore(), func() {}, nil
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSessionRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repo, func() { _ = db.Close() }, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
