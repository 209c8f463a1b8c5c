package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/reviewlens/internal/analytics"
	"github.com/MikeSquared-Agency/reviewlens/internal/api"
	"github.com/MikeSquared-Agency/reviewlens/internal/business"
	"github.com/MikeSquared-Agency/reviewlens/internal/config"
	"github.com/MikeSquared-Agency/reviewlens/internal/hermes"
	"github.com/MikeSquared-Agency/reviewlens/internal/processor"
	"github.com/MikeSquared-Agency/reviewlens/internal/recommend"
	"github.com/MikeSquared-Agency/reviewlens/internal/schedule"
	"github.com/MikeSquared-Agency/reviewlens/internal/slack"
	"github.com/MikeSquared-Agency/reviewlens/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("reviewlens starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			slog.Error("invalid REVIEWLENS_TIMEZONE", "timezone", cfg.Timezone, "error", err)
			os.Exit(1)
		}
		loc = l
	}

	catalog, err := business.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		slog.Error("failed to load business catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("business catalog loaded", "businesses", len(catalog.List()))

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	events := hermes.NewEvents(hermesClient)

	// Analytics engine
	engineOpts := analytics.DefaultOptions()
	engineOpts.Location = loc
	if engineOpts.ThemeKeys, err = analytics.ParseKeyPolicy(cfg.ThemeKeyPolicy); err != nil {
		slog.Error("invalid THEME_KEY_POLICY", "error", err)
		os.Exit(1)
	}
	if engineOpts.StaffKeys, err = analytics.ParseKeyPolicy(cfg.StaffKeyPolicy); err != nil {
		slog.Error("invalid STAFF_KEY_POLICY", "error", err)
		os.Exit(1)
	}
	engine := analytics.New(engineOpts, slog.Default())

	// Recommendation providers
	settings := processor.RecommendSettings{
		Primary: recommend.ProviderConfig{
			Provider: cfg.RecommendProvider,
			Model:    cfg.RecommendModel,
			APIKey:   cfg.RecommendAPIKey,
			BaseURL:  cfg.RecommendBaseURL,
		},
		StaticFallback: cfg.RecommendStaticFallback,
	}
	if cfg.RecommendFallbackProvider != "" {
		settings.Fallback = &recommend.ProviderConfig{
			Provider: cfg.RecommendFallbackProvider,
			Model:    cfg.RecommendFallbackModel,
			APIKey:   cfg.RecommendFallbackAPIKey,
		}
	}
	slog.Info("recommendation providers configured",
		"provider", cfg.RecommendProvider,
		"fallback", cfg.RecommendFallbackProvider,
		"static_fallback", cfg.RecommendStaticFallback,
	)

	deps := processor.Deps{
		Catalog:   catalog,
		Engine:    engine,
		Reviews:   db,
		Runs:      db,
		Publisher: events,
		Recommend: settings,
		Location:  loc,
		Logger:    slog.Default(),
	}

	// Slack poster (optional; digests are skipped without it)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		deps.Notifier = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured, running without digests")
	}

	proc := processor.New(deps)

	// Subscribe to ingest events from the scraper pipeline
	if err := hermesClient.Subscribe(hermes.SubjectReviewsIngested, proc.HandleReviewsIngested); err != nil {
		slog.Error("failed to subscribe to ingest events", "error", err)
		os.Exit(1)
	}

	// Scheduled refresh
	sched, err := schedule.New(cfg.RefreshSchedule, loc, proc.RefreshAll, slog.Default())
	if err != nil {
		slog.Error("invalid REFRESH_SCHEDULE", "error", err)
		os.Exit(1)
	}
	sched.Start()

	// HTTP API
	srv := api.NewServer(api.Options{
		Port:              cfg.Port,
		APIToken:          cfg.APIToken,
		CORSOrigins:       cfg.CORSOrigins,
		RateLimitRPS:      cfg.RateLimitRPS,
		RateLimitBurst:    cfg.RateLimitBurst,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}, proc, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := events.AgentRegistered(hermes.AgentRegistered{
		Port:       cfg.Port,
		Businesses: len(catalog.List()),
		Provider:   cfg.RecommendProvider,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("reviewlens ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", "error", err)
	}
	sched.Stop(shutdownCtx)
	cancel()
	slog.Info("reviewlens stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
