package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kaayakalpa/healthfinder/internal/adapters/cache"
	"github.com/kaayakalpa/healthfinder/internal/adapters/database"
	"github.com/kaayakalpa/healthfinder/internal/adapters/providers/geolocation"
	"github.com/kaayakalpa/healthfinder/internal/adapters/search"
	"github.com/kaayakalpa/healthfinder/internal/adapters/storage"
	"github.com/kaayakalpa/healthfinder/internal/api/handlers"
	"github.com/kaayakalpa/healthfinder/internal/api/middleware"
	"github.com/kaayakalpa/healthfinder/internal/api/routes"
	"github.com/kaayakalpa/healthfinder/internal/application/services"
	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/internal/domain/repositories"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/gemini"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/postgres"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/redis"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/clients/typesense"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/notifications"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
	"github.com/kaayakalpa/healthfinder/migrations"
	"github.com/kaayakalpa/healthfinder/pkg/config"
	"github.com/kaayakalpa/healthfinder/pkg/secrets"
)

func main() {
	if result, err := secrets.Apply(context.Background(), secrets.VaultConfigFromEnv("")); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load secrets from Vault: %v\n", err)
		os.Exit(1)
	} else if result.Loaded > 0 {
		fmt.Fprintf(os.Stderr, "loaded %d secrets from Vault path %s\n", result.Loaded, result.Path)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Database
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	if err := migrations.Apply(ctx, pgClient.DB()); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	// Cache: Redis when reachable, in-process otherwise
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; using in-memory cache")
		cacheProvider = cache.NewMemoryAdapter(10 * time.Minute)
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Repositories
	diseaseRepo := database.NewCachedDiseaseAdapter(database.NewDiseaseAdapter(pgClient), cacheProvider)
	centerRepo := database.NewCenterAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)
	otpRepo := database.NewOTPAdapter(pgClient)
	reportRepo := database.NewReportAdapter(pgClient)

	warming := services.NewCatalogWarmingService(diseaseRepo)
	warming.StartPeriodicWarming(ctx, services.DefaultCatalogWarmInterval)

	// Optional center search index
	var centerIndex repositories.CenterSearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable; center search uses the database")
		} else {
			if err := tsClient.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			centerIndex = search.NewTypesenseAdapter(tsClient)
		}
	}

	// Optional AI condition extraction
	var extractor providers.ConditionExtractor
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(&cfg.Gemini)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Gemini client; symptom matching is local only")
		} else {
			extractor = client
		}
	} else {
		log.Info().Msg("GEMINI_API_KEY not set; symptom matching is local only")
	}

	files, err := storage.NewDiskStorage(cfg.Uploads.Dir, "/uploads")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upload storage")
	}

	demoOTP := cfg.OTP.AllowDemo && !cfg.IsProduction()
	if demoOTP {
		log.Warn().Msg("OTP demo mode enabled; codes are returned instead of sent")
	}

	// Services
	matcher := services.NewSymptomMatcher(extractor, services.WithExtractionTimeout(cfg.Gemini.Timeout))
	diseaseService := services.NewDiseaseService(diseaseRepo, matcher, metrics)
	authService := services.NewAuthService(userRepo, cfg.Auth)
	otpService := services.NewOTPService(
		otpRepo,
		userRepo,
		notifications.NewSMSSender(cfg.OTP),
		services.OTPSettings{DefaultCountryCode: cfg.OTP.DefaultCountryCode, DemoMode: demoOTP},
		metrics,
	)
	centerService := services.NewCenterService(centerRepo, centerIndex, diseaseRepo, userRepo, files)
	if cfg.Geocoding.APIKey != "" {
		centerService.SetGeocoder(geolocation.NewGoogleGeocoder(cfg.Geocoding.APIKey, cfg.Geocoding.Region, cfg.Geocoding.BaseURL, cacheProvider))
	}
	moderationService := services.NewModerationService(centerRepo, centerIndex, userRepo, reportRepo)
	reportService := services.NewReportService(reportRepo, centerRepo)

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	// Router
	router := routes.NewRouter(routes.Handlers{
		Health:  handlers.NewHealthHandler(pgClient.DB()),
		Disease: handlers.NewDiseaseHandler(diseaseService),
		Auth:    handlers.NewAuthHandler(authService),
		OTP:     handlers.NewOTPHandler(otpService),
		Center:  handlers.NewCenterHandler(centerService, cfg.Uploads.MaxBytes),
		Admin:   handlers.NewAdminHandler(moderationService),
		Report:  handlers.NewReportHandler(reportService),
	}, routes.Options{
		Authenticator:   authService,
		RateLimitCache:  cacheProvider,
		CacheMiddleware: middleware.NewCacheMiddleware(cacheProvider, metrics, middleware.DefaultCacheRoutes()),
		Metrics:         metrics,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		UploadsDir:      files.Dir(),
		TrustedProxies:  trustedProxies,
	})

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("env", cfg.Server.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
