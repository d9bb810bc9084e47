package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/salesdesk-api/internal/application/saleshistory"
	"github.com/sangkips/salesdesk-api/internal/application/service"
	"github.com/sangkips/salesdesk-api/internal/config"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/database"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/events"
	"github.com/sangkips/salesdesk-api/internal/infrastructure/repository"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/salesdesk-api/internal/presentation/http/routes"
	"github.com/sangkips/salesdesk-api/pkg/printer"
	"github.com/sangkips/salesdesk-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()
	setupLogger(cfg.App)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Warn().Err(err).Msg("failed to seed default data")
	}

	loc := cfg.App.Location()

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryHours)

	// Initialize repositories
	transactionRepo := repository.NewTransactionRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Event bus: Redis when configured, in-process otherwise
	bus, closeBus := newEventBus(cfg.Redis)
	defer closeBus()

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize printer, receipts will be offered as downloads")
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	// Sales history core
	scheduler := saleshistory.NewCronScheduler()
	defer scheduler.Stop()

	dispatcher := saleshistory.NewDispatcher(thermalPrinter, printer.NewSpoolDir(cfg.Printer.SpoolDir), cfg.Printer.CleanupDelay)
	defer dispatcher.Close()

	registry := saleshistory.NewRegistry(cfg.SalesHistory.SessionTTL, cfg.SalesHistory.SweepInterval, nil)
	defer registry.Shutdown()

	renderer := saleshistory.NewRenderer(loc)
	viewConfig := saleshistory.ViewConfig{
		Backend:         saleshistory.NewRepositoryBackend(transactionRepo, analyticsRepo, storeRepo, loc),
		Resolver:        saleshistory.NewResolver(time.Now, loc, cfg.App.WeekStart),
		Renderer:        renderer,
		Output:          dispatcher,
		Bus:             bus,
		Scheduler:       scheduler,
		FetchLimit:      cfg.SalesHistory.FetchLimit,
		FetchTimeout:    cfg.SalesHistory.FetchTimeout,
		Debounce:        cfg.SalesHistory.Debounce,
		AutoRefresh:     cfg.SalesHistory.AutoRefresh,
		RefreshInterval: cfg.SalesHistory.RefreshInterval,
		ReceiptWidth:    cfg.Printer.Width,
		Now:             time.Now,
	}

	// Initialize services
	settingsService := service.NewSettingsService(settingsRepo)
	salesHistoryService := service.NewSalesHistoryService(registry, viewConfig, settingsService, bus, cfg.App.WeekStart)
	printerService := service.NewPrinterService(thermalPrinter, renderer, storeRepo, cfg.Printer.Width)

	// Initialize handlers
	handlers := &routes.Handlers{
		SalesHistory: handler.NewSalesHistoryHandler(salesHistoryService),
		Printer:      handler.NewPrinterHandler(printerService),
		Settings:     handler.NewSettingsHandler(settingsService),
	}

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:  jwtManager,
		Cfg:         cfg,
		RateLimiter: rateLimiter,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.SalesHistory.FetchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("service", cfg.App.Name).Str("port", port).Str("env", cfg.App.Env).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func setupLogger(app config.AppConfig) {
	zerolog.TimeFieldFormat = time.RFC3339
	if app.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if app.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newEventBus(cfg config.RedisConfig) (events.Bus, func()) {
	if cfg.URL == "" {
		log.Info().Msg("REDIS_URL not set, using in-process event bus")
		bus := events.NewMemoryBus()
		return bus, func() { _ = bus.Close() }
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := events.NewRedisClient(ctx, cfg.URL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-process event bus")
		bus := events.NewMemoryBus()
		return bus, func() { _ = bus.Close() }
	}

	bus, err := events.NewRedisBus(ctx, client, cfg.EventChannel)
	if err != nil {
		log.Warn().Err(err).Msg("redis subscribe failed, using in-process event bus")
		_ = client.Close()
		mem := events.NewMemoryBus()
		return mem, func() { _ = mem.Close() }
	}

	log.Info().Str("channel", cfg.EventChannel).Msg("redis event bus connected")
	return bus, func() {
		_ = bus.Close()
		_ = client.Close()
	}
}
