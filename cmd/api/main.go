package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sangkips/optica-api/internal/application/service"
	"github.com/sangkips/optica-api/internal/config"
	"github.com/sangkips/optica-api/internal/infrastructure/cache"
	"github.com/sangkips/optica-api/internal/infrastructure/database"
	"github.com/sangkips/optica-api/internal/infrastructure/realtime"
	"github.com/sangkips/optica-api/internal/infrastructure/repository"
	"github.com/sangkips/optica-api/internal/presentation/http/handler"
	"github.com/sangkips/optica-api/internal/presentation/http/middleware"
	"github.com/sangkips/optica-api/internal/presentation/http/routes"
	"github.com/sangkips/optica-api/pkg/email"
	"github.com/sangkips/optica-api/pkg/localtime"
	"github.com/sangkips/optica-api/pkg/oauth"
	"github.com/sangkips/optica-api/pkg/printer"
	"github.com/sangkips/optica-api/pkg/utils"
)

const housekeepingInterval = time.Hour

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.App.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	logger := zerolog.New(os.Stdout)
	if cfg.App.Env != "production" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	log.Logger = logger.With().Timestamp().Str("service", cfg.App.Name).Logger()
}

func newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.Redis.URL == "" {
		log.Info().Msg("REDIS_URL not set, dashboard caching disabled")
		return cache.Nop{}
	}
	client, err := cache.ConnectRedis(ctx, cfg.Redis.URL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, dashboard caching disabled")
		return cache.Nop{}
	}
	return cache.NewRedisCache(client, cfg.App.Name)
}

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := localtime.Load(cfg.Shop.Timezone)

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	if cfg.Database.MigrationsPath != "" {
		if err := database.ApplyMigrations(&cfg.Database); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	} else if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run auto-migrations")
	}

	if err := database.SeedDefaultData(db, cfg.Admin); err != nil {
		log.Warn().Err(err).Msg("Failed to seed default data")
	}

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	dashboardCache := newCache(ctx, cfg)
	hub := realtime.NewHub(cfg.CORS.AllowedOrigins)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	clientRepo := repository.NewClientRepository(db)
	productRepo := repository.NewProductRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	receiptItemRepo := repository.NewReceiptItemRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		FrontendURL:  cfg.Email.FrontendURL,
		AppName:      cfg.Shop.Name,
	})

	googleOAuthService := oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{
		ClientID:           cfg.OAuth.GoogleClientID,
		ClientSecret:       cfg.OAuth.GoogleClientSecret,
		RedirectURL:        cfg.OAuth.GoogleRedirectURL,
		FrontendSuccessURL: cfg.OAuth.FrontendSuccessURL,
		FrontendErrorURL:   cfg.OAuth.FrontendErrorURL,
	})

	thermalPrinter, err := printer.New(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize printer, printing disabled")
		thermalPrinter = printer.NewNullPrinter()
	}

	// Services
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, cfg.Subscription.TrialDays)
	authService := service.NewAuthService(userRepo, roleRepo, subscriptionService, jwtManager, googleOAuthService)
	clientService := service.NewClientService(clientRepo, dashboardCache)
	productService := service.NewProductService(productRepo, dashboardCache)
	receiptService := service.NewReceiptService(receiptRepo, receiptItemRepo, clientRepo, productRepo, dashboardCache, hub)
	dashboardService := service.NewDashboardService(receiptRepo, clientRepo, productRepo, dashboardCache, cfg.Redis.CacheTTL, loc)
	printerService := service.NewPrinterService(thermalPrinter, receiptService, userRepo, service.ShopInfo{
		Name:    cfg.Shop.Name,
		Address: cfg.Shop.Address,
		Phone:   cfg.Shop.Phone,
	}, loc)
	watcher := service.NewSubscriptionWatcher(
		subscriptionRepo,
		emailService,
		hub,
		cfg.Subscription.PollInterval,
		cfg.Subscription.WarnWithin,
		loc,
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Requests: cfg.RateLimit.Requests,
		Window:   time.Duration(cfg.RateLimit.Duration) * time.Second,
	})

	handlers := &routes.Handlers{
		Auth: handler.NewAuthHandler(authService, handler.OAuthRedirects{
			SuccessURL: cfg.OAuth.FrontendSuccessURL,
			ErrorURL:   cfg.OAuth.FrontendErrorURL,
		}),
		Client:       handler.NewClientHandler(clientService, receiptService),
		Product:      handler.NewProductHandler(productService),
		Receipt:      handler.NewReceiptHandler(receiptService, printerService, loc),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Subscription: handler.NewSubscriptionHandler(subscriptionService),
		Printer:      handler.NewPrinterHandler(printerService),
		Realtime:     handler.NewRealtimeHandler(hub),
	}

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Access:          subscriptionService,
		RateLimiter:     rateLimiter,
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		watcher.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		housekeeping(ctx, idempotencyRepo.DeleteExpired, rateLimiter)
	}()

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", port).Str("env", cfg.App.Env).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	wg.Wait()
}

// housekeeping drops expired idempotency keys and idle rate limit buckets
func housekeeping(ctx context.Context, deleteExpired func(context.Context, time.Time) error, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := deleteExpired(ctx, now); err != nil {
				log.Warn().Err(err).Msg("Failed to delete expired idempotency keys")
			}
			limiter.Cleanup(now)
		}
	}
}
