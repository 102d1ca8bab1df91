package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/devcamper/devcamper-api/internal/app"
	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/bootcamps"
	"github.com/devcamper/devcamper-api/internal/courses"
	"github.com/devcamper/devcamper-api/internal/observability"
	"github.com/devcamper/devcamper-api/internal/platform/cache"
	"github.com/devcamper/devcamper-api/internal/platform/db"
	"github.com/devcamper/devcamper-api/internal/platform/geocode"
	"github.com/devcamper/devcamper-api/internal/platform/mail"
	"github.com/devcamper/devcamper-api/internal/platform/storage"
	"github.com/devcamper/devcamper-api/internal/reviews"
	"github.com/devcamper/devcamper-api/internal/users"
	"github.com/devcamper/devcamper-api/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, MaxConnLifetime: time.Hour})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("postgres connected")

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if client, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, geocode cache disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	sender, err := mail.NewSMTPSender(mail.SMTPConfig{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		User:       cfg.SMTPUser,
		Password:   cfg.SMTPPassword,
		From:       cfg.SMTPFrom,
		SkipVerify: cfg.SMTPSkipVerify,
	}, logger)
	if err != nil {
		logger.Error("init smtp", slog.Any("error", err))
		os.Exit(1)
	}

	var photos storage.ObjectStore = storage.NewDiskStore(cfg.FileUploadPath)
	if cfg.UsesS3() {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Error("init s3", slog.Any("error", err))
			os.Exit(1)
		}
		photos = s3Store
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	mailQueue := jobs.NewClient(redisOpts, nil)
	defer func() {
		if err := mailQueue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTExpire)
	if err != nil {
		logger.Error("init token issuer", slog.Any("error", err))
		os.Exit(1)
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost, cfg.HashWorkers)
	usersRepo := users.NewRepository(dbpool)
	authService, err := auth.NewService(usersRepo, hasher, tokens, sender, logger, auth.WithMailQueue(mailQueue))
	if err != nil {
		logger.Error("init auth service", slog.Any("error", err))
		os.Exit(1)
	}
	authMiddleware := auth.NewMiddleware(authService, logger)
	authHandler := auth.NewHandler(logger, authService, authMiddleware, auth.Config{
		CookieDays: cfg.JWTCookieExpire,
		Production: cfg.IsProduction(),
		BaseURL:    cfg.AppBaseURL,
	})

	usersService := users.NewService(usersRepo, hasher)

	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderAPIKey,
		cache.NewJSONCache(redisClient, "devcamper:geocode:", cfg.GeocoderCacheTTL))
	bootcampService := bootcamps.NewService(bootcamps.NewRepository(dbpool), geocoder, photos, cfg.MaxFileUpload, logger)
	courseService := courses.NewService(courses.NewRepository(dbpool), bootcampService)
	reviewService := reviews.NewService(reviews.NewRepository(dbpool), bootcampService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthHandler:      authHandler,
		UsersHandler:     users.NewHandler(logger, usersService, authMiddleware),
		BootcampsHandler: bootcamps.NewHandler(logger, bootcampService, authMiddleware),
		CoursesHandler:   courses.NewHandler(logger, courseService, authMiddleware),
		ReviewsHandler:   reviews.NewHandler(logger, reviewService, authMiddleware),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
