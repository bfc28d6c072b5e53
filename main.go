package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VanitasCaesar1/intake/archive"
	"github.com/VanitasCaesar1/intake/config"
	"github.com/VanitasCaesar1/intake/diagnosis"
	"github.com/VanitasCaesar1/intake/dictionary"
	"github.com/VanitasCaesar1/intake/handlers"
	"github.com/VanitasCaesar1/intake/history"
	"github.com/VanitasCaesar1/intake/kvstore"
	"github.com/VanitasCaesar1/intake/middleware"
	"github.com/VanitasCaesar1/intake/recognition"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	Fiber    *fiber.App
	Store    kvstore.Store
	Poller   *recognition.Poller
	Handlers handlers.Handlers
	Ctx      context.Context
	Config   *config.Config
	Logger   *zap.Logger
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// openStore connects the configured backend. Redis is retried with backoff.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (kvstore.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return kvstore.NewMemoryStore(), nil
	case "redis":
		redisOpt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis URL parsing failed: %v", err)
		}

		redisClient := redis.NewClient(redisOpt)
		maxRedisRetries := 5
		for i := 0; i < maxRedisRetries; i++ {
			_, err = redisClient.Ping(ctx).Result()
			if err == nil {
				break
			}
			logger.Warn("failed to connect to redis, retrying...",
				zap.Error(err),
				zap.Int("attempt", i+1))
			time.Sleep(time.Second * time.Duration(i+1))
		}
		if err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("redis connection failed after %d attempts: %v", maxRedisRetries, err)
		}
		return kvstore.NewRedisStore(redisClient, cfg.StorePrefix), nil
	default:
		store, err := kvstore.OpenBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("bolt store opened", zap.String("path", cfg.BoltPath))
		return store, nil
	}
}

func NewApp() (*App, error) {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %v", err)
	}

	ctx := context.Background()

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %v", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			logger.Warn("sentry disabled", zap.Error(err))
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var historyOpts []history.Option
	if cfg.ArchiveEnabled() {
		archiver, err := archive.NewMinioArchiver(ctx, archive.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.ExportBucket,
		}, logger)
		if err != nil {
			// exports still work without the archive copy
			logger.Error("export archive disabled", zap.Error(err))
		} else {
			historyOpts = append(historyOpts, history.WithArchiver(archiver))
		}
	}

	historySvc := history.NewService(store, logger.Named("history"), loc, historyOpts...)
	diagnosisSvc := diagnosis.NewService(diagnosis.Config{
		Store:    store,
		Logger:   logger.Named("diagnosis"),
		Symptoms: historySvc,
		Location: loc,
		FontPath: cfg.CardFontPath,
	})
	dictionarySvc := dictionary.NewService(store, logger.Named("dictionary"))

	recognitionClient := recognition.NewClient(cfg.RecognitionURL, cfg.RecognitionTimeout, logger.Named("recognition"))
	poller := recognition.NewPoller(recognitionClient, historySvc, cfg.PollInterval, logger.Named("poller"))

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			logger.Error("request error",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.Int("status", code))
			return c.Status(code).JSON(handlers.NewErrorResponse(handlers.CodeInternal, err.Error()))
		},
		// base64 camera frames
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.RecognitionTimeout + 5*time.Second,
	})

	fiberApp.Use(middleware.RecoveryMiddleware(logger))

	// CORS configuration
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  "GET,POST,HEAD,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept",
		ExposeHeaders: "Content-Disposition",
		MaxAge:        300,
	}))

	fiberApp.Use(middleware.SecurityHeaders(cfg.RecognitionURL))
	fiberApp.Use(middleware.RequestLogger(logger))

	return &App{
		Fiber:  fiberApp,
		Store:  store,
		Poller: poller,
		Handlers: handlers.Handlers{
			History:     handlers.NewHistoryHandler(historySvc, logger),
			Diagnosis:   handlers.NewDiagnosisHandler(diagnosisSvc, logger),
			Dictionary:  handlers.NewDictionaryHandler(dictionarySvc, logger),
			Recognition: handlers.NewRecognitionHandler(recognitionClient, poller, historySvc, logger),
		},
		Ctx:    ctx,
		Config: cfg,
		Logger: logger,
	}, nil
}

func (a *App) setupRoutes() {
	a.Fiber.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	a.Handlers.Register(a.Fiber)
}

func (a *App) Start() error {
	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.setupRoutes()

	// Start server in a goroutine
	go func() {
		if err := a.Fiber.Listen(":" + a.Config.ServerPort); err != nil {
			a.Logger.Fatal("failed to start server",
				zap.Error(err),
				zap.String("port", a.Config.ServerPort))
		}
	}()

	a.Logger.Info("server started",
		zap.String("port", a.Config.ServerPort),
		zap.String("store", a.Config.StoreBackend),
		zap.String("recognition_url", a.Config.RecognitionURL))

	// Wait for interrupt signal
	<-sigChan
	a.Logger.Info("shutting down server...")

	// Cleanup
	if err := a.Poller.Stop(); err != nil && err != recognition.ErrNotRunning {
		a.Logger.Error("error stopping recognition", zap.Error(err))
	}
	if err := a.Fiber.Shutdown(); err != nil {
		a.Logger.Error("error during server shutdown",
			zap.Error(err))
	}
	// let in-flight recognitions store their results before the store closes
	a.Poller.Wait()
	if err := a.Store.Close(); err != nil {
		a.Logger.Error("error closing store",
			zap.Error(err))
	}
	sentry.Flush(2 * time.Second)
	if err := a.Logger.Sync(); err != nil {
		log.Printf("error syncing logger: %v", err)
	}

	return nil
}

func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Start(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
