package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/annotation-auth/internal/api/http"
	"github.com/spec-kit/annotation-auth/internal/api/http/handlers"
	"github.com/spec-kit/annotation-auth/internal/auth"
	"github.com/spec-kit/annotation-auth/internal/config"
	"github.com/spec-kit/annotation-auth/internal/events"
	"github.com/spec-kit/annotation-auth/internal/features"
	"github.com/spec-kit/annotation-auth/internal/links"
	"github.com/spec-kit/annotation-auth/internal/observability"
	"github.com/spec-kit/annotation-auth/internal/persistence"
	"github.com/spec-kit/annotation-auth/internal/service"
	"github.com/spec-kit/annotation-auth/internal/storage"
	"github.com/spec-kit/annotation-auth/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open token store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer store.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	sessions, err := auth.NewSessionCodec([]byte(cfg.Auth.ClientSecret),
		auth.WithLeeway(cfg.Auth.Leeway()),
		auth.WithLogger(logger.Named("session")),
	)
	if err != nil {
		logger.Fatal("failed to init session codec", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := auth.NewDispatcher(sessions, auth.NewAPITokenResolver(store.Tokens))
	authMiddleware := auth.NewAuthMiddleware(dispatcher, cfg.Auth.Audience, metrics, logger)

	eventBus := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(eventBus, logger)

	tokenService := service.NewTokenService(cfg.Auth.SessionTTL(), service.TokenDependencies{
		Sessions:   sessions,
		Store:      store.Tokens,
		Dispatcher: eventBus,
		Logger:     logger,
	})

	flags := features.NewStore(redis.Cmdable(), map[string]bool{
		features.DirectLinking: cfg.Features.DirectLinking,
	}, logger)
	linkGenerator := links.NewGenerator(cfg.App.URL, cfg.Links.BouncerURL, flags)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var redisPinger handlers.Pinger
	if redis.Client != nil {
		redisPinger = redis
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, store, redisPinger),
		Tokens:         handlers.NewTokenHandler(tokenService, cfg.Auth.Audience),
		Links:          handlers.NewLinksHandler(linkGenerator),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
