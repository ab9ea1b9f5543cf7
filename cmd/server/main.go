package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/planpin/backend/api/handler"
	"github.com/planpin/backend/internal/config"
	"github.com/planpin/backend/internal/infrastructure/docstore"
	"github.com/planpin/backend/internal/infrastructure/monitor"
	redisInfra "github.com/planpin/backend/internal/infrastructure/redis"
	"github.com/planpin/backend/internal/middleware"
	"github.com/planpin/backend/internal/router"
	"github.com/planpin/backend/internal/services"
	"github.com/planpin/backend/internal/services/lifecycle"
	"github.com/planpin/backend/pkg/httpcontext"
	"github.com/planpin/backend/pkg/logger"
	"github.com/planpin/backend/repository/bolt"
	redisRepo "github.com/planpin/backend/repository/redis"
	planUC "github.com/planpin/backend/usecase/plan"
	sessionUC "github.com/planpin/backend/usecase/session"
	taskUC "github.com/planpin/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	stores, err := docstore.NewManager(cfg.Store.Dir, zapLogger)
	if err != nil {
		zapLogger.Fatal("store directory unavailable", zap.Error(err))
	}
	manager.Register("stores", func(ctx context.Context) error {
		return stores.Close()
	})

	mon := monitor.New(redisClient, stores, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	storekeeper := services.NewStorekeeper(stores, zapLogger, services.StorekeeperConfig{
		Interval: cfg.Store.JanitorInterval,
		MaxIdle:  cfg.Store.IdleClose,
	})
	storekeeper.Start()
	manager.Register("storekeeper", func(ctx context.Context) error {
		storekeeper.Stop(ctx)
		return nil
	})

	repos := bolt.NewProvider(stores)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Session.TTL)

	sessionUseCase := sessionUC.New(repos, sessionRepo, sessionUC.Config{
		TTL:       cfg.Session.TTL,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
	}, zapLogger)
	taskUseCase := taskUC.New(repos, zapLogger)
	planUseCase := planUC.New(taskUseCase, cfg.Plan.DragThresholdPx, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(sessionUseCase, planUseCase, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, planUseCase, ctxAdapter, zapLogger),
		Plan:   apiHandler.NewPlanHandler(planUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
