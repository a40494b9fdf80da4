package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/db"
	httpServer "taskboard/internal/http"
	"taskboard/internal/http/handlers"
	"taskboard/internal/logger"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, File: cfg.LogFile})
	log := logger.With("env", cfg.AppEnv, "version", cfg.AppVersion)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := map[string]handlers.Pinger{}

	var store service.TaskStore
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn("using in-memory task store, data is lost on restart")
		store = repository.NewMemoryTaskRepository()
	default:
		pool := db.Connect(ctx, cfg.DatabaseURL)
		defer pool.Close()
		store = repository.NewTaskRepository(pool)
		health["database"] = pool
	}

	rdb := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
		health["redis"] = db.RedisPinger{Client: rdb}
	}

	hub := ws.NewHub(log)
	tasks := service.NewTaskService(store, service.TaskServiceConfig{
		StoreTimeout: cfg.QueryTimeout,
		Events:       hub,
		Logger:       log,
	})
	authenticator := auth.NewJWTManager(auth.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.TokenTTL,
	})

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Tasks:      tasks,
		Auth:       authenticator,
		Hub:        hub,
		Redis:      rdb,
		Health:     health,
		Logger:     log,
		Version:    cfg.AppVersion,
		CORSOrigin: cfg.CORSOrigin,
		APILimit:   httpServer.RateLimit{Max: cfg.APIRateLimit, Window: cfg.APIRateWindow},
		WriteLimit: httpServer.RateLimit{Max: cfg.WriteRateLimit, Window: cfg.WriteRateWindow},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server started", "port", cfg.AppPort, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server exited")
}
