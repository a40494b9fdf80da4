package http

import (
	"log/slog"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"
	"taskboard/internal/logger"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// RateLimit is a fixed window: Max requests per Window
type RateLimit struct {
	Max    int
	Window time.Duration
}

// Deps are the collaborators the routes are wired to. Redis and Hub are optional.
type Deps struct {
	Tasks   handlers.TaskService
	Auth    auth.Authenticator
	Hub     *ws.Hub
	Redis   *redis.Client
	Health  map[string]handlers.Pinger
	Logger  *slog.Logger
	Version string

	CORSOrigin string
	APILimit   RateLimit
	WriteLimit RateLimit
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	if d.Logger == nil {
		d.Logger = logger.Get()
	}

	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Metrics())
	if d.CORSOrigin != "" {
		r.Use(middleware.CORS(d.CORSOrigin))
	}

	healthHandler := handlers.NewHealthHandler(d.Health, d.Version)
	taskHandler := handlers.NewTaskHandler(d.Tasks, d.Logger)

	// Health checks (no rate limiting, no auth)
	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	if d.APILimit.Max > 0 {
		v1.Use(ipLimiter(d.Redis, d.APILimit))
	}
	v1.Use(middleware.RequireAuth(d.Auth))

	var write []gin.HandlerFunc
	if d.WriteLimit.Max > 0 {
		write = append(write, userLimiter(d.Redis, d.WriteLimit))
	}

	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), h)
	}

	tasks := v1.Group("/tasks")
	tasks.POST("", limited(taskHandler.Create)...)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", limited(taskHandler.Update)...)
	tasks.DELETE("/:id", limited(taskHandler.Delete)...)
	tasks.PATCH("/:id/status", limited(taskHandler.ChangeStatus)...)

	if d.Hub != nil {
		v1.GET("/events", ws.HandleEvents(d.Hub, d.CORSOrigin))
	}
}

// ipLimiter uses redis when configured and falls back to the in-process limiter
func ipLimiter(rdb *redis.Client, l RateLimit) gin.HandlerFunc {
	if rdb == nil {
		return middleware.SimpleRateLimit(l.Max, l.Window)
	}
	return middleware.RedisRateLimit(rdb, l.Max, l.Window)
}

func userLimiter(rdb *redis.Client, l RateLimit) gin.HandlerFunc {
	if rdb == nil {
		local := middleware.NewLocalRateLimiter(l.Max, l.Window)
		return middleware.LocalUserRateLimit(local)
	}
	return middleware.UserRateLimit(rdb, l.Max, l.Window)
}
