// Package router 提供 HTTP 路由配置
package router

import (
	"slanglab-api/internal/config"
	"slanglab-api/internal/interfaces/http/handler"
	"slanglab-api/internal/interfaces/http/middleware"
	"slanglab-api/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由所需的全部处理器
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Search    *handler.SearchHandler
	Slang     *handler.SlangHandler
	Community *handler.CommunityHandler
	User      *handler.UserHandler
	Admin     *handler.AdminHandler
}

// Router HTTP 路由器
type Router struct {
	engine     *gin.Engine
	cfg        *config.Config
	jwtManager *utils.JWTManager
	limiter    middleware.RateLimiter
	handlers   Handlers
}

// New 创建新的路由器
func New(cfg *config.Config, jwtManager *utils.JWTManager, limiter middleware.RateLimiter, handlers Handlers) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:     gin.New(),
		cfg:        cfg,
		jwtManager: jwtManager,
		limiter:    limiter,
		handlers:   handlers,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	v1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
	}, r.limiter))

	RegisterV1Routes(v1, r.jwtManager, r.handlers)
}
