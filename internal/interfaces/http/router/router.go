// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-novel-api/internal/config"
	"ai-novel-api/internal/interfaces/http/handler"
	"ai-novel-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health     *handler.HealthHandler
	Generation *handler.GenerationHandler
	Task       *handler.TaskHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建路由器，limiter 为空时不限流
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// generatePaths 生成入口，/api/ai/generate 为旧前端使用的路径
// 这两个路径固定允许任意来源，预检由 GenerationHandler.Options 应答
var generatePaths = []string{"/generate", "/api/ai/generate"}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
		SkipPaths:      generatePaths,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

func (r *Router) setupRoutes() {
	health := r.handlers.Health
	gen := r.handlers.Generation

	r.engine.GET("/health", health.Health)
	r.engine.GET("/ready", health.Ready)
	r.engine.GET("/live", health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		path := r.cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	guarded := []gin.HandlerFunc{
		middleware.Auth(middleware.AuthConfig{
			Enabled:   r.cfg.Security.JWT.Enabled,
			Secret:    r.cfg.Security.JWT.Secret,
			Issuer:    r.cfg.Security.JWT.Issuer,
			SkipPaths: middleware.DefaultSkipPaths,
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Enabled:  r.cfg.Security.RateLimit.Enabled,
			Requests: r.cfg.Security.RateLimit.Requests,
			Window:   r.cfg.Security.RateLimit.Window,
		}, r.limiter),
	}

	for _, path := range generatePaths {
		r.engine.OPTIONS(path, gen.Options)
		r.engine.GET(path, health.Health)
		r.engine.POST(path, append(guarded, gen.Generate)...)
	}

	v1 := r.engine.Group("/v1", guarded...)
	{
		generate := v1.Group("/generate")
		{
			generate.POST("/scene", gen.GenerateScene)
			generate.POST("/character", gen.GenerateCharacter)
			generate.POST("/dialogue", gen.GenerateDialogue)
			generate.POST("/revision", gen.GenerateRevision)
		}

		tasks := r.handlers.Task
		v1.GET("/projects/:pid/tasks", tasks.ListProjectTasks)
		v1.GET("/projects/:pid/tasks/stats", tasks.GetProjectStats)
		v1.GET("/tasks/:tid", tasks.GetTask)
	}
}
