// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"ai-novel-api/internal/interfaces/http/dto"
)

// HealthChecker 可探活的依赖，postgres.Client 与 redis.Client 均实现
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	service string
	version string
	deps    map[string]HealthChecker
	now     func() time.Time
}

// NewHealthHandler 创建健康检查处理器，deps 中为空的依赖视为未启用
func NewHealthHandler(service, version string, deps map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{
		service: service,
		version: version,
		deps:    deps,
		now:     time.Now,
	}
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口，GET /generate 也返回同样的内容
// @Summary 健康检查
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthBody
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	allowAnyOrigin(c)
	c.JSON(http.StatusOK, dto.HealthBody{
		Status:    "healthy",
		Service:   h.service,
		Timestamp: h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Version:   h.version,
	})
}

// Ready 就绪检查接口
// 生成链路不依赖 Postgres/Redis，依赖异常时返回 degraded 而不是 503
// @Summary 就绪检查
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := readinessResponse{Status: "ok", Checks: make(map[string]*readinessCheck, len(names))}
	for _, name := range names {
		dep := h.deps[name]
		if dep == nil {
			resp.Checks[name] = &readinessCheck{Status: "disabled"}
			continue
		}

		start := time.Now()
		err := dep.HealthCheck(ctx)
		check := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			check.Status = "degraded"
			check.Error = err.Error()
			resp.Status = "degraded"
		}
		resp.Checks[name] = check
	}

	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
