package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tafa/dashboard/internal/infrastructure/cache"
	"github.com/tafa/dashboard/internal/infrastructure/scheduler"
	"github.com/tafa/dashboard/internal/interfaces/http/dto"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name          string
	version       string
	startTime     time.Time
	cacheStats    func() cache.TieredStats
	refreshStatus func() scheduler.Status
}

// SystemOption is a functional option for SystemHandler
type SystemOption func(*SystemHandler)

// WithCacheStats reports the tiered cache counters on the info endpoint
func WithCacheStats(fn func() cache.TieredStats) SystemOption {
	return func(h *SystemHandler) {
		h.cacheStats = fn
	}
}

// WithRefreshStatus reports the periodic refresh state on the info endpoint
func WithRefreshStatus(fn func() scheduler.Status) SystemOption {
	return func(h *SystemHandler) {
		h.refreshStatus = fn
	}
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	GoVersion string             `json:"go_version"`
	Uptime    string             `json:"uptime"`
	Cache     *cache.TieredStats `json:"cache,omitempty"`
	Refresh   *RefreshInfo       `json:"refresh,omitempty"`
}

// RefreshInfo is the state of the periodic table refresh
type RefreshInfo struct {
	Running   bool   `json:"running"`
	Runs      int    `json:"runs"`
	LastRunAt string `json:"last_run_at,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

func newRefreshInfo(s scheduler.Status) *RefreshInfo {
	info := &RefreshInfo{Running: s.Running, Runs: s.Runs}
	if !s.LastRunAt.IsZero() {
		info.LastRunAt = s.LastRunAt.Format(time.RFC3339)
	}
	if s.LastError != nil {
		info.LastError = s.LastError.Error()
	}
	return info
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.cacheStats != nil {
		stats := h.cacheStats()
		info.Cache = &stats
	}
	if h.refreshStatus != nil {
		info.Refresh = newRefreshInfo(h.refreshStatus())
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping is a simple endpoint to check if the API is responsive
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}
