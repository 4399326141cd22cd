package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tafa/dashboard/internal/infrastructure/cache"
	"github.com/tafa/dashboard/internal/infrastructure/scheduler"
)

func TestNewSystemHandler(t *testing.T) {
	h := NewSystemHandler("dashboard", "1.2.0")
	assert.NotNil(t, h)
	assert.False(t, h.startTime.IsZero())
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("Cooperative Dashboard", "1.2.0")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Cooperative Dashboard", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
	assert.NotContains(t, data, "cache")
	assert.NotContains(t, data, "refresh")
}

func TestSystemHandler_GetSystemInfo_CacheAndRefresh(t *testing.T) {
	lastRun := time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)
	h := NewSystemHandler("dashboard", "1.2.0",
		WithCacheStats(func() cache.TieredStats {
			return cache.TieredStats{L1Hits: 7, L1Misses: 2, L2Hits: 1, L2Misses: 1}
		}),
		WithRefreshStatus(func() scheduler.Status {
			return scheduler.Status{Running: true, Runs: 3, LastRunAt: lastRun, LastError: errors.New("bucket unreachable")}
		}),
	)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/info", nil)

	h.GetSystemInfo(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})

	stats, ok := data["cache"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 7.0, stats["l1_hits"])
	assert.Equal(t, 1.0, stats["l2_misses"])

	refresh, ok := data["refresh"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, refresh["running"])
	assert.Equal(t, 3.0, refresh["runs"])
	assert.Equal(t, "2025-04-01T06:00:00Z", refresh["last_run_at"])
	assert.Equal(t, "bucket unreachable", refresh["last_error"])
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("dashboard", "dev")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/system/ping", nil)

	h.Ping(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, "pong", data["message"])
	_, err := time.Parse(time.RFC3339, data["timestamp"].(string))
	assert.NoError(t, err)
}
