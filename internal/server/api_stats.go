package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetSystemStats: GET /api/system
// 서버 리소스 상태, 가동 시간, 캐시 연결 상태를 반환한다.
func (h *APIHandler) GetSystemStats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.systemStats.GetCurrentStats(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	cacheStatus := "ok"
	if h.valkeyCache == nil {
		cacheStatus = "disabled"
	} else if err := h.valkeyCache.Ping(ctx); err != nil {
		cacheStatus = "unreachable"
	}

	dbStatus := "ok"
	if h.db == nil {
		dbStatus = "disabled"
	} else if err := h.db.Ping(ctx); err != nil {
		dbStatus = "unreachable"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
		"cache":   cacheStatus,
		"db":      dbStatus,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// GetActivityLogs: GET /api/activity?limit=
// 현재 설계사의 최근 활동 로그를 반환한다.
func (h *APIHandler) GetActivityLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	logs, err := h.activity.GetRecentLogs(currentAgentID(c), limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "활동 로그를 읽지 못했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"logs":    logs,
		"count":   len(logs),
	})
}
