package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kapu/customer-crm-go/internal/util"
)

// LoggerMiddleware: slog 기반 HTTP 접속 로깅 미들웨어
// skipPaths는 다음 형식을 지원합니다:
//   - "/exact/path": 정확히 일치하는 경로 스킵
//   - "*/suffix": 해당 suffix로 끝나는 경로 스킵
//   - "/prefix*": 해당 prefix로 시작하는 경로 스킵
func LoggerMiddleware(ctx context.Context, logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	// 스킵 설정 분류
	exactSkip := make(map[string]bool)
	var prefixSkip, suffixSkip []string

	for _, pattern := range skipPaths {
		switch {
		case len(pattern) > 1 && pattern[0] == '*':
			// *suffix 패턴
			suffixSkip = append(suffixSkip, pattern[1:])
		case len(pattern) > 1 && pattern[len(pattern)-1] == '*':
			// prefix* 패턴
			prefixSkip = append(prefixSkip, pattern[:len(pattern)-1])
		default:
			// 정확한 경로 매칭
			exactSkip[pattern] = true
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// 스킵 경로 확인
		if shouldSkipPath(path, exactSkip, prefixSkip, suffixSkip) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()

		// 레벨 결정: 정상 요청은 DEBUG, 4xx는 WARN, 5xx는 ERROR
		level := slog.LevelDebug
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		// 효율화: 해당 레벨이 활성화 상태인지 먼저 확인
		if !logger.Enabled(ctx, level) {
			return
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.String("ip", c.ClientIP()),
			slog.String("ua", util.TruncateString(c.Request.UserAgent(), 80)),
		}

		// 느린 요청(100ms+)만 레이턴시 포함
		if latency >= 100*time.Millisecond {
			attrs = append(attrs, slog.Duration("latency", latency))
		}

		logger.LogAttrs(ctx, level, "HTTP", attrs...)
	}
}

// shouldSkipPath: 경로가 스킵 대상인지 확인합니다.
func shouldSkipPath(path string, exactSkip map[string]bool, prefixSkip, suffixSkip []string) bool {
	if exactSkip[path] {
		return true
	}

	for _, prefix := range prefixSkip {
		if len(path) >= len(prefix) && path[:len(prefix)] == prefix {
			return true
		}
	}

	for _, suffix := range suffixSkip {
		if len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix {
			return true
		}
	}

	return false
}
