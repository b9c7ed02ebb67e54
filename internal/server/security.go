package server

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware 보안 헤더 추가 미들웨어
// 고객 상세 응답에 마스킹된 주민번호 등 개인정보가 실리므로
// 중간 캐시/브라우저 캐시에 남지 않도록 no-store를 함께 내린다.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		// CSP는 SPA 환경에서 제한적으로 적용
		c.Header("Content-Security-Policy", "frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
