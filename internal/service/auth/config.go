package auth

import (
	"time"

	"github.com/kapu/customer-crm-go/internal/constants"
)

// Config: 인증 서비스 동작 파라미터
type Config struct {
	// SessionTTL: 세션 토큰 유효 기간
	SessionTTL time.Duration
	// ResetTokenTTL: 비밀번호 재설정 토큰 유효 기간
	ResetTokenTTL time.Duration

	// LoginRateLimitPerMinute: IP 기준 로그인 요청 제한 (분당)
	LoginRateLimitPerMinute int64

	// LoginFailLimit: 이메일 기준 연속 실패 허용 횟수
	LoginFailLimit int64
	// LoginFailWindow: 실패 카운트 집계 윈도우
	LoginFailWindow time.Duration
	// LoginLockDuration: 계정 잠금 지속 시간
	LoginLockDuration time.Duration

	// AgentSessionsTTL: 설계사별 세션 인덱스(Set) TTL
	AgentSessionsTTL time.Duration
}

func DefaultConfig() Config {
	sessionTTL := constants.SessionConfig.TTL
	return Config{
		SessionTTL:              sessionTTL,
		ResetTokenTTL:           60 * time.Minute,
		LoginRateLimitPerMinute: 30,
		LoginFailLimit:          int64(constants.AuthConfig.MaxLoginFailures),
		LoginFailWindow:         15 * time.Minute,
		LoginLockDuration:       constants.AuthConfig.LockDuration,
		AgentSessionsTTL:        sessionTTL + (24 * time.Hour),
	}
}
