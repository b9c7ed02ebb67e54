package server

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kapu/customer-crm-go/internal/constants"
)

// LoginRateLimiter: IP별 로그인 시도 제한
// 토큰 버킷으로 시도 속도를 제한하고, 연속 실패 시 일정 시간 잠근다.
type LoginRateLimiter struct {
	entries     map[string]*limiterEntry
	mu          sync.Mutex
	ratePerSec  rate.Limit
	burst       int
	maxFailures int
	lockout     time.Duration
}

type limiterEntry struct {
	limiter     *rate.Limiter
	failures    int
	lockedUntil time.Time
	lastSeen    time.Time
}

// NewLoginRateLimiter: 새 로그인 제한기를 생성합니다.
func NewLoginRateLimiter() *LoginRateLimiter {
	rl := &LoginRateLimiter{
		entries:     make(map[string]*limiterEntry),
		ratePerSec:  rate.Limit(constants.AuthConfig.LoginRatePerSec),
		burst:       constants.AuthConfig.LoginRateBurst,
		maxFailures: constants.AuthConfig.MaxLoginFailures,
		lockout:     constants.AuthConfig.LockDuration,
	}

	// 주기적 정리 고루틴
	go rl.cleanupLoop()

	return rl
}

func (l *LoginRateLimiter) entry(ip string) *limiterEntry {
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.ratePerSec, l.burst)}
		l.entries[ip] = e
	}
	e.lastSeen = time.Now()
	return e
}

// IsAllowed: IP의 로그인 시도 허용 여부를 확인합니다.
// 거부 시 두 번째 반환값은 재시도까지 남은 시간이다.
func (l *LoginRateLimiter) IsAllowed(ip string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entry(ip)
	now := time.Now()

	if now.Before(e.lockedUntil) {
		return false, e.lockedUntil.Sub(now)
	}

	if !e.limiter.Allow() {
		return false, time.Second
	}
	return true, 0
}

// RecordFailure: 로그인 실패를 기록하고 누적 실패 횟수를 반환합니다.
func (l *LoginRateLimiter) RecordFailure(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entry(ip)
	e.failures++
	if e.failures >= l.maxFailures {
		e.lockedUntil = time.Now().Add(l.lockout)
	}
	return e.failures
}

// RecordSuccess: 로그인 성공 시 기록을 초기화합니다.
func (l *LoginRateLimiter) RecordSuccess(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, ip)
}

// cleanupLoop: 만료된 기록을 주기적으로 정리합니다.
func (l *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.cleanup()
	}
}

func (l *LoginRateLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for ip, e := range l.entries {
		if now.Sub(e.lastSeen) > l.lockout+time.Hour && now.After(e.lockedUntil) {
			delete(l.entries, ip)
		}
	}
}
