// Package health: /health 엔드포인트 응답 페이로드.
package health

import (
	"runtime"
	"sync"
	"time"
)

var (
	startTime time.Time
	version   = "dev"
	initOnce  sync.Once
)

// Init: 서비스 시작 시 한 번 호출하여 버전과 기동 시각을 기록한다.
func Init(v string) {
	initOnce.Do(func() {
		startTime = time.Now()
		if v != "" {
			version = v
		}
	})
}

// Response: /health 엔드포인트 표준 응답
type Response struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Goroutines int    `json:"goroutines"`
}

// Get: 현재 상태 반환
func Get() Response {
	return Response{
		Status:     "ok",
		Service:    "customer-crm",
		Version:    version,
		Uptime:     time.Since(startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}
}
