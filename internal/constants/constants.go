// Package constants: 서비스 전역에서 사용하는 고정 설정값 모음.
package constants

import "time"

// CacheTTL 는 패키지 변수다.
var CacheTTL = struct {
	ClientDetail time.Duration
	ClientList   time.Duration
	Pipeline     time.Duration
}{
	ClientDetail: 10 * time.Minute, // 10분 - 고객 상세 집계
	ClientList:   2 * time.Minute,  // 2분 - 고객 목록 (검색 결과 포함)
	Pipeline:     5 * time.Minute,  // 5분 - 파이프라인 보드
}

// ClientCacheDefaults 는 패키지 변수다.
var ClientCacheDefaults = struct {
	WarmUpLimit         int
	WarmUpMaxGoroutines int
}{
	WarmUpLimit:         100, // 최근 수정된 고객 N명 프리로드
	WarmUpMaxGoroutines: 10,
}

// DatabaseDefaults 는 패키지 변수다.
var DatabaseDefaults = struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}{
	Host:     "localhost",
	Port:     5432,
	User:     "crm",
	Password: "crm",
	Database: "customer_crm",
	SSLMode:  "disable",
}

// DatabaseConfig 는 패키지 변수다.
var DatabaseConfig = struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 30 * time.Minute,
}

// ValkeyConfig 는 패키지 변수다.
var ValkeyConfig = struct {
	ReadyTimeout      time.Duration
	BlockingPoolSize  int
	PipelineMultiplex int
	ConnWriteTimeout  time.Duration
	DialTimeout       time.Duration
}{
	ReadyTimeout:      5 * time.Second,
	BlockingPoolSize:  100,
	PipelineMultiplex: 4,
	ConnWriteTimeout:  3 * time.Second,
	DialTimeout:       3 * time.Second,
}

// RequestTimeout 는 패키지 변수다.
var RequestTimeout = struct {
	DatabasePing time.Duration
	APIRequest   time.Duration
	CacheWrite   time.Duration
}{
	DatabasePing: 5 * time.Second,
	APIRequest:   10 * time.Second,
	CacheWrite:   3 * time.Second,
}

// ServerTimeout 는 패키지 변수다.
var ServerTimeout = struct {
	ReadHeader     time.Duration
	Read           time.Duration
	Write          time.Duration
	Idle           time.Duration
	MaxHeaderBytes int
}{
	ReadHeader:     5 * time.Second,
	Read:           15 * time.Second,
	Write:          30 * time.Second,
	Idle:           60 * time.Second,
	MaxHeaderBytes: 1 << 20,
}

// ServerConfig 는 패키지 변수다.
var ServerConfig = struct {
	TrustedProxies []string
}{
	TrustedProxies: []string{"127.0.0.1", "::1"},
}

// CORSConfig 는 패키지 변수다.
var CORSConfig = struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}{
	AllowOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
	AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-Session-Token"},
}

// SessionConfig 는 패키지 변수다.
var SessionConfig = struct {
	TTL time.Duration
}{
	TTL: 12 * time.Hour,
}

// AuthConfig 는 패키지 변수다.
var AuthConfig = struct {
	MaxLoginFailures int
	LockDuration     time.Duration
	LoginRatePerSec  float64
	LoginRateBurst   int
}{
	MaxLoginFailures: 5,                // 5회 실패 시 계정 잠금
	LockDuration:     15 * time.Minute, // 잠금 유지 시간
	LoginRatePerSec:  1,                // IP당 초당 로그인 시도
	LoginRateBurst:   5,
}

// PaginationConfig 는 패키지 변수다.
var PaginationConfig = struct {
	DefaultPageSize int
	MaxPageSize     int
}{
	DefaultPageSize: 20,
	MaxPageSize:     100,
}

// AppTimeout 는 패키지 변수다.
var AppTimeout = struct {
	Build    time.Duration
	Shutdown time.Duration
}{
	Build:    30 * time.Second,
	Shutdown: 10 * time.Second,
}
