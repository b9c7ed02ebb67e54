// Package server: Gin 기반 HTTP 핸들러와 미들웨어.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/kapu/customer-crm-go/internal/service/activity"
	"github.com/kapu/customer-crm-go/internal/service/cache"
	"github.com/kapu/customer-crm-go/internal/service/client"
	"github.com/kapu/customer-crm-go/internal/service/consult"
	"github.com/kapu/customer-crm-go/internal/service/pipeline"
	"github.com/kapu/customer-crm-go/internal/service/system"
)

// DBPinger: 시스템 상태 엔드포인트가 DB 연결 상태를 확인할 때 사용한다.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// APIHandler: CRM API 요청을 처리하는 핸들러입니다.
// 핸들러 메서드는 도메인별 파일로 분리됨:
//   - api_client.go: 고객 프로필 CRUD + 상세 집계 + 태그
//   - api_consult.go: 상담/병력/점검 목적/관심사/동반자 탭
//   - api_opportunity.go: 영업 기회 파이프라인
//   - api_identity.go: 주민번호 파싱 미리보기
//   - api_stats.go: 시스템 통계 + 활동 로그
type APIHandler struct {
	clients     *client.Service
	consults    *consult.Service
	pipelines   *pipeline.Service
	valkeyCache *cache.Service
	db          DBPinger
	activity    *activity.Logger
	systemStats *system.Collector
	logger      *slog.Logger
	startTime   time.Time
}

// NewAPIHandler: 새로운 API 핸들러를 생성합니다.
func NewAPIHandler(
	clients *client.Service,
	consults *consult.Service,
	pipelines *pipeline.Service,
	valkeyCache *cache.Service,
	db DBPinger,
	activityLogger *activity.Logger,
	systemSvc *system.Collector,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		clients:     clients,
		consults:    consults,
		pipelines:   pipelines,
		valkeyCache: valkeyCache,
		db:          db,
		activity:    activityLogger,
		systemStats: systemSvc,
		logger:      logger,
		startTime:   time.Now(),
	}
}
