package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/internal/service/cache"
)

// DetailCache: 고객 상세/목록 응답 캐시
// 목록은 설계사별 버전 키를 섞어서 캐싱하고, 쓰기 시 버전만 올려 일괄 무효화한다.
type DetailCache struct {
	cache  *cache.Service
	logger *slog.Logger
}

// NewDetailCache: 새로운 고객 캐시를 생성합니다.
func NewDetailCache(cacheService *cache.Service, logger *slog.Logger) *DetailCache {
	return &DetailCache{
		cache:  cacheService,
		logger: logger,
	}
}

func detailKey(agentID, clientID string) string {
	return fmt.Sprintf("crm:client:detail:%s:%s", agentID, clientID)
}

func listVersionKey(agentID string) string {
	return fmt.Sprintf("crm:clients:%s:ver", agentID)
}

func listKey(agentID string, version int64, q string, limit, offset int) string {
	return fmt.Sprintf("crm:clients:%s:v%d:q=%s:l=%d:o=%d", agentID, version, q, limit, offset)
}

// GetDetail: 캐시된 상세 집계를 조회합니다.
func (dc *DetailCache) GetDetail(ctx context.Context, agentID, clientID string) (*domain.ClientDetail, bool) {
	var detail domain.ClientDetail
	found, err := dc.cache.Get(ctx, detailKey(agentID, clientID), &detail)
	if err != nil {
		dc.logger.Warn("Detail cache read failed", slog.String("clientId", clientID), slog.Any("error", err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &detail, true
}

// SetDetail: 상세 집계를 캐시에 저장합니다. 실패해도 치명적이지 않다.
func (dc *DetailCache) SetDetail(ctx context.Context, agentID, clientID string, detail *domain.ClientDetail) {
	if err := dc.cache.Set(ctx, detailKey(agentID, clientID), detail, constants.CacheTTL.ClientDetail); err != nil {
		dc.logger.Warn("Detail cache write failed", slog.String("clientId", clientID), slog.Any("error", err))
	}
}

// InvalidateDetail: 상세 캐시 항목을 제거합니다.
func (dc *DetailCache) InvalidateDetail(ctx context.Context, agentID, clientID string) {
	if err := dc.cache.Delete(ctx, detailKey(agentID, clientID)); err != nil {
		dc.logger.Warn("Detail cache invalidation failed", slog.String("clientId", clientID), slog.Any("error", err))
	}
}

// GetList: 캐시된 목록을 조회합니다. 현재 버전 키에 묶인 항목만 유효하다.
func (dc *DetailCache) GetList(ctx context.Context, agentID, q string, limit, offset int) ([]domain.Client, bool) {
	version, ok := dc.listVersion(ctx, agentID)
	if !ok {
		return nil, false
	}

	var clients []domain.Client
	found, err := dc.cache.Get(ctx, listKey(agentID, version, q, limit, offset), &clients)
	if err != nil || !found {
		return nil, false
	}
	return clients, true
}

// SetList: 목록을 현재 버전 키에 저장합니다.
func (dc *DetailCache) SetList(ctx context.Context, agentID, q string, limit, offset int, clients []domain.Client) {
	version, ok := dc.listVersion(ctx, agentID)
	if !ok {
		return
	}
	if err := dc.cache.Set(ctx, listKey(agentID, version, q, limit, offset), clients, constants.CacheTTL.ClientList); err != nil {
		dc.logger.Warn("List cache write failed", slog.String("agentId", agentID), slog.Any("error", err))
	}
}

// BumpListVersion: 목록 버전을 올려 이전 버전의 캐시 항목을 전부 무효화합니다.
// 이전 항목은 삭제하지 않고 TTL 만료에 맡긴다.
func (dc *DetailCache) BumpListVersion(ctx context.Context, agentID string) {
	if _, err := dc.cache.Incr(ctx, listVersionKey(agentID)); err != nil {
		dc.logger.Warn("List version bump failed", slog.String("agentId", agentID), slog.Any("error", err))
	}
}

// listVersion: 설계사의 현재 목록 버전을 조회합니다. 키가 없으면 0.
func (dc *DetailCache) listVersion(ctx context.Context, agentID string) (int64, bool) {
	var version int64
	found, err := dc.cache.Get(ctx, listVersionKey(agentID), &version)
	if err != nil {
		return 0, false
	}
	if !found {
		return 0, true
	}
	return version, true
}

// WarmUp: 고객 목록을 병렬로 순회하며 상세 캐시를 미리 채웁니다.
func (dc *DetailCache) WarmUp(ctx context.Context, pairs []idPair, load func(ctx context.Context, agentID, clientID string) error) {
	if len(pairs) == 0 {
		return
	}

	p := pool.New().
		WithMaxGoroutines(constants.ClientCacheDefaults.WarmUpMaxGoroutines).
		WithContext(ctx)

	for _, pair := range pairs {
		p.Go(func(ctx context.Context) error {
			if err := load(ctx, pair.AgentID, pair.ID); err != nil {
				dc.logger.Warn("Cache warm-up entry failed",
					slog.String("clientId", pair.ID),
					slog.Any("error", err),
				)
			}
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		dc.logger.Warn("Cache warm-up interrupted", slog.Any("error", err))
		return
	}
	dc.logger.Info("Client detail cache warmed up", slog.Int("count", len(pairs)))
}
