package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/internal/service/cache"
	"github.com/kapu/customer-crm-go/internal/util"
	"github.com/kapu/customer-crm-go/pkg/errors"
)

// Board: 파이프라인 보드 응답. 단계별 칼럼으로 묶어 내려준다.
type Board struct {
	Columns []BoardColumn `json:"columns"`
}

// BoardColumn: 보드의 한 칼럼 (단계 + 해당 단계의 영업 기회들)
type BoardColumn struct {
	Stage           domain.OpportunityStage `json:"stage"`
	Label           string                  `json:"label"`
	Opportunities   []domain.Opportunity    `json:"opportunities"`
	PremiumSum      int64                   `json:"premiumSum"`      // 칼럼 내 월 보험료 합계 (원)
	PremiumSumLabel string                  `json:"premiumSumLabel"` // 만 단위 표시 문자열
}

// boardStages: 보드에 표시되는 칼럼 순서
var boardStages = []domain.OpportunityStage{
	domain.StageProspect,
	domain.StageConsult,
	domain.StageProposal,
	domain.StageContract,
	domain.StageClosedWon,
	domain.StageClosedLost,
}

// Service: 영업 기회 생성과 단계 전이를 담당하는 서비스
// 전이 규칙(한 단계 전진/후퇴, 실패 종결)은 도메인 단계 타입이 판정한다.
type Service struct {
	repo   *Repository
	cache  *cache.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewService: 새로운 파이프라인 서비스를 생성합니다. cache는 nil 허용. (테스트용)
func NewService(repo *Repository, cacheService *cache.Service, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cacheService,
		logger: logger,
		now:    util.NowKST,
	}
}

// WithClock: 현재 시각 함수를 교체합니다. (테스트용)
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create: 고객을 파이프라인에 올립니다. 시작 단계는 잠재 고객으로 고정이며
// 최초 단계 이력이 함께 기록된다.
func (s *Service) Create(ctx context.Context, agentID, clientID, productCategory string, expectedPremium int64, memo string) (*domain.Opportunity, error) {
	owned, err := s.repo.ClientOwnedBy(ctx, agentID, clientID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, errors.NewNotFoundError("client", clientID)
	}

	productCategory = strings.TrimSpace(productCategory)
	if productCategory == "" {
		return nil, errors.NewValidationError("상품 분류는 필수 입력입니다", "productCategory")
	}
	if expectedPremium < 0 {
		return nil, errors.NewValidationError("예상 보험료는 음수일 수 없습니다", "expectedPremium")
	}

	now := s.now()
	opp := &domain.Opportunity{
		ID:              uuid.NewString(),
		ClientID:        clientID,
		AgentID:         agentID,
		ProductCategory: productCategory,
		ExpectedPremium: expectedPremium,
		Stage:           domain.StageProspect,
		StageLabel:      domain.StageProspect.Label(),
		Memo:            memo,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	entry := &domain.StageHistoryEntry{
		ID:            uuid.NewString(),
		OpportunityID: opp.ID,
		ToStage:       domain.StageProspect,
		ChangedAt:     now,
	}

	if err := s.repo.CreateWithHistory(ctx, opp, entry); err != nil {
		return nil, err
	}

	s.invalidateBoard(ctx, agentID)
	s.logger.Info("Opportunity created",
		slog.String("opportunityId", opp.ID),
		slog.String("clientId", clientID),
		slog.String("category", productCategory),
	)
	return opp, nil
}

// Advance: 영업 기회를 다음 단계로 전진시킵니다.
func (s *Service) Advance(ctx context.Context, agentID, id string) (*domain.Opportunity, error) {
	return s.step(ctx, agentID, id, func(stage domain.OpportunityStage) (domain.OpportunityStage, bool) {
		return stage.Next()
	})
}

// Demote: 영업 기회를 이전 단계로 되돌립니다.
func (s *Service) Demote(ctx context.Context, agentID, id string) (*domain.Opportunity, error) {
	return s.step(ctx, agentID, id, func(stage domain.OpportunityStage) (domain.OpportunityStage, bool) {
		return stage.Prev()
	})
}

// MarkLost: 영업 기회를 실패로 종결합니다. 선형 단계 어디서든 허용된다.
func (s *Service) MarkLost(ctx context.Context, agentID, id string) (*domain.Opportunity, error) {
	return s.transitionTo(ctx, agentID, id, domain.StageClosedLost)
}

// TransitionTo: 명시적 목표 단계로 전이합니다. 전이 규칙을 위반하면 TransitionError.
func (s *Service) TransitionTo(ctx context.Context, agentID, id string, target domain.OpportunityStage) (*domain.Opportunity, error) {
	return s.transitionTo(ctx, agentID, id, target)
}

// Get: 영업 기회 하나를 조회합니다.
func (s *Service) Get(ctx context.Context, agentID, id string) (*domain.Opportunity, error) {
	return s.repo.FindByID(ctx, agentID, id)
}

// History: 영업 기회의 단계 전이 이력을 반환합니다.
func (s *Service) History(ctx context.Context, agentID, id string) ([]domain.StageHistoryEntry, error) {
	if _, err := s.repo.FindByID(ctx, agentID, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

// ListByClient: 고객에게 연결된 영업 기회들을 반환합니다.
func (s *Service) ListByClient(ctx context.Context, agentID, clientID string) ([]domain.Opportunity, error) {
	return s.repo.ListByClient(ctx, agentID, clientID)
}

// GetBoard: 설계사의 파이프라인 보드를 단계별 칼럼으로 구성해 반환합니다.
func (s *Service) GetBoard(ctx context.Context, agentID string) (*Board, error) {
	key := boardKey(agentID)
	if s.cache != nil {
		var cached Board
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	opps, err := s.repo.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}

	byStage := make(map[domain.OpportunityStage][]domain.Opportunity, len(boardStages))
	for _, opp := range opps {
		byStage[opp.Stage] = append(byStage[opp.Stage], opp)
	}

	board := &Board{Columns: make([]BoardColumn, 0, len(boardStages))}
	for _, stage := range boardStages {
		column := BoardColumn{
			Stage:         stage,
			Label:         stage.Label(),
			Opportunities: byStage[stage],
		}
		for _, opp := range column.Opportunities {
			column.PremiumSum += opp.ExpectedPremium
		}
		column.PremiumSumLabel = util.FormatKoreanNumber(column.PremiumSum)
		if column.Opportunities == nil {
			column.Opportunities = []domain.Opportunity{}
		}
		board.Columns = append(board.Columns, column)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, board, constants.CacheTTL.Pipeline); err != nil {
			s.logger.Warn("Pipeline board cache write failed", slog.Any("error", err))
		}
	}
	return board, nil
}

// step: Next/Prev 규칙으로 한 단계 이동시킨다.
func (s *Service) step(ctx context.Context, agentID, id string, move func(domain.OpportunityStage) (domain.OpportunityStage, bool)) (*domain.Opportunity, error) {
	opp, err := s.repo.FindByID(ctx, agentID, id)
	if err != nil {
		return nil, err
	}

	target, ok := move(opp.Stage)
	if !ok {
		return nil, errors.NewTransitionError(string(opp.Stage), "")
	}
	return s.applyTransition(ctx, opp, target)
}

func (s *Service) transitionTo(ctx context.Context, agentID, id string, target domain.OpportunityStage) (*domain.Opportunity, error) {
	opp, err := s.repo.FindByID(ctx, agentID, id)
	if err != nil {
		return nil, err
	}
	if !opp.Stage.CanTransitionTo(target) {
		return nil, errors.NewTransitionError(string(opp.Stage), string(target))
	}
	return s.applyTransition(ctx, opp, target)
}

func (s *Service) applyTransition(ctx context.Context, opp *domain.Opportunity, target domain.OpportunityStage) (*domain.Opportunity, error) {
	now := s.now()
	from := opp.Stage
	opp.Stage = target
	opp.StageLabel = target.Label()
	opp.UpdatedAt = now

	entry := &domain.StageHistoryEntry{
		ID:            uuid.NewString(),
		OpportunityID: opp.ID,
		FromStage:     from,
		ToStage:       target,
		ChangedAt:     now,
	}
	if err := s.repo.TransitionStage(ctx, opp, entry); err != nil {
		return nil, err
	}

	s.invalidateBoard(ctx, opp.AgentID)
	s.logger.Info("Opportunity stage changed",
		slog.String("opportunityId", opp.ID),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
	)
	return opp, nil
}

func boardKey(agentID string) string {
	return fmt.Sprintf("crm:pipeline:board:%s", agentID)
}

func (s *Service) invalidateBoard(ctx context.Context, agentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, boardKey(agentID)); err != nil {
		s.logger.Warn("Pipeline board cache invalidation failed", slog.Any("error", err))
	}
}
