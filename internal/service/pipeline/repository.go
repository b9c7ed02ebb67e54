// Package pipeline: 영업 기회 파이프라인 저장소와 서비스.
package pipeline

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/pkg/errors"
)

// opportunityModel: opportunities 테이블 매핑
type opportunityModel struct {
	ID              string    `gorm:"primaryKey;column:id"`
	ClientID        string    `gorm:"column:client_id;index"`
	AgentID         string    `gorm:"column:agent_id;index"`
	ProductCategory string    `gorm:"column:product_category"`
	ExpectedPremium int64     `gorm:"column:expected_premium"`
	Stage           string    `gorm:"column:stage"`
	Memo            string    `gorm:"column:memo"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (opportunityModel) TableName() string { return "opportunities" }

// historyModel: stage_histories 테이블 매핑
type historyModel struct {
	ID            string    `gorm:"primaryKey;column:id"`
	OpportunityID string    `gorm:"column:opportunity_id;index"`
	FromStage     string    `gorm:"column:from_stage"`
	ToStage       string    `gorm:"column:to_stage"`
	ChangedAt     time.Time `gorm:"column:changed_at"`
}

func (historyModel) TableName() string { return "stage_histories" }

// Repository: 영업 기회와 단계 전이 이력에 대한 데이터베이스 접근 저장소
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRepository: 새로운 파이프라인 저장소를 생성합니다.
func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema: 파이프라인 테이블들이 없으면 생성합니다.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS opportunities (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			product_category TEXT NOT NULL,
			expected_premium BIGINT NOT NULL DEFAULT 0,
			stage TEXT NOT NULL,
			memo TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_agent_id ON opportunities (agent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_client_id ON opportunities (client_id)`,
		`CREATE TABLE IF NOT EXISTS stage_histories (
			id TEXT PRIMARY KEY,
			opportunity_id TEXT NOT NULL,
			from_stage TEXT,
			to_stage TEXT NOT NULL,
			changed_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stage_histories_opportunity_id ON stage_histories (opportunity_id)`,
	}

	for _, stmt := range statements {
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create pipeline schema: %w", err)
		}
	}
	return nil
}

// ClientOwnedBy: 고객이 해당 설계사 소유인지 확인합니다.
func (r *Repository) ClientOwnedBy(ctx context.Context, agentID, clientID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("clients").
		Where("id = ? AND agent_id = ?", clientID, agentID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check client ownership: %w", err)
	}
	return count > 0, nil
}

// CreateWithHistory: 영업 기회와 최초 단계 이력을 한 트랜잭션으로 저장합니다.
func (r *Repository) CreateWithHistory(ctx context.Context, opp *domain.Opportunity, entry *domain.StageHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(fromOpportunity(opp)).Error; err != nil {
			return fmt.Errorf("failed to insert opportunity: %w", err)
		}
		if err := tx.Create(fromHistory(entry)).Error; err != nil {
			return fmt.Errorf("failed to insert stage history: %w", err)
		}
		return nil
	})
}

// FindByID: 영업 기회를 ID로 조회합니다.
func (r *Repository) FindByID(ctx context.Context, agentID, id string) (*domain.Opportunity, error) {
	var m opportunityModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND agent_id = ?", id, agentID).
		First(&m).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewNotFoundError("opportunity", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunity: %w", err)
	}
	return toOpportunity(&m), nil
}

// ListByAgent: 설계사의 전체 영업 기회를 조회합니다. (보드 구성용)
func (r *Repository) ListByAgent(ctx context.Context, agentID string) ([]domain.Opportunity, error) {
	var models []opportunityModel
	if err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("updated_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	opps := make([]domain.Opportunity, len(models))
	for i := range models {
		opps[i] = *toOpportunity(&models[i])
	}
	return opps, nil
}

// ListByClient: 고객에게 연결된 영업 기회를 조회합니다.
func (r *Repository) ListByClient(ctx context.Context, agentID, clientID string) ([]domain.Opportunity, error) {
	var models []opportunityModel
	if err := r.db.WithContext(ctx).
		Where("agent_id = ? AND client_id = ?", agentID, clientID).
		Order("updated_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list client opportunities: %w", err)
	}

	opps := make([]domain.Opportunity, len(models))
	for i := range models {
		opps[i] = *toOpportunity(&models[i])
	}
	return opps, nil
}

// TransitionStage: 단계를 변경하고 전이 이력을 한 트랜잭션으로 기록합니다.
func (r *Repository) TransitionStage(ctx context.Context, opp *domain.Opportunity, entry *domain.StageHistoryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&opportunityModel{}).
			Where("id = ? AND agent_id = ?", opp.ID, opp.AgentID).
			Updates(map[string]any{
				"stage":      string(opp.Stage),
				"updated_at": opp.UpdatedAt,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update opportunity stage: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("opportunity", opp.ID)
		}
		if err := tx.Create(fromHistory(entry)).Error; err != nil {
			return fmt.Errorf("failed to insert stage history: %w", err)
		}
		return nil
	})
}

// History: 영업 기회의 단계 전이 이력을 시간순으로 조회합니다.
func (r *Repository) History(ctx context.Context, opportunityID string) ([]domain.StageHistoryEntry, error) {
	var models []historyModel
	if err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("changed_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to query stage history: %w", err)
	}

	entries := make([]domain.StageHistoryEntry, len(models))
	for i, m := range models {
		entries[i] = domain.StageHistoryEntry{
			ID:            m.ID,
			OpportunityID: m.OpportunityID,
			FromStage:     domain.OpportunityStage(m.FromStage),
			ToStage:       domain.OpportunityStage(m.ToStage),
			ChangedAt:     m.ChangedAt,
		}
	}
	return entries, nil
}

func fromOpportunity(o *domain.Opportunity) *opportunityModel {
	return &opportunityModel{
		ID:              o.ID,
		ClientID:        o.ClientID,
		AgentID:         o.AgentID,
		ProductCategory: o.ProductCategory,
		ExpectedPremium: o.ExpectedPremium,
		Stage:           string(o.Stage),
		Memo:            o.Memo,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOpportunity(m *opportunityModel) *domain.Opportunity {
	stage := domain.OpportunityStage(m.Stage)
	return &domain.Opportunity{
		ID:              m.ID,
		ClientID:        m.ClientID,
		AgentID:         m.AgentID,
		ProductCategory: m.ProductCategory,
		ExpectedPremium: m.ExpectedPremium,
		Stage:           stage,
		StageLabel:      stage.Label(),
		Memo:            m.Memo,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func fromHistory(e *domain.StageHistoryEntry) *historyModel {
	return &historyModel{
		ID:            e.ID,
		OpportunityID: e.OpportunityID,
		FromStage:     string(e.FromStage),
		ToStage:       string(e.ToStage),
		ChangedAt:     e.ChangedAt,
	}
}
