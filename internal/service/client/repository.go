// Package client: 고객 프로필 저장소와 고객 상세 서비스.
package client

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/pkg/errors"
)

// Model: clients 테이블과 매핑되는 GORM 모델입니다.
type Model struct {
	ID                string         `gorm:"primaryKey;column:id"`
	AgentID           string         `gorm:"column:agent_id;index"`
	FullName          string         `gorm:"column:full_name"`
	Phone             string         `gorm:"column:phone"`
	Email             string         `gorm:"column:email"`
	Address           string         `gorm:"column:address"`
	Occupation        string         `gorm:"column:occupation"`
	BirthDate         *time.Time     `gorm:"column:birth_date"`
	Gender            string         `gorm:"column:gender"`
	EncodedID         string         `gorm:"column:encoded_id"` // 마스킹된 주민번호 표현만 저장
	HeightCm          string         `gorm:"column:height_cm"`
	WeightKg          string         `gorm:"column:weight_kg"`
	Notes             string         `gorm:"column:notes"`
	Importance        string         `gorm:"column:importance"`
	HasDrivingLicense bool           `gorm:"column:has_driving_license"`
	Tags              datatypes.JSON `gorm:"column:tags;type:jsonb"`
	CreatedAt         time.Time      `gorm:"column:created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at"`
}

// TableName: GORM 모델이 매핑될 데이터베이스 테이블 이름을 반환한다. ("clients")
func (Model) TableName() string {
	return "clients"
}

// Repository: 고객 프로필에 대한 데이터베이스 접근을 담당하는 저장소
// 모든 조회/변경은 agent_id 소유권 필터를 통과해야 한다.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRepository: 새로운 고객 저장소를 생성합니다.
func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema: clients 테이블이 없으면 생성합니다.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec(`
		CREATE TABLE IF NOT EXISTS clients (
			id TEXT PRIMARY KEY,
			agent_id TEXT NOT NULL,
			full_name TEXT NOT NULL,
			phone TEXT,
			email TEXT,
			address TEXT,
			occupation TEXT,
			birth_date TIMESTAMP,
			gender TEXT,
			encoded_id TEXT,
			height_cm TEXT,
			weight_kg TEXT,
			notes TEXT,
			importance TEXT NOT NULL,
			has_driving_license BOOLEAN NOT NULL DEFAULT FALSE,
			tags TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`).Error; err != nil {
		return fmt.Errorf("failed to create clients table: %w", err)
	}

	if err := r.db.WithContext(ctx).Exec(`
		CREATE INDEX IF NOT EXISTS idx_clients_agent_id ON clients (agent_id)
	`).Error; err != nil {
		return fmt.Errorf("failed to create clients index: %w", err)
	}

	return nil
}

// Create: 고객을 생성합니다.
func (r *Repository) Create(ctx context.Context, c *domain.Client) error {
	model, err := fromDomain(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	return nil
}

// FindByID: 고객을 ID로 조회합니다. 소유 설계사가 다르면 NotFoundError.
func (r *Repository) FindByID(ctx context.Context, agentID, id string) (*domain.Client, error) {
	var model Model
	err := r.db.WithContext(ctx).
		Where("id = ? AND agent_id = ?", id, agentID).
		First(&model).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.NewNotFoundError("client", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query client: %w", err)
	}
	return toDomain(&model)
}

// List: 설계사의 고객 목록을 조회합니다. q가 있으면 이름/연락처로 검색한다.
func (r *Repository) List(ctx context.Context, agentID, q string, limit, offset int) ([]domain.Client, error) {
	query := r.db.WithContext(ctx).
		Model(&Model{}).
		Where("agent_id = ?", agentID)

	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("full_name LIKE ? OR phone LIKE ?", pattern, pattern)
	}

	var models []Model
	if err := query.
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	clients := make([]domain.Client, 0, len(models))
	for i := range models {
		c, err := toDomain(&models[i])
		if err != nil {
			r.logger.Warn("Failed to convert client row", slog.String("id", models[i].ID), slog.Any("error", err))
			continue
		}
		clients = append(clients, *c)
	}
	return clients, nil
}

// RecentIDs: 최근 수정된 고객 ID 목록을 반환합니다. (캐시 워밍업용)
func (r *Repository) RecentIDs(ctx context.Context, limit int) ([]idPair, error) {
	var rows []idPair
	if err := r.db.WithContext(ctx).
		Model(&Model{}).
		Select("id", "agent_id").
		Order("updated_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query recent client ids: %w", err)
	}
	return rows, nil
}

// idPair: 워밍업 조회 결과 (고객 ID + 소유 설계사 ID)
type idPair struct {
	ID      string `gorm:"column:id"`
	AgentID string `gorm:"column:agent_id"`
}

// Update: 고객 프로필을 갱신합니다. 소유권이 없으면 NotFoundError.
func (r *Repository) Update(ctx context.Context, c *domain.Client) error {
	model, err := fromDomain(c)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&Model{}).
		Where("id = ? AND agent_id = ?", c.ID, c.AgentID).
		Updates(map[string]any{
			"full_name":           model.FullName,
			"phone":               model.Phone,
			"email":               model.Email,
			"address":             model.Address,
			"occupation":          model.Occupation,
			"birth_date":          model.BirthDate,
			"gender":              model.Gender,
			"encoded_id":          model.EncodedID,
			"height_cm":           model.HeightCm,
			"weight_kg":           model.WeightKg,
			"notes":               model.Notes,
			"importance":          model.Importance,
			"has_driving_license": model.HasDrivingLicense,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("client", c.ID)
	}
	return nil
}

// ReplaceTags: 고객의 태그 목록을 통째로 교체합니다.
func (r *Repository) ReplaceTags(ctx context.Context, agentID, id string, tags []string, updatedAt time.Time) error {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&Model{}).
		Where("id = ? AND agent_id = ?", id, agentID).
		Updates(map[string]any{
			"tags":       datatypes.JSON(data),
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to replace tags: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("client", id)
	}
	return nil
}

// Delete: 고객을 삭제합니다. 소유권이 없으면 NotFoundError.
func (r *Repository) Delete(ctx context.Context, agentID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND agent_id = ?", id, agentID).
		Delete(&Model{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("client", id)
	}
	return nil
}

func fromDomain(c *domain.Client) (*Model, error) {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}

	return &Model{
		ID:                c.ID,
		AgentID:           c.AgentID,
		FullName:          c.FullName,
		Phone:             c.Phone,
		Email:             c.Email,
		Address:           c.Address,
		Occupation:        c.Occupation,
		BirthDate:         c.BirthDate,
		Gender:            string(c.Gender),
		EncodedID:         c.EncodedID,
		HeightCm:          c.HeightCm,
		WeightKg:          c.WeightKg,
		Notes:             c.Notes,
		Importance:        string(c.Importance),
		HasDrivingLicense: c.HasDrivingLicense,
		Tags:              datatypes.JSON(data),
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}, nil
}

func toDomain(m *Model) (*domain.Client, error) {
	var tags []string
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}

	return &domain.Client{
		ID:                m.ID,
		AgentID:           m.AgentID,
		FullName:          m.FullName,
		Phone:             m.Phone,
		Email:             m.Email,
		Address:           m.Address,
		Occupation:        m.Occupation,
		BirthDate:         m.BirthDate,
		Gender:            domain.Gender(m.Gender),
		EncodedID:         m.EncodedID,
		HeightCm:          m.HeightCm,
		WeightKg:          m.WeightKg,
		Notes:             m.Notes,
		Importance:        domain.Importance(m.Importance),
		HasDrivingLicense: m.HasDrivingLicense,
		Tags:              tags,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}
