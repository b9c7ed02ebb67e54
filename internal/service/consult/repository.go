// Package consult: 고객 상세 탭(상담 기록/병력/점검 목적/관심사/동반자) 저장소와 서비스.
package consult

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

// noteModel: consult_notes 테이블 매핑
type noteModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	ClientID  string    `gorm:"column:client_id;index"`
	Title     string    `gorm:"column:title"`
	Content   string    `gorm:"column:content"`
	ConsultAt time.Time `gorm:"column:consult_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (noteModel) TableName() string { return "consult_notes" }

// medicalModel: medical_histories 테이블 매핑
type medicalModel struct {
	ID          string    `gorm:"primaryKey;column:id"`
	ClientID    string    `gorm:"column:client_id;index"`
	Condition   string    `gorm:"column:condition"`
	Treatment   string    `gorm:"column:treatment"`
	DiagnosedAt string    `gorm:"column:diagnosed_at"`
	IsOngoing   bool      `gorm:"column:is_ongoing"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (medicalModel) TableName() string { return "medical_histories" }

// checkupModel: checkup_purposes 테이블 매핑
type checkupModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	ClientID  string    `gorm:"column:client_id;index"`
	Purpose   string    `gorm:"column:purpose"`
	Detail    string    `gorm:"column:detail"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (checkupModel) TableName() string { return "checkup_purposes" }

// interestModel: interests 테이블 매핑
type interestModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	ClientID  string    `gorm:"column:client_id;index"`
	Topic     string    `gorm:"column:topic"`
	Memo      string    `gorm:"column:memo"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (interestModel) TableName() string { return "interests" }

// companionModel: companions 테이블 매핑
type companionModel struct {
	ID        string    `gorm:"primaryKey;column:id"`
	ClientID  string    `gorm:"column:client_id;index"`
	Name      string    `gorm:"column:name"`
	Relation  string    `gorm:"column:relation"`
	BirthYear int       `gorm:"column:birth_year"`
	Memo      string    `gorm:"column:memo"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (companionModel) TableName() string { return "companions" }

// Repository: 고객 하위 리소스 5종에 대한 데이터베이스 접근 저장소
// 모든 연산은 clients 테이블 조인 대신 선행 소유권 확인을 거친다.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewRepository: 새로운 하위 리소스 저장소를 생성합니다.
func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema: 하위 리소스 테이블들이 없으면 생성합니다.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS consult_notes (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT,
			consult_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_consult_notes_client_id ON consult_notes (client_id)`,
		`CREATE TABLE IF NOT EXISTS medical_histories (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			condition TEXT NOT NULL,
			treatment TEXT,
			diagnosed_at TEXT,
			is_ongoing BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_medical_histories_client_id ON medical_histories (client_id)`,
		`CREATE TABLE IF NOT EXISTS checkup_purposes (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			purpose TEXT NOT NULL,
			detail TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_checkup_purposes_client_id ON checkup_purposes (client_id)`,
		`CREATE TABLE IF NOT EXISTS interests (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			memo TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interests_client_id ON interests (client_id)`,
		`CREATE TABLE IF NOT EXISTS companions (
			id TEXT PRIMARY KEY,
			client_id TEXT NOT NULL,
			name TEXT NOT NULL,
			relation TEXT NOT NULL,
			birth_year INTEGER,
			memo TEXT,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_companions_client_id ON companions (client_id)`,
	}

	for _, stmt := range statements {
		if err := r.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create sub-resource schema: %w", err)
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

// Counts: 고객의 탭별 항목 수를 집계합니다.
func (r *Repository) Counts(ctx context.Context, clientID string) (domain.DetailCounts, error) {
	var counts domain.DetailCounts

	tables := []struct {
		name string
		dest *int64
	}{
		{"consult_notes", &counts.Notes},
		{"medical_histories", &counts.Medical},
		{"checkup_purposes", &counts.Checkups},
		{"interests", &counts.Interests},
		{"companions", &counts.Companions},
	}
	for _, tbl := range tables {
		if err := r.db.WithContext(ctx).
			Table(tbl.name).
			Where("client_id = ?", clientID).
			Count(tbl.dest).Error; err != nil {
			return domain.DetailCounts{}, fmt.Errorf("failed to count %s: %w", tbl.name, err)
		}
	}
	return counts, nil
}

// ListNotes: 고객의 상담 기록을 상담일 내림차순으로 조회합니다.
func (r *Repository) ListNotes(ctx context.Context, clientID string) ([]domain.ConsultNote, error) {
	var models []noteModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("consult_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list consult notes: %w", err)
	}

	notes := make([]domain.ConsultNote, len(models))
	for i, m := range models {
		notes[i] = domain.ConsultNote(m)
	}
	return notes, nil
}

// CreateNote: 상담 기록을 저장합니다.
func (r *Repository) CreateNote(ctx context.Context, note *domain.ConsultNote) error {
	m := noteModel(*note)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert consult note: %w", err)
	}
	return nil
}

// UpdateNote: 상담 기록을 갱신합니다.
func (r *Repository) UpdateNote(ctx context.Context, note *domain.ConsultNote) error {
	result := r.db.WithContext(ctx).
		Model(&noteModel{}).
		Where("id = ? AND client_id = ?", note.ID, note.ClientID).
		Updates(map[string]any{
			"title":      note.Title,
			"content":    note.Content,
			"consult_at": note.ConsultAt,
			"updated_at": note.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update consult note: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("note", note.ID)
	}
	return nil
}

// DeleteNote: 상담 기록을 삭제합니다.
func (r *Repository) DeleteNote(ctx context.Context, clientID, id string) error {
	return r.deleteByID(ctx, &noteModel{}, "note", clientID, id)
}

// GetNote: 상담 기록 하나를 조회합니다.
func (r *Repository) GetNote(ctx context.Context, clientID, id string) (*domain.ConsultNote, error) {
	var m noteModel
	if err := r.firstByID(ctx, &m, "note", clientID, id); err != nil {
		return nil, err
	}
	note := domain.ConsultNote(m)
	return &note, nil
}

// ListMedical: 고객의 병력을 최신 등록순으로 조회합니다.
func (r *Repository) ListMedical(ctx context.Context, clientID string) ([]domain.MedicalHistory, error) {
	var models []medicalModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list medical histories: %w", err)
	}

	items := make([]domain.MedicalHistory, len(models))
	for i, m := range models {
		items[i] = domain.MedicalHistory(m)
	}
	return items, nil
}

// CreateMedical: 병력을 저장합니다.
func (r *Repository) CreateMedical(ctx context.Context, item *domain.MedicalHistory) error {
	m := medicalModel(*item)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert medical history: %w", err)
	}
	return nil
}

// UpdateMedical: 병력을 갱신합니다.
func (r *Repository) UpdateMedical(ctx context.Context, item *domain.MedicalHistory) error {
	result := r.db.WithContext(ctx).
		Model(&medicalModel{}).
		Where("id = ? AND client_id = ?", item.ID, item.ClientID).
		Updates(map[string]any{
			"condition":    item.Condition,
			"treatment":    item.Treatment,
			"diagnosed_at": item.DiagnosedAt,
			"is_ongoing":   item.IsOngoing,
			"updated_at":   item.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update medical history: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("medical", item.ID)
	}
	return nil
}

// DeleteMedical: 병력을 삭제합니다.
func (r *Repository) DeleteMedical(ctx context.Context, clientID, id string) error {
	return r.deleteByID(ctx, &medicalModel{}, "medical", clientID, id)
}

// ListCheckups: 고객의 점검 목적을 조회합니다.
func (r *Repository) ListCheckups(ctx context.Context, clientID string) ([]domain.CheckupPurpose, error) {
	var models []checkupModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list checkup purposes: %w", err)
	}

	items := make([]domain.CheckupPurpose, len(models))
	for i, m := range models {
		items[i] = domain.CheckupPurpose(m)
	}
	return items, nil
}

// CreateCheckup: 점검 목적을 저장합니다.
func (r *Repository) CreateCheckup(ctx context.Context, item *domain.CheckupPurpose) error {
	m := checkupModel(*item)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert checkup purpose: %w", err)
	}
	return nil
}

// DeleteCheckup: 점검 목적을 삭제합니다.
func (r *Repository) DeleteCheckup(ctx context.Context, clientID, id string) error {
	return r.deleteByID(ctx, &checkupModel{}, "checkup", clientID, id)
}

// ListInterests: 고객의 관심사를 조회합니다.
func (r *Repository) ListInterests(ctx context.Context, clientID string) ([]domain.Interest, error) {
	var models []interestModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}

	items := make([]domain.Interest, len(models))
	for i, m := range models {
		items[i] = domain.Interest(m)
	}
	return items, nil
}

// CreateInterest: 관심사를 저장합니다.
func (r *Repository) CreateInterest(ctx context.Context, item *domain.Interest) error {
	m := interestModel(*item)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert interest: %w", err)
	}
	return nil
}

// DeleteInterest: 관심사를 삭제합니다.
func (r *Repository) DeleteInterest(ctx context.Context, clientID, id string) error {
	return r.deleteByID(ctx, &interestModel{}, "interest", clientID, id)
}

// ListCompanions: 고객의 동반 가입 대상을 조회합니다.
func (r *Repository) ListCompanions(ctx context.Context, clientID string) ([]domain.Companion, error) {
	var models []companionModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list companions: %w", err)
	}

	items := make([]domain.Companion, len(models))
	for i, m := range models {
		items[i] = domain.Companion(m)
	}
	return items, nil
}

// CreateCompanion: 동반 가입 대상을 저장합니다.
func (r *Repository) CreateCompanion(ctx context.Context, item *domain.Companion) error {
	m := companionModel(*item)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to insert companion: %w", err)
	}
	return nil
}

// UpdateCompanion: 동반 가입 대상을 갱신합니다.
func (r *Repository) UpdateCompanion(ctx context.Context, item *domain.Companion) error {
	result := r.db.WithContext(ctx).
		Model(&companionModel{}).
		Where("id = ? AND client_id = ?", item.ID, item.ClientID).
		Updates(map[string]any{
			"name":       item.Name,
			"relation":   item.Relation,
			"birth_year": item.BirthYear,
			"memo":       item.Memo,
			"updated_at": item.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update companion: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("companion", item.ID)
	}
	return nil
}

// DeleteCompanion: 동반 가입 대상을 삭제합니다.
func (r *Repository) DeleteCompanion(ctx context.Context, clientID, id string) error {
	return r.deleteByID(ctx, &companionModel{}, "companion", clientID, id)
}

func (r *Repository) deleteByID(ctx context.Context, model any, resource, clientID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", id, clientID).
		Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", resource, result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError(resource, id)
	}
	return nil
}

func (r *Repository) firstByID(ctx context.Context, dest any, resource, clientID, id string) error {
	err := r.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", id, clientID).
		First(dest).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NewNotFoundError(resource, id)
	}
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", resource, err)
	}
	return nil
}
