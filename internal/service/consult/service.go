package consult

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/internal/util"
	"github.com/kapu/customer-crm-go/pkg/errors"
)

// CacheInvalidator: 하위 리소스 변경 시 고객 상세 캐시를 무효화한다.
type CacheInvalidator interface {
	InvalidateDetail(ctx context.Context, agentID, clientID string)
}

// Service: 고객 하위 리소스 5종의 추가/수정/삭제/조회를 담당하는 서비스
// 모든 연산은 고객 소유권 확인을 먼저 통과해야 한다.
type Service struct {
	repo   *Repository
	cache  CacheInvalidator
	logger *slog.Logger
	now    func() time.Time
}

// NewService: 새로운 하위 리소스 서비스를 생성합니다. cache는 nil 허용. (테스트용)
func NewService(repo *Repository, cache CacheInvalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    util.NowKST,
	}
}

// WithClock: 현재 시각 함수를 교체합니다. (테스트용)
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Counts: 고객 상세 집계용 탭별 항목 수를 반환합니다.
func (s *Service) Counts(ctx context.Context, agentID, clientID string) (domain.DetailCounts, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return domain.DetailCounts{}, err
	}
	return s.repo.Counts(ctx, clientID)
}

// ListNotes: 고객의 상담 기록 목록을 반환합니다.
func (s *Service) ListNotes(ctx context.Context, agentID, clientID string) ([]domain.ConsultNote, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, clientID)
}

// AddNote: 상담 기록을 추가합니다. 제목은 필수, 상담일 미지정 시 현재 시각.
func (s *Service) AddNote(ctx context.Context, agentID, clientID string, note domain.ConsultNote) (*domain.ConsultNote, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	note.Title = strings.TrimSpace(note.Title)
	if note.Title == "" {
		return nil, errors.NewValidationError("상담 제목은 필수 입력입니다", "title")
	}

	now := s.now()
	note.ID = uuid.NewString()
	note.ClientID = clientID
	if note.ConsultAt.IsZero() {
		note.ConsultAt = now
	}
	note.CreatedAt = now
	note.UpdatedAt = now

	if err := s.repo.CreateNote(ctx, &note); err != nil {
		return nil, err
	}
	s.invalidate(ctx, agentID, clientID)
	return &note, nil
}

// UpdateNote: 상담 기록을 수정합니다.
func (s *Service) UpdateNote(ctx context.Context, agentID, clientID string, note domain.ConsultNote) (*domain.ConsultNote, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	note.Title = strings.TrimSpace(note.Title)
	if note.Title == "" {
		return nil, errors.NewValidationError("상담 제목은 필수 입력입니다", "title")
	}

	note.ClientID = clientID
	note.UpdatedAt = s.now()
	if err := s.repo.UpdateNote(ctx, &note); err != nil {
		return nil, err
	}
	s.invalidate(ctx, agentID, clientID)
	return s.repo.GetNote(ctx, clientID, note.ID)
}

// DeleteNote: 상담 기록을 삭제합니다.
func (s *Service) DeleteNote(ctx context.Context, agentID, clientID, id string) error {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return err
	}
	if err := s.repo.DeleteNote(ctx, clientID, id); err != nil {
		return err
	}
	s.invalidate(ctx, agentID, clientID)
	return nil
}

// ListMedical: 고객의 병력 목록을 반환합니다.
func (s *Service) ListMedical(ctx context.Context, agentID, clientID string) ([]domain.MedicalHistory, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListMedical(ctx, clientID)
}

// AddMedical: 병력을 추가합니다. 진단명은 필수.
func (s *Service) AddMedical(ctx context.Context, agentID, clientID string, item domain.MedicalHistory) (*domain.MedicalHistory, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	item.Condition = strings.TrimSpace(item.Condition)
	if item.Condition == "" {
		return nil, errors.NewValidationError("진단명은 필수 입력입니다", "condition")
	}

	now := s.now()
	item.ID = uuid.NewString()
	item.ClientID = clientID
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.CreateMedical(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, agentID, clientID)
	return &item, nil
}

// UpdateMedical: 병력을 수정합니다.
func (s *Service) UpdateMedical(ctx context.Context, agentID, clientID string, item domain.MedicalHistory) (*domain.MedicalHistory, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	item.Condition = strings.TrimSpace(item.Condition)
	if item.Condition == "" {
		return nil, errors.NewValidationError("진단명은 필수 입력입니다", "condition")
	}

	item.ClientID = clientID
	item.UpdatedAt = s.now()
	if err := s.repo.UpdateMedical(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, agentID, clientID)
	return &item, nil
}

// DeleteMedical: 병력을 삭제합니다.
func (s *Service) DeleteMedical(ctx context.Context, agentID, clientID, id string) error {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return err
	}
	if err := s.repo.DeleteMedical(ctx, clientID, id); err != nil {
		return err
	}
	s.invalidate(ctx, agentID, clientID)
	return nil
}

// ListCheckups: 고객의 보장 점검 목적 목록을 반환합니다.
func (s *Service) ListCheckups(ctx context.Context, agentID, clientID string) ([]domain.CheckupPurpose, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListCheckups(ctx, clientID)
}

// AddCheckup: 점검 목적을 추가합니다. 목적은 필수.
func (s *Service) AddCheckup(ctx context.Context, agentID, clientID string, item domain.CheckupPurpose) (*domain.CheckupPurpose, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	item.Purpose = strings.TrimSpace(item.Purpose)
	if item.Purpose == "" {
		return nil, errors.NewValidationError("점검 목적은 필수 입력입니다", "purpose")
	}

	now := s.now()
	item.ID = uuid.NewString()
	item.ClientID = clientID
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.CreateCheckup(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, agentID, clientID)
	return &item, nil
}

// DeleteCheckup: 점검 목적을 삭제합니다.
func (s *Service) DeleteCheckup(ctx context.Context, agentID, clientID, id string) error {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return err
	}
	if err := s.repo.DeleteCheckup(ctx, clientID, id); err != nil {
		return err
	}
	s.invalidate(ctx, agentID, clientID)
	return nil
}

// ListInterests: 고객의 관심사 목록을 반환합니다.
func (s *Service) ListInterests(ctx context.Context, agentID, clientID string) ([]domain.Interest, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListInterests(ctx, clientID)
}

// AddInterest: 관심사를 추가합니다. 주제는 필수.
func (s *Service) AddInterest(ctx context.Context, agentID, clientID string, item domain.Interest) (*domain.Interest, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	item.Topic = strings.TrimSpace(item.Topic)
	if item.Topic == "" {
		return nil, errors.NewValidationError("관심 주제는 필수 입력입니다", "topic")
	}

	now := s.now()
	item.ID = uuid.NewString()
	item.ClientID = clientID
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.CreateInterest(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, agentID, clientID)
	return &item, nil
}

// DeleteInterest: 관심사를 삭제합니다.
func (s *Service) DeleteInterest(ctx context.Context, agentID, clientID, id string) error {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return err
	}
	if err := s.repo.DeleteInterest(ctx, clientID, id); err != nil {
		return err
	}
	s.invalidate(ctx, agentID, clientID)
	return nil
}

// ListCompanions: 고객의 동반 가입 대상 목록을 반환합니다.
func (s *Service) ListCompanions(ctx context.Context, agentID, clientID string) ([]domain.Companion, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListCompanions(ctx, clientID)
}

// AddCompanion: 동반 가입 대상을 추가합니다. 이름과 관계는 필수.
func (s *Service) AddCompanion(ctx context.Context, agentID, clientID string, item domain.Companion) (*domain.Companion, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	if err := validateCompanion(&item, s.now()); err != nil {
		return nil, err
	}

	now := s.now()
	item.ID = uuid.NewString()
	item.ClientID = clientID
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.repo.CreateCompanion(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, agentID, clientID)
	return &item, nil
}

// UpdateCompanion: 동반 가입 대상을 수정합니다.
func (s *Service) UpdateCompanion(ctx context.Context, agentID, clientID string, item domain.Companion) (*domain.Companion, error) {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return nil, err
	}
	if err := validateCompanion(&item, s.now()); err != nil {
		return nil, err
	}

	item.ClientID = clientID
	item.UpdatedAt = s.now()
	if err := s.repo.UpdateCompanion(ctx, &item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, agentID, clientID)
	return &item, nil
}

// DeleteCompanion: 동반 가입 대상을 삭제합니다.
func (s *Service) DeleteCompanion(ctx context.Context, agentID, clientID, id string) error {
	if err := s.requireOwnership(ctx, agentID, clientID); err != nil {
		return err
	}
	if err := s.repo.DeleteCompanion(ctx, clientID, id); err != nil {
		return err
	}
	s.invalidate(ctx, agentID, clientID)
	return nil
}

func validateCompanion(item *domain.Companion, now time.Time) error {
	item.Name = strings.TrimSpace(item.Name)
	item.Relation = strings.TrimSpace(item.Relation)
	if item.Name == "" {
		return errors.NewValidationError("이름은 필수 입력입니다", "name")
	}
	if item.Relation == "" {
		return errors.NewValidationError("관계는 필수 입력입니다", "relation")
	}
	if item.BirthYear != 0 && (item.BirthYear < 1900 || item.BirthYear > now.Year()) {
		return errors.NewValidationError("출생연도가 올바르지 않습니다", "birthYear")
	}
	return nil
}

// requireOwnership: 고객이 설계사 소유가 아니면 NotFoundError를 반환한다.
// 타인 소유 여부를 구분해서 알려주지 않는다.
func (s *Service) requireOwnership(ctx context.Context, agentID, clientID string) error {
	owned, err := s.repo.ClientOwnedBy(ctx, agentID, clientID)
	if err != nil {
		return err
	}
	if !owned {
		return errors.NewNotFoundError("client", clientID)
	}
	return nil
}

// invalidate: 변경 후 고객 상세 캐시를 무효화한다.
func (s *Service) invalidate(ctx context.Context, agentID, clientID string) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateDetail(ctx, agentID, clientID)
}
