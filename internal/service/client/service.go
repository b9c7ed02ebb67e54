package client

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/kapu/customer-crm-go/internal/clientform"
	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/internal/identity"
	"github.com/kapu/customer-crm-go/internal/util"
)

// DetailCounter: 고객 상세 집계에 필요한 탭별 항목 수를 제공한다.
// 상담/병력/검진/관심/동반자 서비스가 구현한다.
type DetailCounter interface {
	Counts(ctx context.Context, agentID, clientID string) (domain.DetailCounts, error)
}

// Service: 고객 프로필 생성/수정/조회를 담당하는 서비스
// 편집 폼 검증 → 주민번호 파싱 → 영속 페이로드 변환 순서로 처리한다.
type Service struct {
	repo    *Repository
	cache   *DetailCache
	counter DetailCounter
	logger  *slog.Logger
	now     func() time.Time
	flight  singleflight.Group
}

// NewService: 새로운 고객 서비스를 생성합니다. counter와 cache는 nil 허용. (테스트용)
func NewService(repo *Repository, cache *DetailCache, counter DetailCounter, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		counter: counter,
		logger:  logger,
		now:     util.NowKST,
	}
}

// WithClock: 현재 시각 함수를 교체합니다. (테스트용)
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create: 편집 폼을 검증하고 새 고객을 생성합니다.
// 검증 실패 시 에러가 아니라 ValidationResult로 위반 목록을 반환한다.
func (s *Service) Create(ctx context.Context, agentID string, form domain.ClientEditForm) (*domain.Client, domain.ValidationResult, error) {
	result := s.validateForm(form)
	if !result.IsValid {
		return nil, result, nil
	}

	now := s.now()
	c := &domain.Client{
		ID:        uuid.NewString(),
		AgentID:   agentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.applyForm(c, form, now)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, result, err
	}

	s.invalidate(ctx, agentID, c.ID)
	s.logger.Info("Client created",
		slog.String("clientId", c.ID),
		slog.String("agentId", agentID),
	)
	return c, result, nil
}

// Update: 기존 고객 프로필을 편집 폼 내용으로 갱신합니다.
// 태그는 별도 연산(ReplaceTags)으로 관리하므로 여기서는 건드리지 않는다.
func (s *Service) Update(ctx context.Context, agentID, clientID string, form domain.ClientEditForm) (*domain.Client, domain.ValidationResult, error) {
	result := s.validateForm(form)
	if !result.IsValid {
		return nil, result, nil
	}

	c, err := s.repo.FindByID(ctx, agentID, clientID)
	if err != nil {
		return nil, result, err
	}

	s.applyForm(c, form, s.now())

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, result, err
	}

	s.invalidate(ctx, agentID, clientID)
	return c, result, nil
}

// ReplaceTags: 고객 태그 목록을 교체합니다.
func (s *Service) ReplaceTags(ctx context.Context, agentID, clientID string, tags []string) error {
	cleaned := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		cleaned = append(cleaned, tag)
	}

	if err := s.repo.ReplaceTags(ctx, agentID, clientID, cleaned, s.now()); err != nil {
		return err
	}
	s.invalidate(ctx, agentID, clientID)
	return nil
}

// Delete: 고객을 삭제합니다.
func (s *Service) Delete(ctx context.Context, agentID, clientID string) error {
	if err := s.repo.Delete(ctx, agentID, clientID); err != nil {
		return err
	}
	s.invalidate(ctx, agentID, clientID)
	return nil
}

// Get: 고객 프로필 하나를 조회합니다.
func (s *Service) Get(ctx context.Context, agentID, clientID string) (*domain.Client, error) {
	return s.repo.FindByID(ctx, agentID, clientID)
}

// List: 설계사의 고객 목록을 조회합니다. 페이지 크기는 상한으로 잘라낸다.
func (s *Service) List(ctx context.Context, agentID, q string, limit, offset int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = constants.PaginationConfig.DefaultPageSize
	}
	if limit > constants.PaginationConfig.MaxPageSize {
		limit = constants.PaginationConfig.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetList(ctx, agentID, q, limit, offset); ok {
			return cached, nil
		}
	}

	clients, err := s.repo.List(ctx, agentID, q, limit, offset)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetList(ctx, agentID, q, limit, offset, clients)
	}
	return clients, nil
}

// GetDetail: 고객 상세 집계를 조회합니다.
// 프로필에 나이 3종(만/세는/보험)과 BMI, 탭별 항목 수를 더해 반환한다.
// 캐시 미스 시 동일 고객에 대한 동시 조회는 한 번만 집계한다.
func (s *Service) GetDetail(ctx context.Context, agentID, clientID string) (*domain.ClientDetail, error) {
	if s.cache != nil {
		if detail, ok := s.cache.GetDetail(ctx, agentID, clientID); ok {
			return detail, nil
		}
	}

	v, err, _ := s.flight.Do(agentID+":"+clientID, func() (any, error) {
		return s.buildDetailAggregate(ctx, agentID, clientID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ClientDetail), nil
}

func (s *Service) buildDetailAggregate(ctx context.Context, agentID, clientID string) (*domain.ClientDetail, error) {
	c, err := s.repo.FindByID(ctx, agentID, clientID)
	if err != nil {
		return nil, err
	}

	detail := s.buildDetail(c)

	if s.counter != nil {
		counts, err := s.counter.Counts(ctx, agentID, clientID)
		if err != nil {
			return nil, err
		}
		detail.NoteCount = counts.Notes
		detail.MedicalCount = counts.Medical
		detail.CheckupCount = counts.Checkups
		detail.InterestCount = counts.Interests
		detail.CompanionCount = counts.Companions
	}

	if s.cache != nil {
		s.cache.SetDetail(ctx, agentID, clientID, detail)
	}
	return detail, nil
}

// WarmUpCache: 최근 수정된 고객들의 상세 집계를 미리 캐시에 적재합니다.
func (s *Service) WarmUpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	pairs, err := s.repo.RecentIDs(ctx, constants.ClientCacheDefaults.WarmUpLimit)
	if err != nil {
		s.logger.Warn("Cache warm-up query failed", slog.Any("error", err))
		return
	}

	s.cache.WarmUp(ctx, pairs, func(ctx context.Context, agentID, clientID string) error {
		_, err := s.GetDetail(ctx, agentID, clientID)
		return err
	})
}

// ValidateForm: 저장 없이 폼 검증 결과만 반환합니다. (실시간 검증 API용)
func (s *Service) ValidateForm(form domain.ClientEditForm) domain.ValidationResult {
	return s.validateForm(form)
}

// validateForm: 폼 필드 규칙 검증에 주민번호 파싱 검증을 얹는다.
// 주민번호는 선택 입력이지만, 일부라도 입력했다면 완전하고 유효해야 한다.
func (s *Service) validateForm(form domain.ClientEditForm) domain.ValidationResult {
	result := clientform.Validate(form)

	front := identity.CleanDigits(form.SSNFront)
	back := identity.CleanDigits(form.SSNBack)
	if front != "" || back != "" {
		parsed := identity.ParseSegments(front, back, s.now())
		if !parsed.IsValid {
			result.IsValid = false
			result.Errors = append(result.Errors, "ssn: "+parsed.ErrorMessage)
		}
	}
	return result
}

// applyForm: 검증을 통과한 폼을 영속 페이로드로 변환한다.
// 주민번호 원문은 버리고 파싱 결과와 마스킹 표현만 남긴다.
func (s *Service) applyForm(c *domain.Client, form domain.ClientEditForm, now time.Time) {
	c.FullName = strings.TrimSpace(form.FullName)
	c.Phone = util.NormalizePhone(strings.TrimSpace(form.Phone))
	c.Email = strings.TrimSpace(form.Email)
	c.Address = strings.TrimSpace(form.Address)
	c.Occupation = strings.TrimSpace(form.Occupation)
	c.HeightCm = strings.TrimSpace(form.HeightCm)
	c.WeightKg = strings.TrimSpace(form.WeightKg)
	c.Notes = form.Notes
	c.Importance = domain.Importance(form.Importance)
	if form.HasDrivingLicense != nil {
		c.HasDrivingLicense = *form.HasDrivingLicense
	}
	c.UpdatedAt = now

	front := identity.CleanDigits(form.SSNFront)
	back := identity.CleanDigits(form.SSNBack)
	if front == "" && back == "" {
		c.BirthDate = nil
		c.Gender = domain.GenderUnknown
		c.EncodedID = ""
		return
	}

	parsed := identity.ParseSegments(front, back, now)
	if parsed.IsValid {
		birth := parsed.BirthDate
		c.BirthDate = &birth
		c.Gender = parsed.Gender
		c.EncodedID = identity.MaskResidentID(front, back)
	}
}

// buildDetail: 프로필에서 파생 표시값(나이, BMI)을 계산한다.
func (s *Service) buildDetail(c *domain.Client) *domain.ClientDetail {
	detail := &domain.ClientDetail{Client: *c}
	now := s.now()

	if c.BirthDate != nil {
		standard := identity.CalculateAge(*c.BirthDate, domain.AgeStandard, now)
		korean := identity.CalculateAge(*c.BirthDate, domain.AgeKorean, now)
		insurance := identity.CalculateAge(*c.BirthDate, domain.AgeInsurance, now)
		detail.StandardAge = &standard
		detail.KoreanAge = &korean
		detail.InsuranceAge = &insurance
	}

	if bmi, ok := identity.CalculateBMI(c.HeightCm, c.WeightKg); ok {
		class := identity.ClassifyBMI(bmi, c.Gender)
		detail.BMI = &bmi
		detail.BMIClass = &class
	}

	return detail
}

// invalidate: 쓰기 이후 상세 캐시를 지우고 목록 버전을 올린다.
func (s *Service) invalidate(ctx context.Context, agentID, clientID string) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateDetail(ctx, agentID, clientID)
	s.cache.BumpListVersion(ctx, agentID)
}
