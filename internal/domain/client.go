package domain

import "time"

// Importance: 고객 관리 중요도 등급
type Importance string

// 중요도 상수
const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// IsValid: 허용된 중요도 값인지 확인합니다.
func (i Importance) IsValid() bool {
	switch i {
	case ImportanceHigh, ImportanceMedium, ImportanceLow:
		return true
	}
	return false
}

// Client: 보험 설계사가 관리하는 고객의 기본 프로필
// 주민등록번호 원문은 저장하지 않는다. 파싱 결과(생년월일/성별)와
// 마스킹된 표현(EncodedID)만 보관한다.
type Client struct {
	ID                string     `json:"id"`
	AgentID           string     `json:"agentId"`
	FullName          string     `json:"fullName"`
	Phone             string     `json:"phone,omitempty"`
	Email             string     `json:"email,omitempty"`
	Address           string     `json:"address,omitempty"`
	Occupation        string     `json:"occupation,omitempty"`
	BirthDate         *time.Time `json:"birthDate,omitempty"`
	Gender            Gender     `json:"gender,omitempty"`
	EncodedID         string     `json:"encodedId,omitempty"` // 예: "771111-1******"
	HeightCm          string     `json:"heightCm,omitempty"`
	WeightKg          string     `json:"weightKg,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Importance        Importance `json:"importance"`
	HasDrivingLicense bool       `json:"hasDrivingLicense"`
	Tags              []string   `json:"tags,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ClientEditForm: 고객 편집 폼의 원시 입력값 (검증 전 문자열 상태)
// 생성 시점에 만들어지고, 취소 시 버려지며, 저장 확정 시에만 영속 페이로드로 변환된다.
type ClientEditForm struct {
	FullName          string `json:"fullName"`
	SSNFront          string `json:"ssnFront"` // 주민번호 앞 6자리 (YYMMDD)
	SSNBack           string `json:"ssnBack"`  // 주민번호 뒤 7자리
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	Address           string `json:"address"`
	Occupation        string `json:"occupation"`
	HeightCm          string `json:"heightCm"`
	WeightKg          string `json:"weightKg"`
	Notes             string `json:"notes"`
	Importance        string `json:"importance"`
	HasDrivingLicense *bool  `json:"hasDrivingLicense"`
}

// ValidationResult: 폼 검증 결과
// 모든 위반 사항을 "필드명: 메시지" 형식으로 수집한다. (short-circuit 없음)
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors,omitempty"`
}

// ClientDetail: 고객 상세 화면용 집계 응답
// 프로필 + 파생 표시값(나이 3종, BMI) + 탭별 항목 수를 한 번에 내려준다.
type ClientDetail struct {
	Client         Client    `json:"client"`
	StandardAge    *int      `json:"standardAge,omitempty"`
	KoreanAge      *int      `json:"koreanAge,omitempty"`
	InsuranceAge   *int      `json:"insuranceAge,omitempty"`
	BMI            *float64  `json:"bmi,omitempty"`
	BMIClass       *BMIClass `json:"bmiClass,omitempty"`
	NoteCount      int64     `json:"noteCount"`
	MedicalCount   int64     `json:"medicalCount"`
	CheckupCount   int64     `json:"checkupCount"`
	InterestCount  int64     `json:"interestCount"`
	CompanionCount int64     `json:"companionCount"`
}
