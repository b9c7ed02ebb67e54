package domain

import "time"

// Gender: 주민등록번호에서 파생되는 성별 값
type Gender string

// 성별 상수
const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// Label: 성별의 한국어 표시 문자열을 반환합니다.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "남성"
	case GenderFemale:
		return "여성"
	default:
		return "미상"
	}
}

// IdentityErrKind: 주민등록번호 검증 실패 사유 분류
// 에러 메시지 문자열 파싱 대신 이 값으로 분기/테스트한다.
type IdentityErrKind string

// 검증 실패 사유 상수
const (
	ErrKindNone                IdentityErrKind = ""
	ErrKindIncomplete          IdentityErrKind = "incomplete"            // 입력 중 (앞 6자리/뒤 7자리가 아직 다 입력되지 않음)
	ErrKindBadLength           IdentityErrKind = "bad_length"            // 13자리가 아님
	ErrKindBadCode             IdentityErrKind = "bad_code"              // 세기/성별 코드가 1~8 범위 밖
	ErrKindInvalidCalendarDate IdentityErrKind = "invalid_calendar_date" // 달력상 존재하지 않는 날짜
	ErrKindFutureDate          IdentityErrKind = "future_date"           // 미래 날짜
	ErrKindCodeMismatch        IdentityErrKind = "code_mismatch"         // 출생연도와 세기 코드가 서로 모순
)

// ParsedIdentity: 주민등록번호 파싱 결과
// IsValid가 true이면 BirthDate/Gender가 채워지고 ErrorMessage는 비어있다.
// IsValid가 false이면 ErrKind와 사용자에게 그대로 보여줄 ErrorMessage가 채워진다.
type ParsedIdentity struct {
	IsValid      bool            `json:"isValid"`
	BirthDate    time.Time       `json:"birthDate,omitempty"`
	Gender       Gender          `json:"gender,omitempty"`
	ErrKind      IdentityErrKind `json:"errKind,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
}

// AgeConvention: 나이 계산 방식 (만 나이 / 세는 나이 / 보험 나이)
type AgeConvention string

// 나이 계산 방식 상수
const (
	AgeStandard  AgeConvention = "standard"  // 만 나이 (국제 표준)
	AgeKorean    AgeConvention = "korean"    // 세는 나이
	AgeInsurance AgeConvention = "insurance" // 보험 나이 (상령일 기준)
)

// BMIClass: BMI 수치의 분류 결과
type BMIClass struct {
	Status       string `json:"status"`       // 한국어 상태 라벨 (저체중/정상/과체중/비만/고도비만)
	Color        string `json:"color"`        // UI 색상 클래스
	GenderDetail string `json:"genderDetail"` // 성별 기준 설명 문자열
}
