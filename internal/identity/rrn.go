// Package identity: 주민등록번호 파싱/검증과 나이·BMI 계산을 담당하는 순수 함수 모음.
// I/O, 로깅, 전역 시계 접근이 없으며 현재 시각은 항상 인자로 주입받는다.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/kapu/customer-crm-go/internal/domain"
)

// 검증 실패 시 사용자에게 그대로 노출되는 메시지
const (
	msgBadLength   = "주민등록번호는 13자리여야 합니다"
	msgInvalidDate = "유효하지 않은 날짜입니다"
	msgFutureDate  = "미래 날짜로 입력되었습니다"
	msgIncomplete  = "주민등록번호 입력이 완료되지 않았습니다"
)

// centuryInfo: 세기/성별 코드 한 자리가 의미하는 세기와 성별
type centuryInfo struct {
	base    int
	gender  domain.Gender
	foreign bool
}

// 7번째 자리(세기/성별 코드) 매핑표
// 1,2: 1900년대 내국인 / 3,4: 2000년대 내국인 / 5,6: 1900년대 외국인 / 7,8: 2000년대 외국인
var centuryCodes = map[byte]centuryInfo{
	'1': {base: 1900, gender: domain.GenderMale},
	'2': {base: 1900, gender: domain.GenderFemale},
	'3': {base: 2000, gender: domain.GenderMale},
	'4': {base: 2000, gender: domain.GenderFemale},
	'5': {base: 1900, gender: domain.GenderMale, foreign: true},
	'6': {base: 1900, gender: domain.GenderFemale, foreign: true},
	'7': {base: 2000, gender: domain.GenderMale, foreign: true},
	'8': {base: 2000, gender: domain.GenderFemale, foreign: true},
}

// CleanDigits: 입력에서 숫자가 아닌 문자(하이픈, 공백 등)를 제거합니다.
func CleanDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseSegments: 폼의 앞/뒤 분리 입력을 파싱합니다.
// 두 구간 중 하나라도 아직 다 입력되지 않았으면 ErrKindIncomplete를 반환하여
// 호출자(폼)가 입력 중에는 에러를 표시하지 않을 수 있게 한다.
func ParseSegments(front, back string, now time.Time) domain.ParsedIdentity {
	front = CleanDigits(front)
	back = CleanDigits(back)

	if len(front) < 6 || len(back) < 7 {
		return invalid(domain.ErrKindIncomplete, msgIncomplete)
	}
	return ParseResidentID(front+back, now)
}

// ParseResidentID: 주민등록번호 13자리를 파싱하여 생년월일과 성별을 도출합니다.
// 실패는 예외가 아니라 데이터(ErrKind + 한국어 메시지)로 반환한다.
func ParseResidentID(fullID string, now time.Time) domain.ParsedIdentity {
	digits := CleanDigits(fullID)
	if len(digits) != 13 {
		return invalid(domain.ErrKindBadLength, msgBadLength)
	}

	yy := int(digits[0]-'0')*10 + int(digits[1]-'0')
	month := int(digits[2]-'0')*10 + int(digits[3]-'0')
	day := int(digits[4]-'0')*10 + int(digits[5]-'0')
	code := digits[6]

	info, ok := centuryCodes[code]
	if !ok {
		return invalid(domain.ErrKindBadCode, fmt.Sprintf("유효하지 않은 성별 코드입니다: %c", code))
	}

	year := info.base + yy
	if month < 1 || month > 12 || day < 1 || day > daysInMonth(year, month) {
		return invalid(domain.ErrKindInvalidCalendarDate, msgInvalidDate)
	}

	birth := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if afterToday(birth, now) {
		return invalid(domain.ErrKindFutureDate, msgFutureDate)
	}

	return domain.ParsedIdentity{
		IsValid:   true,
		BirthDate: birth,
		Gender:    info.gender,
	}
}

// VerifyAgainstBirthYear: 이미 알고 있는 출생연도와 코드 조합의 모순을 검사합니다.
// 코드 자체는 유효하지만 도출된 세기가 등록된 출생연도와 어긋나는 경우
// (예: 1977년생인데 2000년대 코드 3/4 사용) 일반 코드 에러 대신
// 기대 코드를 안내하는 전용 메시지를 반환한다.
func VerifyAgainstBirthYear(fullID string, knownYear int, now time.Time) domain.ParsedIdentity {
	digits := CleanDigits(fullID)

	// 세기 모순 검사는 일반 파싱보다 먼저 수행한다. 1977년생이 코드 3/4를
	// 고르면 2077년으로 해석되어 미래 날짜 에러가 먼저 나버리는데,
	// 사용자에게 필요한 안내는 "코드가 잘못됐다"이지 "미래 날짜"가 아니다.
	if knownYear > 0 && len(digits) == 13 {
		yy := int(digits[0]-'0')*10 + int(digits[1]-'0')
		if info, ok := centuryCodes[digits[6]]; ok && yy == knownYear%100 && info.base+yy != knownYear {
			expected := "1 또는 2"
			if knownYear >= 2000 {
				expected = "3 또는 4"
			}
			return invalid(domain.ErrKindCodeMismatch,
				fmt.Sprintf("%d년생은 성별 코드 %s를 사용해야 합니다", knownYear, expected))
		}
	}

	parsed := ParseResidentID(digits, now)
	if !parsed.IsValid || knownYear <= 0 {
		return parsed
	}

	if parsed.BirthDate.Year() != knownYear {
		return invalid(domain.ErrKindCodeMismatch,
			fmt.Sprintf("주민등록번호가 등록된 출생연도(%d년)와 일치하지 않습니다", knownYear))
	}

	return parsed
}

// MaskResidentID: 저장/표시용 마스킹 표현을 만듭니다. (예: "771111-1******")
// 원문 주민등록번호는 이 표현 외의 형태로 보관하지 않는다.
func MaskResidentID(front, back string) string {
	front = CleanDigits(front)
	back = CleanDigits(back)
	if len(front) != 6 || len(back) != 7 {
		return ""
	}
	return front + "-" + back[:1] + "******"
}

func invalid(kind domain.IdentityErrKind, msg string) domain.ParsedIdentity {
	return domain.ParsedIdentity{
		IsValid:      false,
		ErrKind:      kind,
		ErrorMessage: msg,
	}
}

// daysInMonth: 해당 연/월의 일수를 반환합니다. (윤년 반영)
func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// afterToday: 생년월일이 now의 날짜보다 미래인지 날짜 단위로 비교합니다.
func afterToday(birth, now time.Time) bool {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()
	if by != ny {
		return by > ny
	}
	if bm != nm {
		return bm > nm
	}
	return bd > nd
}
