package identity

import (
	"time"

	"github.com/kapu/customer-crm-go/internal/domain"
)

// insuranceAgeOffset: 보험 나이 상령일 오프셋.
// 정확한 6개월 달력 연산 대신 180일 근사를 사용한다. 상령일 ±3일 근방에서만
// 달력 연산과 결과가 달라질 수 있다.
const insuranceAgeOffset = 180 * 24 * time.Hour

// CalculateAge: 주어진 생년월일과 기준 시각으로 나이를 계산합니다.
// birth와 now는 변경하지 않으며, 알 수 없는 convention은 만 나이로 계산한다.
//
//   - standard: 만 나이. 올해 생일이 지나지 않았으면 1을 뺀다.
//   - korean: 세는 나이. 연도 차이 + 1 (생일 무관).
//   - insurance: 보험 나이. 직전 생일로부터 180일이 지났으면 만 나이 + 1.
func CalculateAge(birth time.Time, convention domain.AgeConvention, now time.Time) int {
	switch convention {
	case domain.AgeKorean:
		return now.Year() - birth.Year() + 1
	case domain.AgeInsurance:
		age := standardAge(birth, now)
		if now.Sub(lastAnniversary(birth, now)) >= insuranceAgeOffset {
			age++
		}
		return age
	default:
		return standardAge(birth, now)
	}
}

// standardAge: 만 나이 계산
func standardAge(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if beforeAnniversary(birth, now) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// beforeAnniversary: now가 올해 생일(월/일) 이전인지 확인합니다.
func beforeAnniversary(birth, now time.Time) bool {
	_, bm, bd := birth.Date()
	_, nm, nd := now.Date()
	if nm != bm {
		return nm < bm
	}
	return nd < bd
}

// lastAnniversary: now 기준 가장 최근에 지난 생일 날짜를 반환합니다.
// 2월 29일생은 평년에 3월 1일로 정규화된다.
func lastAnniversary(birth, now time.Time) time.Time {
	_, bm, bd := birth.Date()
	anniversary := time.Date(now.Year(), bm, bd, 0, 0, 0, 0, now.Location())
	if anniversary.After(now) {
		anniversary = time.Date(now.Year()-1, bm, bd, 0, 0, 0, 0, now.Location())
	}
	return anniversary
}
