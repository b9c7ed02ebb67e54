package util

import "fmt"

// FormatKoreanNumber: 한국어 단위(만)로 숫자를 포맷팅합니다.
// 월 보험료 등 금액 표시에 사용한다. 예: 10000 -> "1만", 12345 -> "1만 2345", 500 -> "500"
func FormatKoreanNumber(n int64) string {
	if n >= 10000 {
		man := n / 10000
		remainder := n % 10000
		if remainder == 0 {
			return fmt.Sprintf("%d만", man)
		}
		return fmt.Sprintf("%d만 %d", man, remainder)
	}
	return fmt.Sprintf("%d", n)
}
