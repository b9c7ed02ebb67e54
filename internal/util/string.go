package util

import "strings"

// TruncateString: 주어진 문자열을 최대 길이(Rune 기준)로 자르고, 초과 시 "..."을 붙여 반환합니다.
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// TrimSpace: 문자열 양쪽 끝의 공백을 제거한다. (strings.TrimSpace 래퍼)
func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// Normalize: 문자열을 소문자로 변환하고 양쪽 공백을 제거합니다.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone: 전화번호에서 하이픈과 공백을 제거합니다.
func NormalizePhone(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))
	for _, r := range s {
		switch r {
		case '-', ' ':
			continue
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// MaskPhone: 전화번호 가운데 자리를 마스킹합니다. (로그/활동 피드 노출용)
// 예: "01012345678" -> "010****5678"
func MaskPhone(s string) string {
	digits := NormalizePhone(s)
	if len(digits) < 8 {
		return digits
	}
	return digits[:3] + strings.Repeat("*", len(digits)-7) + digits[len(digits)-4:]
}
