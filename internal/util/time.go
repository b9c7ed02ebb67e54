package util

import (
	"time"
)

var kstLocation *time.Location

func init() {
	var err error
	kstLocation, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		kstLocation = time.FixedZone("KST", 9*60*60)
	}
}

// ToKST: 주어진 시간을 한국 표준시(KST)로 변환합니다.
func ToKST(t time.Time) time.Time {
	return t.In(kstLocation)
}

// FormatKST: 주어진 시간을 KST 기준으로 지정된 포맷 문자열로 변환합니다.
func FormatKST(t time.Time, layout string) string {
	return t.In(kstLocation).Format(layout)
}

// NowKST: 현재 시간을 KST 기준으로 반환합니다.
// 나이 계산과 주민등록번호 미래 날짜 판정은 모두 KST 날짜를 기준으로 한다.
func NowKST() time.Time {
	return time.Now().In(kstLocation)
}
