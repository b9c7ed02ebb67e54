package identity

import (
	"math"
	"strconv"
	"strings"

	"github.com/kapu/customer-crm-go/internal/domain"
)

// CalculateBMI: 키(cm)/몸무게(kg) 문자열로부터 BMI를 계산합니다.
// 입력이 비어있거나 숫자가 아니거나 0 이하이면 ok=false를 반환한다.
// 결과는 소수점 첫째 자리로 반올림한다.
func CalculateBMI(heightCm, weightKg string) (float64, bool) {
	height, err := strconv.ParseFloat(strings.TrimSpace(heightCm), 64)
	if err != nil || height <= 0 {
		return 0, false
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(weightKg), 64)
	if err != nil || weight <= 0 {
		return 0, false
	}

	heightM := height / 100
	bmi := weight / (heightM * heightM)
	return math.Round(bmi*10) / 10, true
}

// ClassifyBMI: BMI 수치를 상태 밴드로 분류합니다.
//
// 표준 분류표는 성별 인지형 하나로 통일한다 (DESIGN.md 참고).
// 정상/과체중 상한은 성별이 알려진 경우 여성 기준으로 내려가고,
// 성별 미상이면 남성과 같은 공통 기준을 적용한다. 비만(<30)과
// 고도비만(>=30) 경계는 성별과 무관하다.
func ClassifyBMI(bmi float64, gender domain.Gender) domain.BMIClass {
	normalMax, overweightMax := 24.9, 29.9
	detail := "공통 기준"
	switch gender {
	case domain.GenderFemale:
		normalMax, overweightMax = 22.9, 24.9
		detail = "여성 기준"
	case domain.GenderMale:
		detail = "남성 기준"
	}

	switch {
	case bmi < 18.5:
		return domain.BMIClass{Status: "저체중", Color: "blue", GenderDetail: detail}
	case bmi < normalMax:
		return domain.BMIClass{Status: "정상", Color: "green", GenderDetail: detail}
	case bmi < overweightMax:
		return domain.BMIClass{Status: "과체중", Color: "yellow", GenderDetail: detail}
	case bmi < 30:
		return domain.BMIClass{Status: "비만", Color: "orange", GenderDetail: "공통 기준"}
	default:
		return domain.BMIClass{Status: "고도비만", Color: "red", GenderDetail: "공통 기준"}
	}
}
