package identity

import (
	"testing"

	"github.com/kapu/customer-crm-go/internal/domain"
)

func TestCalculateBMI(t *testing.T) {
	tests := []struct {
		name   string
		height string
		weight string
		want   float64
		ok     bool
	}{
		{"기준 예시 170/70", "170", "70", 24.2, true},
		{"소수 입력", "162.5", "55.4", 21.0, true},
		{"공백 포함", " 180 ", " 80 ", 24.7, true},
		{"키 없음", "", "70", 0, false},
		{"몸무게 없음", "170", "", 0, false},
		{"숫자 아님", "키", "70", 0, false},
		{"0", "0", "70", 0, false},
		{"음수", "170", "-5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CalculateBMI(tt.height, tt.weight)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("bmi = %.1f, want %.1f", got, tt.want)
			}
		})
	}
}

// 같은 입력으로 두 번 호출하면 같은 값이 나와야 한다.
func TestCalculateBMI_Idempotent(t *testing.T) {
	first, ok1 := CalculateBMI("170", "70")
	second, ok2 := CalculateBMI("170", "70")
	if !ok1 || !ok2 || first != second {
		t.Fatalf("repeated calls differ: %.1f vs %.1f", first, second)
	}
}

func TestClassifyBMI(t *testing.T) {
	tests := []struct {
		name       string
		bmi        float64
		gender     domain.Gender
		wantStatus string
		wantColor  string
	}{
		{"저체중", 17.0, domain.GenderMale, "저체중", "blue"},
		{"저체중 경계 직전", 18.4, domain.GenderFemale, "저체중", "blue"},
		{"남성 정상", 24.0, domain.GenderMale, "정상", "green"},
		{"여성 과체중 (남성이면 정상)", 23.5, domain.GenderFemale, "과체중", "yellow"},
		{"남성 기준 동일 수치 정상", 23.5, domain.GenderMale, "정상", "green"},
		{"성별 미상은 남성 기준", 23.5, domain.GenderUnknown, "정상", "green"},
		{"여성 비만 경계", 25.0, domain.GenderFemale, "비만", "orange"},
		{"남성 과체중", 27.0, domain.GenderMale, "과체중", "yellow"},
		{"비만", 29.95, domain.GenderMale, "비만", "orange"},
		{"고도비만 경계", 30.0, domain.GenderFemale, "고도비만", "red"},
		{"고도비만", 35.0, domain.GenderUnknown, "고도비만", "red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyBMI(tt.bmi, tt.gender)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", got.Status, tt.wantStatus)
			}
			if got.Color != tt.wantColor {
				t.Errorf("color = %s, want %s", got.Color, tt.wantColor)
			}
			if got.GenderDetail == "" {
				t.Error("gender detail must not be empty")
			}
		})
	}
}
