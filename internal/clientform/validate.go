// Package clientform: 고객 편집 폼의 선언적 검증 규칙.
// 모든 위반 사항을 수집해 한 번에 반환하며, 개별 실패는 치명적이지 않다.
package clientform

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"github.com/kapu/customer-crm-go/internal/domain"
)

// 한국 휴대전화 번호 패턴 (하이픈 선택적)
var rePhone = regexp.MustCompile(`^01[016789]-?\d{3,4}-?\d{4}$`)

// 필드별 길이/범위 제한
const (
	maxNameRunes       = 50
	maxAddressRunes    = 200
	maxOccupationRunes = 50
	maxNotesRunes      = 1000

	minHeightCm = 100.0
	maxHeightCm = 250.0
	minWeightKg = 30.0
	maxWeightKg = 200.0
)

// Validate: 고객 편집 폼을 검증하고 모든 위반 사항을 수집합니다.
// 에러는 "필드명: 메시지" 형식 문자열로 반환되며 short-circuit하지 않는다.
func Validate(form domain.ClientEditForm) domain.ValidationResult {
	var errs []string

	addErr := func(field, msg string) {
		errs = append(errs, fmt.Sprintf("%s: %s", field, msg))
	}

	name := strings.TrimSpace(form.FullName)
	if name == "" {
		addErr("fullName", "이름은 필수 입력입니다")
	} else if len([]rune(name)) > maxNameRunes {
		addErr("fullName", fmt.Sprintf("이름은 %d자 이내여야 합니다", maxNameRunes))
	}

	if phone := strings.TrimSpace(form.Phone); phone != "" && !rePhone.MatchString(phone) {
		addErr("phone", "휴대전화 번호 형식이 올바르지 않습니다")
	}

	if email := strings.TrimSpace(form.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			addErr("email", "이메일 형식이 올바르지 않습니다")
		}
	}

	if len([]rune(form.Address)) > maxAddressRunes {
		addErr("address", fmt.Sprintf("주소는 %d자 이내여야 합니다", maxAddressRunes))
	}

	if len([]rune(form.Occupation)) > maxOccupationRunes {
		addErr("occupation", fmt.Sprintf("직업은 %d자 이내여야 합니다", maxOccupationRunes))
	}

	validateRange(form.HeightCm, "height", "키", minHeightCm, maxHeightCm, addErr)
	validateRange(form.WeightKg, "weight", "몸무게", minWeightKg, maxWeightKg, addErr)

	if len([]rune(form.Notes)) > maxNotesRunes {
		addErr("notes", fmt.Sprintf("메모는 %d자 이내여야 합니다", maxNotesRunes))
	}

	if !domain.Importance(form.Importance).IsValid() {
		addErr("importance", "중요도는 high/medium/low 중 하나여야 합니다")
	}

	if form.HasDrivingLicense == nil {
		addErr("hasDrivingLicense", "운전면허 보유 여부는 필수 입력입니다")
	}

	return domain.ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// validateRange: 선택 입력 숫자 필드의 범위를 검증합니다. 빈 값은 허용된다.
func validateRange(raw, field, label string, minVal, maxVal float64, addErr func(field, msg string)) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		addErr(field, fmt.Sprintf("%s는 숫자여야 합니다", label))
		return
	}
	if value < minVal || value > maxVal {
		addErr(field, fmt.Sprintf("%s는 %.0f~%.0f 범위여야 합니다", label, minVal, maxVal))
	}
}
