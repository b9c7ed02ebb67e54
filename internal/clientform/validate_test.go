package clientform

import (
	"strings"
	"testing"

	"github.com/kapu/customer-crm-go/internal/domain"
)

func validForm() domain.ClientEditForm {
	license := true
	return domain.ClientEditForm{
		FullName:          "김민수",
		Phone:             "010-1234-5678",
		Email:             "minsu.kim@example.com",
		Address:           "서울특별시 강남구",
		Occupation:        "회사원",
		HeightCm:          "175",
		WeightKg:          "72",
		Notes:             "기존 실손보험 만기 예정",
		Importance:        "high",
		HasDrivingLicense: &license,
	}
}

func TestValidate_ValidForm(t *testing.T) {
	got := Validate(validForm())
	if !got.IsValid {
		t.Fatalf("expected valid form, got errors: %v", got.Errors)
	}
	if len(got.Errors) != 0 {
		t.Errorf("valid form must not carry errors: %v", got.Errors)
	}
}

func TestValidate_OptionalFieldsMayBeEmpty(t *testing.T) {
	form := validForm()
	form.Phone = ""
	form.Email = ""
	form.Address = ""
	form.Occupation = ""
	form.HeightCm = ""
	form.WeightKg = ""
	form.Notes = ""

	if got := Validate(form); !got.IsValid {
		t.Fatalf("optional fields may be empty, got errors: %v", got.Errors)
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*domain.ClientEditForm)
		wantField string
	}{
		{"이름 없음", func(f *domain.ClientEditForm) { f.FullName = "" }, "fullName"},
		{"이름 공백만", func(f *domain.ClientEditForm) { f.FullName = "   " }, "fullName"},
		{"이름 51자", func(f *domain.ClientEditForm) { f.FullName = strings.Repeat("가", 51) }, "fullName"},
		{"전화 형식 오류", func(f *domain.ClientEditForm) { f.Phone = "123" }, "phone"},
		{"전화 일반전화", func(f *domain.ClientEditForm) { f.Phone = "02-123-4567" }, "phone"},
		{"이메일 형식 오류", func(f *domain.ClientEditForm) { f.Email = "not-an-email" }, "email"},
		{"주소 201자", func(f *domain.ClientEditForm) { f.Address = strings.Repeat("가", 201) }, "address"},
		{"직업 51자", func(f *domain.ClientEditForm) { f.Occupation = strings.Repeat("가", 51) }, "occupation"},
		{"키 숫자 아님", func(f *domain.ClientEditForm) { f.HeightCm = "백칠십" }, "height"},
		{"키 범위 미만", func(f *domain.ClientEditForm) { f.HeightCm = "99" }, "height"},
		{"키 범위 초과", func(f *domain.ClientEditForm) { f.HeightCm = "251" }, "height"},
		{"몸무게 범위 미만", func(f *domain.ClientEditForm) { f.WeightKg = "29" }, "weight"},
		{"몸무게 범위 초과", func(f *domain.ClientEditForm) { f.WeightKg = "201" }, "weight"},
		{"메모 1001자", func(f *domain.ClientEditForm) { f.Notes = strings.Repeat("가", 1001) }, "notes"},
		{"중요도 없음", func(f *domain.ClientEditForm) { f.Importance = "" }, "importance"},
		{"중요도 미정의 값", func(f *domain.ClientEditForm) { f.Importance = "urgent" }, "importance"},
		{"운전면허 미입력", func(f *domain.ClientEditForm) { f.HasDrivingLicense = nil }, "hasDrivingLicense"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			got := Validate(form)
			if got.IsValid {
				t.Fatal("expected validation failure")
			}
			found := false
			for _, e := range got.Errors {
				if strings.HasPrefix(e, tt.wantField+":") {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("errors %v missing entry for field %q", got.Errors, tt.wantField)
			}
		})
	}
}

// 전화번호는 하이픈 유무와 가운데 3~4자리를 모두 허용한다.
func TestValidate_PhoneVariants(t *testing.T) {
	valid := []string{"01012345678", "010-1234-5678", "011-123-4567", "0161234567", "019-9876-5432"}
	for _, phone := range valid {
		form := validForm()
		form.Phone = phone
		if got := Validate(form); !got.IsValid {
			t.Errorf("phone %q should be valid, got %v", phone, got.Errors)
		}
	}

	invalid := []string{"010-12-5678", "012-1234-5678", "010-1234-567", "010 1234 5678"}
	for _, phone := range invalid {
		form := validForm()
		form.Phone = phone
		if got := Validate(form); got.IsValid {
			t.Errorf("phone %q should be rejected", phone)
		}
	}
}

// 여러 필드가 동시에 틀리면 에러도 모두 수집되어야 한다. (short-circuit 금지)
func TestValidate_CollectsAllErrors(t *testing.T) {
	form := validForm()
	form.FullName = ""
	form.Phone = "123"

	got := Validate(form)
	if got.IsValid {
		t.Fatal("expected validation failure")
	}
	if len(got.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(got.Errors), got.Errors)
	}
}
