package domain

// FormField: 고객 편집 폼의 한 필드에 대한 타입 안전한 설정 항목
// 문자열 키로 상태 객체를 인덱싱하는 대신 Get/Set 접근자를 직접 들고 다닌다.
type FormField struct {
	Key   string
	Label string // 한국어 라벨
	Get   func(*ClientEditForm) string
	Set   func(*ClientEditForm, string)
}

// ClientFormFields: 고객 편집 폼 필드의 정렬된 설정 목록
// 폼 조립과 변경 적용이 모두 이 목록을 순회한다.
var ClientFormFields = []FormField{
	{
		Key: "fullName", Label: "이름",
		Get: func(f *ClientEditForm) string { return f.FullName },
		Set: func(f *ClientEditForm, v string) { f.FullName = v },
	},
	{
		Key: "ssnFront", Label: "주민번호 앞자리",
		Get: func(f *ClientEditForm) string { return f.SSNFront },
		Set: func(f *ClientEditForm, v string) { f.SSNFront = v },
	},
	{
		Key: "ssnBack", Label: "주민번호 뒷자리",
		Get: func(f *ClientEditForm) string { return f.SSNBack },
		Set: func(f *ClientEditForm, v string) { f.SSNBack = v },
	},
	{
		Key: "phone", Label: "연락처",
		Get: func(f *ClientEditForm) string { return f.Phone },
		Set: func(f *ClientEditForm, v string) { f.Phone = v },
	},
	{
		Key: "email", Label: "이메일",
		Get: func(f *ClientEditForm) string { return f.Email },
		Set: func(f *ClientEditForm, v string) { f.Email = v },
	},
	{
		Key: "address", Label: "주소",
		Get: func(f *ClientEditForm) string { return f.Address },
		Set: func(f *ClientEditForm, v string) { f.Address = v },
	},
	{
		Key: "occupation", Label: "직업",
		Get: func(f *ClientEditForm) string { return f.Occupation },
		Set: func(f *ClientEditForm, v string) { f.Occupation = v },
	},
	{
		Key: "heightCm", Label: "키(cm)",
		Get: func(f *ClientEditForm) string { return f.HeightCm },
		Set: func(f *ClientEditForm, v string) { f.HeightCm = v },
	},
	{
		Key: "weightKg", Label: "몸무게(kg)",
		Get: func(f *ClientEditForm) string { return f.WeightKg },
		Set: func(f *ClientEditForm, v string) { f.WeightKg = v },
	},
	{
		Key: "notes", Label: "메모",
		Get: func(f *ClientEditForm) string { return f.Notes },
		Set: func(f *ClientEditForm, v string) { f.Notes = v },
	},
	{
		Key: "importance", Label: "중요도",
		Get: func(f *ClientEditForm) string { return f.Importance },
		Set: func(f *ClientEditForm, v string) { f.Importance = v },
	},
}

// FieldByKey: 키로 필드 설정을 찾습니다.
func FieldByKey(key string) (FormField, bool) {
	for _, field := range ClientFormFields {
		if field.Key == key {
			return field, true
		}
	}
	return FormField{}, false
}
