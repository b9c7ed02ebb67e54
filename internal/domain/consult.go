package domain

import "time"

// ConsultNote: 상담 기록 탭의 한 항목
type ConsultNote struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ConsultAt time.Time `json:"consultAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MedicalHistory: 병력 탭의 한 항목 (진단명, 치료 상태, 시기)
type MedicalHistory struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"clientId"`
	Condition   string    `json:"condition"`
	Treatment   string    `json:"treatment,omitempty"`
	DiagnosedAt string    `json:"diagnosedAt,omitempty"` // 고객 구술 기반이라 자유 형식 (예: "2019년경")
	IsOngoing   bool      `json:"isOngoing"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CheckupPurpose: 보장 점검 목적 탭의 한 항목
type CheckupPurpose struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Purpose   string    `json:"purpose"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Interest: 관심사 탭의 한 항목
type Interest struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Topic     string    `json:"topic"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DetailCounts: 고객 상세 화면 탭별 항목 수 집계
type DetailCounts struct {
	Notes      int64 `json:"notes"`
	Medical    int64 `json:"medical"`
	Checkups   int64 `json:"checkups"`
	Interests  int64 `json:"interests"`
	Companions int64 `json:"companions"`
}

// Companion: 동반 가입 대상(가족 등) 탭의 한 항목
type Companion struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Name      string    `json:"name"`
	Relation  string    `json:"relation"` // 배우자/자녀/부모 등
	BirthYear int       `json:"birthYear,omitempty"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
