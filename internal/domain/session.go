package domain

// ModalKind: 고객 상세 화면에서 열릴 수 있는 모달의 종류
// 수십 개의 개별 boolean 플래그 대신 열린 모달 집합으로 관리한다.
type ModalKind string

// 모달 종류 상수
const (
	ModalNoteEdit       ModalKind = "note_edit"
	ModalMedicalEdit    ModalKind = "medical_edit"
	ModalCheckupEdit    ModalKind = "checkup_edit"
	ModalInterestEdit   ModalKind = "interest_edit"
	ModalCompanionEdit  ModalKind = "companion_edit"
	ModalTagPicker      ModalKind = "tag_picker"
	ModalOpportunity    ModalKind = "opportunity_wizard"
	ModalDeleteConfirm  ModalKind = "delete_confirm"
	ModalIdentityVerify ModalKind = "identity_verify"
)

// ClientDetailSession: 고객 상세 화면의 편집 세션 상태
// 편집 모드 여부, 열린 모달 집합, 태그 선택 집합, 검증 전 폼을 한 객체로 묶는다.
type ClientDetailSession struct {
	ClientID     string             `json:"clientId"`
	EditMode     bool               `json:"editMode"`
	OpenModals   map[ModalKind]bool `json:"openModals,omitempty"`
	SelectedTags map[string]bool    `json:"selectedTags,omitempty"`
	PendingForm  *ClientEditForm    `json:"pendingForm,omitempty"`
}

// NewClientDetailSession: 빈 편집 세션을 생성합니다.
func NewClientDetailSession(clientID string) *ClientDetailSession {
	return &ClientDetailSession{
		ClientID:     clientID,
		OpenModals:   make(map[ModalKind]bool),
		SelectedTags: make(map[string]bool),
	}
}

// BeginEdit: 편집 모드를 시작하고 현재 고객 값으로 폼을 초기화합니다.
func (s *ClientDetailSession) BeginEdit(c Client) {
	s.EditMode = true
	s.PendingForm = &ClientEditForm{
		FullName:          c.FullName,
		Phone:             c.Phone,
		Email:             c.Email,
		Address:           c.Address,
		Occupation:        c.Occupation,
		HeightCm:          c.HeightCm,
		WeightKg:          c.WeightKg,
		Notes:             c.Notes,
		Importance:        string(c.Importance),
		HasDrivingLicense: &c.HasDrivingLicense,
	}
}

// ApplyFieldChange: 필드 키에 해당하는 대기 폼 값을 갱신합니다.
// 편집 모드가 아니거나 알 수 없는 키면 false를 반환한다.
func (s *ClientDetailSession) ApplyFieldChange(key, value string) bool {
	if s.PendingForm == nil {
		return false
	}
	for _, field := range ClientFormFields {
		if field.Key == key {
			field.Set(s.PendingForm, value)
			return true
		}
	}
	return false
}

// CancelEdit: 편집을 취소하고 폼과 모달 상태를 버립니다.
func (s *ClientDetailSession) CancelEdit() {
	s.EditMode = false
	s.PendingForm = nil
	s.OpenModals = make(map[ModalKind]bool)
}

// OpenModal: 모달을 엽니다.
func (s *ClientDetailSession) OpenModal(kind ModalKind) {
	if s.OpenModals == nil {
		s.OpenModals = make(map[ModalKind]bool)
	}
	s.OpenModals[kind] = true
}

// CloseModal: 모달을 닫습니다.
func (s *ClientDetailSession) CloseModal(kind ModalKind) {
	delete(s.OpenModals, kind)
}

// IsModalOpen: 해당 모달이 열려있는지 확인합니다.
func (s *ClientDetailSession) IsModalOpen(kind ModalKind) bool {
	return s.OpenModals[kind]
}

// ToggleTag: 태그 선택 상태를 반전하고, 반전 후 선택 여부를 반환합니다.
func (s *ClientDetailSession) ToggleTag(tag string) bool {
	if s.SelectedTags == nil {
		s.SelectedTags = make(map[string]bool)
	}
	if s.SelectedTags[tag] {
		delete(s.SelectedTags, tag)
		return false
	}
	s.SelectedTags[tag] = true
	return true
}

// SelectedTagList: 선택된 태그 목록을 반환합니다. (순서 비보장)
func (s *ClientDetailSession) SelectedTagList() []string {
	tags := make([]string, 0, len(s.SelectedTags))
	for tag := range s.SelectedTags {
		tags = append(tags, tag)
	}
	return tags
}
