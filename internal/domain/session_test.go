package domain

import "testing"

func sampleClient() Client {
	return Client{
		ID:                "c-1",
		FullName:          "김민수",
		Phone:             "010-1234-5678",
		HeightCm:          "175",
		WeightKg:          "72",
		Importance:        ImportanceHigh,
		HasDrivingLicense: true,
	}
}

func TestClientDetailSession_BeginEditSeedsForm(t *testing.T) {
	sess := NewClientDetailSession("c-1")
	if sess.EditMode {
		t.Fatal("new session should not be in edit mode")
	}

	sess.BeginEdit(sampleClient())

	if !sess.EditMode {
		t.Fatal("edit mode should be on after BeginEdit")
	}
	if sess.PendingForm == nil {
		t.Fatal("pending form should be seeded")
	}
	if sess.PendingForm.FullName != "김민수" {
		t.Fatalf("fullName = %q", sess.PendingForm.FullName)
	}
	if sess.PendingForm.Importance != string(ImportanceHigh) {
		t.Fatalf("importance = %q", sess.PendingForm.Importance)
	}
	if sess.PendingForm.HasDrivingLicense == nil || !*sess.PendingForm.HasDrivingLicense {
		t.Fatal("driving license should carry over")
	}
	// 주민번호 원문은 프로필에 없으므로 폼에서도 비어 있어야 한다
	if sess.PendingForm.SSNFront != "" || sess.PendingForm.SSNBack != "" {
		t.Fatal("ssn segments must start empty")
	}
}

func TestClientDetailSession_ApplyFieldChange(t *testing.T) {
	sess := NewClientDetailSession("c-1")

	if sess.ApplyFieldChange("phone", "010-9999-0000") {
		t.Fatal("change without pending form should be rejected")
	}

	sess.BeginEdit(sampleClient())

	if !sess.ApplyFieldChange("phone", "010-9999-0000") {
		t.Fatal("known field key should apply")
	}
	if sess.PendingForm.Phone != "010-9999-0000" {
		t.Fatalf("phone = %q", sess.PendingForm.Phone)
	}
	if sess.ApplyFieldChange("nope", "x") {
		t.Fatal("unknown field key should be rejected")
	}
}

func TestFieldByKey_RoundTrip(t *testing.T) {
	field, ok := FieldByKey("ssnFront")
	if !ok {
		t.Fatal("ssnFront field missing")
	}

	form := &ClientEditForm{}
	field.Set(form, "771111")
	if got := field.Get(form); got != "771111" {
		t.Fatalf("get = %q", got)
	}
	if form.SSNFront != "771111" {
		t.Fatalf("form.SSNFront = %q", form.SSNFront)
	}

	if _, ok := FieldByKey("unknown"); ok {
		t.Fatal("unknown key should not resolve")
	}
}

func TestClientDetailSession_ModalsAndTags(t *testing.T) {
	sess := NewClientDetailSession("c-1")

	sess.OpenModal(ModalNoteEdit)
	sess.OpenModal(ModalTagPicker)
	if !sess.IsModalOpen(ModalNoteEdit) || !sess.IsModalOpen(ModalTagPicker) {
		t.Fatal("opened modals should report open")
	}
	sess.CloseModal(ModalNoteEdit)
	if sess.IsModalOpen(ModalNoteEdit) {
		t.Fatal("closed modal should report closed")
	}

	if !sess.ToggleTag("VIP") {
		t.Fatal("first toggle selects")
	}
	if sess.ToggleTag("VIP") {
		t.Fatal("second toggle deselects")
	}
	sess.ToggleTag("골프")
	if got := sess.SelectedTagList(); len(got) != 1 || got[0] != "골프" {
		t.Fatalf("selected tags = %v", got)
	}
}

func TestClientDetailSession_CancelEditDiscardsState(t *testing.T) {
	sess := NewClientDetailSession("c-1")
	sess.BeginEdit(sampleClient())
	sess.ApplyFieldChange("notes", "임시 메모")
	sess.OpenModal(ModalDeleteConfirm)

	sess.CancelEdit()

	if sess.EditMode {
		t.Fatal("edit mode should be off")
	}
	if sess.PendingForm != nil {
		t.Fatal("pending form should be discarded")
	}
	if sess.IsModalOpen(ModalDeleteConfirm) {
		t.Fatal("modals should be reset")
	}
}
