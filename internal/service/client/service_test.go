package client

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/pkg/errors"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := NewRepository(db, logger)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return NewService(repo, nil, nil, logger).WithClock(func() time.Time { return testNow })
}

func boolPtr(b bool) *bool { return &b }

func validForm() domain.ClientEditForm {
	return domain.ClientEditForm{
		FullName:          "김민수",
		SSNFront:          "771111",
		SSNBack:           "1234567",
		Phone:             "010-1234-5678",
		Email:             "minsu@example.com",
		Occupation:        "자영업",
		HeightCm:          "175",
		WeightKg:          "72",
		Importance:        "high",
		HasDrivingLicense: boolPtr(true),
	}
}

func TestService_CreateDerivesIdentity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, result, err := svc.Create(ctx, "agent-1", validForm())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected valid form, got errors: %v", result.Errors)
	}

	if c.BirthDate == nil {
		t.Fatal("expected birth date to be derived")
	}
	wantBirth := time.Date(1977, 11, 11, 0, 0, 0, 0, time.UTC)
	if !c.BirthDate.Equal(wantBirth) {
		t.Fatalf("birth date = %v, want %v", c.BirthDate, wantBirth)
	}
	if c.Gender != domain.GenderMale {
		t.Fatalf("gender = %q, want male", c.Gender)
	}
	if c.EncodedID != "771111-1******" {
		t.Fatalf("encoded id = %q", c.EncodedID)
	}

	// 전화번호는 하이픈 없이 숫자만 저장한다.
	if c.Phone != "01012345678" {
		t.Fatalf("phone = %q, want normalized digits", c.Phone)
	}

	// 원문 주민번호 뒷자리가 어디에도 남지 않아야 한다.
	stored, err := svc.Get(ctx, "agent-1", c.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.EncodedID != "771111-1******" {
		t.Fatalf("stored encoded id = %q", stored.EncodedID)
	}
}

func TestService_CreateRejectsInvalidForm(t *testing.T) {
	svc := newTestService(t)

	form := validForm()
	form.FullName = ""
	form.Phone = "02-123-4567"

	c, result, err := svc.Create(context.Background(), "agent-1", form)
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected validation failure")
	}
	if c != nil {
		t.Fatal("expected no client on validation failure")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %v, want 2 entries", result.Errors)
	}
}

func TestService_CreateRejectsBadResidentID(t *testing.T) {
	svc := newTestService(t)

	form := validForm()
	form.SSNBack = "9234567" // 코드 9는 유효 범위 밖

	_, result, err := svc.Create(context.Background(), "agent-1", form)
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected validation failure for bad gender code")
	}
}

func TestService_CreateWithoutResidentID(t *testing.T) {
	svc := newTestService(t)

	form := validForm()
	form.SSNFront = ""
	form.SSNBack = ""

	c, result, err := svc.Create(context.Background(), "agent-1", form)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("expected valid form, got %v", result.Errors)
	}
	if c.BirthDate != nil || c.EncodedID != "" {
		t.Fatal("expected no identity data without resident id input")
	}
	if c.Gender != domain.GenderUnknown {
		t.Fatalf("gender = %q, want unknown", c.Gender)
	}
}

func TestService_UpdateScopedToAgent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, _, err := svc.Create(ctx, "agent-1", validForm())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 다른 설계사가 수정 시도하면 존재하지 않는 것처럼 동작한다.
	form := validForm()
	form.FullName = "박영희"
	_, _, err = svc.Update(ctx, "agent-2", c.ID, form)
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found for foreign agent, got %v", err)
	}

	updated, result, err := svc.Update(ctx, "agent-1", c.ID, form)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !result.IsValid {
		t.Fatalf("unexpected validation errors: %v", result.Errors)
	}
	if updated.FullName != "박영희" {
		t.Fatalf("full name = %q", updated.FullName)
	}
}

func TestService_ReplaceTagsDeduplicates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, _, err := svc.Create(ctx, "agent-1", validForm())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	tags := []string{"VIP", " VIP ", "골프", "", "골프"}
	if err := svc.ReplaceTags(ctx, "agent-1", c.ID, tags); err != nil {
		t.Fatalf("replace tags failed: %v", err)
	}

	stored, err := svc.Get(ctx, "agent-1", c.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Tags) != 2 || stored.Tags[0] != "VIP" || stored.Tags[1] != "골프" {
		t.Fatalf("tags = %v", stored.Tags)
	}
}

func TestService_ListFiltersByAgentAndQuery(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	names := []string{"김민수", "김영희", "이철수"}
	for _, name := range names {
		form := validForm()
		form.FullName = name
		if _, _, err := svc.Create(ctx, "agent-1", form); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	other := validForm()
	other.FullName = "김민수"
	if _, _, err := svc.Create(ctx, "agent-2", other); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	all, err := svc.List(ctx, "agent-1", "", 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("list = %d clients, want 3", len(all))
	}

	kims, err := svc.List(ctx, "agent-1", "김", 0, 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(kims) != 2 {
		t.Fatalf("search = %d clients, want 2", len(kims))
	}
}

func TestService_GetDetailComputesDerivedValues(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, _, err := svc.Create(ctx, "agent-1", validForm())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	detail, err := svc.GetDetail(ctx, "agent-1", c.ID)
	if err != nil {
		t.Fatalf("get detail failed: %v", err)
	}

	// 1977-11-11 출생, 기준 시각 2024-06-01
	if detail.StandardAge == nil || *detail.StandardAge != 46 {
		t.Fatalf("standard age = %v, want 46", detail.StandardAge)
	}
	if detail.KoreanAge == nil || *detail.KoreanAge != 48 {
		t.Fatalf("korean age = %v, want 48", detail.KoreanAge)
	}
	if detail.InsuranceAge == nil || *detail.InsuranceAge != 47 {
		t.Fatalf("insurance age = %v, want 47", detail.InsuranceAge)
	}

	// 175cm / 72kg -> BMI 23.5, 남성 기준 정상
	if detail.BMI == nil || *detail.BMI != 23.5 {
		t.Fatalf("bmi = %v, want 23.5", detail.BMI)
	}
	if detail.BMIClass == nil || detail.BMIClass.Status != "정상" {
		t.Fatalf("bmi class = %+v", detail.BMIClass)
	}
}

func TestService_DeleteRemovesClient(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, _, err := svc.Create(ctx, "agent-1", validForm())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(ctx, "agent-1", c.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, "agent-1", c.ID); !errors.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, "agent-1", c.ID); !errors.IsNotFound(err) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}
