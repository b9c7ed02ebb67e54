package consult

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
	clientService "github.com/kapu/customer-crm-go/internal/service/client"
	"github.com/kapu/customer-crm-go/pkg/errors"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

// newTestService: 인메모리 DB에 고객 한 명을 심어 둔 서비스를 만든다.
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	clientRepo := clientService.NewRepository(db, logger)
	if err := clientRepo.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to create client schema: %v", err)
	}
	repo := NewRepository(db, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to create sub-resource schema: %v", err)
	}

	clients := clientService.NewService(clientRepo, nil, nil, logger)
	c, result, err := clients.Create(ctx, "agent-1", domain.ClientEditForm{
		FullName:          "김민수",
		Importance:        "medium",
		HasDrivingLicense: boolPtr(false),
	})
	if err != nil || !result.IsValid {
		t.Fatalf("failed to seed client: err=%v result=%+v", err, result)
	}

	svc := NewService(repo, nil, logger).WithClock(func() time.Time { return testNow })
	return svc, c.ID
}

func TestService_NoteLifecycle(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	note, err := svc.AddNote(ctx, "agent-1", clientID, domain.ConsultNote{
		Title:   "보장 분석 상담",
		Content: "암보험 보장 공백 안내",
	})
	if err != nil {
		t.Fatalf("add note failed: %v", err)
	}
	if note.ID == "" || !note.ConsultAt.Equal(testNow) {
		t.Fatalf("unexpected note: %+v", note)
	}

	note.Title = "보장 분석 상담 (2차)"
	updated, err := svc.UpdateNote(ctx, "agent-1", clientID, *note)
	if err != nil {
		t.Fatalf("update note failed: %v", err)
	}
	if updated.Title != "보장 분석 상담 (2차)" {
		t.Fatalf("title = %q", updated.Title)
	}

	notes, err := svc.ListNotes(ctx, "agent-1", clientID)
	if err != nil {
		t.Fatalf("list notes failed: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(notes))
	}

	if err := svc.DeleteNote(ctx, "agent-1", clientID, note.ID); err != nil {
		t.Fatalf("delete note failed: %v", err)
	}
	if err := svc.DeleteNote(ctx, "agent-1", clientID, note.ID); !errors.IsNotFound(err) {
		t.Fatalf("expected not found on double delete, got %v", err)
	}
}

func TestService_AddNoteRequiresTitle(t *testing.T) {
	svc, clientID := newTestService(t)

	_, err := svc.AddNote(context.Background(), "agent-1", clientID, domain.ConsultNote{
		Title: "   ",
	})
	var validationErr *errors.ValidationError
	if !errors.AsValidation(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validationErr.Field != "title" {
		t.Fatalf("field = %q, want title", validationErr.Field)
	}
}

func TestService_OwnershipGate(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	// 다른 설계사는 고객의 존재 자체를 알 수 없어야 한다.
	if _, err := svc.ListNotes(ctx, "agent-2", clientID); !errors.IsNotFound(err) {
		t.Fatalf("expected not found for foreign agent, got %v", err)
	}
	if _, err := svc.AddNote(ctx, "agent-2", clientID, domain.ConsultNote{Title: "x"}); !errors.IsNotFound(err) {
		t.Fatalf("expected not found for foreign agent, got %v", err)
	}
	if _, err := svc.Counts(ctx, "agent-2", clientID); !errors.IsNotFound(err) {
		t.Fatalf("expected not found for foreign agent, got %v", err)
	}
}

func TestService_MedicalLifecycle(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	item, err := svc.AddMedical(ctx, "agent-1", clientID, domain.MedicalHistory{
		Condition:   "고혈압",
		Treatment:   "투약 중",
		DiagnosedAt: "2019년경",
		IsOngoing:   true,
	})
	if err != nil {
		t.Fatalf("add medical failed: %v", err)
	}

	item.IsOngoing = false
	if _, err := svc.UpdateMedical(ctx, "agent-1", clientID, *item); err != nil {
		t.Fatalf("update medical failed: %v", err)
	}

	items, err := svc.ListMedical(ctx, "agent-1", clientID)
	if err != nil {
		t.Fatalf("list medical failed: %v", err)
	}
	if len(items) != 1 || items[0].IsOngoing {
		t.Fatalf("unexpected medical list: %+v", items)
	}
}

func TestService_CompanionValidation(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		item domain.Companion
	}{
		{"missing name", domain.Companion{Relation: "배우자"}},
		{"missing relation", domain.Companion{Name: "김영희"}},
		{"birth year too early", domain.Companion{Name: "김영희", Relation: "배우자", BirthYear: 1899}},
		{"birth year in future", domain.Companion{Name: "김영희", Relation: "배우자", BirthYear: 2025}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var validationErr *errors.ValidationError
			_, err := svc.AddCompanion(ctx, "agent-1", clientID, tc.item)
			if !errors.AsValidation(err, &validationErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := svc.AddCompanion(ctx, "agent-1", clientID, domain.Companion{
		Name: "김영희", Relation: "배우자", BirthYear: 1980,
	}); err != nil {
		t.Fatalf("add companion failed: %v", err)
	}
}

func TestService_CountsAggregateAllTabs(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddNote(ctx, "agent-1", clientID, domain.ConsultNote{Title: "상담"}); err != nil {
		t.Fatalf("add note failed: %v", err)
	}
	if _, err := svc.AddNote(ctx, "agent-1", clientID, domain.ConsultNote{Title: "상담 2"}); err != nil {
		t.Fatalf("add note failed: %v", err)
	}
	if _, err := svc.AddMedical(ctx, "agent-1", clientID, domain.MedicalHistory{Condition: "고혈압"}); err != nil {
		t.Fatalf("add medical failed: %v", err)
	}
	if _, err := svc.AddCheckup(ctx, "agent-1", clientID, domain.CheckupPurpose{Purpose: "암보험 점검"}); err != nil {
		t.Fatalf("add checkup failed: %v", err)
	}
	if _, err := svc.AddInterest(ctx, "agent-1", clientID, domain.Interest{Topic: "골프"}); err != nil {
		t.Fatalf("add interest failed: %v", err)
	}

	counts, err := svc.Counts(ctx, "agent-1", clientID)
	if err != nil {
		t.Fatalf("counts failed: %v", err)
	}
	want := domain.DetailCounts{Notes: 2, Medical: 1, Checkups: 1, Interests: 1, Companions: 0}
	if counts != want {
		t.Fatalf("counts = %+v, want %+v", counts, want)
	}
}
