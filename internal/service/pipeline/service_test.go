package pipeline

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
		t.Fatalf("failed to create pipeline schema: %v", err)
	}

	clients := clientService.NewService(clientRepo, nil, nil, logger)
	c, result, err := clients.Create(ctx, "agent-1", domain.ClientEditForm{
		FullName:          "김민수",
		Importance:        "high",
		HasDrivingLicense: boolPtr(true),
	})
	if err != nil || !result.IsValid {
		t.Fatalf("failed to seed client: err=%v result=%+v", err, result)
	}

	svc := NewService(repo, nil, logger).WithClock(func() time.Time { return testNow })
	return svc, c.ID
}

func TestService_CreateStartsAtProspect(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	opp, err := svc.Create(ctx, "agent-1", clientID, "종신보험", 150000, "지인 소개")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if opp.Stage != domain.StageProspect {
		t.Fatalf("stage = %q, want prospect", opp.Stage)
	}
	if opp.StageLabel != "잠재 고객" {
		t.Fatalf("label = %q", opp.StageLabel)
	}

	history, err := svc.History(ctx, "agent-1", opp.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 || history[0].ToStage != domain.StageProspect || history[0].FromStage != "" {
		t.Fatalf("unexpected initial history: %+v", history)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "agent-1", clientID, "  ", 0, ""); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for empty category, got %v", err)
	}
	if _, err := svc.Create(ctx, "agent-1", clientID, "건강보험", -1, ""); !errors.IsValidation(err) {
		t.Fatalf("expected validation error for negative premium, got %v", err)
	}
	if _, err := svc.Create(ctx, "agent-2", clientID, "건강보험", 0, ""); !errors.IsNotFound(err) {
		t.Fatalf("expected not found for foreign agent, got %v", err)
	}
}

func TestService_AdvanceThroughFullPipeline(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	opp, err := svc.Create(ctx, "agent-1", clientID, "종신보험", 150000, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	want := []domain.OpportunityStage{
		domain.StageConsult,
		domain.StageProposal,
		domain.StageContract,
		domain.StageClosedWon,
	}
	for _, stage := range want {
		opp, err = svc.Advance(ctx, "agent-1", opp.ID)
		if err != nil {
			t.Fatalf("advance to %s failed: %v", stage, err)
		}
		if opp.Stage != stage {
			t.Fatalf("stage = %q, want %q", opp.Stage, stage)
		}
	}

	// 종결 이후에는 어느 방향으로도 움직일 수 없다.
	if _, err := svc.Advance(ctx, "agent-1", opp.ID); !errors.IsTransition(err) {
		t.Fatalf("expected transition error after close, got %v", err)
	}
	if _, err := svc.Demote(ctx, "agent-1", opp.ID); !errors.IsTransition(err) {
		t.Fatalf("expected transition error after close, got %v", err)
	}

	history, err := svc.History(ctx, "agent-1", opp.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("history = %d entries, want 5", len(history))
	}
	if history[4].FromStage != domain.StageContract || history[4].ToStage != domain.StageClosedWon {
		t.Fatalf("last transition = %+v", history[4])
	}
}

func TestService_DemoteAndBoundaries(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	opp, err := svc.Create(ctx, "agent-1", clientID, "건강보험", 80000, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 첫 단계에서는 후퇴 불가.
	if _, err := svc.Demote(ctx, "agent-1", opp.ID); !errors.IsTransition(err) {
		t.Fatalf("expected transition error at first stage, got %v", err)
	}

	opp, err = svc.Advance(ctx, "agent-1", opp.ID)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	opp, err = svc.Demote(ctx, "agent-1", opp.ID)
	if err != nil {
		t.Fatalf("demote failed: %v", err)
	}
	if opp.Stage != domain.StageProspect {
		t.Fatalf("stage = %q, want prospect", opp.Stage)
	}
}

func TestService_MarkLostFromAnyLinearStage(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	opp, err := svc.Create(ctx, "agent-1", clientID, "자동차보험", 60000, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	opp, err = svc.Advance(ctx, "agent-1", opp.ID)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	opp, err = svc.MarkLost(ctx, "agent-1", opp.ID)
	if err != nil {
		t.Fatalf("mark lost failed: %v", err)
	}
	if opp.Stage != domain.StageClosedLost {
		t.Fatalf("stage = %q, want closed_lost", opp.Stage)
	}

	// 실패 종결 후 재종결도 불가.
	if _, err := svc.MarkLost(ctx, "agent-1", opp.ID); !errors.IsTransition(err) {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestService_TransitionToRejectsSkips(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	opp, err := svc.Create(ctx, "agent-1", clientID, "종신보험", 150000, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 잠재 고객 -> 제안/견적 건너뛰기 금지.
	if _, err := svc.TransitionTo(ctx, "agent-1", opp.ID, domain.StageProposal); !errors.IsTransition(err) {
		t.Fatalf("expected transition error for skip, got %v", err)
	}
	// 모르는 단계도 금지.
	if _, err := svc.TransitionTo(ctx, "agent-1", opp.ID, domain.OpportunityStage("archived")); !errors.IsTransition(err) {
		t.Fatalf("expected transition error for unknown stage, got %v", err)
	}
}

func TestService_GetBoardGroupsByStage(t *testing.T) {
	svc, clientID := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "agent-1", clientID, "종신보험", 150000, "")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "agent-1", clientID, "건강보험", 80000, ""); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Advance(ctx, "agent-1", first.ID); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	board, err := svc.GetBoard(ctx, "agent-1")
	if err != nil {
		t.Fatalf("get board failed: %v", err)
	}
	if len(board.Columns) != 6 {
		t.Fatalf("columns = %d, want 6", len(board.Columns))
	}

	byStage := make(map[domain.OpportunityStage]BoardColumn)
	for _, col := range board.Columns {
		byStage[col.Stage] = col
	}
	if len(byStage[domain.StageProspect].Opportunities) != 1 {
		t.Fatalf("prospect column = %+v", byStage[domain.StageProspect])
	}
	if len(byStage[domain.StageConsult].Opportunities) != 1 {
		t.Fatalf("consult column = %+v", byStage[domain.StageConsult])
	}
	if byStage[domain.StageProspect].PremiumSum != 80000 {
		t.Fatalf("prospect premium sum = %d", byStage[domain.StageProspect].PremiumSum)
	}
	if byStage[domain.StageConsult].PremiumSum != 150000 {
		t.Fatalf("consult premium sum = %d", byStage[domain.StageConsult].PremiumSum)
	}
}
