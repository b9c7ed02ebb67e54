package auth

import (
	"context"
	stdErrors "errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/kapu/customer-crm-go/internal/service/cache"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}

	mini := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mini.Addr())
	if err != nil {
		t.Fatalf("failed to split address: %v", err)
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{net.JoinHostPort(host, port)},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("failed to create valkey client: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cacheSvc := cache.NewCacheServiceWithClient(client, logger)
	t.Cleanup(func() {
		cacheSvc.Close()
		mini.Close()
	})

	svc, err := NewService(context.Background(), db, cacheSvc, logger, DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create auth service: %v", err)
	}
	return svc, mini
}

func mustRegister(t *testing.T, svc *Service, email string) *Agent {
	t.Helper()
	agent, err := svc.Register(context.Background(), email, "passw0rd123", "김설계")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return agent
}

func assertCode(t *testing.T, err error, want ErrorCode) {
	t.Helper()
	var authErr *Error
	if !stdErrors.As(err, &authErr) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if authErr.Code != want {
		t.Fatalf("code = %s, want %s", authErr.Code, want)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		password string
		fullName string
	}{
		{"bad email", "not-an-email", "passw0rd123", "김설계"},
		{"short password", "a@example.com", "pw1", "김설계"},
		{"password without digit", "a@example.com", "password", "김설계"},
		{"empty name", "a@example.com", "passw0rd123", "  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.email, tc.password, tc.fullName)
			assertCode(t, err, CodeInvalidInput)
		})
	}
}

func TestService_RegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)

	mustRegister(t, svc, "agent@example.com")
	_, err := svc.Register(context.Background(), "agent@example.com", "passw0rd123", "다른설계")
	assertCode(t, err, CodeEmailExists)
}

func TestService_LoginAndMe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered := mustRegister(t, svc, "agent@example.com")

	session, agent, err := svc.Login(ctx, "agent@example.com", "passw0rd123", "10.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.Token == "" || !session.ExpiresAt.After(time.Now()) {
		t.Fatalf("unexpected session: %+v", session)
	}
	if agent.ID != registered.ID {
		t.Fatalf("agent id = %q, want %q", agent.ID, registered.ID)
	}

	me, err := svc.Me(ctx, session.Token)
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if me.Email != "agent@example.com" {
		t.Fatalf("email = %q", me.Email)
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	mustRegister(t, svc, "agent@example.com")
	_, _, err := svc.Login(context.Background(), "agent@example.com", "wrongpass1", "10.0.0.1")
	assertCode(t, err, CodeInvalidCredentials)
}

func TestService_AccountLockAfterRepeatedFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "agent@example.com")

	for i := 0; i < int(svc.cfg.LoginFailLimit); i++ {
		_, _, err := svc.Login(ctx, "agent@example.com", "wrongpass1", "")
		assertCode(t, err, CodeInvalidCredentials)
	}

	// 잠금 이후에는 올바른 비밀번호로도 로그인이 거부된다.
	_, _, err := svc.Login(ctx, "agent@example.com", "passw0rd123", "")
	assertCode(t, err, CodeAccountLocked)
}

func TestService_LockExpiresAndResetsOnSuccess(t *testing.T) {
	svc, mini := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "agent@example.com")

	for i := 0; i < int(svc.cfg.LoginFailLimit); i++ {
		_, _, _ = svc.Login(ctx, "agent@example.com", "wrongpass1", "")
	}

	mini.FastForward(svc.cfg.LoginLockDuration + time.Minute)

	if _, _, err := svc.Login(ctx, "agent@example.com", "passw0rd123", ""); err != nil {
		t.Fatalf("login after lock expiry failed: %v", err)
	}

	// 성공 후 실패 카운터가 리셋되어 1회 실패로는 잠기지 않는다.
	_, _, err := svc.Login(ctx, "agent@example.com", "wrongpass1", "")
	assertCode(t, err, CodeInvalidCredentials)
	if _, _, err := svc.Login(ctx, "agent@example.com", "passw0rd123", ""); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func TestService_LogoutInvalidatesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "agent@example.com")
	session, _, err := svc.Login(ctx, "agent@example.com", "passw0rd123", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	_, err = svc.Me(ctx, session.Token)
	assertCode(t, err, CodeUnauthorized)

	// 이미 무효화된 토큰으로 로그아웃 재시도
	err = svc.Logout(ctx, session.Token)
	assertCode(t, err, CodeUnauthorized)
}

func TestService_RefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "agent@example.com")
	session, _, err := svc.Login(ctx, "agent@example.com", "passw0rd123", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	renewed, err := svc.Refresh(ctx, session.Token)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if renewed.Token == session.Token {
		t.Fatal("expected a new token")
	}

	// 이전 토큰은 더 이상 유효하지 않다.
	_, err = svc.Me(ctx, session.Token)
	assertCode(t, err, CodeUnauthorized)
	if _, err := svc.Me(ctx, renewed.Token); err != nil {
		t.Fatalf("me with renewed token failed: %v", err)
	}
}

func TestService_PasswordResetRevokesSessions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustRegister(t, svc, "agent@example.com")
	session, _, err := svc.Login(ctx, "agent@example.com", "passw0rd123", "")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	token, err := svc.RequestPasswordReset(ctx, "agent@example.com")
	if err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected reset token")
	}

	if err := svc.ResetPassword(ctx, token, "newpassw0rd"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	// 기존 세션 전부 폐기
	_, err = svc.Me(ctx, session.Token)
	assertCode(t, err, CodeUnauthorized)

	// 새 비밀번호로 로그인, 이전 비밀번호는 거부
	if _, _, err := svc.Login(ctx, "agent@example.com", "newpassw0rd", ""); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	_, _, err = svc.Login(ctx, "agent@example.com", "passw0rd123", "")
	assertCode(t, err, CodeInvalidCredentials)

	// 재설정 토큰은 1회용
	err = svc.ResetPassword(ctx, token, "anotherpass1")
	assertCode(t, err, CodeInvalidInput)
}

func TestService_ResetForUnknownEmailDoesNotLeak(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.RequestPasswordReset(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("request reset failed: %v", err)
	}
	if token != "" {
		t.Fatal("expected empty token for unknown email")
	}
}
