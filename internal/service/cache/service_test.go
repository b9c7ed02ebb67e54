package cache

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"
)

type testPayload struct {
	Name string `json:"name"`
}

func newTestCacheService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()

	mini := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mini.Addr())
	if err != nil {
		t.Fatalf("failed to split address: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{net.JoinHostPort(host, portStr)},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("failed to create valkey client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		t.Fatalf("failed to ping miniredis: %v", err)
	}
	svc := NewCacheServiceWithClient(client, logger)

	t.Cleanup(func() {
		svc.Close()
		mini.Close()
	})

	return svc, mini
}

func TestCacheService_SetGetDelete(t *testing.T) {
	svc, _ := newTestCacheService(t)
	ctx := context.Background()

	value := testPayload{Name: "고객A"}
	if err := svc.Set(ctx, "crm:test", value, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	var got testPayload
	found, err := svc.Get(ctx, "crm:test", &got)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if got.Name != "고객A" {
		t.Fatalf("unexpected value: %+v", got)
	}

	if err := svc.Delete(ctx, "crm:test"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	found, err = svc.Get(ctx, "crm:test", &got)
	if err != nil {
		t.Fatalf("get after delete failed: %v", err)
	}
	if found {
		t.Fatal("expected key to be gone")
	}
}

func TestCacheService_GetMissingKeyIsNotError(t *testing.T) {
	svc, _ := newTestCacheService(t)

	var got testPayload
	found, err := svc.Get(context.Background(), "crm:missing", &got)
	if err != nil {
		t.Fatalf("missing key must not be an error: %v", err)
	}
	if found {
		t.Fatal("missing key reported as found")
	}
}

func TestCacheService_IncrAndExpire(t *testing.T) {
	svc, mini := newTestCacheService(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := svc.Incr(ctx, "crm:counter")
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("incr = %d, want %d", got, want)
		}
	}

	if err := svc.Expire(ctx, "crm:counter", time.Minute); err != nil {
		t.Fatalf("expire failed: %v", err)
	}

	mini.FastForward(2 * time.Minute)

	exists, err := svc.Exists(ctx, "crm:counter")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if exists {
		t.Fatal("expected counter to expire")
	}
}

func TestCacheService_TTLExpiry(t *testing.T) {
	svc, mini := newTestCacheService(t)
	ctx := context.Background()

	if err := svc.Set(ctx, "crm:ttl", testPayload{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	mini.FastForward(2 * time.Minute)

	var got testPayload
	found, err := svc.Get(ctx, "crm:ttl", &got)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if found {
		t.Fatal("expected entry to expire")
	}
}
