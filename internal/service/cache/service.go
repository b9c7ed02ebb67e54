// Package cache: Valkey 기반 캐싱/세션 저장소.
package cache

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"log/slog"

	"github.com/goccy/go-json"
	"github.com/valkey-io/valkey-go"

	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/pkg/errors"
)

// Service: Valkey 클라이언트를 래핑하여 캐싱 기능을 제공하는 서비스
// 고객 상세 캐시 외에 인증 세션, 로그인 실패 카운터도 이 서비스를 통해 저장된다.
type Service struct {
	client    valkey.Client
	logger    *slog.Logger
	closeOnce sync.Once
}

// Config: Valkey 연결 설정을 담는 구조체
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewCacheService: 새로운 Valkey 캐시 서비스 인스턴스를 생성하고 연결을 수립한다.
func NewCacheService(cfg Config, logger *slog.Logger) (*Service, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ConnWriteTimeout:  constants.ValkeyConfig.ConnWriteTimeout,
		BlockingPoolSize:  constants.ValkeyConfig.BlockingPoolSize,
		PipelineMultiplex: constants.ValkeyConfig.PipelineMultiplex,
		Dialer:            net.Dialer{Timeout: constants.ValkeyConfig.DialTimeout},
	})
	if err != nil {
		return nil, errors.NewCacheError("failed to create cache client", "init", "", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ValkeyConfig.ReadyTimeout)
	defer cancel()

	// Ping 테스트
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, errors.NewCacheError("failed to connect to cache store", "ping", "", err)
	}

	logger.Info("Cache store connected",
		slog.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		slog.Int("db", cfg.DB),
	)

	return &Service{
		client: client,
		logger: logger,
	}, nil
}

// NewCacheServiceWithClient: 기존 클라이언트로 서비스를 생성한다. (테스트용)
func NewCacheServiceWithClient(client valkey.Client, logger *slog.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Get: 키에 해당하는 값을 조회하고, 결과를 dest 인터페이스에 언마샬링한다.
// 키가 없으면 에러 없이 found=false를 반환한다.
func (c *Service) Get(ctx context.Context, key string, dest any) (bool, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if valkey.IsValkeyNil(resp.Error()) {
		return false, nil
	}
	if resp.Error() != nil {
		c.logger.Error("Cache get operation failed", slog.String("key", key), slog.Any("error", resp.Error()))
		return false, errors.NewCacheError("get failed", "get", key, resp.Error())
	}

	value, err := resp.ToString()
	if err != nil {
		return false, errors.NewCacheError("conversion failed", "get", key, err)
	}

	if dest != nil {
		if err := json.Unmarshal([]byte(value), dest); err != nil {
			c.logger.Error("Cache value unmarshal failed", slog.String("key", key), slog.Any("error", err))
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}

	return true, nil
}

// Set: 값을 JSON으로 직렬화하여 TTL과 함께 저장한다.
func (c *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	builder := c.client.B().Set().Key(key).Value(string(data))
	var cmd valkey.Completed
	if ttl > 0 {
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Error("Cache set operation failed", slog.String("key", key), slog.Any("error", err))
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

// Delete: 키들을 삭제한다. 없는 키는 무시된다.
func (c *Service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Do(ctx, c.client.B().Del().Key(keys...).Build()).Error(); err != nil {
		c.logger.Error("Cache delete operation failed", slog.Int("keys", len(keys)), slog.Any("error", err))
		return errors.NewCacheError("delete failed", "delete", keys[0], err)
	}
	return nil
}

// Incr: 카운터 키를 1 증가시키고 증가 후 값을 반환한다. (로그인 실패 카운터용)
func (c *Service) Incr(ctx context.Context, key string) (int64, error) {
	resp := c.client.Do(ctx, c.client.B().Incr().Key(key).Build())
	if resp.Error() != nil {
		return 0, errors.NewCacheError("incr failed", "incr", key, resp.Error())
	}
	value, err := resp.AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("incr conversion failed", "incr", key, err)
	}
	return value, nil
}

// SAdd: Set에 멤버들을 추가한다. (세션 인덱스용)
func (c *Service) SAdd(ctx context.Context, key string, members []string) (int64, error) {
	resp := c.client.Do(ctx, c.client.B().Sadd().Key(key).Member(members...).Build())
	if resp.Error() != nil {
		return 0, errors.NewCacheError("sadd failed", "sadd", key, resp.Error())
	}
	added, err := resp.AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("sadd conversion failed", "sadd", key, err)
	}
	return added, nil
}

// SRem: Set에서 멤버들을 제거한다.
func (c *Service) SRem(ctx context.Context, key string, members []string) (int64, error) {
	resp := c.client.Do(ctx, c.client.B().Srem().Key(key).Member(members...).Build())
	if resp.Error() != nil {
		return 0, errors.NewCacheError("srem failed", "srem", key, resp.Error())
	}
	removed, err := resp.AsInt64()
	if err != nil {
		return 0, errors.NewCacheError("srem conversion failed", "srem", key, err)
	}
	return removed, nil
}

// SMembers: Set의 전체 멤버를 조회한다.
func (c *Service) SMembers(ctx context.Context, key string) ([]string, error) {
	resp := c.client.Do(ctx, c.client.B().Smembers().Key(key).Build())
	if resp.Error() != nil {
		return nil, errors.NewCacheError("smembers failed", "smembers", key, resp.Error())
	}
	members, err := resp.AsStrSlice()
	if err != nil {
		return nil, errors.NewCacheError("smembers conversion failed", "smembers", key, err)
	}
	return members, nil
}

// Expire: 키의 TTL을 설정한다.
func (c *Service) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.client.Do(ctx, c.client.B().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build()).Error(); err != nil {
		return errors.NewCacheError("expire failed", "expire", key, err)
	}
	return nil
}

// Exists: 키 존재 여부를 확인한다.
func (c *Service) Exists(ctx context.Context, key string) (bool, error) {
	resp := c.client.Do(ctx, c.client.B().Exists().Key(key).Build())
	if resp.Error() != nil {
		return false, errors.NewCacheError("exists failed", "exists", key, resp.Error())
	}
	count, err := resp.AsInt64()
	if err != nil {
		return false, errors.NewCacheError("exists conversion failed", "exists", key, err)
	}
	return count > 0, nil
}

// Ping: 연결 상태를 확인한다.
func (c *Service) Ping(ctx context.Context) error {
	if err := c.client.Do(ctx, c.client.B().Ping().Build()).Error(); err != nil {
		return errors.NewCacheError("ping failed", "ping", "", err)
	}
	return nil
}

// Close: 클라이언트 연결을 종료한다. (멱등)
func (c *Service) Close() {
	c.closeOnce.Do(func() {
		c.client.Close()
	})
}
