// Package app: 런타임 조립과 서버 수명주기 관리.
package app

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kapu/customer-crm-go/internal/config"
	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/health"
	"github.com/kapu/customer-crm-go/internal/platform/bootstrap"
	"github.com/kapu/customer-crm-go/internal/server"
	"github.com/kapu/customer-crm-go/internal/service/activity"
	"github.com/kapu/customer-crm-go/internal/service/auth"
	"github.com/kapu/customer-crm-go/internal/service/client"
	"github.com/kapu/customer-crm-go/internal/service/consult"
	"github.com/kapu/customer-crm-go/internal/service/pipeline"
	"github.com/kapu/customer-crm-go/internal/service/system"
)

// Runtime 는 타입이다.
type Runtime struct {
	Config *config.Config
	Logger *slog.Logger

	Clients *client.Service

	APIAddr   string
	APIServer *http.Server

	cleanup func()
}

// Close - 런타임 리소스 정리 (DB, 캐시 연결 해제)
func (r *Runtime) Close() {
	if r != nil && r.cleanup != nil {
		r.cleanup()
	}
}

// BuildRuntime 는 동작을 수행한다.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	buildCtx, cancel := context.WithTimeout(ctx, constants.AppTimeout.Build)
	defer cancel()

	dbRes, err := bootstrap.NewDatabaseResources(cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("런타임 초기화 실패: %w", err)
	}

	cacheRes, err := bootstrap.NewCacheResources(cfg.Valkey, logger)
	if err != nil {
		dbRes.Close()
		return nil, fmt.Errorf("런타임 초기화 실패: %w", err)
	}

	cleanup := func() {
		cacheRes.Close()
		dbRes.Close()
	}

	gormDB := dbRes.Service.GetGormDB()

	clientRepo := client.NewRepository(gormDB, logger)
	consultRepo := consult.NewRepository(gormDB, logger)
	pipelineRepo := pipeline.NewRepository(gormDB, logger)
	for _, ensure := range []func(context.Context) error{
		clientRepo.EnsureSchema,
		consultRepo.EnsureSchema,
		pipelineRepo.EnsureSchema,
	} {
		if err := ensure(buildCtx); err != nil {
			cleanup()
			return nil, fmt.Errorf("스키마 준비 실패: %w", err)
		}
	}

	detailCache := client.NewDetailCache(cacheRes.Service, logger)
	consultSvc := consult.NewService(consultRepo, detailCache, logger)
	clientSvc := client.NewService(clientRepo, detailCache, consultSvc, logger)
	pipelineSvc := pipeline.NewService(pipelineRepo, cacheRes.Service, logger)

	authCfg := auth.DefaultConfig()
	authCfg.SessionTTL = cfg.Server.SessionTTL
	authSvc, err := auth.NewService(buildCtx, gormDB, cacheRes.Service, logger, authCfg)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("인증 서비스 초기화 실패: %w", err)
	}

	activityLogger := activity.NewActivityLogger(filepath.Join(cfg.Logging.Dir, "activity.jsonl"), logger)
	collector := system.NewCollector()

	apiHandler := server.NewAPIHandler(clientSvc, consultSvc, pipelineSvc, cacheRes.Service, dbRes.Service, activityLogger, collector, logger)
	authHandler := server.NewAuthHandler(authSvc, activityLogger, server.NewLoginRateLimiter(), logger)

	router, err := ProvideAPIRouter(ctx, cfg, logger, apiHandler, authHandler)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("라우터 초기화 실패: %w", err)
	}

	health.Init(cfg.Version)

	addr := ProvideAPIAddr(cfg)
	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Clients:   clientSvc,
		APIAddr:   addr,
		APIServer: ProvideAPIServer(addr, router),
		cleanup:   cleanup,
	}, nil
}

// StartAPIServer 는 동작을 수행한다.
func (r *Runtime) StartAPIServer(errCh chan<- error) {
	if r == nil || r.APIServer == nil {
		return
	}

	go func() {
		if err := r.APIServer.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			if errCh != nil {
				errCh <- fmt.Errorf("HTTP server error: %w", err)
				return
			}
			if r.Logger != nil {
				r.Logger.Error("HTTP server error", slog.Any("error", err))
			}
		}
	}()
}

// ShutdownAPIServer 는 동작을 수행한다.
func (r *Runtime) ShutdownAPIServer(ctx context.Context) error {
	if r == nil || r.APIServer == nil {
		return nil
	}
	if err := r.APIServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	return nil
}

// Start 는 동작을 수행한다.
func (r *Runtime) Start(ctx context.Context, errCh chan<- error) {
	if r == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// 최근 수정 고객의 상세 집계를 백그라운드로 프리로드
	if r.Clients != nil {
		go r.Clients.WarmUpCache(ctx)
	}

	r.StartAPIServer(errCh)
	if r.Logger != nil && r.APIAddr != "" {
		r.Logger.Info("API server started", slog.String("addr", r.APIAddr))
	}
}

// Shutdown 는 동작을 수행한다.
func (r *Runtime) Shutdown(ctx context.Context) {
	if r == nil {
		return
	}

	if err := r.ShutdownAPIServer(ctx); err != nil {
		if r.Logger != nil {
			r.Logger.Error("HTTP server shutdown error", slog.Any("error", err))
		}
	}
}

// Run 는 동작을 수행한다.
func (r *Runtime) Run() {
	if r == nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	r.Start(ctx, errCh)
	if r.Logger != nil {
		r.Logger.Info("Server started, waiting for signals...")
	}

	select {
	case sig := <-sigCh:
		if r.Logger != nil {
			r.Logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		}
	case err := <-errCh:
		if r.Logger != nil {
			r.Logger.Error("Server error", slog.Any("error", err))
		}
	}

	if r.Logger != nil {
		r.Logger.Info("Shutting down gracefully...")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.AppTimeout.Shutdown)
	defer shutdownCancel()

	r.Shutdown(shutdownCtx)

	if r.Logger != nil {
		r.Logger.Info("Shutdown complete")
	}
}
