package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kapu/customer-crm-go/internal/config"
	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/health"
	"github.com/kapu/customer-crm-go/internal/server"
)

// ProvideAPIAddr: API 서버가 리슨할 주소를 반환합니다.
func ProvideAPIAddr(cfg *config.Config) string {
	return fmt.Sprintf(":%d", cfg.Server.Port)
}

// ProvideAPIServer: HTTP 서버 인스턴스를 생성합니다.
// H2C(HTTP/2 Cleartext)를 기본으로 사용하여 멀티플렉싱과 헤더 압축 이점을 제공한다.
func ProvideAPIServer(addr string, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           server.WrapH2C(router),
		ReadHeaderTimeout: constants.ServerTimeout.ReadHeader,
		ReadTimeout:       constants.ServerTimeout.Read,
		WriteTimeout:      constants.ServerTimeout.Write,
		IdleTimeout:       constants.ServerTimeout.Idle,
		MaxHeaderBytes:    constants.ServerTimeout.MaxHeaderBytes,
	}
}

// ProvideAPIRouter: CRM 도메인 API를 서빙하는 Gin 라우터를 설정합니다.
func ProvideAPIRouter(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	apiHandler *server.APIHandler,
	authHandler *server.AuthHandler,
) (*gin.Engine, error) {
	if apiHandler == nil {
		return nil, fmt.Errorf("api handler must not be nil")
	}
	if authHandler == nil {
		return nil, fmt.Errorf("auth handler must not be nil")
	}

	router, err := newAPIRouter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	registerHealthRoutes(router, cfg)
	registerAPIRoutes(router, apiHandler, authHandler)

	return router, nil
}

func newAPIRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := router.SetTrustedProxies(constants.ServerConfig.TrustedProxies); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	router.Use(gin.Recovery())
	router.Use(server.LoggerMiddleware(ctx, logger,
		"/health",
		"/metrics", // Prometheus 메트릭 폴링 (15초 간격)
	))
	router.Use(cors.New(newCORSConfig(cfg)))
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(server.SecurityHeadersMiddleware())

	return router, nil
}

func newCORSConfig(cfg *config.Config) cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = constants.CORSConfig.AllowOrigins
	if len(cfg.Server.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowOrigins
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = constants.CORSConfig.AllowMethods
	corsConfig.AllowHeaders = constants.CORSConfig.AllowHeaders
	return corsConfig
}

func registerHealthRoutes(router *gin.Engine, cfg *config.Config) {
	// Health check 엔드포인트 (버전/uptime 포함)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, health.Get())
	})

	// Prometheus 메트릭 (장기 히스토리 분석용)
	if cfg.Server.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

func registerAPIRoutes(
	router *gin.Engine,
	apiHandler *server.APIHandler,
	authHandler *server.AuthHandler,
) {
	// Session 기반 인증 API
	// logout/refresh/me는 핸들러가 직접 세션 토큰을 검증한다.
	authAPI := router.Group("/api/auth")
	authAPI.POST("/register", authHandler.Register)
	authAPI.POST("/login", authHandler.Login)
	authAPI.POST("/logout", authHandler.Logout)
	authAPI.POST("/refresh", authHandler.Refresh)
	authAPI.GET("/me", authHandler.Me)
	authAPI.POST("/password/reset-request", authHandler.ResetRequest)
	authAPI.POST("/password/reset", authHandler.ResetPassword)

	// CRM 도메인 API (세션 필수)
	api := router.Group("/api")
	api.Use(authHandler.SessionMiddleware())

	// 고객 프로필
	api.GET("/clients", apiHandler.ListClients)
	api.POST("/clients", apiHandler.CreateClient)
	api.POST("/clients/validate", apiHandler.ValidateClientForm)
	api.GET("/clients/:id", apiHandler.GetClientDetail)
	api.PUT("/clients/:id", apiHandler.UpdateClient)
	api.DELETE("/clients/:id", apiHandler.DeleteClient)
	api.PUT("/clients/:id/tags", apiHandler.ReplaceClientTags)

	// 상담 기록 탭
	api.GET("/clients/:id/notes", apiHandler.ListNotes)
	api.POST("/clients/:id/notes", apiHandler.AddNote)
	api.PUT("/clients/:id/notes/:noteId", apiHandler.UpdateNote)
	api.DELETE("/clients/:id/notes/:noteId", apiHandler.DeleteNote)

	// 병력 탭
	api.GET("/clients/:id/medical", apiHandler.ListMedical)
	api.POST("/clients/:id/medical", apiHandler.AddMedical)
	api.PUT("/clients/:id/medical/:itemId", apiHandler.UpdateMedical)
	api.DELETE("/clients/:id/medical/:itemId", apiHandler.DeleteMedical)

	// 점검 목적 탭
	api.GET("/clients/:id/checkups", apiHandler.ListCheckups)
	api.POST("/clients/:id/checkups", apiHandler.AddCheckup)
	api.DELETE("/clients/:id/checkups/:itemId", apiHandler.DeleteCheckup)

	// 관심사 탭
	api.GET("/clients/:id/interests", apiHandler.ListInterests)
	api.POST("/clients/:id/interests", apiHandler.AddInterest)
	api.DELETE("/clients/:id/interests/:itemId", apiHandler.DeleteInterest)

	// 동반자 탭
	api.GET("/clients/:id/companions", apiHandler.ListCompanions)
	api.POST("/clients/:id/companions", apiHandler.AddCompanion)
	api.PUT("/clients/:id/companions/:itemId", apiHandler.UpdateCompanion)
	api.DELETE("/clients/:id/companions/:itemId", apiHandler.DeleteCompanion)

	// 영업 기회 파이프라인
	api.GET("/clients/:id/opportunities", apiHandler.ListClientOpportunities)
	api.POST("/clients/:id/opportunities", apiHandler.CreateClientOpportunity)
	api.GET("/opportunities", apiHandler.GetPipelineBoard)
	api.GET("/opportunities/board", apiHandler.GetPipelineBoard)
	api.POST("/opportunities", apiHandler.CreateOpportunity)
	api.GET("/opportunities/:id", apiHandler.GetOpportunity)
	api.GET("/opportunities/:id/history", apiHandler.GetOpportunityHistory)
	api.POST("/opportunities/:id/advance", apiHandler.AdvanceOpportunity)
	api.POST("/opportunities/:id/demote", apiHandler.DemoteOpportunity)
	api.POST("/opportunities/:id/lost", apiHandler.MarkOpportunityLost)
	api.POST("/opportunities/:id/transition", apiHandler.TransitionOpportunity)

	// 주민번호/BMI 미리보기 (저장 없음)
	api.POST("/identity/parse", apiHandler.ParseIdentity)
	api.POST("/identity/bmi", apiHandler.ClassifyBMI)

	// 시스템 통계 + 활동 로그
	api.GET("/system", apiHandler.GetSystemStats)
	api.GET("/activity", apiHandler.GetActivityLogs)
}
