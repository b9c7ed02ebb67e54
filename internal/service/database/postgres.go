// Package database: PostgreSQL 연결과 GORM 인스턴스 관리.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL 드라이버 등록 (인증 서비스의 중복 키 판별도 이 드라이버 에러를 본다)
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/util"
)

// PostgresService: CRM 영속 계층의 단일 진입점.
// 리포지토리들은 GORM 인스턴스만 받아가고, 풀/수명 관리는 여기서 한다.
type PostgresService struct {
	db     *sql.DB
	gormDB *gorm.DB
	logger *slog.Logger
}

// PostgresConfig: PostgreSQL 접속 정보를 담는 설정 구조체.
// SSLMode가 비어 있으면 disable로 접속한다. (사내망 단일 인스턴스 기본값)
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// dsn: lib/pq 형식의 접속 문자열을 만든다.
// application_name을 고정해 pg_stat_activity에서 CRM 세션을 구분할 수 있게 한다.
func (cfg PostgresConfig) dsn() string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	pairs := []string{
		fmt.Sprintf("host=%s", cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		fmt.Sprintf("user=%s", cfg.User),
		fmt.Sprintf("password=%s", cfg.Password),
		fmt.Sprintf("dbname=%s", cfg.Database),
		fmt.Sprintf("sslmode=%s", sslMode),
		"application_name=customer-crm",
		fmt.Sprintf("connect_timeout=%d", int(constants.RequestTimeout.DatabasePing.Seconds())),
	}
	return strings.Join(pairs, " ")
}

// NewPostgresService: 연결을 수립하고 풀 설정과 초기 Ping까지 마친 서비스를 반환한다.
// GORM의 NowFunc는 서비스 전반과 동일하게 KST 시계를 쓴다.
func NewPostgresService(cfg PostgresConfig, logger *slog.Logger) (*PostgresService, error) {
	db, err := sql.Open("postgres", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(constants.DatabaseConfig.MaxOpenConns)
	db.SetMaxIdleConns(constants.DatabaseConfig.MaxIdleConns)
	db.SetConnMaxLifetime(constants.DatabaseConfig.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout.DatabasePing)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger:  gormLogger.Default.LogMode(gormLogger.Silent),
		NowFunc: util.NowKST,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	logger.Info("PostgreSQL connected",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.Database),
	)

	return &PostgresService{
		db:     db,
		gormDB: gormDB,
		logger: logger,
	}, nil
}

// GetGormDB: GORM DB 인스턴스를 반환한다. 리포지토리 생성 시 주입한다.
func (ps *PostgresService) GetGormDB() *gorm.DB {
	return ps.gormDB
}

// Ping: 데이터베이스 연결 상태를 확인한다. (시스템 상태 엔드포인트용)
func (ps *PostgresService) Ping(ctx context.Context) error {
	if err := ps.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// Close: 데이터베이스 연결을 안전하게 종료한다.
func (ps *PostgresService) Close() error {
	if ps.db == nil {
		return nil
	}
	if err := ps.db.Close(); err != nil {
		return fmt.Errorf("failed to close postgres: %w", err)
	}
	return nil
}
