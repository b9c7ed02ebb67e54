// Package activity: 설계사 활동 로그 (파일 기반 JSONL).
package activity

import (
	"fmt"
	"os"
	"sync"
	"time"

	"log/slog"

	"github.com/goccy/go-json"
)

// 활동 유형 상수
const (
	TypeAuth     = "auth"     // 로그인/로그아웃
	TypeClient   = "client"   // 고객 생성/수정/삭제
	TypeConsult  = "consult"  // 상담/병력 등 하위 리소스 변경
	TypePipeline = "pipeline" // 영업 기회 단계 전이
	TypeSystem   = "system"   // 서버 기동/종료
)

// LogEntry: 활동 로그의 한 항목을 나타내는 구조체
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	AgentID   string         `json:"agentId,omitempty"`
	Type      string         `json:"type"`
	Summary   string         `json:"summary"`
	Details   map[string]any `json:"details,omitempty"`
}

// Logger: 파일 기반의 간단한 활동 로그 기록기
type Logger struct {
	filePath string
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewActivityLogger: 새로운 활동 로그 기록기를 생성한다.
func NewActivityLogger(filePath string, logger *slog.Logger) *Logger {
	return &Logger{
		filePath: filePath,
		logger:   logger,
	}
}

// Log: 새로운 활동 로그를 파일에 추가한다. (Thread-safe)
func (l *Logger) Log(agentID, entryType, summary string, details map[string]any) {
	entry := LogEntry{
		Timestamp: time.Now(),
		AgentID:   agentID,
		Type:      entryType,
		Summary:   summary,
		Details:   details,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.logger.Error("Failed to open activity log file", slog.Any("error", err))
		return
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		l.logger.Error("Failed to write activity log", slog.Any("error", err))
	}
}

// GetRecentLogs: 최근 활동 로그를 조회한다. agentID가 비어 있으면 전체를 반환한다.
func (l *Logger) GetRecentLogs(agentID string, limit int) ([]LogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, err := os.Open(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []LogEntry{}, nil
		}
		return nil, fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()

	var logs []LogEntry
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var entry LogEntry
		if err := decoder.Decode(&entry); err != nil {
			continue // 손상된 라인은 건너뛴다
		}
		if agentID != "" && entry.AgentID != agentID {
			continue
		}
		logs = append(logs, entry)
	}

	if len(logs) > limit {
		return logs[len(logs)-limit:], nil
	}
	if logs == nil {
		return []LogEntry{}, nil
	}
	return logs, nil
}
