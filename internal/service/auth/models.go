package auth

import (
	"time"
)

// agentModel: agents 테이블 매핑 (password_hash는 절대 API로 노출하지 않음)
type agentModel struct {
	ID           string  `gorm:"primaryKey;column:id"`
	Email        string  `gorm:"uniqueIndex;column:email"`
	PasswordHash string  `gorm:"column:password_hash"`
	FullName     string  `gorm:"column:full_name"`
	AgencyName   *string `gorm:"column:agency_name"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (agentModel) TableName() string { return "agents" }

// passwordResetTokenModel: 비밀번호 재설정 토큰 테이블 매핑
type passwordResetTokenModel struct {
	TokenHash string     `gorm:"primaryKey;column:token_hash"`
	AgentID   string     `gorm:"column:agent_id"`
	ExpiresAt time.Time  `gorm:"column:expires_at"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time
}

func (passwordResetTokenModel) TableName() string { return "auth_password_reset_tokens" }

// Agent: API 응답용 설계사 정보
type Agent struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	AgencyName *string   `json:"agencyName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toAgent(m *agentModel) *Agent {
	if m == nil {
		return nil
	}
	return &Agent{
		ID:         m.ID,
		Email:      m.Email,
		FullName:   m.FullName,
		AgencyName: m.AgencyName,
		CreatedAt:  m.CreatedAt,
	}
}
