package server

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/service/activity"
	authsvc "github.com/kapu/customer-crm-go/internal/service/auth"
)

// agentIDKey: 세션 미들웨어가 gin 컨텍스트에 설계사 ID를 저장하는 키
const agentIDKey = "agentID"

// AuthHandler: /api/auth 엔드포인트를 처리하는 핸들러
type AuthHandler struct {
	auth     *authsvc.Service
	activity *activity.Logger
	limiter  *LoginRateLimiter
	logger   *slog.Logger
}

// NewAuthHandler: AuthHandler 인스턴스를 생성합니다.
func NewAuthHandler(auth *authsvc.Service, activityLogger *activity.Logger, limiter *LoginRateLimiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		activity: activityLogger,
		limiter:  limiter,
		logger:   logger,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type resetRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func writeAuthError(c *gin.Context, status int, code authsvc.ErrorCode) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   code,
	})
}

// extractToken: X-Session-Token 헤더 우선, Authorization: Bearer 폴백
func extractToken(c *gin.Context) (string, bool) {
	if token := strings.TrimSpace(c.GetHeader("X-Session-Token")); token != "" {
		return token, true
	}

	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		return "", false
	}
	parts := strings.Fields(raw)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func mapAuthErrorToHTTP(err error) (status int, code authsvc.ErrorCode) {
	var ae *authsvc.Error
	if !stdErrors.As(err, &ae) {
		return http.StatusInternalServerError, authsvc.CodeInternal
	}

	switch ae.Code {
	case authsvc.CodeInvalidInput:
		return http.StatusBadRequest, ae.Code
	case authsvc.CodeEmailExists:
		return http.StatusConflict, ae.Code
	case authsvc.CodeInvalidCredentials:
		return http.StatusUnauthorized, ae.Code
	case authsvc.CodeAccountLocked:
		return http.StatusForbidden, ae.Code
	case authsvc.CodeRateLimited:
		return http.StatusTooManyRequests, ae.Code
	case authsvc.CodeUnauthorized:
		return http.StatusUnauthorized, ae.Code
	default:
		return http.StatusInternalServerError, authsvc.CodeInternal
	}
}

// SessionMiddleware: 세션 토큰을 검증하고 설계사 ID를 컨텍스트에 싣는다.
func (h *AuthHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			writeAuthError(c, http.StatusUnauthorized, authsvc.CodeUnauthorized)
			c.Abort()
			return
		}

		agentID, err := h.auth.ValidateSession(c.Request.Context(), token)
		if err != nil {
			status, code := mapAuthErrorToHTTP(err)
			writeAuthError(c, status, code)
			c.Abort()
			return
		}

		c.Set(agentIDKey, agentID)
		c.Next()
	}
}

// currentAgentID: 세션 미들웨어가 저장한 설계사 ID를 꺼냅니다.
func currentAgentID(c *gin.Context) string {
	return c.GetString(agentIDKey)
}

// Register: POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAuthError(c, http.StatusBadRequest, authsvc.CodeInvalidInput)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	agent, err := h.auth.Register(ctx, req.Email, req.Password, req.FullName)
	if err != nil {
		status, code := mapAuthErrorToHTTP(err)
		writeAuthError(c, status, code)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"agent": gin.H{
			"id":        agent.ID,
			"email":     agent.Email,
			"fullName":  agent.FullName,
			"createdAt": agent.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	clientIP := c.ClientIP()
	if h.limiter != nil {
		if allowed, retryAfter := h.limiter.IsAllowed(clientIP); !allowed {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			writeAuthError(c, http.StatusTooManyRequests, authsvc.CodeRateLimited)
			return
		}
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAuthError(c, http.StatusBadRequest, authsvc.CodeInvalidInput)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	session, agent, err := h.auth.Login(ctx, req.Email, req.Password, clientIP)
	if err != nil {
		if h.limiter != nil {
			h.limiter.RecordFailure(clientIP)
		}
		status, code := mapAuthErrorToHTTP(err)
		writeAuthError(c, status, code)
		return
	}

	if h.limiter != nil {
		h.limiter.RecordSuccess(clientIP)
	}
	if h.activity != nil {
		h.activity.Log(agent.ID, activity.TypeAuth, "로그인", map[string]any{"ip": clientIP})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": gin.H{
			"token":     session.Token,
			"expiresAt": session.ExpiresAt.UTC().Format(time.RFC3339),
		},
		"agent": gin.H{
			"id":         agent.ID,
			"email":      agent.Email,
			"fullName":   agent.FullName,
			"agencyName": agent.AgencyName,
		},
	})
}

// Logout: POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := extractToken(c)
	if !ok {
		writeAuthError(c, http.StatusUnauthorized, authsvc.CodeUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	if err := h.auth.Logout(ctx, token); err != nil {
		status, code := mapAuthErrorToHTTP(err)
		writeAuthError(c, status, code)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Refresh: POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, ok := extractToken(c)
	if !ok {
		writeAuthError(c, http.StatusUnauthorized, authsvc.CodeUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	session, err := h.auth.Refresh(ctx, token)
	if err != nil {
		status, code := mapAuthErrorToHTTP(err)
		writeAuthError(c, status, code)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": gin.H{
			"token":     session.Token,
			"expiresAt": session.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

// Me: GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	token, ok := extractToken(c)
	if !ok {
		writeAuthError(c, http.StatusUnauthorized, authsvc.CodeUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	agent, err := h.auth.Me(ctx, token)
	if err != nil {
		status, code := mapAuthErrorToHTTP(err)
		writeAuthError(c, status, code)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"agent": gin.H{
			"id":         agent.ID,
			"email":      agent.Email,
			"fullName":   agent.FullName,
			"agencyName": agent.AgencyName,
			"createdAt":  agent.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

// ResetRequest: POST /api/auth/password/reset-request
func (h *AuthHandler) ResetRequest(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAuthError(c, http.StatusBadRequest, authsvc.CodeInvalidInput)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	if _, err := h.auth.RequestPasswordReset(ctx, req.Email); err != nil {
		status, code := mapAuthErrorToHTTP(err)
		writeAuthError(c, status, code)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "If the email exists, a reset link has been sent.",
	})
}

// ResetPassword: POST /api/auth/password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAuthError(c, http.StatusBadRequest, authsvc.CodeInvalidInput)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
	defer cancel()

	if err := h.auth.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		status, code := mapAuthErrorToHTTP(err)
		writeAuthError(c, status, code)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
