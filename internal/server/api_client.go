package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kapu/customer-crm-go/internal/constants"
	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/internal/service/activity"
	"github.com/kapu/customer-crm-go/internal/util"
	"github.com/kapu/customer-crm-go/pkg/errors"
)

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// writeServiceError: 서비스 에러를 HTTP 응답으로 변환합니다.
func (h *APIHandler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.IsNotFound(err):
		writeError(c, http.StatusNotFound, "리소스를 찾을 수 없습니다")
	case errors.IsValidation(err):
		var ve *errors.ValidationError
		_ = errors.AsValidation(err, &ve)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   ve.Message,
			"field":   ve.Field,
		})
	case errors.IsTransition(err):
		writeError(c, http.StatusConflict, "허용되지 않은 단계 이동입니다")
	default:
		h.logger.Error("Request failed", "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), constants.RequestTimeout.APIRequest)
}

// ListClients: GET /api/clients?q=&limit=&offset=
func (h *APIHandler) ListClients(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	clients, err := h.clients.List(ctx, currentAgentID(c), c.Query("q"), limit, offset)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"clients": clients,
		"count":   len(clients),
	})
}

// CreateClient: POST /api/clients
func (h *APIHandler) CreateClient(c *gin.Context) {
	var form domain.ClientEditForm
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agentID := currentAgentID(c)
	created, result, err := h.clients.Create(ctx, agentID, form)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !result.IsValid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"errors":  result.Errors,
		})
		return
	}

	if h.activity != nil {
		h.activity.Log(agentID, activity.TypeClient, "고객 생성", map[string]any{
			"clientId": created.ID,
			"phone":    util.MaskPhone(created.Phone),
		})
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"client":  created,
	})
}

// GetClientDetail: GET /api/clients/:id
func (h *APIHandler) GetClientDetail(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := h.clients.GetDetail(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"detail":  detail,
	})
}

// UpdateClient: PUT /api/clients/:id
func (h *APIHandler) UpdateClient(c *gin.Context) {
	var form domain.ClientEditForm
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agentID := currentAgentID(c)
	updated, result, err := h.clients.Update(ctx, agentID, c.Param("id"), form)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !result.IsValid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"errors":  result.Errors,
		})
		return
	}

	if h.activity != nil {
		h.activity.Log(agentID, activity.TypeClient, "고객 수정", map[string]any{"clientId": updated.ID})
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"client":  updated,
	})
}

// DeleteClient: DELETE /api/clients/:id
func (h *APIHandler) DeleteClient(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	agentID := currentAgentID(c)
	clientID := c.Param("id")
	if err := h.clients.Delete(ctx, agentID, clientID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.activity != nil {
		h.activity.Log(agentID, activity.TypeClient, "고객 삭제", map[string]any{"clientId": clientID})
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type replaceTagsRequest struct {
	Tags []string `json:"tags"`
}

// ReplaceClientTags: PUT /api/clients/:id/tags
func (h *APIHandler) ReplaceClientTags(c *gin.Context) {
	var req replaceTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.clients.ReplaceTags(ctx, currentAgentID(c), c.Param("id"), req.Tags); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ValidateClientForm: POST /api/clients/validate
// 저장 없이 폼 검증 결과만 미리 반환한다. (실시간 검증용)
func (h *APIHandler) ValidateClientForm(c *gin.Context) {
	var form domain.ClientEditForm
	if err := c.ShouldBindJSON(&form); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	result := h.clients.ValidateForm(form)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}
