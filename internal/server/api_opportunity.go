package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/internal/service/activity"
	"github.com/kapu/customer-crm-go/internal/service/pipeline"
)

type createOpportunityRequest struct {
	ClientID        string `json:"clientId" binding:"required"`
	ProductCategory string `json:"productCategory" binding:"required"`
	ExpectedPremium int64  `json:"expectedPremium"`
	Memo            string `json:"memo"`
}

type createClientOpportunityRequest struct {
	ProductCategory string `json:"productCategory" binding:"required"`
	ExpectedPremium int64  `json:"expectedPremium"`
	Memo            string `json:"memo"`
}

type transitionRequest struct {
	Target string `json:"target" binding:"required"`
}

// GetPipelineBoard: GET /api/opportunities?stage=
// stage 쿼리가 있으면 해당 단계 칼럼만 내려준다.
func (h *APIHandler) GetPipelineBoard(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	board, err := h.pipelines.GetBoard(ctx, currentAgentID(c))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if stage := c.Query("stage"); stage != "" {
		filtered := make([]pipeline.BoardColumn, 0, 1)
		for _, column := range board.Columns {
			if string(column.Stage) == stage {
				filtered = append(filtered, column)
			}
		}
		board = &pipeline.Board{Columns: filtered}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "board": board})
}

// CreateOpportunity: POST /api/opportunities
func (h *APIHandler) CreateOpportunity(c *gin.Context) {
	var req createOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}
	h.createOpportunity(c, req)
}

// CreateClientOpportunity: POST /api/clients/:id/opportunities
// 고객 상세 화면의 영업 기회 위자드가 사용한다. 고객 ID는 경로에서 가져온다.
func (h *APIHandler) CreateClientOpportunity(c *gin.Context) {
	var req createClientOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}
	h.createOpportunity(c, createOpportunityRequest{
		ClientID:        c.Param("id"),
		ProductCategory: req.ProductCategory,
		ExpectedPremium: req.ExpectedPremium,
		Memo:            req.Memo,
	})
}

func (h *APIHandler) createOpportunity(c *gin.Context, req createOpportunityRequest) {
	ctx, cancel := requestContext(c)
	defer cancel()

	agentID := currentAgentID(c)
	opp, err := h.pipelines.Create(ctx, agentID, req.ClientID, req.ProductCategory, req.ExpectedPremium, req.Memo)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.activity != nil {
		h.activity.Log(agentID, activity.TypePipeline, "영업 기회 생성", map[string]any{
			"opportunityId": opp.ID,
			"clientId":      opp.ClientID,
		})
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "opportunity": opp})
}

// GetOpportunity: GET /api/opportunities/:id
func (h *APIHandler) GetOpportunity(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	opp, err := h.pipelines.Get(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "opportunity": opp})
}

// GetOpportunityHistory: GET /api/opportunities/:id/history
func (h *APIHandler) GetOpportunityHistory(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	history, err := h.pipelines.History(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": history})
}

// ListClientOpportunities: GET /api/clients/:id/opportunities
func (h *APIHandler) ListClientOpportunities(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	opps, err := h.pipelines.ListByClient(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "opportunities": opps})
}

// AdvanceOpportunity: POST /api/opportunities/:id/advance
func (h *APIHandler) AdvanceOpportunity(c *gin.Context) {
	h.moveOpportunity(c, "단계 전진", h.pipelines.Advance)
}

// DemoteOpportunity: POST /api/opportunities/:id/demote
func (h *APIHandler) DemoteOpportunity(c *gin.Context) {
	h.moveOpportunity(c, "단계 후퇴", h.pipelines.Demote)
}

// MarkOpportunityLost: POST /api/opportunities/:id/lost
func (h *APIHandler) MarkOpportunityLost(c *gin.Context) {
	h.moveOpportunity(c, "실패 종결", h.pipelines.MarkLost)
}

// TransitionOpportunity: POST /api/opportunities/:id/transition
// 명시적 목표 단계로 이동한다. (보드 드래그앤드롭용)
func (h *APIHandler) TransitionOpportunity(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agentID := currentAgentID(c)
	opp, err := h.pipelines.TransitionTo(ctx, agentID, c.Param("id"), domain.OpportunityStage(req.Target))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.activity != nil {
		h.activity.Log(agentID, activity.TypePipeline, "단계 이동", map[string]any{
			"opportunityId": opp.ID,
			"stage":         opp.Stage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "opportunity": opp})
}

func (h *APIHandler) moveOpportunity(
	c *gin.Context,
	summary string,
	move func(ctx context.Context, agentID, id string) (*domain.Opportunity, error),
) {
	ctx, cancel := requestContext(c)
	defer cancel()

	agentID := currentAgentID(c)
	opp, err := move(ctx, agentID, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.activity != nil {
		h.activity.Log(agentID, activity.TypePipeline, summary, map[string]any{
			"opportunityId": opp.ID,
			"stage":         opp.Stage,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "opportunity": opp})
}
