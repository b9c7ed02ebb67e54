package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kapu/customer-crm-go/internal/domain"
	"github.com/kapu/customer-crm-go/internal/service/activity"
)

// logConsultActivity: 하위 리소스 변경을 활동 로그에 남긴다.
func (h *APIHandler) logConsultActivity(agentID, clientID, summary string) {
	if h.activity == nil {
		return
	}
	h.activity.Log(agentID, activity.TypeConsult, summary, map[string]any{"clientId": clientID})
}

// ListNotes: GET /api/clients/:id/notes
func (h *APIHandler) ListNotes(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	notes, err := h.consults.ListNotes(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notes": notes})
}

// AddNote: POST /api/clients/:id/notes
func (h *APIHandler) AddNote(c *gin.Context) {
	var note domain.ConsultNote
	if err := c.ShouldBindJSON(&note); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agentID := currentAgentID(c)
	clientID := c.Param("id")
	created, err := h.consults.AddNote(ctx, agentID, clientID, note)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.logConsultActivity(agentID, clientID, "상담 기록 추가")
	c.JSON(http.StatusCreated, gin.H{"success": true, "note": created})
}

// UpdateNote: PUT /api/clients/:id/notes/:noteId
func (h *APIHandler) UpdateNote(c *gin.Context) {
	var note domain.ConsultNote
	if err := c.ShouldBindJSON(&note); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}
	note.ID = c.Param("noteId")

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.consults.UpdateNote(ctx, currentAgentID(c), c.Param("id"), note)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "note": updated})
}

// DeleteNote: DELETE /api/clients/:id/notes/:noteId
func (h *APIHandler) DeleteNote(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.consults.DeleteNote(ctx, currentAgentID(c), c.Param("id"), c.Param("noteId")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMedical: GET /api/clients/:id/medical
func (h *APIHandler) ListMedical(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.consults.ListMedical(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medical": items})
}

// AddMedical: POST /api/clients/:id/medical
func (h *APIHandler) AddMedical(c *gin.Context) {
	var item domain.MedicalHistory
	if err := c.ShouldBindJSON(&item); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	agentID := currentAgentID(c)
	clientID := c.Param("id")
	created, err := h.consults.AddMedical(ctx, agentID, clientID, item)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.logConsultActivity(agentID, clientID, "병력 추가")
	c.JSON(http.StatusCreated, gin.H{"success": true, "medical": created})
}

// UpdateMedical: PUT /api/clients/:id/medical/:itemId
func (h *APIHandler) UpdateMedical(c *gin.Context) {
	var item domain.MedicalHistory
	if err := c.ShouldBindJSON(&item); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}
	item.ID = c.Param("itemId")

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.consults.UpdateMedical(ctx, currentAgentID(c), c.Param("id"), item)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medical": updated})
}

// DeleteMedical: DELETE /api/clients/:id/medical/:itemId
func (h *APIHandler) DeleteMedical(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.consults.DeleteMedical(ctx, currentAgentID(c), c.Param("id"), c.Param("itemId")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListCheckups: GET /api/clients/:id/checkups
func (h *APIHandler) ListCheckups(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.consults.ListCheckups(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "checkups": items})
}

// AddCheckup: POST /api/clients/:id/checkups
func (h *APIHandler) AddCheckup(c *gin.Context) {
	var item domain.CheckupPurpose
	if err := c.ShouldBindJSON(&item); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := h.consults.AddCheckup(ctx, currentAgentID(c), c.Param("id"), item)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "checkup": created})
}

// DeleteCheckup: DELETE /api/clients/:id/checkups/:itemId
func (h *APIHandler) DeleteCheckup(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.consults.DeleteCheckup(ctx, currentAgentID(c), c.Param("id"), c.Param("itemId")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListInterests: GET /api/clients/:id/interests
func (h *APIHandler) ListInterests(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.consults.ListInterests(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "interests": items})
}

// AddInterest: POST /api/clients/:id/interests
func (h *APIHandler) AddInterest(c *gin.Context) {
	var item domain.Interest
	if err := c.ShouldBindJSON(&item); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := h.consults.AddInterest(ctx, currentAgentID(c), c.Param("id"), item)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "interest": created})
}

// DeleteInterest: DELETE /api/clients/:id/interests/:itemId
func (h *APIHandler) DeleteInterest(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.consults.DeleteInterest(ctx, currentAgentID(c), c.Param("id"), c.Param("itemId")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListCompanions: GET /api/clients/:id/companions
func (h *APIHandler) ListCompanions(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := h.consults.ListCompanions(ctx, currentAgentID(c), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "companions": items})
}

// AddCompanion: POST /api/clients/:id/companions
func (h *APIHandler) AddCompanion(c *gin.Context) {
	var item domain.Companion
	if err := c.ShouldBindJSON(&item); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	created, err := h.consults.AddCompanion(ctx, currentAgentID(c), c.Param("id"), item)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "companion": created})
}

// UpdateCompanion: PUT /api/clients/:id/companions/:itemId
func (h *APIHandler) UpdateCompanion(c *gin.Context) {
	var item domain.Companion
	if err := c.ShouldBindJSON(&item); err != nil {
		writeError(c, http.StatusBadRequest, "잘못된 요청 본문입니다")
		return
	}
	item.ID = c.Param("itemId")

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.consults.UpdateCompanion(ctx, currentAgentID(c), c.Param("id"), item)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "companion": updated})
}

// DeleteCompanion: DELETE /api/clients/:id/companions/:itemId
func (h *APIHandler) DeleteCompanion(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.consults.DeleteCompanion(ctx, currentAgentID(c), c.Param("id"), c.Param("itemId")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
