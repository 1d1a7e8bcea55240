package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/novafit/gymdesk-backend/internal/http/response"
	"github.com/novafit/gymdesk-backend/internal/services"
)

type AthleteHandler struct {
	athleteService services.AthleteService
	checkInService services.CheckInService
}

func NewAthleteHandler(athleteService services.AthleteService, checkInService services.CheckInService) *AthleteHandler {
	return &AthleteHandler{athleteService: athleteService, checkInService: checkInService}
}

func parseLimit(c *gin.Context) int {
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func (h *AthleteHandler) Create(c *gin.Context) {
	var req services.AthleteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	athlete, err := h.athleteService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, athlete)
}

// SelfRegister is public: new athletes sign themselves up and wait for a
// trainer assignment.
func (h *AthleteHandler) SelfRegister(c *gin.Context) {
	var req services.AthleteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	athlete, err := h.athleteService.SelfRegister(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, athlete)
}

func (h *AthleteHandler) List(c *gin.Context) {
	athletes, err := h.athleteService.List(c.Request.Context(), parseLimit(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, athletes)
}

func (h *AthleteHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	athlete, err := h.athleteService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, athlete)
}

func (h *AthleteHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req services.AthleteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	athlete, err := h.athleteService.Update(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, athlete)
}

func (h *AthleteHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.athleteService.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *AthleteHandler) AssignTrainer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		TrainerID *uuid.UUID `json:"trainer_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.athleteService.AssignTrainer(c.Request.Context(), id, req.TrainerID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *AthleteHandler) ListCheckIns(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	checkIns, err := h.checkInService.ListByAthlete(c.Request.Context(), id, parseLimit(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, checkIns)
}
