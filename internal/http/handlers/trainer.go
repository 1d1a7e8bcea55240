package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/novafit/gymdesk-backend/internal/http/response"
	"github.com/novafit/gymdesk-backend/internal/services"
)

type TrainerHandler struct {
	trainerService services.TrainerService
}

func NewTrainerHandler(trainerService services.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: trainerService}
}

func (h *TrainerHandler) List(c *gin.Context) {
	trainers, err := h.trainerService.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, trainers)
}

func (h *TrainerHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	trainer, err := h.trainerService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, trainer)
}

func (h *TrainerHandler) Stats(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	stats, err := h.trainerService.Stats(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}
