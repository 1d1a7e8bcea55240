package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novafit/gymdesk-backend/internal/http/response"
	"github.com/novafit/gymdesk-backend/internal/services"
)

type CheckInHandler struct {
	checkInService services.CheckInService
}

func NewCheckInHandler(checkInService services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// CheckIn is the public kiosk endpoint.
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	var req services.CheckInInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.checkInService.CheckIn(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, result)
}

func (h *CheckInHandler) List(c *gin.Context) {
	checkIns, err := h.checkInService.List(c.Request.Context(), parseLimit(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, checkIns)
}
