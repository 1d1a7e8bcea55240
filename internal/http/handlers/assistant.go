package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novafit/gymdesk-backend/internal/assistant"
	"github.com/novafit/gymdesk-backend/internal/http/response"
)

type AssistantHandler struct {
	assistantService *assistant.Service
}

func NewAssistantHandler(assistantService *assistant.Service) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

// Parse interprets free text and, unless execute=false, dispatches it.
func (h *AssistantHandler) Parse(c *gin.Context) {
	var req struct {
		Text    string `json:"text"`
		Execute *bool  `json:"execute"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	execute := true
	if req.Execute != nil {
		execute = *req.Execute
	}

	result, err := h.assistantService.Parse(c.Request.Context(), req.Text, execute)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (h *AssistantHandler) Undo(c *gin.Context) {
	result, err := h.assistantService.Undo(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (h *AssistantHandler) LastAction(c *gin.Context) {
	action, err := h.assistantService.LastAction(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, action)
}
