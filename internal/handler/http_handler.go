package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Eprince-hub/live-chat/internal/domain"
	"github.com/Eprince-hub/live-chat/internal/service"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// HTTPHandler serves the chat-history REST endpoint used for backward
// pagination (infinite scroll) and by reconnecting clients.
type HTTPHandler struct {
	service service.SessionService
}

func NewHTTPHandler(svc service.SessionService) *HTTPHandler {
	return &HTTPHandler{service: svc}
}

func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/streams/:stream_id/messages", h.GetMessages)
	}

	r.GET("/health", h.HealthCheck)
}

func (h *HTTPHandler) GetMessages(c *gin.Context) {
	streamID := c.Param("stream_id")
	if streamID == "" {
		c.JSON(http.StatusBadRequest, domain.APIResponse{
			Success: false,
			Error:   "stream_id is required",
		})
		return
	}

	beforeID := c.Query("before_id")

	limit := defaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil || parsedLimit < 1 {
			c.JSON(http.StatusBadRequest, domain.APIResponse{
				Success: false,
				Error:   "limit must be a positive integer",
			})
			return
		}
		limit = parsedLimit
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	page, err := h.service.GetHistory(c.Request.Context(), streamID, beforeID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, domain.APIResponse{
			Success: false,
			Error:   "failed to get chat history",
		})
		return
	}

	c.JSON(http.StatusOK, domain.APIResponse{
		Success: true,
		Data:    page,
	})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
