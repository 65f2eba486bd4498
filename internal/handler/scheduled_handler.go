package handler

import (
	"net/http"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/middleware"
	"github.com/campuslink/campuslink-backend/internal/service"
	"github.com/campuslink/campuslink-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// ScheduledHandler handles scheduled message HTTP requests
type ScheduledHandler struct {
	service service.ScheduledMessageService
}

// NewScheduledHandler creates a new ScheduledHandler
func NewScheduledHandler(service service.ScheduledMessageService) *ScheduledHandler {
	return &ScheduledHandler{service: service}
}

// Create handles POST /channels/:id/scheduled
func (h *ScheduledHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	channelID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid channel id", err)
		return
	}

	var req domain.CreateScheduledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	scheduled, err := h.service.Create(c.Request.Context(), channelID, actor, &req)
	if err != nil {
		common.FromError(c, err, "failed to schedule message")
		return
	}

	common.CreatedResponse(c, scheduled)
}

// List handles GET /channels/:id/scheduled
func (h *ScheduledHandler) List(c *gin.Context) {
	channelID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid channel id", err)
		return
	}

	scheduled, err := h.service.List(channelID)
	if err != nil {
		common.FromError(c, err, "failed to list scheduled messages")
		return
	}

	common.SuccessResponse(c, scheduled, &common.Meta{ChannelID: channelID, Count: len(scheduled)})
}
