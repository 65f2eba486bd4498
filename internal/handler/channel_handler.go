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

// ChannelHandler handles channel directory and settings HTTP requests
type ChannelHandler struct {
	service service.ChannelService
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(service service.ChannelService) *ChannelHandler {
	return &ChannelHandler{service: service}
}

// List handles GET /channels
func (h *ChannelHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)

	channels, err := h.service.ListVisible(c.Request.Context(), actor)
	if err != nil {
		common.FromError(c, err, "failed to list channels")
		return
	}

	common.SuccessResponse(c, channels, &common.Meta{Count: len(channels)})
}

// ByClub handles GET /channels/club/:club_id
func (h *ChannelHandler) ByClub(c *gin.Context) {
	clubID, err := ginutil.ParamUint64(c, "club_id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid club id", err)
		return
	}

	channel, err := h.service.ByClubRef(c.Request.Context(), clubID)
	if err != nil {
		common.FromError(c, err, "failed to look up club channel")
		return
	}
	if channel == nil {
		common.ErrorResponse(c, http.StatusNotFound, "no channel for club", nil)
		return
	}

	common.SuccessResponse(c, channel, nil)
}

// Create handles POST /channels
func (h *ChannelHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)

	var req domain.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	channel, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		common.FromError(c, err, "failed to create channel")
		return
	}

	common.CreatedResponse(c, channel)
}

// Deactivate handles DELETE /channels/:id
func (h *ChannelHandler) Deactivate(c *gin.Context) {
	actor := middleware.GetActor(c)

	channelID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid channel id", err)
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), actor, channelID); err != nil {
		common.FromError(c, err, "failed to deactivate channel")
		return
	}

	common.SuccessResponse(c, gin.H{"deactivated": true}, nil)
}

// GetSettings handles GET /channels/:id/settings
func (h *ChannelHandler) GetSettings(c *gin.Context) {
	channelID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid channel id", err)
		return
	}

	settings, err := h.service.GetSettings(c.Request.Context(), channelID)
	if err != nil {
		common.FromError(c, err, "failed to load channel settings")
		return
	}

	common.SuccessResponse(c, settings, nil)
}

// PutSettings handles PUT /channels/:id/settings
func (h *ChannelHandler) PutSettings(c *gin.Context) {
	actor := middleware.GetActor(c)

	channelID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid channel id", err)
		return
	}

	var req domain.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	settings, err := h.service.PutSettings(c.Request.Context(), actor, channelID, &req)
	if err != nil {
		common.FromError(c, err, "failed to update channel settings")
		return
	}

	common.SuccessResponse(c, settings, nil)
}
