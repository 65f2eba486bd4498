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

// MessageHandler handles message and poll HTTP requests
type MessageHandler struct {
	service service.MessageService
	polls   service.PollService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service service.MessageService, polls service.PollService) *MessageHandler {
	return &MessageHandler{service: service, polls: polls}
}

// List handles GET /channels/:id/messages
func (h *MessageHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)

	channelID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid channel id", err)
		return
	}

	beforeID := ginutil.QueryUint64(c, "before", 0)
	limit := ginutil.QueryInt(c, "limit", service.DefaultPageSize)

	messages, err := h.service.List(c.Request.Context(), channelID, actor, beforeID, limit)
	if err != nil {
		common.FromError(c, err, "failed to list messages")
		return
	}

	common.SuccessResponse(c, messages, &common.Meta{
		ChannelID: channelID,
		Before:    beforeID,
		Limit:     limit,
		Count:     len(messages),
	})
}

// Post handles POST /channels/:id/messages
func (h *MessageHandler) Post(c *gin.Context) {
	actor := middleware.GetActor(c)

	channelID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid channel id", err)
		return
	}

	var req domain.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	message, err := h.service.Post(c.Request.Context(), channelID, actor, &req)
	if err != nil {
		common.FromError(c, err, "failed to post message")
		return
	}

	common.CreatedResponse(c, message)
}

// Edit handles PUT /messages/:id
func (h *MessageHandler) Edit(c *gin.Context) {
	actor := middleware.GetActor(c)

	messageID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message id", err)
		return
	}

	var req domain.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.service.Edit(messageID, actor, &req); err != nil {
		common.FromError(c, err, "failed to edit message")
		return
	}

	common.SuccessResponse(c, gin.H{"edited": true}, nil)
}

// EditPoll handles PUT /messages/:id/poll
func (h *MessageHandler) EditPoll(c *gin.Context) {
	actor := middleware.GetActor(c)

	messageID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message id", err)
		return
	}

	var req domain.EditPollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.service.EditPoll(messageID, actor, &req); err != nil {
		common.FromError(c, err, "failed to edit poll")
		return
	}

	common.SuccessResponse(c, gin.H{"edited": true}, nil)
}

// Moderate handles PUT /messages/:id/hide
func (h *MessageHandler) Moderate(c *gin.Context) {
	actor := middleware.GetActor(c)

	messageID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message id", err)
		return
	}

	var req domain.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.service.Moderate(messageID, actor, req.Hidden); err != nil {
		common.FromError(c, err, "failed to moderate message")
		return
	}

	common.SuccessResponse(c, gin.H{"hidden": req.Hidden}, nil)
}

// Delete handles DELETE /messages/:id
func (h *MessageHandler) Delete(c *gin.Context) {
	actor := middleware.GetActor(c)

	messageID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message id", err)
		return
	}

	if err := h.service.Delete(messageID, actor); err != nil {
		common.FromError(c, err, "failed to delete message")
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// Vote handles POST /messages/:id/vote
func (h *MessageHandler) Vote(c *gin.Context) {
	actor := middleware.GetActor(c)

	messageID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid message id", err)
		return
	}

	var req domain.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	vote, err := h.polls.Vote(messageID, actor, &req)
	if err != nil {
		common.FromError(c, err, "failed to cast vote")
		return
	}

	common.CreatedResponse(c, vote)
}
