package handler

import (
	"net/http"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/service"
	"github.com/campuslink/campuslink-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// UploadHandler handles attachment upload HTTP requests
type UploadHandler struct {
	service service.UploadService
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(service service.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Upload handles POST /channels/:id/attachments
func (h *UploadHandler) Upload(c *gin.Context) {
	channelID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid channel id", err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "missing file field", err)
		return
	}

	result, err := h.service.Upload(c.Request.Context(), channelID, file)
	if err != nil {
		common.FromError(c, err, "failed to upload attachment")
		return
	}

	common.CreatedResponse(c, result)
}
