package handler

import (
	"net/http"
	"time"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/middleware"
	"github.com/campuslink/campuslink-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes manual sweep triggers for operators
type AdminHandler struct {
	sweeps service.SweepService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(sweeps service.SweepService) *AdminHandler {
	return &AdminHandler{sweeps: sweeps}
}

// DispatchSweep handles POST /admin/sweeps/dispatch
func (h *AdminHandler) DispatchSweep(c *gin.Context) {
	if !middleware.GetActor(c).IsAdmin() {
		common.ErrorResponse(c, http.StatusForbidden, "admin role required", nil)
		return
	}

	dispatched, err := h.sweeps.DispatchDue(time.Now())
	if err != nil {
		common.FromError(c, err, "dispatch sweep failed")
		return
	}

	common.SuccessResponse(c, gin.H{"dispatched": dispatched}, nil)
}

// RetentionSweep handles POST /admin/sweeps/retention
func (h *AdminHandler) RetentionSweep(c *gin.Context) {
	if !middleware.GetActor(c).IsAdmin() {
		common.ErrorResponse(c, http.StatusForbidden, "admin role required", nil)
		return
	}

	purged, err := h.sweeps.SweepExpired(time.Now())
	if err != nil {
		common.FromError(c, err, "retention sweep failed")
		return
	}

	common.SuccessResponse(c, gin.H{"purged": purged}, nil)
}
