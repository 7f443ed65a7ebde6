package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/referral-portal/referral-service/internal/services"
	"github.com/referral-portal/referral-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	BaseHandler
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService, logger utils.Logger, exposeErrors bool) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger, exposeErrors),
		adminService: adminService,
	}
}

// GetLogs returns every user, job and referral
// @Summary Admin logs
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /admin/logs [get]
func (h *AdminHandler) GetLogs(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	logs, err := h.adminService.Logs(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "logs": logs})
}

// ExportLogs downloads the admin logs as a spreadsheet
// @Summary Export admin logs
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 403 {object} ErrorResponse
// @Router /admin/logs/export [get]
func (h *AdminHandler) ExportLogs(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	// Buffer first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.adminService.ExportLogs(c.Request.Context(), actor, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("referral-logs-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
