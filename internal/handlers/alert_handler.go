package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupGuard/internal/services"
)

// AlertHandler 告警处理器
type AlertHandler struct {
	alertService *services.AlertService
}

// NewAlertHandler 创建告警处理器实例
func NewAlertHandler(alertService *services.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// ListUnresolved 查询未解决告警，group_id 为空时返回全部
func (h *AlertHandler) ListUnresolved(c *gin.Context) {
	groupID := c.Query("group_id")

	alerts, err := h.alertService.ListUnresolved(c.Request.Context(), groupID)
	if err != nil {
		log.Printf("ListUnresolved: service error for groupID %q: %v", groupID, err)
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"alerts": alerts,
		"total":  len(alerts),
	})
}

// ResolveAlert 标记告警已解决
func (h *AlertHandler) ResolveAlert(c *gin.Context) {
	alertID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Printf("ResolveAlert: invalid alert id: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid alert id",
		})
		return
	}

	if err := h.alertService.Resolve(c.Request.Context(), uint(alertID)); err != nil {
		log.Printf("ResolveAlert: service error for alertID %d: %v", alertID, err)
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}
