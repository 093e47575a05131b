package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupGuard/internal/services"
)

// SettingHandler 所有者设置处理器
type SettingHandler struct {
	settingService *services.SettingService
}

// NewSettingHandler 创建设置处理器实例
func NewSettingHandler(settingService *services.SettingService) *SettingHandler {
	return &SettingHandler{
		settingService: settingService,
	}
}

// RegisterOwner 注册所有者
func (h *SettingHandler) RegisterOwner(c *gin.Context) {
	type registerRequest struct {
		OwnerID       string `json:"owner_id" binding:"required"`
		OwnerUsername string `json:"owner_username"`
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("RegisterOwner: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	setting, err := h.settingService.RegisterOwner(c.Request.Context(), req.OwnerID, req.OwnerUsername)
	if err != nil {
		log.Printf("RegisterOwner: service error for ownerID %s: %v", req.OwnerID, err)
		respondError(c, err)
		return
	}

	respondOK(c, setting)
}

// GetOwnerSetting 查询所有者设置
func (h *SettingHandler) GetOwnerSetting(c *gin.Context) {
	ownerID := c.Param("owner_id")

	setting, err := h.settingService.GetByOwnerID(c.Request.Context(), ownerID)
	if err != nil {
		log.Printf("GetOwnerSetting: service error for ownerID %s: %v", ownerID, err)
		respondError(c, err)
		return
	}

	respondOK(c, setting)
}

// SetAlertEnabled 切换所有者的告警通知开关
func (h *SettingHandler) SetAlertEnabled(c *gin.Context) {
	ownerID := c.Param("owner_id")

	type toggleRequest struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("SetAlertEnabled: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := h.settingService.SetAlertEnabled(c.Request.Context(), ownerID, *req.Enabled); err != nil {
		log.Printf("SetAlertEnabled: service error for ownerID %s: %v", ownerID, err)
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}
