package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupGuard/internal/services"
)

// ActivityHandler 活动上报处理器
type ActivityHandler struct {
	recorderService *services.RecorderService
}

// NewActivityHandler 创建活动处理器实例
func NewActivityHandler(recorderService *services.RecorderService) *ActivityHandler {
	return &ActivityHandler{
		recorderService: recorderService,
	}
}

// RecordActivity 上报一次群组活动
func (h *ActivityHandler) RecordActivity(c *gin.Context) {
	var req services.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("RecordActivity: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	activity, err := h.recorderService.Record(c.Request.Context(), req)
	if err != nil {
		log.Printf("RecordActivity: service error for groupID %s: %v", req.GroupID, err)
		respondError(c, err)
		return
	}

	respondOK(c, activity)
}

// ListActivities 分页查询群组活动流水
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	groupID := c.Param("id")
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "missing group id",
		})
		return
	}

	page, pageSize := paginationParams(c, 50)

	activities, total, err := h.recorderService.ListActivities(c.Request.Context(), groupID, page, pageSize)
	if err != nil {
		log.Printf("ListActivities: service error for groupID %s: %v", groupID, err)
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"activities": activities,
		"total":      total,
		"page":       page,
		"page_size":  pageSize,
	})
}
