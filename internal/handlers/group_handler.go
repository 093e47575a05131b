package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/GroupGuard/internal/services"
)

// GroupHandler 群组处理器
type GroupHandler struct {
	lifecycleService *services.LifecycleService
	reportService    *services.ReportService
}

// NewGroupHandler 创建群组处理器实例
func NewGroupHandler(lifecycleService *services.LifecycleService, reportService *services.ReportService) *GroupHandler {
	return &GroupHandler{
		lifecycleService: lifecycleService,
		reportService:    reportService,
	}
}

// RegisterGroup 登记群组
func (h *GroupHandler) RegisterGroup(c *gin.Context) {
	var req services.GroupUpsert
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("RegisterGroup: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := h.lifecycleService.EnsureGroup(c.Request.Context(), req); err != nil {
		log.Printf("RegisterGroup: service error for groupID %s: %v", req.GroupID, err)
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}

// ListGroups 列出全部受监控群组
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.lifecycleService.ListGroups(c.Request.Context())
	if err != nil {
		log.Printf("ListGroups: service error: %v", err)
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"groups": groups,
		"total":  len(groups),
	})
}

// GetGroupStatus 查询群组风险状态
func (h *GroupHandler) GetGroupStatus(c *gin.Context) {
	groupID := c.Param("id")

	status, err := h.lifecycleService.GetGroupStatus(c.Request.Context(), groupID)
	if err != nil {
		log.Printf("GetGroupStatus: service error for groupID %s: %v", groupID, err)
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"group_id": groupID,
		"status":   status,
	})
}

// SetGroupActive 启用或停用群组监控
func (h *GroupHandler) SetGroupActive(c *gin.Context) {
	groupID := c.Param("id")

	type activeRequest struct {
		Active *bool `json:"active" binding:"required"`
	}
	var req activeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("SetGroupActive: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	if err := h.lifecycleService.SetGroupActive(c.Request.Context(), groupID, *req.Active); err != nil {
		log.Printf("SetGroupActive: service error for groupID %s: %v", groupID, err)
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}

// GetGroupReport 生成群组 24 小时风险报告
func (h *GroupHandler) GetGroupReport(c *gin.Context) {
	groupID := c.Param("id")

	report, err := h.reportService.GroupReport(c.Request.Context(), groupID)
	if err != nil {
		log.Printf("GetGroupReport: service error for groupID %s: %v", groupID, err)
		respondError(c, err)
		return
	}

	respondOK(c, report)
}

// ScanGroup 对群组立即执行一次扫描
func (h *GroupHandler) ScanGroup(c *gin.Context) {
	groupID := c.Param("id")

	report, err := h.reportService.LiveScan(c.Request.Context(), groupID)
	if err != nil {
		log.Printf("ScanGroup: service error for groupID %s: %v", groupID, err)
		respondError(c, err)
		return
	}

	respondOK(c, report)
}

// GetSummary 生成全量群组汇总
func (h *GroupHandler) GetSummary(c *gin.Context) {
	summary, err := h.reportService.Summary(c.Request.Context())
	if err != nil {
		log.Printf("GetSummary: service error: %v", err)
		respondError(c, err)
		return
	}

	respondOK(c, summary)
}

// RegisterMember 登记群组成员
func (h *GroupHandler) RegisterMember(c *gin.Context) {
	groupID := c.Param("id")

	var req services.MemberUpsert
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("RegisterMember: JSON binding error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}
	req.GroupID = groupID

	if err := h.lifecycleService.EnsureMember(c.Request.Context(), req); err != nil {
		log.Printf("RegisterMember: service error for groupID %s, userID %s: %v", groupID, req.UserID, err)
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}

// MarkMemberLeft 标记成员离开群组
func (h *GroupHandler) MarkMemberLeft(c *gin.Context) {
	groupID := c.Param("id")
	userID := c.Param("user_id")

	if err := h.lifecycleService.MarkMemberLeft(c.Request.Context(), groupID, userID); err != nil {
		log.Printf("MarkMemberLeft: service error for groupID %s, userID %s: %v", groupID, userID, err)
		respondError(c, err)
		return
	}

	respondOK(c, nil)
}
