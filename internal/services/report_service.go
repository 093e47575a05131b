package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	logger "github.com/Gopher0727/GroupGuard/middleware/log"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
)

// reportWindow 报告统计的回看窗口
const reportWindow = 24 * time.Hour

// GroupReport 单个群组在回看窗口内的风险概览
type GroupReport struct {
	GroupID       string    `json:"group_id"`
	GroupName     string    `json:"group_name"`
	Status        string    `json:"status"`
	MemberCount   int       `json:"member_count"`
	IsActive      bool      `json:"is_active"`
	WindowStart   time.Time `json:"window_start"`
	ActivityCount int64     `json:"activity_count"`
	AlertCount    int64     `json:"alert_count"`
	HighRiskCount int64     `json:"high_risk_count"`
	LastScan      time.Time `json:"last_scan"`
}

// GroupSummary 全量群组的汇总视图
type GroupSummary struct {
	TotalGroups    int           `json:"total_groups"`
	ActiveGroups   int           `json:"active_groups"`
	AtRiskGroups   int           `json:"at_risk_groups"`
	TotalAlerts    int64         `json:"total_alerts"`
	GeneratedAt    time.Time     `json:"generated_at"`
	GroupOverviews []GroupReport `json:"groups"`
}

// ReportService 报告服务
// 基于告警与活动流水生成群组风险报告。
// 报告与汇总只读；状态重算只发生在 LiveScan，这是一次显式的管理动作
type ReportService struct {
	db           *gorm.DB
	groupRepo    *repositories.GroupRepository
	alertRepo    *repositories.AlertRepository
	activityRepo *repositories.ActivityRepository
	log          *logger.Logger
	maxRetries   int
}

// NewReportService 创建报告服务实例
func NewReportService(
	db *gorm.DB,
	groupRepo *repositories.GroupRepository,
	alertRepo *repositories.AlertRepository,
	activityRepo *repositories.ActivityRepository,
	log *logger.Logger,
	maxRetries int,
) *ReportService {
	return &ReportService{
		db:           db,
		groupRepo:    groupRepo,
		alertRepo:    alertRepo,
		activityRepo: activityRepo,
		log:          log,
		maxRetries:   maxRetries,
	}
}

// reportSnapshot 窗口内的统计采样
type reportSnapshot struct {
	group         *models.Group
	since         time.Time
	activityCount int64
	alertCount    int64
	highRisk      int64
}

func (s *ReportService) snapshot(groupID string, now time.Time) (*reportSnapshot, error) {
	group, err := s.groupRepo.GetByGroupID(groupID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	since := now.Add(-reportWindow)

	alerts, err := s.alertRepo.ListByGroupSince(groupID, since)
	if err != nil {
		return nil, err
	}
	activityCount, err := s.activityRepo.CountByGroupSince(groupID, since)
	if err != nil {
		return nil, err
	}

	var highRisk int64
	for _, alert := range alerts {
		if alert.RiskLevel >= models.RiskHigh {
			highRisk++
		}
	}

	return &reportSnapshot{
		group:         group,
		since:         since,
		activityCount: activityCount,
		alertCount:    int64(len(alerts)),
		highRisk:      highRisk,
	}, nil
}

func (snap *reportSnapshot) report(status string, lastScan time.Time) *GroupReport {
	return &GroupReport{
		GroupID:       snap.group.GroupID,
		GroupName:     snap.group.GroupName,
		Status:        status,
		MemberCount:   snap.group.MemberCount,
		IsActive:      snap.group.IsActive,
		WindowStart:   snap.since,
		ActivityCount: snap.activityCount,
		AlertCount:    snap.alertCount,
		HighRiskCount: snap.highRisk,
		LastScan:      lastScan,
	}
}

// GroupReport 生成单个群组的 24 小时风险报告
// 只读：状态与 last_scan 保持原样，任何人查看报告都不改变群组
func (s *ReportService) GroupReport(ctx context.Context, groupID string) (*GroupReport, error) {
	var report *GroupReport
	err := withRetry(ctx, s.maxRetries, func() error {
		snap, err := s.snapshot(groupID, time.Now().UTC())
		if err != nil {
			return err
		}
		report = snap.report(snap.group.Status, snap.group.LastScan)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// LiveScan 对群组立即执行一次扫描
// 这是状态重算的唯一入口：按窗口内的高危告警数重新评估并持久化
// 群组状态，是除单调升级外状态唯一的下调路径，只暴露给认证过的管理端
func (s *ReportService) LiveScan(ctx context.Context, groupID string) (*GroupReport, error) {
	var report *GroupReport
	err := withRetry(ctx, s.maxRetries, func() error {
		now := time.Now().UTC()
		snap, err := s.snapshot(groupID, now)
		if err != nil {
			return err
		}

		status := recalcStatus(snap.highRisk)
		if status != snap.group.Status {
			if err := s.groupRepo.UpdateStatus(groupID, status); err != nil {
				return err
			}
			s.log.InfoContext(ctx, "扫描后更新群组状态",
				zap.String("group_id", groupID),
				zap.String("from", snap.group.Status),
				zap.String("to", status),
			)
		}
		if err := s.groupRepo.TouchLastScan(groupID, now); err != nil {
			return err
		}

		report = snap.report(status, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Summary 生成所有群组的汇总报告，只读，不触发状态重算
func (s *ReportService) Summary(ctx context.Context) (*GroupSummary, error) {
	var summary *GroupSummary
	err := withRetry(ctx, s.maxRetries, func() error {
		groups, err := s.groupRepo.List()
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		since := now.Add(-reportWindow)

		summary = &GroupSummary{
			TotalGroups:    len(groups),
			GeneratedAt:    now,
			GroupOverviews: make([]GroupReport, 0, len(groups)),
		}
		for _, group := range groups {
			if group.IsActive {
				summary.ActiveGroups++
			}
			if group.Status != models.GroupStatusSafe {
				summary.AtRiskGroups++
			}

			alertCount, err := s.alertRepo.CountByGroupSince(group.GroupID, since)
			if err != nil {
				return err
			}
			activityCount, err := s.activityRepo.CountByGroupSince(group.GroupID, since)
			if err != nil {
				return err
			}
			summary.TotalAlerts += alertCount

			summary.GroupOverviews = append(summary.GroupOverviews, GroupReport{
				GroupID:       group.GroupID,
				GroupName:     group.GroupName,
				Status:        group.Status,
				MemberCount:   group.MemberCount,
				IsActive:      group.IsActive,
				WindowStart:   since,
				ActivityCount: activityCount,
				AlertCount:    alertCount,
				LastScan:      group.LastScan,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// recalcStatus 按窗口内高危告警数评估群组状态
func recalcStatus(highRiskAlerts int64) string {
	switch {
	case highRiskAlerts > 2:
		return models.GroupStatusDangerous
	case highRiskAlerts > 0:
		return models.GroupStatusSuspicious
	default:
		return models.GroupStatusSafe
	}
}
