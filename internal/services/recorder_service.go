package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	logger "github.com/Gopher0727/GroupGuard/middleware/log"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
	"github.com/Gopher0727/GroupGuard/internal/risk"
)

// floodWindow 洪水检测的回看窗口
const floodWindow = 5 * time.Minute

// RecordRequest 一次观测到的群组活动事件
type RecordRequest struct {
	GroupID     string  `json:"group_id" binding:"required"`
	GroupName   string  `json:"group_name"`
	GroupType   string  `json:"group_type"`
	MemberCount int     `json:"member_count"`
	UserID      *string `json:"user_id"`
	Username    string  `json:"username"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	IsBot       bool    `json:"is_bot"`

	ActivityType string     `json:"activity_type" binding:"required"`
	Content      *string    `json:"content"`
	Timestamp    *time.Time `json:"timestamp"`
}

// RecorderService 活动记录器
// 接收活动事件：保证群组/成员行存在，调用风险分类器，写入活动流水。
// 活动是审计记录，重放会按设计产生重复流水，去重只发生在告警层
type RecorderService struct {
	db           *gorm.DB
	groupRepo    *repositories.GroupRepository
	memberRepo   *repositories.MemberRepository
	activityRepo *repositories.ActivityRepository
	classifier   *risk.Classifier
	policy       *risk.Policy
	alertService *AlertService
	log          *logger.Logger
	maxRetries   int
}

// NewRecorderService 创建活动记录服务实例
func NewRecorderService(
	db *gorm.DB,
	groupRepo *repositories.GroupRepository,
	memberRepo *repositories.MemberRepository,
	activityRepo *repositories.ActivityRepository,
	classifier *risk.Classifier,
	policy *risk.Policy,
	alertService *AlertService,
	log *logger.Logger,
	maxRetries int,
) *RecorderService {
	return &RecorderService{
		db:           db,
		groupRepo:    groupRepo,
		memberRepo:   memberRepo,
		activityRepo: activityRepo,
		classifier:   classifier,
		policy:       policy,
		alertService: alertService,
		log:          log,
		maxRetries:   maxRetries,
	}
}

// Record 记录一次活动
// 群组/成员 upsert 与活动插入在同一事务内提交；分类结果超过告警阈值时，
// 事务提交后触发告警管理器
func (s *RecorderService) Record(ctx context.Context, req RecordRequest) (*models.Activity, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	observedAt := time.Now().UTC()
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		observedAt = req.Timestamp.UTC()
	}

	// 分类所需的上下文信号在写入前采集，保证分类器本身与存储无关
	gctx, mctx := s.gatherContext(req, observedAt)

	// 分类基于原始内容，截断只影响落库
	result := s.classifier.Classify(risk.Activity{
		Type:      req.ActivityType,
		Content:   deref(req.Content),
		Timestamp: observedAt,
	}, gctx, mctx, s.policy)

	content := s.truncatedContent(req.Content)

	activity := &models.Activity{
		GroupID:      req.GroupID,
		UserID:       req.UserID,
		ActivityType: req.ActivityType,
		Content:      content,
		RiskLevel:    result.Level,
		Timestamp:    observedAt,
	}

	err := withRetry(ctx, s.maxRetries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := ensureGroupTx(tx, GroupUpsert{
				GroupID:     req.GroupID,
				GroupName:   req.GroupName,
				GroupType:   req.GroupType,
				MemberCount: req.MemberCount,
			}, observedAt); err != nil {
				return err
			}

			if req.UserID != nil && *req.UserID != "" {
				if err := ensureMemberTx(tx, MemberUpsert{
					GroupID:   req.GroupID,
					UserID:    *req.UserID,
					Username:  req.Username,
					FirstName: req.FirstName,
					LastName:  req.LastName,
					IsBot:     req.IsBot,
				}, observedAt); err != nil {
					return err
				}
				if err := repositories.NewMemberRepository(tx).TouchLastSeen(req.GroupID, *req.UserID, observedAt); err != nil {
					return err
				}
			}

			if err := repositories.NewActivityRepository(tx).Append(activity); err != nil {
				return err
			}

			return repositories.NewGroupRepository(tx).TouchLastScan(req.GroupID, observedAt)
		})
	})
	if err != nil {
		return nil, err
	}

	if result.Trigger != nil && s.alertService != nil {
		if _, err := s.alertService.Trigger(ctx, req.GroupID, result.Trigger.AlertType, result.Trigger.Message, result.Trigger.RiskLevel); err != nil {
			// 活动已落库，告警失败单独上抛
			return activity, err
		}
		s.log.InfoContext(ctx, "风险活动已触发告警",
			zap.String("group_id", req.GroupID),
			zap.String("alert_type", result.Trigger.AlertType),
			zap.String("risk_level", result.Trigger.RiskLevel.String()),
		)
	}

	return activity, nil
}

// ListActivities 分页查询群组活动流水，按时间倒序
func (s *RecorderService) ListActivities(ctx context.Context, groupID string, page, pageSize int) ([]models.Activity, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	var (
		activities []models.Activity
		total      int64
	)
	err := withRetry(ctx, s.maxRetries, func() error {
		var innerErr error
		activities, total, innerErr = s.activityRepo.ListByGroup(groupID, pageSize, (page-1)*pageSize)
		return innerErr
	})
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (s *RecorderService) validate(req *RecordRequest) error {
	if strings.TrimSpace(req.GroupID) == "" {
		return fmt.Errorf("%w: group id required", apperrors.ErrInvalidActivity)
	}
	if strings.TrimSpace(req.ActivityType) == "" {
		return fmt.Errorf("%w: activity type required", apperrors.ErrInvalidActivity)
	}
	return nil
}

// truncatedContent 截断超长内容，原始内容长度本身是独立的风险信号，
// 截断只约束落库体积
func (s *RecorderService) truncatedContent(content *string) *string {
	if content == nil {
		return nil
	}
	maxLen := s.policy.ContentMaxLen
	if maxLen <= 0 {
		maxLen = 500
	}
	runes := []rune(*content)
	if len(runes) <= maxLen {
		return content
	}
	truncated := string(runes[:maxLen])
	return &truncated
}

// gatherContext 采集群组与成员的近期活动计数等上下文信号
func (s *RecorderService) gatherContext(req RecordRequest, observedAt time.Time) (risk.GroupContext, risk.MemberContext) {
	since := observedAt.Add(-floodWindow)

	gctx := risk.GroupContext{}
	if group, err := s.groupRepo.GetByGroupID(req.GroupID); err == nil {
		gctx.Status = group.Status
		gctx.MemberCount = group.MemberCount
	}
	if count, err := s.activityRepo.CountByGroupSince(req.GroupID, since); err == nil {
		gctx.RecentActivityCount = count
	}

	mctx := risk.MemberContext{}
	if req.UserID != nil && *req.UserID != "" {
		if member, err := s.memberRepo.Get(req.GroupID, *req.UserID); err == nil {
			mctx.Known = true
			mctx.IsBot = member.IsBot
			mctx.JoinedAt = member.JoinedAt
		}
		if count, err := s.activityRepo.CountByMemberSince(req.GroupID, *req.UserID, since); err == nil {
			mctx.RecentActivityCount = count
		}
	}
	return gctx, mctx
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
