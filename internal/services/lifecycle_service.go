package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
)

// LifecycleService 群组与成员的生命周期管理
// 群组和成员只创建和更新，从不物理删除
type LifecycleService struct {
	db         *gorm.DB
	groupRepo  *repositories.GroupRepository
	memberRepo *repositories.MemberRepository
	maxRetries int
}

// NewLifecycleService 创建生命周期服务实例
func NewLifecycleService(db *gorm.DB, groupRepo *repositories.GroupRepository, memberRepo *repositories.MemberRepository, maxRetries int) *LifecycleService {
	return &LifecycleService{
		db:         db,
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		maxRetries: maxRetries,
	}
}

// GroupUpsert 群组可变字段
type GroupUpsert struct {
	GroupID     string `json:"group_id" binding:"required"`
	GroupName   string `json:"group_name"`
	GroupType   string `json:"group_type"`
	MemberCount int    `json:"member_count"`
}

// MemberUpsert 成员可变字段，IsBot 仅在首次观测时写入
type MemberUpsert struct {
	GroupID   string `json:"group_id"`
	UserID    string `json:"user_id" binding:"required"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsBot     bool   `json:"is_bot"`
}

// EnsureGroup 群组 upsert：不存在则以 safe 状态创建，存在则更新可变字段
func (s *LifecycleService) EnsureGroup(ctx context.Context, req GroupUpsert) error {
	if req.GroupID == "" {
		return fmt.Errorf("%w: group id required", apperrors.ErrInvalidActivity)
	}
	return withRetry(ctx, s.maxRetries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return ensureGroupTx(tx, req, time.Now().UTC())
		})
	})
}

// EnsureMember 成员 upsert：(group_id, user_id) 不存在则以 active 状态创建
func (s *LifecycleService) EnsureMember(ctx context.Context, req MemberUpsert) error {
	if req.GroupID == "" || req.UserID == "" {
		return fmt.Errorf("%w: group id and user id required", apperrors.ErrInvalidActivity)
	}
	return withRetry(ctx, s.maxRetries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return ensureMemberTx(tx, req, time.Now().UTC())
		})
	})
}

// MarkMemberLeft 成员退群，仅改状态，保留历史行
func (s *LifecycleService) MarkMemberLeft(ctx context.Context, groupID, userID string) error {
	repo := s.memberRepo
	if _, err := repo.Get(groupID, userID); err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: member %s/%s", apperrors.ErrNotFound, groupID, userID)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if err := repo.UpdateStatus(groupID, userID, models.MemberStatusLeft); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// DeactivateGroup 停用群组，活动、告警、成员记录全部保留且仍可查询
func (s *LifecycleService) DeactivateGroup(ctx context.Context, groupID string) error {
	return s.setGroupActive(ctx, groupID, false)
}

// SetGroupActive 设置群组活跃标记
func (s *LifecycleService) SetGroupActive(ctx context.Context, groupID string, active bool) error {
	return s.setGroupActive(ctx, groupID, active)
}

func (s *LifecycleService) setGroupActive(ctx context.Context, groupID string, active bool) error {
	err := s.groupRepo.SetActive(groupID, active)
	if err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// GetGroupStatus 查询群组状态
func (s *LifecycleService) GetGroupStatus(ctx context.Context, groupID string) (string, error) {
	group, err := s.groupRepo.GetByGroupID(groupID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return "", fmt.Errorf("%w: group %s", apperrors.ErrNotFound, groupID)
		}
		return "", fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return group.Status, nil
}

// ListGroups 列出全部受监控群组
func (s *LifecycleService) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := withRetry(ctx, s.maxRetries, func() error {
		var innerErr error
		groups, innerErr = s.groupRepo.List()
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ensureGroupTx 事务内的群组 upsert，group_id 不可变
func ensureGroupTx(tx *gorm.DB, req GroupUpsert, now time.Time) error {
	repo := repositories.NewGroupRepository(tx)

	existing, err := repo.GetByGroupID(req.GroupID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			return err
		}
		groupType := req.GroupType
		if groupType == "" {
			groupType = models.GroupTypeGroup
		}
		return repo.Create(&models.Group{
			GroupID:     req.GroupID,
			GroupName:   req.GroupName,
			GroupType:   groupType,
			MemberCount: req.MemberCount,
			Status:      models.GroupStatusSafe,
			IsActive:    true,
			LastScan:    now,
		})
	}

	updates := map[string]any{}
	if req.GroupName != "" && req.GroupName != existing.GroupName {
		updates["group_name"] = req.GroupName
	}
	if req.GroupType != "" && req.GroupType != existing.GroupType {
		updates["group_type"] = req.GroupType
	}
	if req.MemberCount > 0 && req.MemberCount != existing.MemberCount {
		updates["member_count"] = req.MemberCount
	}
	if len(updates) == 0 {
		return nil
	}
	return repo.UpdateMutable(req.GroupID, updates)
}

// ensureMemberTx 事务内的成员 upsert，is_bot 首次观测后不再变更
func ensureMemberTx(tx *gorm.DB, req MemberUpsert, now time.Time) error {
	repo := repositories.NewMemberRepository(tx)

	existing, err := repo.Get(req.GroupID, req.UserID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			return err
		}
		return repo.Create(&models.GroupMember{
			GroupID:   req.GroupID,
			UserID:    req.UserID,
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			IsBot:     req.IsBot,
			Status:    models.MemberStatusActive,
			JoinedAt:  now,
			LastSeen:  now,
		})
	}

	updates := map[string]any{}
	if req.Username != "" && req.Username != existing.Username {
		updates["username"] = req.Username
	}
	if req.FirstName != existing.FirstName && req.FirstName != "" {
		updates["first_name"] = req.FirstName
	}
	if req.LastName != existing.LastName && req.LastName != "" {
		updates["last_name"] = req.LastName
	}
	if len(updates) == 0 {
		return nil
	}
	return repo.UpdateMutable(req.GroupID, req.UserID, updates)
}
