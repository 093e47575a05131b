package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	logger "github.com/Gopher0727/GroupGuard/middleware/log"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/notify"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
	"github.com/Gopher0727/GroupGuard/utils/keylock"
)

// lockWait 同键告警串行化的最长等待时间
const lockWait = 5 * time.Second

// EscalationPolicy 告警风险升级阈值
// 告警等级到达 SuspiciousAt/DangerousAt 时，群组状态随之单调升级，
// 只有显式的管理动作才能重置群组状态
type EscalationPolicy struct {
	SuspiciousAt models.RiskLevel
	DangerousAt  models.RiskLevel
}

// AlertService 告警管理器
// 维护"同一 (group_id, alert_type) 至多一条未解决告警"的动态不变式：
// 同键的 Trigger 调用经 keylock 串行化后走事务内 update-or-insert
type AlertService struct {
	db         *gorm.DB
	alertRepo  *repositories.AlertRepository
	groupRepo  *repositories.GroupRepository
	keys       *keylock.KeyLock
	dispatcher *notify.Dispatcher
	escalation EscalationPolicy
	log        *logger.Logger
	maxRetries int
}

// NewAlertService 创建告警服务实例，dispatcher 可为 nil（不发通知）
func NewAlertService(
	db *gorm.DB,
	alertRepo *repositories.AlertRepository,
	groupRepo *repositories.GroupRepository,
	dispatcher *notify.Dispatcher,
	escalation EscalationPolicy,
	log *logger.Logger,
	maxRetries int,
) *AlertService {
	return &AlertService{
		db:         db,
		alertRepo:  alertRepo,
		groupRepo:  groupRepo,
		keys:       keylock.New(keylock.DefaultStripes),
		dispatcher: dispatcher,
		escalation: escalation,
		log:        log,
		maxRetries: maxRetries,
	}
}

// Trigger 触发告警
// 无未解决告警则新建；已有则刷新消息并取两者风险等级的较大值，绝不降级。
// 事务提交后再异步派发通知，通知失败不影响已持久化的告警
func (s *AlertService) Trigger(ctx context.Context, groupID, alertType, message string, level models.RiskLevel) (*models.Alert, error) {
	if groupID == "" || alertType == "" {
		return nil, fmt.Errorf("%w: group id and alert type required", apperrors.ErrInvalidActivity)
	}

	key := groupID + "|" + alertType
	var result *models.Alert

	// 串行化等待有界，拿不到锁时放弃本次风险处理而不是无限排队
	if !s.keys.LockTimeout(key, lockWait) {
		return nil, fmt.Errorf("%w: alert %s", apperrors.ErrConflictRetryExhausted, key)
	}
	defer s.keys.Unlock(key)

	err := withRetry(ctx, s.maxRetries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			alertRepo := s.alertRepo.WithTx(tx)

			existing, err := alertRepo.FindUnresolved(groupID, alertType)
			if err != nil && !repositories.IsNotFound(err) {
				return err
			}

			if existing == nil || repositories.IsNotFound(err) {
				alert := &models.Alert{
					GroupID:      groupID,
					AlertType:    alertType,
					AlertMessage: message,
					RiskLevel:    level,
					Resolved:     false,
				}
				if err := alertRepo.Create(alert); err != nil {
					return err
				}
				result = alert
			} else {
				merged := models.MaxRiskLevel(existing.RiskLevel, level)
				rows, err := alertRepo.RefreshUnresolved(existing.ID, message, merged)
				if err != nil {
					return err
				}
				if rows == 0 {
					// 查找之后、写入之前被并发解决：解决是终态，
					// 不改写已解决的行，开一条新告警
					alert := &models.Alert{
						GroupID:      groupID,
						AlertType:    alertType,
						AlertMessage: message,
						RiskLevel:    level,
						Resolved:     false,
					}
					if err := alertRepo.Create(alert); err != nil {
						return err
					}
					result = alert
				} else {
					existing.AlertMessage = message
					existing.RiskLevel = merged
					result = existing
				}
			}

			return s.escalateGroupTx(tx, groupID, result.RiskLevel)
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyAfterCommit(groupID, result)
	return result, nil
}

// Resolve 解决告警，幂等：重复解决同一告警不是错误
// 解决是告警实例的终态，之后同类型的新触发会开出新的告警行
func (s *AlertService) Resolve(ctx context.Context, alertID uint) error {
	alert, err := s.alertRepo.GetByID(alertID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return fmt.Errorf("%w: alert %d", apperrors.ErrNotFound, alertID)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	if alert.Resolved {
		return nil
	}
	if err := s.alertRepo.MarkResolved(alertID); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// ListUnresolved 列出未解决告警，groupID 为空表示全部群组
func (s *AlertService) ListUnresolved(ctx context.Context, groupID string) ([]models.Alert, error) {
	alerts, err := s.alertRepo.ListUnresolved(groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, err)
	}
	return alerts, nil
}

// escalateGroupTx 按告警等级单调升级群组状态
func (s *AlertService) escalateGroupTx(tx *gorm.DB, groupID string, level models.RiskLevel) error {
	var target string
	switch {
	case level >= s.escalation.DangerousAt:
		target = models.GroupStatusDangerous
	case level >= s.escalation.SuspiciousAt:
		target = models.GroupStatusSuspicious
	default:
		return nil
	}

	groupRepo := s.groupRepo.WithTx(tx)
	group, err := groupRepo.GetByGroupID(groupID)
	if err != nil {
		if repositories.IsNotFound(err) {
			// 告警先于群组记录出现时不升级，等群组行就位
			return nil
		}
		return err
	}

	// 只升不降
	if models.GroupStatusRank(target) <= models.GroupStatusRank(group.Status) {
		return nil
	}
	return groupRepo.UpdateStatus(groupID, target)
}

func (s *AlertService) notifyAfterCommit(groupID string, alert *models.Alert) {
	if s.dispatcher == nil {
		return
	}

	groupName := ""
	if group, err := s.groupRepo.GetByGroupID(groupID); err == nil {
		groupName = group.GroupName
	}

	s.dispatcher.Dispatch(notify.Notification{
		GroupID:    groupID,
		GroupName:  groupName,
		AlertType:  alert.AlertType,
		Message:    alert.AlertMessage,
		RiskLevel:  alert.RiskLevel,
		OccurredAt: time.Now().UTC(),
	})
}
