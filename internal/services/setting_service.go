package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gopher0727/GroupGuard/internal/apperrors"
	"github.com/Gopher0727/GroupGuard/internal/models"
	"github.com/Gopher0727/GroupGuard/internal/repositories"
)

// SettingService 所有者通知设置
type SettingService struct {
	settingRepo *repositories.SettingRepository
	maxRetries  int
}

// NewSettingService 创建设置服务实例
func NewSettingService(settingRepo *repositories.SettingRepository, maxRetries int) *SettingService {
	return &SettingService{settingRepo: settingRepo, maxRetries: maxRetries}
}

// RegisterOwner 注册所有者，已存在时不覆盖现有开关状态
func (s *SettingService) RegisterOwner(ctx context.Context, ownerID, ownerUsername string) (*models.BotSetting, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: owner id required", apperrors.ErrInvalidActivity)
	}

	var setting *models.BotSetting
	err := withRetry(ctx, s.maxRetries, func() error {
		existing, err := s.settingRepo.GetByOwnerID(ownerID)
		if err == nil {
			setting = existing
			return nil
		}
		if !repositories.IsNotFound(err) {
			return err
		}
		setting = &models.BotSetting{
			OwnerID:       ownerID,
			OwnerUsername: ownerUsername,
			AlertEnabled:  true,
		}
		return s.settingRepo.Create(setting)
	})
	if err != nil {
		return nil, err
	}
	return setting, nil
}

// SetAlertEnabled 切换所有者的告警通知开关
func (s *SettingService) SetAlertEnabled(ctx context.Context, ownerID string, enabled bool) error {
	return withRetry(ctx, s.maxRetries, func() error {
		err := s.settingRepo.SetAlertEnabled(ownerID, enabled)
		if repositories.IsNotFound(err) {
			return apperrors.ErrNotFound
		}
		return err
	})
}

// GetByOwnerID 查询所有者设置
func (s *SettingService) GetByOwnerID(ctx context.Context, ownerID string) (*models.BotSetting, error) {
	var setting *models.BotSetting
	err := withRetry(ctx, s.maxRetries, func() error {
		found, err := s.settingRepo.GetByOwnerID(ownerID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return apperrors.ErrNotFound
			}
			return err
		}
		setting = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return setting, nil
}
