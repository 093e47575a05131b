package repositories

import (
	"gorm.io/gorm"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

// SettingRepository 属主配置仓储
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建配置仓储实例
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// GetByOwnerID 根据属主ID获取配置
func (r *SettingRepository) GetByOwnerID(ownerID string) (*models.BotSetting, error) {
	var setting models.BotSetting
	if err := r.db.Where("owner_id = ?", ownerID).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// Create 创建属主配置
func (r *SettingRepository) Create(setting *models.BotSetting) error {
	return r.db.Create(setting).Error
}

// SetAlertEnabled 切换属主的告警通知开关
func (r *SettingRepository) SetAlertEnabled(ownerID string, enabled bool) error {
	res := r.db.Model(&models.BotSetting{}).Where("owner_id = ?", ownerID).Update("alert_enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 列出全部属主配置
func (r *SettingRepository) List() ([]models.BotSetting, error) {
	var settings []models.BotSetting
	err := r.db.Find(&settings).Error
	return settings, err
}
