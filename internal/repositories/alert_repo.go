package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

// AlertRepository 告警仓储
type AlertRepository struct {
	db *gorm.DB
}

// NewAlertRepository 创建告警仓储实例
func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *AlertRepository) WithTx(tx *gorm.DB) *AlertRepository {
	return &AlertRepository{db: tx}
}

// GetByID 根据ID获取告警
func (r *AlertRepository) GetByID(id uint) (*models.Alert, error) {
	var alert models.Alert
	if err := r.db.First(&alert, id).Error; err != nil {
		return nil, err
	}
	return &alert, nil
}

// FindUnresolved 查找 (group_id, alert_type) 的未解决告警
// 找不到时返回 gorm.ErrRecordNotFound
func (r *AlertRepository) FindUnresolved(groupID, alertType string) (*models.Alert, error) {
	var alert models.Alert
	err := r.db.Where("group_id = ? AND alert_type = ? AND resolved = ?", groupID, alertType, false).
		First(&alert).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// Create 创建告警
func (r *AlertRepository) Create(alert *models.Alert) error {
	return r.db.Create(alert).Error
}

// RefreshUnresolved 刷新未解决告警的消息与风险等级
// resolved 是写入条件而不只是读取时的筛选：并发解决抢先提交时
// 影响行数为 0，已解决的行绝不会被改回未解决
func (r *AlertRepository) RefreshUnresolved(id uint, message string, level models.RiskLevel) (int64, error) {
	res := r.db.Model(&models.Alert{}).
		Where("id = ? AND resolved = ?", id, false).
		Updates(map[string]any{
			"alert_message": message,
			"risk_level":    level,
		})
	return res.RowsAffected, res.Error
}

// MarkResolved 将告警置为已解决
func (r *AlertRepository) MarkResolved(id uint) error {
	return r.db.Model(&models.Alert{}).Where("id = ?", id).Update("resolved", true).Error
}

// ListUnresolved 列出未解决告警，groupID 为空时不按群组过滤
func (r *AlertRepository) ListUnresolved(groupID string) ([]models.Alert, error) {
	var alerts []models.Alert
	query := r.db.Where("resolved = ?", false)
	if groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}
	err := query.Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

// ListByGroupSince 列出群组自某时刻以来的告警
func (r *AlertRepository) ListByGroupSince(groupID string, since time.Time) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.Where("group_id = ? AND created_at >= ?", groupID, since).
		Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

// CountByGroupSince 统计群组自某时刻以来的告警数
func (r *AlertRepository) CountByGroupSince(groupID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Alert{}).
		Where("group_id = ? AND created_at >= ?", groupID, since).
		Count(&count).Error
	return count, err
}
