package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

// ActivityRepository 活动流水仓储
// 活动是只追加的审计记录，仓储刻意不提供更新和删除方法
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建活动仓储实例
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *ActivityRepository) WithTx(tx *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: tx}
}

// Append 追加一条活动记录
func (r *ActivityRepository) Append(activity *models.Activity) error {
	return r.db.Create(activity).Error
}

// CountByGroupSince 统计群组自某时刻以来的活动数
func (r *ActivityRepository) CountByGroupSince(groupID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Activity{}).
		Where("group_id = ? AND timestamp >= ?", groupID, since).
		Count(&count).Error
	return count, err
}

// CountByMemberSince 统计某成员在群组内自某时刻以来的活动数
// 作为洪水检测的上下文信号传给分类器
func (r *ActivityRepository) CountByMemberSince(groupID, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Activity{}).
		Where("group_id = ? AND user_id = ? AND timestamp >= ?", groupID, userID, since).
		Count(&count).Error
	return count, err
}

// ListByGroup 按时间倒序列出群组活动
func (r *ActivityRepository) ListByGroup(groupID string, limit, offset int) ([]models.Activity, int64, error) {
	var activities []models.Activity
	var total int64

	query := r.db.Model(&models.Activity{}).Where("group_id = ?", groupID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&activities).Error
	return activities, total, err
}
