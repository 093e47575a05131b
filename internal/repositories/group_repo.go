package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

// GroupRepository 群组仓储
type GroupRepository struct {
	db *gorm.DB
}

// NewGroupRepository 创建群组仓储实例
func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *GroupRepository) WithTx(tx *gorm.DB) *GroupRepository {
	return &GroupRepository{db: tx}
}

// GetByGroupID 根据平台群组ID获取群组
func (r *GroupRepository) GetByGroupID(groupID string) (*models.Group, error) {
	var group models.Group
	if err := r.db.Where("group_id = ?", groupID).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// Create 创建群组
func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

// Exists 判断群组是否已存在
func (r *GroupRepository) Exists(groupID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Group{}).Where("group_id = ?", groupID).Count(&count).Error
	return count > 0, err
}

// UpdateMutable 更新可变字段，group_id 不可变
func (r *GroupRepository) UpdateMutable(groupID string, updates map[string]any) error {
	delete(updates, "group_id")
	return r.db.Model(&models.Group{}).Where("group_id = ?", groupID).Updates(updates).Error
}

// UpdateStatus 更新群组状态
func (r *GroupRepository) UpdateStatus(groupID, status string) error {
	return r.db.Model(&models.Group{}).Where("group_id = ?", groupID).Update("status", status).Error
}

// TouchLastScan 更新最近扫描时间
func (r *GroupRepository) TouchLastScan(groupID string, at time.Time) error {
	return r.db.Model(&models.Group{}).Where("group_id = ?", groupID).Update("last_scan", at).Error
}

// SetActive 设置群组活跃标记，不级联删除任何子记录
func (r *GroupRepository) SetActive(groupID string, active bool) error {
	res := r.db.Model(&models.Group{}).Where("group_id = ?", groupID).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 列出全部群组
func (r *GroupRepository) List() ([]models.Group, error) {
	var groups []models.Group
	err := r.db.Order("created_at").Find(&groups).Error
	return groups, err
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
