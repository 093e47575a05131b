package repositories

import (
	"time"

	"gorm.io/gorm"

	"github.com/Gopher0727/GroupGuard/internal/models"
)

// MemberRepository 群组成员仓储
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建成员仓储实例
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// WithTx 返回绑定到指定事务的仓储副本
func (r *MemberRepository) WithTx(tx *gorm.DB) *MemberRepository {
	return &MemberRepository{db: tx}
}

// Get 获取 (group_id, user_id) 对应的成员
func (r *MemberRepository) Get(groupID, userID string) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// Create 创建成员
func (r *MemberRepository) Create(member *models.GroupMember) error {
	return r.db.Create(member).Error
}

// UpdateMutable 更新可变字段，group_id/user_id/is_bot 不可变
func (r *MemberRepository) UpdateMutable(groupID, userID string, updates map[string]any) error {
	delete(updates, "group_id")
	delete(updates, "user_id")
	delete(updates, "is_bot")
	return r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Updates(updates).Error
}

// TouchLastSeen 更新成员最近活跃时间
func (r *MemberRepository) TouchLastSeen(groupID, userID string, at time.Time) error {
	return r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("last_seen", at).Error
}

// UpdateStatus 更新成员状态
func (r *MemberRepository) UpdateStatus(groupID, userID, status string) error {
	return r.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("status", status).Error
}

// CountByGroup 统计群组成员数
func (r *MemberRepository) CountByGroup(groupID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}
