package models

import (
	"time"
)

// 成员状态
const (
	MemberStatusActive = "active"
	MemberStatusLeft   = "left"
	MemberStatusBanned = "banned"
)

// GroupMember 群组成员，(group_id, user_id) 唯一
// IsBot 首次观测后不可变；退群/封禁只改状态，保留历史行
type GroupMember struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GroupID   string `gorm:"column:group_id;not null;uniqueIndex:idx_group_user;type:varchar(64)" json:"group_id"`
	UserID    string `gorm:"column:user_id;not null;uniqueIndex:idx_group_user;type:varchar(64)" json:"user_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsBot     bool   `gorm:"default:false" json:"is_bot"`
	Status    string `gorm:"default:active" json:"status"` // active, left, banned

	JoinedAt time.Time `json:"joined_at"`
	LastSeen time.Time `json:"last_seen"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
