package models

import (
	"time"
)

// 活动类型标签（自由分类，常见取值）
const (
	ActivityTypeMessage = "message"
	ActivityTypeJoin    = "join"
	ActivityTypeLeave   = "leave"
	ActivityTypeMedia   = "media"
)

// Activity 群组活动记录，追加写入的审计流水
// 一经写入不再修改或删除；UserID 可为空（系统事件没有用户）
type Activity struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GroupID      string    `gorm:"column:group_id;not null;index;type:varchar(64)" json:"group_id"`
	UserID       *string   `gorm:"column:user_id;type:varchar(64)" json:"user_id,omitempty"`
	ActivityType string    `gorm:"not null" json:"activity_type"`
	Content      *string   `json:"content,omitempty"`
	RiskLevel    RiskLevel `gorm:"type:varchar(16);default:normal" json:"risk_level"`

	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (Activity) TableName() string {
	return "activities"
}
