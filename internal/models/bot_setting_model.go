package models

import (
	"time"
)

// BotSetting 机器人属主配置，每个属主一行
// AlertEnabled 只控制告警的外部通知，不影响告警行的持久化
type BotSetting struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OwnerID       string `gorm:"column:owner_id;uniqueIndex;not null;type:varchar(64)" json:"owner_id"`
	OwnerUsername string `json:"owner_username"`
	AlertEnabled  bool   `gorm:"default:true" json:"alert_enabled"`

	CreatedAt time.Time `json:"created_at"`
}

func (BotSetting) TableName() string {
	return "bot_settings"
}
