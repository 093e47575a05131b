package models

import (
	"time"
)

// Alert 安全告警
// 同一 (group_id, alert_type) 至多存在一条未解决告警，该约束由 Alert
// Manager 的事务性 update-or-insert 维护，不依赖存储层唯一索引
// （"未解决"是动态条件，无法表达为静态键）
type Alert struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GroupID      string    `gorm:"column:group_id;not null;index:idx_alerts_group_type;type:varchar(64)" json:"group_id"`
	AlertType    string    `gorm:"not null;index:idx_alerts_group_type" json:"alert_type"`
	AlertMessage string    `json:"alert_message"`
	RiskLevel    RiskLevel `gorm:"type:varchar(16);default:normal" json:"risk_level"`
	Resolved     bool      `gorm:"default:false;index" json:"resolved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Alert) TableName() string {
	return "alerts"
}
