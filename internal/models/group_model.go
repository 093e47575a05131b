package models

import (
	"time"
)

// 群组状态
const (
	GroupStatusSafe       = "safe"
	GroupStatusSuspicious = "suspicious"
	GroupStatusDangerous  = "dangerous"
)

// 群组类型
const (
	GroupTypeGroup      = "group"
	GroupTypeSupergroup = "supergroup"
	GroupTypeChannel    = "channel"
)

// GroupStatusRank 群组状态的严重程度排序，用于保证状态只升不降
func GroupStatusRank(status string) int {
	switch status {
	case GroupStatusSuspicious:
		return 1
	case GroupStatusDangerous:
		return 2
	default:
		return 0
	}
}

// Group 受监控的群组
// GroupID 为平台侧的群组标识，首次分配后不可变；群组只停用不删除
type Group struct {
	ID uint `gorm:"primaryKey" json:"id"`

	GroupID     string `gorm:"column:group_id;uniqueIndex;not null;type:varchar(64)" json:"group_id"`
	GroupName   string `gorm:"column:group_name" json:"group_name"`
	GroupType   string `gorm:"column:group_type;default:group" json:"group_type"` // group, supergroup, channel
	MemberCount int    `gorm:"default:0" json:"member_count"`
	Status      string `gorm:"default:safe;index" json:"status"` // safe, suspicious, dangerous
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Members    []GroupMember `gorm:"foreignKey:GroupID;references:GroupID" json:"-"`
	Activities []Activity    `gorm:"foreignKey:GroupID;references:GroupID" json:"-"`
	Alerts     []Alert       `gorm:"foreignKey:GroupID;references:GroupID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	LastScan  time.Time `json:"last_scan"`
}

func (Group) TableName() string {
	return "groups"
}
