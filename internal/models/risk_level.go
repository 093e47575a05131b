package models

import (
	"database/sql/driver"
	"fmt"
)

// RiskLevel 有序的风险等级：normal < suspicious < high < critical
// 数值比较即为等级比较，存储时序列化为字符串
type RiskLevel int

const (
	RiskNormal RiskLevel = iota
	RiskSuspicious
	RiskHigh
	RiskCritical
)

var riskLevelNames = map[RiskLevel]string{
	RiskNormal:     "normal",
	RiskSuspicious: "suspicious",
	RiskHigh:       "high",
	RiskCritical:   "critical",
}

func (r RiskLevel) String() string {
	if name, ok := riskLevelNames[r]; ok {
		return name
	}
	return "normal"
}

// ParseRiskLevel 解析风险等级字符串，未知值返回错误
func ParseRiskLevel(s string) (RiskLevel, error) {
	for level, name := range riskLevelNames {
		if name == s {
			return level, nil
		}
	}
	return RiskNormal, fmt.Errorf("unknown risk level %q", s)
}

// MaxRiskLevel 返回两个等级中较高的一个
func MaxRiskLevel(a, b RiskLevel) RiskLevel {
	if a > b {
		return a
	}
	return b
}

// Value 实现 driver.Valuer，以文本形式入库
func (r RiskLevel) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan 实现 sql.Scanner
func (r *RiskLevel) Scan(src any) error {
	switch v := src.(type) {
	case string:
		level, err := ParseRiskLevel(v)
		if err != nil {
			return err
		}
		*r = level
		return nil
	case []byte:
		level, err := ParseRiskLevel(string(v))
		if err != nil {
			return err
		}
		*r = level
		return nil
	default:
		return fmt.Errorf("cannot scan %T into RiskLevel", src)
	}
}

// MarshalJSON 序列化为字符串形式
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON 反序列化字符串形式
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	level, err := ParseRiskLevel(s)
	if err != nil {
		return err
	}
	*r = level
	return nil
}
