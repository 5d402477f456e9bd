package entity

import "time"

// StampingHistory 冲压参数变更历史（仅追加，不修改不删除）
type StampingHistory struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	ComponentID string    `json:"component_id" gorm:"size:32;not null;index"`
	UserID      string    `json:"user_id" gorm:"size:32;not null"`
	ChangedData StringMap `json:"changed_data" gorm:"type:jsonb;not null"` // 仅包含实际变化的字段→新值
	CreatedAt   time.Time `json:"created_at"`
}

func (StampingHistory) TableName() string {
	return "stamping_histories"
}
