package entity

import "time"

// Mold 模具
type Mold struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	Code        string  `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Description string  `json:"description" gorm:"size:500"`
	Status      string  `json:"status" gorm:"size:20;not null;default:operational"` // operational/in_maintenance/processing/stopped
	IsDeleted   bool    `json:"is_deleted" gorm:"not null;default:false;index"`
	ParentID    *string `json:"parent_id" gorm:"size:32;index"`

	// 位置：内部库位或外部供应商
	LocationType string `json:"location_type" gorm:"size:20;default:internal"` // internal/supplier
	Location     string `json:"location" gorm:"size:200"`

	// 关联设备
	MachineID *string `json:"machine_id" gorm:"size:32"`

	// 技术/管理信息
	Manufacturer string    `json:"manufacturer" gorm:"size:200"`
	CavityCount  int       `json:"cavity_count" gorm:"default:0"`
	Dimensions   string    `json:"dimensions" gorm:"size:100"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CustomFields StringMap `json:"custom_fields" gorm:"type:jsonb"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 子模具（按parent_id读取时计算，不落库）
	Children []*Mold `json:"children,omitempty" gorm:"-"`
}

func (Mold) TableName() string {
	return "molds"
}

// 模具状态
const (
	MoldStatusOperational   = "operational"
	MoldStatusInMaintenance = "in_maintenance"
	MoldStatusProcessing    = "processing"
	MoldStatusStopped       = "stopped"
)
