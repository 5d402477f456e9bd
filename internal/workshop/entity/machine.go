package entity

import "time"

// Machine 注塑机/生产设备
type Machine struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Code        string `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Description string `json:"description" gorm:"size:500"`
	Status      string `json:"status" gorm:"size:20;not null;default:operational"` // 设备状态由用户直接维护，不做推导
	IsDeleted   bool   `json:"is_deleted" gorm:"not null;default:false;index"`

	Location     string    `json:"location" gorm:"size:200"`
	Manufacturer string    `json:"manufacturer" gorm:"size:200"`
	TonnageKN    int       `json:"tonnage_kn" gorm:"default:0"`
	Notes        string    `json:"notes" gorm:"type:text"`
	CustomFields StringMap `json:"custom_fields" gorm:"type:jsonb"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 保养计划
	Schedules []MaintenanceSchedule `json:"schedules,omitempty" gorm:"foreignKey:MachineID"`
}

func (Machine) TableName() string {
	return "machines"
}

// MaintenanceSchedule 设备保养计划项
type MaintenanceSchedule struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	MachineID     string     `json:"machine_id" gorm:"size:32;not null;index"`
	Description   string     `json:"description" gorm:"size:500;not null"`
	IntervalDays  int        `json:"interval_days" gorm:"not null"`
	LastPerformed *time.Time `json:"last_performed"`
	NextDue       *time.Time `json:"next_due"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (MaintenanceSchedule) TableName() string {
	return "maintenance_schedules"
}
