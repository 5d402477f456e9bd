package entity

import "time"

// Event 模具/设备事件（维修、保养、生产、费用等）
type Event struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	SourceID    string `json:"source_id" gorm:"size:32;not null;index"`
	SourceType  string `json:"source_type" gorm:"size:20;not null"` // mold/machine
	Type        string `json:"type" gorm:"size:20;not null"`        // maintenance/processing/repair/cost/other/maintenance_end
	Description string `json:"description" gorm:"size:500"`
	Status      string `json:"status" gorm:"size:20;not null;default:open;index"` // open/closed

	Cost             *float64   `json:"cost" gorm:"type:decimal(12,2)"`
	EstimatedEndDate *time.Time `json:"estimated_end_date"`
	ActualEndDate    *time.Time `json:"actual_end_date"`

	// 关联设备保养计划项
	ScheduleID *string `json:"schedule_id" gorm:"size:32"`

	CustomFields StringMap `json:"custom_fields" gorm:"type:jsonb"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// 事件类型
const (
	EventTypeMaintenance    = "maintenance"
	EventTypeProcessing     = "processing"
	EventTypeRepair         = "repair"
	EventTypeCost           = "cost"
	EventTypeOther          = "other"
	EventTypeMaintenanceEnd = "maintenance_end"
)

// 事件状态
const (
	EventStatusOpen   = "open"
	EventStatusClosed = "closed"
)

// 事件来源类型
const (
	SourceTypeMold    = "mold"
	SourceTypeMachine = "machine"
)

// EventTypes 合法事件类型集合
var EventTypes = map[string]bool{
	EventTypeMaintenance:    true,
	EventTypeProcessing:     true,
	EventTypeRepair:         true,
	EventTypeCost:           true,
	EventTypeOther:          true,
	EventTypeMaintenanceEnd: true,
}
