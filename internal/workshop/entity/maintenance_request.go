package entity

import "time"

// MaintenanceRequest 维修申请（待审批的维修提案）
type MaintenanceRequest struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	SourceID    string `json:"source_id" gorm:"size:32;not null;index"`
	SourceCode  string `json:"source_code" gorm:"size:50"`
	SourceType  string `json:"source_type" gorm:"size:20;not null"` // mold/machine
	Description string `json:"description" gorm:"size:500;not null"`
	Status      string `json:"status" gorm:"size:20;not null;default:pending;index"` // pending/approved/rejected

	RequestedBy string     `json:"requested_by" gorm:"size:32;not null"`
	DecidedBy   *string    `json:"decided_by" gorm:"size:32"`
	DecidedAt   *time.Time `json:"decided_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (MaintenanceRequest) TableName() string {
	return "maintenance_requests"
}

// 维修申请状态
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// ValidRequestTransitions 合法状态流转：pending之后不可再变
var ValidRequestTransitions = map[string][]string{
	RequestStatusPending: {RequestStatusApproved, RequestStatusRejected},
}
