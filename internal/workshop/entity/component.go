package entity

import "time"

// Component 零件
type Component struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	Code        string  `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Description string  `json:"description" gorm:"size:500"`
	Material    string  `json:"material" gorm:"size:100"`
	WeightGrams float64 `json:"weight_grams" gorm:"type:decimal(10,2);default:0"`
	Status      string  `json:"status" gorm:"size:20;not null;default:active"` // active/being_modified/obsolete
	IsDeleted   bool    `json:"is_deleted" gorm:"not null;default:false;index"`

	// 累计模次：所有生产记录 (good+scrapped) 之和，增量维护
	TotalCycles int64 `json:"total_cycles" gorm:"not null;default:0"`

	// 关联模具
	MoldIDs StringList `json:"mold_ids" gorm:"type:jsonb"`

	// 冲压工艺参数（压力、温度、时间等）
	StampingData StringMap `json:"stamping_data" gorm:"type:jsonb"`

	Checklist    JSONB     `json:"checklist" gorm:"type:jsonb"`
	CustomFields StringMap `json:"custom_fields" gorm:"type:jsonb"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Component) TableName() string {
	return "components"
}

// 零件状态
const (
	ComponentStatusActive        = "active"
	ComponentStatusBeingModified = "being_modified"
	ComponentStatusObsolete      = "obsolete"
)
