package entity

import "time"

// ProductionLog 生产记录（单次生产的良品/废品数）
type ProductionLog struct {
	ID             string `json:"id" gorm:"primaryKey;size:32"`
	ComponentID    string `json:"component_id" gorm:"size:32;not null;index"`
	GoodPieces     int    `json:"good_pieces" gorm:"not null;default:0"`
	ScrappedPieces int    `json:"scrapped_pieces" gorm:"not null;default:0"`
	ScrapReason    string `json:"scrap_reason" gorm:"size:500"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProductionLog) TableName() string {
	return "production_logs"
}

// TotalPieces 良品+废品合计
func (p *ProductionLog) TotalPieces() int {
	return p.GoodPieces + p.ScrappedPieces
}
