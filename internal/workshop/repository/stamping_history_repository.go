package repository

import (
	"context"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"gorm.io/gorm"
)

// StampingHistoryRepository 冲压参数变更历史仓库（仅追加）
type StampingHistoryRepository struct {
	db *gorm.DB
}

// NewStampingHistoryRepository 创建冲压历史仓库
func NewStampingHistoryRepository(db *gorm.DB) *StampingHistoryRepository {
	return &StampingHistoryRepository{db: db}
}

// Append 追加一条变更历史（与参数覆盖同事务，调用方传入事务句柄）
func (r *StampingHistoryRepository) Append(ctx context.Context, tx *gorm.DB, hist *entity.StampingHistory) error {
	return tx.WithContext(ctx).Create(hist).Error
}

// ListByComponent 获取零件的变更历史（最新在前）
func (r *StampingHistoryRepository) ListByComponent(ctx context.Context, componentID string) ([]entity.StampingHistory, error) {
	var entries []entity.StampingHistory
	err := r.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}
