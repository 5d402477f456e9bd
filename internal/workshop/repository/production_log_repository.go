package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"gorm.io/gorm"
)

// ProductionLogRepository 生产记录仓库
type ProductionLogRepository struct {
	db *gorm.DB
}

// NewProductionLogRepository 创建生产记录仓库
func NewProductionLogRepository(db *gorm.DB) *ProductionLogRepository {
	return &ProductionLogRepository{db: db}
}

// FindByID 根据ID查找生产记录
func (r *ProductionLogRepository) FindByID(ctx context.Context, id string) (*entity.ProductionLog, error) {
	var log entity.ProductionLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// ListByComponent 获取零件的生产记录列表（最新在前）
func (r *ProductionLogRepository) ListByComponent(ctx context.Context, componentID string) ([]entity.ProductionLog, error) {
	var logs []entity.ProductionLog
	err := r.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
