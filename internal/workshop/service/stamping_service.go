package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"gorm.io/gorm"
)

// StampingService 冲压参数服务
//
// 参数变更走差异比较：只比较新对象中出现的键，键值相同视为未变化，
// 未出现的键保持原值（缺席不等于置空）。有实际变化时先追加历史再覆盖零件参数，
// 两步在同一事务内；无变化则不写历史也不更新。
type StampingService struct {
	stampingRepo  *repository.StampingHistoryRepository
	componentRepo *repository.ComponentRepository
	db            *gorm.DB
}

// NewStampingService 创建冲压参数服务
func NewStampingService(stampingRepo *repository.StampingHistoryRepository, componentRepo *repository.ComponentRepository, db *gorm.DB) *StampingService {
	return &StampingService{stampingRepo: stampingRepo, componentRepo: componentRepo, db: db}
}

// DiffStampingData 计算冲压参数差异：返回incoming中与current不同（或新增）的键值
func DiffStampingData(current, incoming entity.StringMap) entity.StringMap {
	changed := entity.StringMap{}
	for k, v := range incoming {
		if old, ok := current[k]; !ok || old != v {
			changed[k] = v
		}
	}
	return changed
}

// RecordStampingChange 应用冲压参数变更并记录历史
//
// 返回实际变化的键值；无变化时返回空集且不产生历史记录。
func (s *StampingService) RecordStampingChange(ctx context.Context, componentID string, incoming entity.StringMap, userID string) (entity.StringMap, error) {
	component, err := s.componentRepo.FindByID(ctx, componentID)
	if err != nil {
		return nil, err
	}

	changed := DiffStampingData(component.StampingData, incoming)
	if len(changed) == 0 {
		return changed, nil
	}

	if component.StampingData == nil {
		component.StampingData = entity.StringMap{}
	}
	for k, v := range changed {
		component.StampingData[k] = v
	}

	hist := &entity.StampingHistory{
		ID:          generateID(),
		ComponentID: componentID,
		UserID:      userID,
		ChangedData: changed,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先写历史再覆盖参数，历史缺失比参数滞后更难追查
		if err := s.stampingRepo.Append(ctx, tx, hist); err != nil {
			return err
		}
		return tx.Model(&entity.Component{}).
			Where("id = ?", componentID).
			Update("stamping_data", component.StampingData).Error
	})
	if err != nil {
		return nil, fmt.Errorf("更新冲压参数失败: %w", err)
	}
	return changed, nil
}

// ListHistory 获取零件的冲压参数变更历史（新的在前）
func (s *StampingService) ListHistory(ctx context.Context, componentID string) ([]entity.StampingHistory, error) {
	if _, err := s.componentRepo.FindByID(ctx, componentID); err != nil {
		return nil, err
	}
	return s.stampingRepo.ListByComponent(ctx, componentID)
}
