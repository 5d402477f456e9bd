package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"gorm.io/gorm"
)

// ProductionService 生产台账服务
//
// 不变量：component.total_cycles == 该零件所有生产记录 (good+scrapped) 之和。
// 记录的增删改与累计模次的增量更新在同一事务内完成，
// 累计值用 total_cycles + delta 原子更新，不做读-改-写。
type ProductionService struct {
	logRepo       *repository.ProductionLogRepository
	componentRepo *repository.ComponentRepository
	db            *gorm.DB
}

// NewProductionService 创建生产台账服务
func NewProductionService(logRepo *repository.ProductionLogRepository, componentRepo *repository.ComponentRepository, db *gorm.DB) *ProductionService {
	return &ProductionService{logRepo: logRepo, componentRepo: componentRepo, db: db}
}

// LogProductionReq 登记生产请求
type LogProductionReq struct {
	GoodPieces     int    `json:"good_pieces"`
	ScrappedPieces int    `json:"scrapped_pieces"`
	ScrapReason    string `json:"scrap_reason"`
}

func (r LogProductionReq) validate() error {
	if r.GoodPieces < 0 || r.ScrappedPieces < 0 {
		return fmt.Errorf("%w: 良品数和废品数不能为负", ErrValidation)
	}
	return nil
}

// LogProduction 登记一次生产并累加零件模次
func (s *ProductionService) LogProduction(ctx context.Context, componentID string, req LogProductionReq, userID string) (*entity.ProductionLog, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.componentRepo.FindByID(ctx, componentID); err != nil {
		return nil, err
	}

	logEntry := &entity.ProductionLog{
		ID:             generateID(),
		ComponentID:    componentID,
		GoodPieces:     req.GoodPieces,
		ScrappedPieces: req.ScrappedPieces,
		ScrapReason:    req.ScrapReason,
		CreatedBy:      userID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(logEntry).Error; err != nil {
			return err
		}
		return s.componentRepo.IncrementTotalCycles(ctx, tx, componentID, int64(logEntry.TotalPieces()))
	})
	if err != nil {
		return nil, fmt.Errorf("登记生产失败: %w", err)
	}
	return logEntry, nil
}

// UpdateProductionLogReq 修正生产记录请求（缺省字段保持原值）
type UpdateProductionLogReq struct {
	GoodPieces     *int    `json:"good_pieces"`
	ScrappedPieces *int    `json:"scrapped_pieces"`
	ScrapReason    *string `json:"scrap_reason"`
}

// UpdateProductionLog 修正生产记录，按新旧差值调整累计模次
func (s *ProductionService) UpdateProductionLog(ctx context.Context, id string, req UpdateProductionLogReq, userID string) (*entity.ProductionLog, error) {
	logEntry, err := s.logRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldTotal := int64(logEntry.TotalPieces())
	if req.GoodPieces != nil {
		logEntry.GoodPieces = *req.GoodPieces
	}
	if req.ScrappedPieces != nil {
		logEntry.ScrappedPieces = *req.ScrappedPieces
	}
	if req.ScrapReason != nil {
		logEntry.ScrapReason = *req.ScrapReason
	}
	if logEntry.GoodPieces < 0 || logEntry.ScrappedPieces < 0 {
		return nil, fmt.Errorf("%w: 良品数和废品数不能为负", ErrValidation)
	}
	delta := int64(logEntry.TotalPieces()) - oldTotal

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(logEntry).Error; err != nil {
			return err
		}
		return s.componentRepo.IncrementTotalCycles(ctx, tx, logEntry.ComponentID, delta)
	})
	if err != nil {
		return nil, fmt.Errorf("修正生产记录失败: %w", err)
	}
	return logEntry, nil
}

// DeleteProductionLog 删除生产记录并扣减累计模次
func (s *ProductionService) DeleteProductionLog(ctx context.Context, id string) error {
	logEntry, err := s.logRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.ProductionLog{}, "id = ?", id).Error; err != nil {
			return err
		}
		return s.componentRepo.IncrementTotalCycles(ctx, tx, logEntry.ComponentID, -int64(logEntry.TotalPieces()))
	})
	if err != nil {
		return fmt.Errorf("删除生产记录失败: %w", err)
	}
	return nil
}

// ListByComponent 获取零件的生产记录
func (s *ProductionService) ListByComponent(ctx context.Context, componentID string) ([]entity.ProductionLog, error) {
	return s.logRepo.ListByComponent(ctx, componentID)
}
