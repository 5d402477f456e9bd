package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
)

// ComponentService 零件服务
type ComponentService struct {
	componentRepo *repository.ComponentRepository
	moldRepo      *repository.MoldRepository
}

// NewComponentService 创建零件服务
func NewComponentService(componentRepo *repository.ComponentRepository, moldRepo *repository.MoldRepository) *ComponentService {
	return &ComponentService{componentRepo: componentRepo, moldRepo: moldRepo}
}

var componentStatuses = map[string]bool{
	entity.ComponentStatusActive:        true,
	entity.ComponentStatusBeingModified: true,
	entity.ComponentStatusObsolete:      true,
}

// CreateComponentReq 创建零件请求
type CreateComponentReq struct {
	Code         string            `json:"code" binding:"required"`
	Description  string            `json:"description"`
	Material     string            `json:"material"`
	WeightGrams  float64           `json:"weight_grams"`
	MoldIDs      entity.StringList `json:"mold_ids"`
	StampingData entity.StringMap  `json:"stamping_data"`
	Checklist    entity.JSONB      `json:"checklist"`
	CustomFields entity.StringMap  `json:"custom_fields"`
}

// CreateComponent 创建零件
func (s *ComponentService) CreateComponent(ctx context.Context, req CreateComponentReq, userID string) (*entity.Component, error) {
	if err := validateCustomFields(req.CustomFields); err != nil {
		return nil, err
	}
	if err := s.checkMoldIDs(ctx, req.MoldIDs); err != nil {
		return nil, err
	}

	component := &entity.Component{
		ID:           generateID(),
		Code:         req.Code,
		Description:  req.Description,
		Material:     req.Material,
		WeightGrams:  req.WeightGrams,
		Status:       entity.ComponentStatusActive,
		MoldIDs:      req.MoldIDs,
		StampingData: req.StampingData,
		Checklist:    req.Checklist,
		CustomFields: req.CustomFields,
		CreatedBy:    userID,
	}
	if err := s.componentRepo.Create(ctx, component); err != nil {
		if err == repository.ErrDuplicateCode {
			return nil, fmt.Errorf("零件编号 %s 已存在: %w", req.Code, err)
		}
		return nil, fmt.Errorf("创建零件失败: %w", err)
	}
	return component, nil
}

// UpdateComponentReq 更新零件请求（nil字段不更新）
//
// 冲压参数不走这里，走专门的差异记录接口。
type UpdateComponentReq struct {
	Description  *string           `json:"description"`
	Material     *string           `json:"material"`
	WeightGrams  *float64          `json:"weight_grams"`
	Status       *string           `json:"status"`
	MoldIDs      entity.StringList `json:"mold_ids"`
	Checklist    entity.JSONB      `json:"checklist"`
	CustomFields entity.StringMap  `json:"custom_fields"`
}

// UpdateComponent 更新零件
func (s *ComponentService) UpdateComponent(ctx context.Context, id string, req UpdateComponentReq) (*entity.Component, error) {
	component, err := s.componentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !componentStatuses[*req.Status] {
			return nil, fmt.Errorf("%w: 未知零件状态 %s", ErrValidation, *req.Status)
		}
		component.Status = *req.Status
	}
	if req.MoldIDs != nil {
		if err := s.checkMoldIDs(ctx, req.MoldIDs); err != nil {
			return nil, err
		}
		component.MoldIDs = req.MoldIDs
	}
	if req.CustomFields != nil {
		if err := validateCustomFields(req.CustomFields); err != nil {
			return nil, err
		}
		component.CustomFields = req.CustomFields
	}
	if req.Description != nil {
		component.Description = *req.Description
	}
	if req.Material != nil {
		component.Material = *req.Material
	}
	if req.WeightGrams != nil {
		component.WeightGrams = *req.WeightGrams
	}
	if req.Checklist != nil {
		component.Checklist = req.Checklist
	}

	if err := s.componentRepo.Update(ctx, component); err != nil {
		return nil, fmt.Errorf("更新零件失败: %w", err)
	}
	return component, nil
}

// GetComponent 获取零件详情
func (s *ComponentService) GetComponent(ctx context.Context, id string) (*entity.Component, error) {
	return s.componentRepo.FindByID(ctx, id)
}

// ListComponents 获取零件列表
func (s *ComponentService) ListComponents(ctx context.Context, filters map[string]string) ([]entity.Component, error) {
	return s.componentRepo.List(ctx, filters)
}

// DeleteComponent 软删除零件
func (s *ComponentService) DeleteComponent(ctx context.Context, id string) error {
	if _, err := s.componentRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.componentRepo.SoftDelete(ctx, id)
}

func (s *ComponentService) checkMoldIDs(ctx context.Context, moldIDs entity.StringList) error {
	for _, moldID := range moldIDs {
		if _, err := s.moldRepo.FindByID(ctx, moldID); err != nil {
			return fmt.Errorf("关联模具 %s 不存在: %w", moldID, err)
		}
	}
	return nil
}
