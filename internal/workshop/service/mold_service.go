package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
)

// MoldService 模具服务
type MoldService struct {
	moldRepo    *repository.MoldRepository
	machineRepo *repository.MachineRepository
}

// NewMoldService 创建模具服务
func NewMoldService(moldRepo *repository.MoldRepository, machineRepo *repository.MachineRepository) *MoldService {
	return &MoldService{moldRepo: moldRepo, machineRepo: machineRepo}
}

// CreateMoldReq 创建模具请求
type CreateMoldReq struct {
	Code         string           `json:"code" binding:"required"`
	Description  string           `json:"description"`
	ParentID     *string          `json:"parent_id"`
	LocationType string           `json:"location_type"`
	Location     string           `json:"location"`
	MachineID    *string          `json:"machine_id"`
	Manufacturer string           `json:"manufacturer"`
	CavityCount  int              `json:"cavity_count"`
	Dimensions   string           `json:"dimensions"`
	Notes        string           `json:"notes"`
	CustomFields entity.StringMap `json:"custom_fields"`
}

// CreateMold 创建模具
func (s *MoldService) CreateMold(ctx context.Context, req CreateMoldReq, userID string) (*entity.Mold, error) {
	if err := validateCustomFields(req.CustomFields); err != nil {
		return nil, err
	}
	if req.LocationType == "" {
		req.LocationType = "internal"
	}
	if req.LocationType != "internal" && req.LocationType != "supplier" {
		return nil, fmt.Errorf("%w: 位置类型必须是internal或supplier", ErrValidation)
	}
	if req.ParentID != nil {
		if _, err := s.moldRepo.FindByID(ctx, *req.ParentID); err != nil {
			return nil, fmt.Errorf("父模具不存在: %w", err)
		}
	}
	if req.MachineID != nil {
		if _, err := s.machineRepo.FindByID(ctx, *req.MachineID); err != nil {
			return nil, fmt.Errorf("关联设备不存在: %w", err)
		}
	}

	mold := &entity.Mold{
		ID:           generateID(),
		Code:         req.Code,
		Description:  req.Description,
		Status:       entity.MoldStatusOperational,
		ParentID:     req.ParentID,
		LocationType: req.LocationType,
		Location:     req.Location,
		MachineID:    req.MachineID,
		Manufacturer: req.Manufacturer,
		CavityCount:  req.CavityCount,
		Dimensions:   req.Dimensions,
		Notes:        req.Notes,
		CustomFields: req.CustomFields,
		CreatedBy:    userID,
	}
	if err := s.moldRepo.Create(ctx, mold); err != nil {
		if err == repository.ErrDuplicateCode {
			return nil, fmt.Errorf("模具编号 %s 已存在: %w", req.Code, err)
		}
		return nil, fmt.Errorf("创建模具失败: %w", err)
	}
	return mold, nil
}

// UpdateMoldReq 更新模具请求（nil字段不更新）
type UpdateMoldReq struct {
	Description  *string          `json:"description"`
	Status       *string          `json:"status"`
	ParentID     *string          `json:"parent_id"`
	LocationType *string          `json:"location_type"`
	Location     *string          `json:"location"`
	MachineID    *string          `json:"machine_id"`
	Manufacturer *string          `json:"manufacturer"`
	CavityCount  *int             `json:"cavity_count"`
	Dimensions   *string          `json:"dimensions"`
	Notes        *string          `json:"notes"`
	CustomFields entity.StringMap `json:"custom_fields"`
}

var moldStatuses = map[string]bool{
	entity.MoldStatusOperational:   true,
	entity.MoldStatusInMaintenance: true,
	entity.MoldStatusProcessing:    true,
	entity.MoldStatusStopped:       true,
}

// UpdateMold 更新模具；状态可直接修改，事件联动时会被覆盖
func (s *MoldService) UpdateMold(ctx context.Context, id string, req UpdateMoldReq) (*entity.Mold, error) {
	mold, err := s.moldRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !moldStatuses[*req.Status] {
			return nil, fmt.Errorf("%w: 未知模具状态 %s", ErrValidation, *req.Status)
		}
		mold.Status = *req.Status
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, fmt.Errorf("%w: 模具不能作为自己的父模具", ErrValidation)
		}
		if err := s.checkNoCycle(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
		mold.ParentID = req.ParentID
	}
	if req.MachineID != nil {
		if _, err := s.machineRepo.FindByID(ctx, *req.MachineID); err != nil {
			return nil, fmt.Errorf("关联设备不存在: %w", err)
		}
		mold.MachineID = req.MachineID
	}
	if req.CustomFields != nil {
		if err := validateCustomFields(req.CustomFields); err != nil {
			return nil, err
		}
		mold.CustomFields = req.CustomFields
	}
	if req.Description != nil {
		mold.Description = *req.Description
	}
	if req.LocationType != nil {
		if *req.LocationType != "internal" && *req.LocationType != "supplier" {
			return nil, fmt.Errorf("%w: 位置类型必须是internal或supplier", ErrValidation)
		}
		mold.LocationType = *req.LocationType
	}
	if req.Location != nil {
		mold.Location = *req.Location
	}
	if req.Manufacturer != nil {
		mold.Manufacturer = *req.Manufacturer
	}
	if req.CavityCount != nil {
		mold.CavityCount = *req.CavityCount
	}
	if req.Dimensions != nil {
		mold.Dimensions = *req.Dimensions
	}
	if req.Notes != nil {
		mold.Notes = *req.Notes
	}

	if err := s.moldRepo.Update(ctx, mold); err != nil {
		return nil, fmt.Errorf("更新模具失败: %w", err)
	}
	return mold, nil
}

// GetMold 获取模具详情（含一级子模具）
func (s *MoldService) GetMold(ctx context.Context, id string) (*entity.Mold, error) {
	mold, err := s.moldRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	children, err := s.moldRepo.List(ctx, map[string]string{"parent_id": id})
	if err != nil {
		return nil, err
	}
	for i := range children {
		mold.Children = append(mold.Children, &children[i])
	}
	return mold, nil
}

// ListMolds 获取模具列表
func (s *MoldService) ListMolds(ctx context.Context, filters map[string]string) ([]entity.Mold, error) {
	return s.moldRepo.List(ctx, filters)
}

// GetMoldTree 获取模具树（根模具+逐级子模具）
func (s *MoldService) GetMoldTree(ctx context.Context) ([]*entity.Mold, error) {
	molds, err := s.moldRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entity.Mold, len(molds))
	for i := range molds {
		byID[molds[i].ID] = &molds[i]
	}

	var roots []*entity.Mold
	for i := range molds {
		m := &molds[i]
		if m.ParentID != nil {
			if parent, ok := byID[*m.ParentID]; ok {
				parent.Children = append(parent.Children, m)
				continue
			}
		}
		roots = append(roots, m)
	}
	return roots, nil
}

// DeleteMold 软删除模具；有子模具时拒绝
func (s *MoldService) DeleteMold(ctx context.Context, id string) error {
	if _, err := s.moldRepo.FindByID(ctx, id); err != nil {
		return err
	}
	children, err := s.moldRepo.List(ctx, map[string]string{"parent_id": id})
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: 模具存在子模具，不能删除", ErrValidation)
	}
	return s.moldRepo.SoftDelete(ctx, id)
}

// checkNoCycle 沿父链向上检查，防止成环
func (s *MoldService) checkNoCycle(ctx context.Context, id, parentID string) error {
	cur := parentID
	for depth := 0; depth < 50; depth++ {
		parent, err := s.moldRepo.FindByID(ctx, cur)
		if err != nil {
			if err == repository.ErrNotFound {
				return fmt.Errorf("父模具不存在: %w", err)
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == id {
			return fmt.Errorf("%w: 父模具设置会形成环", ErrValidation)
		}
		cur = *parent.ParentID
	}
	return fmt.Errorf("%w: 模具层级过深", ErrValidation)
}
