package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
)

// MachineService 设备服务（注塑机及其保养计划）
//
// 设备状态由用户直接维护，事件不联动。
type MachineService struct {
	machineRepo  *repository.MachineRepository
	scheduleRepo *repository.ScheduleRepository
}

// NewMachineService 创建设备服务
func NewMachineService(machineRepo *repository.MachineRepository, scheduleRepo *repository.ScheduleRepository) *MachineService {
	return &MachineService{machineRepo: machineRepo, scheduleRepo: scheduleRepo}
}

// CreateMachineReq 创建设备请求
type CreateMachineReq struct {
	Code         string           `json:"code" binding:"required"`
	Description  string           `json:"description"`
	Location     string           `json:"location"`
	Manufacturer string           `json:"manufacturer"`
	TonnageKN    int              `json:"tonnage_kn"`
	Notes        string           `json:"notes"`
	CustomFields entity.StringMap `json:"custom_fields"`
}

// CreateMachine 创建设备
func (s *MachineService) CreateMachine(ctx context.Context, req CreateMachineReq, userID string) (*entity.Machine, error) {
	if err := validateCustomFields(req.CustomFields); err != nil {
		return nil, err
	}

	machine := &entity.Machine{
		ID:           generateID(),
		Code:         req.Code,
		Description:  req.Description,
		Status:       "operational",
		Location:     req.Location,
		Manufacturer: req.Manufacturer,
		TonnageKN:    req.TonnageKN,
		Notes:        req.Notes,
		CustomFields: req.CustomFields,
		CreatedBy:    userID,
	}
	if err := s.machineRepo.Create(ctx, machine); err != nil {
		if err == repository.ErrDuplicateCode {
			return nil, fmt.Errorf("设备编号 %s 已存在: %w", req.Code, err)
		}
		return nil, fmt.Errorf("创建设备失败: %w", err)
	}
	return machine, nil
}

// UpdateMachineReq 更新设备请求（nil字段不更新）
type UpdateMachineReq struct {
	Description  *string          `json:"description"`
	Status       *string          `json:"status"`
	Location     *string          `json:"location"`
	Manufacturer *string          `json:"manufacturer"`
	TonnageKN    *int             `json:"tonnage_kn"`
	Notes        *string          `json:"notes"`
	CustomFields entity.StringMap `json:"custom_fields"`
}

// UpdateMachine 更新设备
func (s *MachineService) UpdateMachine(ctx context.Context, id string, req UpdateMachineReq) (*entity.Machine, error) {
	machine, err := s.machineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CustomFields != nil {
		if err := validateCustomFields(req.CustomFields); err != nil {
			return nil, err
		}
		machine.CustomFields = req.CustomFields
	}
	if req.Description != nil {
		machine.Description = *req.Description
	}
	if req.Status != nil {
		machine.Status = *req.Status
	}
	if req.Location != nil {
		machine.Location = *req.Location
	}
	if req.Manufacturer != nil {
		machine.Manufacturer = *req.Manufacturer
	}
	if req.TonnageKN != nil {
		machine.TonnageKN = *req.TonnageKN
	}
	if req.Notes != nil {
		machine.Notes = *req.Notes
	}

	if err := s.machineRepo.Update(ctx, machine); err != nil {
		return nil, fmt.Errorf("更新设备失败: %w", err)
	}
	return machine, nil
}

// GetMachine 获取设备详情（含保养计划）
func (s *MachineService) GetMachine(ctx context.Context, id string) (*entity.Machine, error) {
	machine, err := s.machineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	schedules, err := s.scheduleRepo.ListByMachine(ctx, id)
	if err != nil {
		return nil, err
	}
	machine.Schedules = schedules
	return machine, nil
}

// ListMachines 获取设备列表
func (s *MachineService) ListMachines(ctx context.Context, filters map[string]string) ([]entity.Machine, error) {
	return s.machineRepo.List(ctx, filters)
}

// DeleteMachine 软删除设备
func (s *MachineService) DeleteMachine(ctx context.Context, id string) error {
	if _, err := s.machineRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.machineRepo.SoftDelete(ctx, id)
}

// CreateScheduleReq 创建保养计划项请求
type CreateScheduleReq struct {
	Description  string `json:"description" binding:"required"`
	IntervalDays int    `json:"interval_days" binding:"required"`
}

// CreateSchedule 给设备添加保养计划项
func (s *MachineService) CreateSchedule(ctx context.Context, machineID string, req CreateScheduleReq) (*entity.MaintenanceSchedule, error) {
	if req.IntervalDays <= 0 {
		return nil, fmt.Errorf("%w: 保养周期必须大于0天", ErrValidation)
	}
	if _, err := s.machineRepo.FindByID(ctx, machineID); err != nil {
		return nil, err
	}

	schedule := &entity.MaintenanceSchedule{
		ID:           generateID(),
		MachineID:    machineID,
		Description:  req.Description,
		IntervalDays: req.IntervalDays,
	}
	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("创建保养计划失败: %w", err)
	}
	return schedule, nil
}

// ListSchedules 获取设备的保养计划（按到期时间升序）
func (s *MachineService) ListSchedules(ctx context.Context, machineID string) ([]entity.MaintenanceSchedule, error) {
	if _, err := s.machineRepo.FindByID(ctx, machineID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListByMachine(ctx, machineID)
}

// UpdateScheduleReq 更新保养计划请求
type UpdateScheduleReq struct {
	Description  *string `json:"description"`
	IntervalDays *int    `json:"interval_days"`
}

// UpdateSchedule 更新保养计划项；周期变更时按上次保养时间重算到期日
func (s *MachineService) UpdateSchedule(ctx context.Context, scheduleID string, req UpdateScheduleReq) (*entity.MaintenanceSchedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		schedule.Description = *req.Description
	}
	if req.IntervalDays != nil {
		if *req.IntervalDays <= 0 {
			return nil, fmt.Errorf("%w: 保养周期必须大于0天", ErrValidation)
		}
		schedule.IntervalDays = *req.IntervalDays
		if schedule.LastPerformed != nil {
			nextDue := schedule.LastPerformed.AddDate(0, 0, schedule.IntervalDays)
			schedule.NextDue = &nextDue
		}
	}

	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		return nil, fmt.Errorf("更新保养计划失败: %w", err)
	}
	return schedule, nil
}

// CompleteSchedule 登记保养完成：last_performed=now，next_due=now+interval
func (s *MachineService) CompleteSchedule(ctx context.Context, scheduleID string) (*entity.MaintenanceSchedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	nextDue := now.AddDate(0, 0, schedule.IntervalDays)
	if err := s.scheduleRepo.MarkPerformed(ctx, scheduleID, now, nextDue); err != nil {
		return nil, fmt.Errorf("登记保养完成失败: %w", err)
	}
	schedule.LastPerformed = &now
	schedule.NextDue = &nextDue
	return schedule, nil
}

// DeleteSchedule 删除保养计划项
func (s *MachineService) DeleteSchedule(ctx context.Context, scheduleID string) error {
	if _, err := s.scheduleRepo.FindByID(ctx, scheduleID); err != nil {
		return err
	}
	return s.scheduleRepo.Delete(ctx, scheduleID)
}
