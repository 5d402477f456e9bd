package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"gorm.io/gorm"
)

// MachineRepository 设备仓库
type MachineRepository struct {
	db *gorm.DB
}

// NewMachineRepository 创建设备仓库
func NewMachineRepository(db *gorm.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// FindByID 根据ID查找设备（含保养计划）
func (r *MachineRepository) FindByID(ctx context.Context, id string) (*entity.Machine, error) {
	var machine entity.Machine
	err := r.db.WithContext(ctx).
		Preload("Schedules").
		Where("id = ? AND is_deleted = false", id).
		First(&machine).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &machine, nil
}

// FindByCode 根据编号查找设备
func (r *MachineRepository) FindByCode(ctx context.Context, code string) (*entity.Machine, error) {
	var machine entity.Machine
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_deleted = false", code).
		First(&machine).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &machine, nil
}

// Create 创建设备（编号冲突返回ErrDuplicateCode）
func (r *MachineRepository) Create(ctx context.Context, machine *entity.Machine) error {
	return translateCreateErr(r.db.WithContext(ctx).Create(machine).Error)
}

// Update 更新设备
func (r *MachineRepository) Update(ctx context.Context, machine *entity.Machine) error {
	return r.db.WithContext(ctx).Save(machine).Error
}

// SoftDelete 软删除设备
func (r *MachineRepository) SoftDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Machine{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// List 获取设备列表
func (r *MachineRepository) List(ctx context.Context, filters map[string]string) ([]entity.Machine, error) {
	var machines []entity.Machine
	query := r.db.WithContext(ctx).Model(&entity.Machine{}).Where("is_deleted = false")

	if keyword := filters["keyword"]; keyword != "" {
		query = query.Where("code ILIKE ? OR description ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}

	err := query.Order("code ASC").Find(&machines).Error
	return machines, err
}

// ScheduleRepository 保养计划仓库
type ScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository 创建保养计划仓库
func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindByID 根据ID查找保养计划项
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*entity.MaintenanceSchedule, error) {
	var schedule entity.MaintenanceSchedule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// ListByMachine 获取设备的保养计划列表（按到期时间升序）
func (r *ScheduleRepository) ListByMachine(ctx context.Context, machineID string) ([]entity.MaintenanceSchedule, error) {
	var schedules []entity.MaintenanceSchedule
	err := r.db.WithContext(ctx).
		Where("machine_id = ?", machineID).
		Order("next_due ASC NULLS LAST").
		Find(&schedules).Error
	return schedules, err
}

// Create 创建保养计划项
func (r *ScheduleRepository) Create(ctx context.Context, schedule *entity.MaintenanceSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

// Update 更新保养计划项
func (r *ScheduleRepository) Update(ctx context.Context, schedule *entity.MaintenanceSchedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

// Delete 删除保养计划项
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.MaintenanceSchedule{}, "id = ?", id).Error
}

// MarkPerformed 记录保养完成并推算下次到期时间
func (r *ScheduleRepository) MarkPerformed(ctx context.Context, id string, performedAt time.Time, nextDue time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.MaintenanceSchedule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_performed": performedAt,
			"next_due":       nextDue,
		}).Error
}
