package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateCode = errors.New("duplicate code")
)

// Repositories 仓库集合
type Repositories struct {
	Mold          *MoldRepository
	Component     *ComponentRepository
	Machine       *MachineRepository
	Schedule      *ScheduleRepository
	Event         *EventRepository
	ProductionLog *ProductionLogRepository
	Stamping      *StampingHistoryRepository
	Request       *MaintenanceRequestRepository
	User          *UserRepository
	Attachment    *AttachmentRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Mold:          NewMoldRepository(db),
		Component:     NewComponentRepository(db),
		Machine:       NewMachineRepository(db),
		Schedule:      NewScheduleRepository(db),
		Event:         NewEventRepository(db),
		ProductionLog: NewProductionLogRepository(db),
		Stamping:      NewStampingHistoryRepository(db),
		Request:       NewMaintenanceRequestRepository(db),
		User:          NewUserRepository(db),
		Attachment:    NewAttachmentRepository(db),
	}
}

// translateCreateErr 将唯一约束冲突转换为ErrDuplicateCode
func translateCreateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCode
	}
	return err
}
