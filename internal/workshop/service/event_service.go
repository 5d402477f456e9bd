package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
	"github.com/bitfantasy/moldtrack/internal/workshop/sse"
	"gorm.io/gorm"
)

// EventService 事件服务：事件读写 + 模具状态联动规则
//
// 模具状态推导规则：
//   - 新建 maintenance/repair 事件 → 模具进入 in_maintenance（无条件覆盖）
//   - 新建 processing 事件 → 模具进入 processing
//   - cost/other 事件不影响状态
//   - 关闭事件后若该模具已无未关闭事件 → 恢复 operational；仍有未关闭事件则状态保持不变
//
// 事件与状态写入在同一事务内完成，避免两次往返之间的竞态。
type EventService struct {
	eventRepo    *repository.EventRepository
	moldRepo     *repository.MoldRepository
	machineRepo  *repository.MachineRepository
	scheduleRepo *repository.ScheduleRepository
	db           *gorm.DB
}

// NewEventService 创建事件服务
func NewEventService(
	eventRepo *repository.EventRepository,
	moldRepo *repository.MoldRepository,
	machineRepo *repository.MachineRepository,
	scheduleRepo *repository.ScheduleRepository,
	db *gorm.DB,
) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		moldRepo:     moldRepo,
		machineRepo:  machineRepo,
		scheduleRepo: scheduleRepo,
		db:           db,
	}
}

// CreateEventReq 创建事件请求
type CreateEventReq struct {
	SourceID         string           `json:"source_id" binding:"required"`
	Type             string           `json:"type" binding:"required"`
	Description      string           `json:"description"`
	Cost             *float64         `json:"cost"`
	EstimatedEndDate *time.Time       `json:"estimated_end_date"`
	ScheduleID       *string          `json:"schedule_id"`
	CustomFields     entity.StringMap `json:"custom_fields"`
}

// CreateEvent 创建事件并联动模具状态
func (s *EventService) CreateEvent(ctx context.Context, req CreateEventReq, userID string) (*entity.Event, error) {
	if !entity.EventTypes[req.Type] {
		return nil, fmt.Errorf("%w: 未知事件类型 %s", ErrValidation, req.Type)
	}
	if err := validateCustomFields(req.CustomFields); err != nil {
		return nil, err
	}

	// 解析来源：先查模具，再查设备
	sourceType, err := s.resolveSourceType(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}

	event := &entity.Event{
		ID:               generateID(),
		SourceID:         req.SourceID,
		SourceType:       sourceType,
		Type:             req.Type,
		Description:      req.Description,
		Status:           entity.EventStatusOpen,
		Cost:             req.Cost,
		EstimatedEndDate: req.EstimatedEndDate,
		ScheduleID:       req.ScheduleID,
		CustomFields:     req.CustomFields,
		CreatedBy:        userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.createWithDerivation(tx, event)
	})
	if err != nil {
		return nil, fmt.Errorf("创建事件失败: %w", err)
	}

	sse.PublishEventUpdate(event.SourceID, event.ID, "created")
	return event, nil
}

// createWithDerivation 事务内写入事件并推导模具状态（维修申请审批复用）
func (s *EventService) createWithDerivation(tx *gorm.DB, event *entity.Event) error {
	if err := tx.Create(event).Error; err != nil {
		return err
	}

	if event.SourceType != entity.SourceTypeMold {
		return nil
	}

	// 无条件覆盖，后写的事件类型胜出
	var status string
	switch event.Type {
	case entity.EventTypeMaintenance, entity.EventTypeRepair:
		status = entity.MoldStatusInMaintenance
	case entity.EventTypeProcessing:
		status = entity.MoldStatusProcessing
	default:
		return nil
	}

	return tx.Model(&entity.Mold{}).
		Where("id = ?", event.SourceID).
		Update("status", status).Error
}

// UpdateEventReq 更新事件请求
type UpdateEventReq struct {
	Description      *string          `json:"description"`
	Cost             *float64         `json:"cost"`
	EstimatedEndDate *time.Time       `json:"estimated_end_date"`
	Status           *string          `json:"status"`
	CustomFields     entity.StringMap `json:"custom_fields"`
}

// UpdateEvent 更新事件；status置为closed时走关闭规则
func (s *EventService) UpdateEvent(ctx context.Context, id string, req UpdateEventReq, userID string) (*entity.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Cost != nil {
		event.Cost = req.Cost
	}
	if req.EstimatedEndDate != nil {
		event.EstimatedEndDate = req.EstimatedEndDate
	}
	if req.CustomFields != nil {
		if err := validateCustomFields(req.CustomFields); err != nil {
			return nil, err
		}
		event.CustomFields = req.CustomFields
	}

	if req.Status != nil && *req.Status != event.Status {
		if *req.Status != entity.EventStatusClosed {
			// 已关闭事件不可重开，open是唯一初始状态
			return nil, fmt.Errorf("%w: 事件状态只能流转为closed", ErrInvalidState)
		}
		return s.closeEvent(ctx, event)
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("更新事件失败: %w", err)
	}
	return event, nil
}

// CloseEvent 关闭事件（标记完成），触发模具状态回收
func (s *EventService) CloseEvent(ctx context.Context, id string, userID string) (*entity.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.closeEvent(ctx, event)
}

func (s *EventService) closeEvent(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	if event.Status == entity.EventStatusClosed {
		return nil, fmt.Errorf("%w: 事件已关闭", ErrInvalidState)
	}

	now := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event.Status = entity.EventStatusClosed
		event.ActualEndDate = &now
		if err := tx.Save(event).Error; err != nil {
			return err
		}

		// 事件挂在保养计划项上时，顺带登记保养完成
		if event.ScheduleID != nil {
			var schedule entity.MaintenanceSchedule
			if err := tx.Where("id = ?", *event.ScheduleID).First(&schedule).Error; err == nil {
				nextDue := now.AddDate(0, 0, schedule.IntervalDays)
				if err := tx.Model(&entity.MaintenanceSchedule{}).
					Where("id = ?", schedule.ID).
					Updates(map[string]interface{}{
						"last_performed": now,
						"next_due":       nextDue,
					}).Error; err != nil {
					return err
				}
			}
		}

		if event.SourceType != entity.SourceTypeMold {
			return nil
		}

		// 只看是否还有未关闭事件，不按剩余事件类型重算
		open, err := s.eventRepo.CountOpenBySource(ctx, tx, event.SourceID)
		if err != nil {
			return err
		}
		if open == 0 {
			return tx.Model(&entity.Mold{}).
				Where("id = ?", event.SourceID).
				Update("status", entity.MoldStatusOperational).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("关闭事件失败: %w", err)
	}

	sse.PublishEventUpdate(event.SourceID, event.ID, "closed")
	return event, nil
}

// GetEvent 获取事件详情
func (s *EventService) GetEvent(ctx context.Context, id string) (*entity.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

// ListEvents 获取事件列表
func (s *EventService) ListEvents(ctx context.Context, filters map[string]string) ([]entity.Event, error) {
	return s.eventRepo.List(ctx, filters)
}

// ListBySource 获取某模具/设备的事件时间线
func (s *EventService) ListBySource(ctx context.Context, sourceID string) ([]entity.Event, error) {
	return s.eventRepo.ListBySource(ctx, sourceID)
}

// ListUpcoming 获取所有未关闭事件（按预计结束时间升序）
func (s *EventService) ListUpcoming(ctx context.Context) ([]entity.Event, error) {
	return s.eventRepo.ListUpcoming(ctx)
}

// resolveSourceType 判断来源是模具还是设备
func (s *EventService) resolveSourceType(ctx context.Context, sourceID string) (string, error) {
	if _, err := s.moldRepo.FindByID(ctx, sourceID); err == nil {
		return entity.SourceTypeMold, nil
	} else if err != repository.ErrNotFound {
		return "", err
	}
	if _, err := s.machineRepo.FindByID(ctx, sourceID); err == nil {
		return entity.SourceTypeMachine, nil
	} else if err != repository.ErrNotFound {
		return "", err
	}
	return "", fmt.Errorf("事件来源不存在: %w", repository.ErrNotFound)
}
