package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"gorm.io/gorm"
)

// EventRepository 事件仓库
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository 创建事件仓库
func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// FindByID 根据ID查找事件
func (r *EventRepository) FindByID(ctx context.Context, id string) (*entity.Event, error) {
	var event entity.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// Create 创建事件
func (r *EventRepository) Create(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// Update 更新事件
func (r *EventRepository) Update(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// ListBySource 获取某模具/设备的事件列表（最新在前）
func (r *EventRepository) ListBySource(ctx context.Context, sourceID string) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

// List 获取事件列表（最新在前）
func (r *EventRepository) List(ctx context.Context, filters map[string]string) ([]entity.Event, error) {
	var events []entity.Event
	query := r.db.WithContext(ctx).Model(&entity.Event{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if eventType := filters["type"]; eventType != "" {
		query = query.Where("type = ?", eventType)
	}
	if sourceType := filters["source_type"]; sourceType != "" {
		query = query.Where("source_type = ?", sourceType)
	}

	err := query.Order("created_at DESC").Find(&events).Error
	return events, err
}

// ListUpcoming 获取所有未关闭事件（按预计结束时间升序）
func (r *EventRepository) ListUpcoming(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.EventStatusOpen).
		Order("estimated_end_date ASC NULLS LAST").
		Find(&events).Error
	return events, err
}

// CountOpenBySource 统计某来源的未关闭事件数。
// 关闭规则在事务内重算，调用方传入事务句柄以读到本事务的写入。
func (r *EventRepository) CountOpenBySource(ctx context.Context, tx *gorm.DB, sourceID string) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&entity.Event{}).
		Where("source_id = ? AND status = ?", sourceID, entity.EventStatusOpen).
		Count(&count).Error
	return count, err
}
