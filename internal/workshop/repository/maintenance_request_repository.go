package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"gorm.io/gorm"
)

// MaintenanceRequestRepository 维修申请仓库
type MaintenanceRequestRepository struct {
	db *gorm.DB
}

// NewMaintenanceRequestRepository 创建维修申请仓库
func NewMaintenanceRequestRepository(db *gorm.DB) *MaintenanceRequestRepository {
	return &MaintenanceRequestRepository{db: db}
}

// FindByID 根据ID查找维修申请
func (r *MaintenanceRequestRepository) FindByID(ctx context.Context, id string) (*entity.MaintenanceRequest, error) {
	var request entity.MaintenanceRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// Create 创建维修申请
func (r *MaintenanceRequestRepository) Create(ctx context.Context, request *entity.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// Update 更新维修申请
func (r *MaintenanceRequestRepository) Update(ctx context.Context, request *entity.MaintenanceRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// List 获取维修申请列表（最新在前）
func (r *MaintenanceRequestRepository) List(ctx context.Context, filters map[string]string) ([]entity.MaintenanceRequest, error) {
	var requests []entity.MaintenanceRequest
	query := r.db.WithContext(ctx).Model(&entity.MaintenanceRequest{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if sourceID := filters["source_id"]; sourceID != "" {
		query = query.Where("source_id = ?", sourceID)
	}

	err := query.Order("created_at DESC").Find(&requests).Error
	return requests, err
}
