package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"gorm.io/gorm"
)

// ComponentRepository 零件仓库
type ComponentRepository struct {
	db *gorm.DB
}

// NewComponentRepository 创建零件仓库
func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

// FindByID 根据ID查找零件（不含已删除）
func (r *ComponentRepository) FindByID(ctx context.Context, id string) (*entity.Component, error) {
	var component entity.Component
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = false", id).
		First(&component).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &component, nil
}

// FindByCode 根据编号查找零件
func (r *ComponentRepository) FindByCode(ctx context.Context, code string) (*entity.Component, error) {
	var component entity.Component
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_deleted = false", code).
		First(&component).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &component, nil
}

// Create 创建零件（编号冲突返回ErrDuplicateCode）
func (r *ComponentRepository) Create(ctx context.Context, component *entity.Component) error {
	return translateCreateErr(r.db.WithContext(ctx).Create(component).Error)
}

// Update 更新零件
func (r *ComponentRepository) Update(ctx context.Context, component *entity.Component) error {
	return r.db.WithContext(ctx).Save(component).Error
}

// SoftDelete 软删除零件
func (r *ComponentRepository) SoftDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Component{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// List 获取零件列表
func (r *ComponentRepository) List(ctx context.Context, filters map[string]string) ([]entity.Component, error) {
	var components []entity.Component
	query := r.db.WithContext(ctx).Model(&entity.Component{}).Where("is_deleted = false")

	if keyword := filters["keyword"]; keyword != "" {
		query = query.Where("code ILIKE ? OR description ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if material := filters["material"]; material != "" {
		query = query.Where("material = ?", material)
	}
	if moldID := filters["mold_id"]; moldID != "" {
		// mold_ids是jsonb数组，用包含查询
		query = query.Where("mold_ids @> ?", fmt.Sprintf(`["%s"]`, moldID))
	}

	err := query.Order("code ASC").Find(&components).Error
	return components, err
}

// IncrementTotalCycles 原子增减累计模次（并发记录不丢更新）。
// 跟随生产记录写入在同一事务内执行，调用方传入事务句柄；delta为0时不写。
func (r *ComponentRepository) IncrementTotalCycles(ctx context.Context, tx *gorm.DB, id string, delta int64) error {
	if delta == 0 {
		return nil
	}
	return tx.WithContext(ctx).
		Model(&entity.Component{}).
		Where("id = ?", id).
		UpdateColumn("total_cycles", gorm.Expr("total_cycles + ?", delta)).Error
}
