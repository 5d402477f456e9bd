package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"gorm.io/gorm"
)

// MoldRepository 模具仓库
type MoldRepository struct {
	db *gorm.DB
}

// NewMoldRepository 创建模具仓库
func NewMoldRepository(db *gorm.DB) *MoldRepository {
	return &MoldRepository{db: db}
}

// FindByID 根据ID查找模具（不含已删除）
func (r *MoldRepository) FindByID(ctx context.Context, id string) (*entity.Mold, error) {
	var mold entity.Mold
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = false", id).
		First(&mold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mold, nil
}

// FindByCode 根据编号查找模具
func (r *MoldRepository) FindByCode(ctx context.Context, code string) (*entity.Mold, error) {
	var mold entity.Mold
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_deleted = false", code).
		First(&mold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mold, nil
}

// Create 创建模具（编号冲突返回ErrDuplicateCode）
func (r *MoldRepository) Create(ctx context.Context, mold *entity.Mold) error {
	return translateCreateErr(r.db.WithContext(ctx).Create(mold).Error)
}

// Update 更新模具
func (r *MoldRepository) Update(ctx context.Context, mold *entity.Mold) error {
	return r.db.WithContext(ctx).Save(mold).Error
}

// UpdateStatus 更新模具状态
func (r *MoldRepository) UpdateStatus(ctx context.Context, id, status string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Mold{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SoftDelete 软删除模具
func (r *MoldRepository) SoftDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Mold{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

// List 获取模具列表（已删除的排除在外）
func (r *MoldRepository) List(ctx context.Context, filters map[string]string) ([]entity.Mold, error) {
	var molds []entity.Mold
	query := r.db.WithContext(ctx).Model(&entity.Mold{}).Where("is_deleted = false")

	if keyword := filters["keyword"]; keyword != "" {
		query = query.Where("code ILIKE ? OR description ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if parentID := filters["parent_id"]; parentID != "" {
		query = query.Where("parent_id = ?", parentID)
	}

	err := query.Order("code ASC").Find(&molds).Error
	return molds, err
}
