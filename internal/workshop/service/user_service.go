package service

import (
	"context"
	"fmt"

	"github.com/bitfantasy/moldtrack/internal/workshop/entity"
	"github.com/bitfantasy/moldtrack/internal/workshop/repository"
)

// UserService 用户管理服务（仅管理员可用）
type UserService struct {
	userRepo *repository.UserRepository
}

// NewUserService 创建用户管理服务
func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUserReq 创建用户请求
type CreateUserReq struct {
	Code         string            `json:"code" binding:"required"`
	Name         string            `json:"name" binding:"required"`
	IsAdmin      bool              `json:"is_admin"`
	AllowedCodes entity.StringList `json:"allowed_codes"`
}

// CreateUser 创建用户
func (s *UserService) CreateUser(ctx context.Context, req CreateUserReq) (*entity.User, error) {
	user := &entity.User{
		ID:           generateID(),
		Code:         req.Code,
		Name:         req.Name,
		IsAdmin:      req.IsAdmin,
		AllowedCodes: req.AllowedCodes,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateCode {
			return nil, fmt.Errorf("用户编号 %s 已存在: %w", req.Code, err)
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// UpdateUserReq 更新用户请求（nil字段不更新）
type UpdateUserReq struct {
	Name         *string           `json:"name"`
	IsAdmin      *bool             `json:"is_admin"`
	AllowedCodes entity.StringList `json:"allowed_codes"`
}

// UpdateUser 更新用户
func (s *UserService) UpdateUser(ctx context.Context, id string, req UpdateUserReq) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.AllowedCodes != nil {
		user.AllowedCodes = req.AllowedCodes
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("更新用户失败: %w", err)
	}
	return user, nil
}

// GetUser 获取用户详情
func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

// ListUsers 获取用户列表
func (s *UserService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.userRepo.List(ctx)
}

// DeleteUser 删除用户
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.userRepo.Delete(ctx, id)
}
